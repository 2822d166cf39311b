package api

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Rhymond/go-money"

	"github.com/globalidara/bootcamp-registration/payment"
	"github.com/globalidara/bootcamp-registration/registration"
	"github.com/globalidara/bootcamp-registration/sheets"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testEvent() registration.Event {
	return registration.Event{
		Name:          "Global Idara Tech Bootcamp",
		Price:         money.New(1200000, "NGN"),
		ContactNumber: "2348123456789",
	}
}

var _ registration.Store = &mockStore{}

type mockStore struct {
	SaveCurrentFunc    func(ctx context.Context, rec registration.Record) error
	LoadCurrentFunc    func(ctx context.Context) (registration.Record, bool, error)
	EnqueuePendingFunc func(ctx context.Context, rec registration.Record) (registration.PendingEntry, bool, error)
	ListPendingFunc    func(ctx context.Context) ([]registration.PendingEntry, error)
	ReplacePendingFunc func(ctx context.Context, entries []registration.PendingEntry) error
	MarkSyncedFunc     func(ctx context.Context, email string, at time.Time) (bool, error)
	SaveSnapshotFunc   func(ctx context.Context, snap registration.Snapshot) error
	LoadSnapshotFunc   func(ctx context.Context) (registration.Snapshot, error)
}

func (m *mockStore) SaveCurrent(ctx context.Context, rec registration.Record) error {
	if m.SaveCurrentFunc != nil {
		return m.SaveCurrentFunc(ctx, rec)
	}
	return nil
}

func (m *mockStore) LoadCurrent(ctx context.Context) (registration.Record, bool, error) {
	if m.LoadCurrentFunc != nil {
		return m.LoadCurrentFunc(ctx)
	}
	return registration.Record{}, false, nil
}

func (m *mockStore) EnqueuePending(ctx context.Context, rec registration.Record) (registration.PendingEntry, bool, error) {
	if m.EnqueuePendingFunc != nil {
		return m.EnqueuePendingFunc(ctx, rec)
	}
	return registration.PendingEntry{Record: rec}, true, nil
}

func (m *mockStore) ListPending(ctx context.Context) ([]registration.PendingEntry, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) ReplacePending(ctx context.Context, entries []registration.PendingEntry) error {
	if m.ReplacePendingFunc != nil {
		return m.ReplacePendingFunc(ctx, entries)
	}
	return nil
}

func (m *mockStore) MarkSynced(ctx context.Context, email string, at time.Time) (bool, error) {
	if m.MarkSyncedFunc != nil {
		return m.MarkSyncedFunc(ctx, email, at)
	}
	return false, nil
}

func (m *mockStore) SaveSnapshot(ctx context.Context, snap registration.Snapshot) error {
	if m.SaveSnapshotFunc != nil {
		return m.SaveSnapshotFunc(ctx, snap)
	}
	return nil
}

func (m *mockStore) LoadSnapshot(ctx context.Context) (registration.Snapshot, error) {
	if m.LoadSnapshotFunc != nil {
		return m.LoadSnapshotFunc(ctx)
	}
	return registration.Snapshot{}, nil
}

type mockSheets struct {
	SubmitNewFunc          func(ctx context.Context, rec registration.Record) sheets.Outcome
	SubmitStatusUpdateFunc func(ctx context.Context, rec registration.Record) sheets.Outcome
	PingFunc               func(ctx context.Context) bool
}

func (m *mockSheets) SubmitNew(ctx context.Context, rec registration.Record) sheets.Outcome {
	if m.SubmitNewFunc != nil {
		return m.SubmitNewFunc(ctx, rec)
	}
	return sheets.OUTCOME_CONFIRMED
}

func (m *mockSheets) SubmitStatusUpdate(ctx context.Context, rec registration.Record) sheets.Outcome {
	if m.SubmitStatusUpdateFunc != nil {
		return m.SubmitStatusUpdateFunc(ctx, rec)
	}
	return sheets.OUTCOME_CONFIRMED
}

func (m *mockSheets) Ping(ctx context.Context) bool {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return true
}

type mockKicker struct {
	kicks int
}

func (m *mockKicker) Kick() {
	m.kicks++
}

type mockProvider struct {
	InitializeCheckoutFunc func(ctx context.Context, params payment.CheckoutParams) (payment.CheckoutInfo, error)
	VerifyReferenceFunc    func(ctx context.Context, reference string) (bool, error)
}

func (m *mockProvider) InitializeCheckout(ctx context.Context, params payment.CheckoutParams) (payment.CheckoutInfo, error) {
	if m.InitializeCheckoutFunc != nil {
		return m.InitializeCheckoutFunc(ctx, params)
	}
	return payment.CheckoutInfo{
		AuthorizationURL: "https://checkout.paystack.com/abc123",
		AccessCode:       "abc123",
		Reference:        params.Reference,
	}, nil
}

func (m *mockProvider) VerifyReference(ctx context.Context, reference string) (bool, error) {
	if m.VerifyReferenceFunc != nil {
		return m.VerifyReferenceFunc(ctx, reference)
	}
	return true, nil
}

func testConfig() Config {
	return Config{
		PaystackPublicKey: "pk_test_abc",
		VerifyPayments:    false,
		CallbackURL:       "https://site.example/payment/callback",
		SuccessURL:        "https://site.example/success.html",
	}
}

func newTestAPI(store registration.Store, sheetsClient SheetsClient, kicker Kicker, provider payment.Provider) *API {
	if store == nil {
		store = &mockStore{}
	}
	if sheetsClient == nil {
		sheetsClient = &mockSheets{}
	}
	if kicker == nil {
		kicker = &mockKicker{}
	}
	if provider == nil {
		provider = &mockProvider{}
	}

	return NewAPI(store, sheetsClient, kicker, provider, testEvent(), testConfig(), testLogger)
}
