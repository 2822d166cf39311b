package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalidara/bootcamp-registration/registration"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type mockProvider struct {
	InitializeCheckoutFunc func(ctx context.Context, params CheckoutParams) (CheckoutInfo, error)
	VerifyReferenceFunc    func(ctx context.Context, reference string) (bool, error)
}

func (m *mockProvider) InitializeCheckout(ctx context.Context, params CheckoutParams) (CheckoutInfo, error) {
	if m.InitializeCheckoutFunc != nil {
		return m.InitializeCheckoutFunc(ctx, params)
	}
	return CheckoutInfo{Reference: params.Reference}, nil
}

func (m *mockProvider) VerifyReference(ctx context.Context, reference string) (bool, error) {
	if m.VerifyReferenceFunc != nil {
		return m.VerifyReferenceFunc(ctx, reference)
	}
	return true, nil
}

func testEvent() registration.Event {
	return registration.Event{
		Name:          "Global Idara Tech Bootcamp",
		Price:         money.New(1200000, "NGN"),
		ContactNumber: "2348123456789",
	}
}

func registeredRecord() registration.Record {
	return registration.Record{
		FirstName: "Ada",
		LastName:  "Obi",
		Email:     "ada@example.com",
		Status:    registration.REGISTERED,
		Reference: "GIT-1756449600000-0042",
	}
}

func TestStart(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates with the record reference and event price", func(t *testing.T) {
		var got CheckoutParams
		provider := &mockProvider{
			InitializeCheckoutFunc: func(ctx context.Context, params CheckoutParams) (CheckoutInfo, error) {
				got = params
				return CheckoutInfo{AuthorizationURL: "https://checkout.example/x", Reference: params.Reference}, nil
			},
		}

		info, err := Start(ctx, registeredRecord(), testEvent(), provider, "pk_test_abc", "https://site.example/payment/callback")
		require.NoError(t, err)

		assert.Equal(t, "GIT-1756449600000-0042", info.Reference)
		assert.Equal(t, "ada@example.com", got.Email)
		assert.Equal(t, int64(1200000), got.Amount.Amount())
		assert.Equal(t, "NGN", got.Amount.Currency().Code)
		assert.Equal(t, "https://site.example/payment/callback", got.CallbackURL)
		assert.Equal(t, "Ada", got.Metadata["first_name"])
		assert.Equal(t, "Global Idara Tech Bootcamp", got.Metadata["bootcamp"])
	})

	t.Run("record without email fails fast", func(t *testing.T) {
		rec := registeredRecord()
		rec.Email = ""

		_, err := Start(ctx, rec, testEvent(), &mockProvider{}, "pk_test_abc", "")
		require.Error(t, err)

		var regErr *registration.Error
		require.True(t, errors.As(err, &regErr))
		assert.Equal(t, registration.REASON_INCOMPLETE_RECORD, regErr.Reason)
	})

	t.Run("already paid record is refused", func(t *testing.T) {
		rec := registeredRecord()
		rec.CompletePayment("PAY123", "paystack", time.Now())

		_, err := Start(ctx, rec, testEvent(), &mockProvider{}, "pk_test_abc", "")
		require.Error(t, err)

		var regErr *registration.Error
		require.True(t, errors.As(err, &regErr))
		assert.Equal(t, registration.REASON_ALREADY_PAID, regErr.Reason)
	})

	t.Run("missing or placeholder public key is unavailable", func(t *testing.T) {
		for _, key := range []string{"", "pk_test_your_public_key_here"} {
			_, err := Start(ctx, registeredRecord(), testEvent(), &mockProvider{}, key, "")
			require.Error(t, err)

			var regErr *registration.Error
			require.True(t, errors.As(err, &regErr))
			assert.Equal(t, registration.REASON_PAYMENT_UNAVAILABLE, regErr.Reason)
		}
	})

	t.Run("provider failure maps to checkout failed", func(t *testing.T) {
		provider := &mockProvider{
			InitializeCheckoutFunc: func(ctx context.Context, params CheckoutParams) (CheckoutInfo, error) {
				return CheckoutInfo{}, errors.New("processor down")
			},
		}

		_, err := Start(ctx, registeredRecord(), testEvent(), provider, "pk_test_abc", "")
		require.Error(t, err)

		var regErr *registration.Error
		require.True(t, errors.As(err, &regErr))
		assert.Equal(t, registration.REASON_CHECKOUT_FAILED, regErr.Reason)
	})
}

func TestPaystackInitializeCheckout(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotAuth string
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/transaction/initialize", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			json.NewEncoder(w).Encode(map[string]any{
				"status": true,
				"data": map[string]any{
					"authorization_url": "https://checkout.paystack.com/abc123",
					"access_code":       "abc123",
					"reference":         "GIT-1756449600000-0042",
				},
			})
		}))
		defer server.Close()

		provider := NewPaystack("sk_test_secret", testLogger)
		provider.baseURL = server.URL

		info, err := provider.InitializeCheckout(context.Background(), CheckoutParams{
			Email:     "ada@example.com",
			Amount:    money.New(1200000, "NGN"),
			Reference: "GIT-1756449600000-0042",
			Metadata:  map[string]string{"first_name": "Ada"},
		})
		require.NoError(t, err)

		assert.Equal(t, "Bearer sk_test_secret", gotAuth)
		assert.Equal(t, "https://checkout.paystack.com/abc123", info.AuthorizationURL)
		assert.Equal(t, "abc123", info.AccessCode)
		assert.Equal(t, float64(1200000), gotBody["amount"])
		assert.Equal(t, "NGN", gotBody["currency"])
	})

	t.Run("rejected checkout surfaces the processor message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "Invalid amount"})
		}))
		defer server.Close()

		provider := NewPaystack("sk_test_secret", testLogger)
		provider.baseURL = server.URL

		_, err := provider.InitializeCheckout(context.Background(), CheckoutParams{
			Email:     "ada@example.com",
			Amount:    money.New(0, "NGN"),
			Reference: "GIT-x",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid amount")
	})
}

func TestPaystackVerifyReference(t *testing.T) {
	t.Run("settled reference verifies true", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/transaction/verify/PAY123", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"status": true,
				"data":   map[string]any{"status": "success"},
			})
		}))
		defer server.Close()

		provider := NewPaystack("sk_test_secret", testLogger)
		provider.baseURL = server.URL

		ok, err := provider.VerifyReference(context.Background(), "PAY123")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("abandoned reference verifies false", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"status": true,
				"data":   map[string]any{"status": "abandoned"},
			})
		}))
		defer server.Close()

		provider := NewPaystack("sk_test_secret", testLogger)
		provider.baseURL = server.URL

		ok, err := provider.VerifyReference(context.Background(), "PAY123")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("transport error is returned", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		provider := NewPaystack("sk_test_secret", testLogger)
		provider.baseURL = server.URL

		_, err := provider.VerifyReference(context.Background(), "PAY123")
		assert.Error(t, err)
	})
}
