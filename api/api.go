// Package api is the form controller: it validates and collects submissions
// over HTTP and drives the local store, the sheets relay, and the payment
// initiator. Nothing in here throws past its boundary; every failure becomes
// a queue entry or an advisory response.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/globalidara/bootcamp-registration/payment"
	"github.com/globalidara/bootcamp-registration/registration"
	"github.com/globalidara/bootcamp-registration/sheets"
)

type SheetsClient interface {
	SubmitNew(ctx context.Context, rec registration.Record) sheets.Outcome
	SubmitStatusUpdate(ctx context.Context, rec registration.Record) sheets.Outcome
	Ping(ctx context.Context) bool
}

type Kicker interface {
	Kick()
}

type Config struct {
	PaystackPublicKey string
	// VerifyPayments enables server-side verification of callback references.
	// Off means the callback reference is trusted as-is.
	VerifyPayments bool
	CallbackURL    string
	SuccessURL     string
	AllowedOrigins []string
}

type API struct {
	store    registration.Store
	sheets   SheetsClient
	kicker   Kicker
	provider payment.Provider
	event    registration.Event
	cfg      Config
	logger   *slog.Logger
	seen     *registration.SubmissionCache

	now func() time.Time
}

func NewAPI(
	store registration.Store,
	sheetsClient SheetsClient,
	kicker Kicker,
	provider payment.Provider,
	event registration.Event,
	cfg Config,
	logger *slog.Logger,
) *API {
	return &API{
		store:    store,
		sheets:   sheetsClient,
		kicker:   kicker,
		provider: provider,
		event:    event,
		cfg:      cfg,
		logger:   logger,
		seen:     registration.NewSubmissionCache(10*time.Minute, 512),
		now:      time.Now,
	}
}

// Handler builds the full route table wrapped in the logging and CORS
// middlewares.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /register", a.handleRegister)
	mux.HandleFunc("POST /payment/checkout", a.handleCheckout)
	mux.HandleFunc("POST /payment/confirm", a.handleConfirm)
	mux.HandleFunc("GET /payment/callback", a.handleCallback)
	mux.HandleFunc("GET /contact", a.handleContact)
	mux.HandleFunc("GET /contact/qr", a.handleContactQR)
	mux.HandleFunc("GET /sync/status", a.handleSyncStatus)
	mux.HandleFunc("POST /sync/resolve", a.handleResolve)
	mux.HandleFunc("GET /healthz", a.handleHealthz)

	return useMiddlewares(mux, a.corsMiddleware(), a.loggingMiddleware())
}

type ErrorCode string

const (
	InputValidationError ErrorCode = "InputValidationError"
	AlreadyExists        ErrorCode = "AlreadyExists"
	AlreadyPaid          ErrorCode = "AlreadyPaid"
	NotFound             ErrorCode = "NotFound"
	PaymentUnavailable   ErrorCode = "PaymentUnavailable"
	PaymentNotVerified   ErrorCode = "PaymentNotVerified"
	InternalError        ErrorCode = "InternalError"
)

type Error struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (a *API) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Error("Failed to encode response body", "error", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, statusCode int, apiErr Error) {
	a.writeJSON(w, statusCode, apiErr)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"endpointReachable": a.sheets.Ping(r.Context()),
	})
}
