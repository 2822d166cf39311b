package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/globalidara/bootcamp-registration/payment"
	"github.com/globalidara/bootcamp-registration/registration"
	"github.com/globalidara/bootcamp-registration/sheets"
)

type CheckoutResponse struct {
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode,omitempty"`
	Reference        string `json:"reference"`
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rec, ok, err := a.store.LoadCurrent(ctx)
	if err != nil {
		a.logger.Error("Failed to load current registration", "error", err)

		a.writeError(w, http.StatusInternalServerError, Error{
			Code:    InternalError,
			Message: "An error occurred. Please try again.",
		})
		return
	}
	if !ok {
		a.writeError(w, http.StatusNotFound, Error{
			Code:    NotFound,
			Message: "Please complete the registration form first.",
		})
		return
	}

	info, err := payment.Start(ctx, rec, a.event, a.provider, a.cfg.PaystackPublicKey, a.cfg.CallbackURL)
	if err != nil {
		a.logger.Error("Failed to start payment", "error", err, "reference", rec.Reference)

		var regErr *registration.Error
		if errors.As(err, &regErr) {
			switch regErr.Reason {
			case registration.REASON_INCOMPLETE_RECORD:
				a.writeError(w, http.StatusBadRequest, Error{
					Code:    InputValidationError,
					Message: "Please complete the registration form first.",
				})
				return
			case registration.REASON_ALREADY_PAID:
				a.writeError(w, http.StatusConflict, Error{
					Code:    AlreadyPaid,
					Message: "This registration is already paid.",
				})
				return
			case registration.REASON_PAYMENT_UNAVAILABLE:
				a.writeError(w, http.StatusServiceUnavailable, Error{
					Code:    PaymentUnavailable,
					Message: "Payment service is not available. Please try again later.",
				})
				return
			}
		}

		a.writeError(w, http.StatusBadGateway, Error{
			Code:    PaymentUnavailable,
			Message: "Payment initialization failed. Please contact support.",
		})
		return
	}

	a.writeJSON(w, http.StatusOK, CheckoutResponse{
		AuthorizationURL: info.AuthorizationURL,
		AccessCode:       info.AccessCode,
		Reference:        info.Reference,
	})
}

// handleCallback is the resume-after-redirect entry path: the processor sends
// the buyer back with the payment reference in the address parameters.
func (a *API) handleCallback(w http.ResponseWriter, r *http.Request) {
	paymentRef := r.URL.Query().Get("reference")
	if paymentRef == "" {
		paymentRef = r.URL.Query().Get("trxref")
	}
	if paymentRef == "" {
		a.writeError(w, http.StatusBadRequest, Error{
			Code:    InputValidationError,
			Message: "Missing payment reference",
		})
		return
	}

	_, _, apiErr := a.completePayment(r.Context(), paymentRef)
	if apiErr != nil && apiErr.Code != NotFound {
		a.writeError(w, apiErr.statusCode, apiErr.Error)
		return
	}

	// The buyer lands on the success view even when the sync is still
	// pending; the scheduler owns reconciliation from here.
	http.Redirect(w, r, a.cfg.SuccessURL, http.StatusSeeOther)
}

type ConfirmRequest struct {
	Reference string `json:"reference"`
}

type ConfirmResponse struct {
	Reference        string `json:"reference"`
	PaymentReference string `json:"paymentReference"`
	Status           string `json:"status"`
	Message          string `json:"message"`
}

// handleConfirm is the programmatic completion path for clients that get
// the payment reference from an inline checkout callback.
func (a *API) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reference == "" {
		a.writeError(w, http.StatusBadRequest, Error{
			Code:    InputValidationError,
			Message: "Must specify a payment reference",
		})
		return
	}

	rec, _, apiErr := a.completePayment(r.Context(), req.Reference)
	if apiErr != nil {
		a.writeError(w, apiErr.statusCode, apiErr.Error)
		return
	}

	a.writeJSON(w, http.StatusOK, ConfirmResponse{
		Reference:        rec.Reference,
		PaymentReference: rec.PaymentReference,
		Status:           rec.Status.String(),
		Message:          "Payment confirmed.",
	})
}

type handlerError struct {
	Error
	statusCode int
}

// completePayment drives the registered -> paid transition: verify when
// configured, persist, then best-effort patch the remote record. Completion
// on an already-paid record is a no-op.
func (a *API) completePayment(ctx context.Context, paymentRef string) (registration.Record, bool, *handlerError) {
	rec, ok, err := a.store.LoadCurrent(ctx)
	if err != nil {
		a.logger.Error("Failed to load current registration", "error", err)

		return registration.Record{}, false, &handlerError{
			Error:      Error{Code: InternalError, Message: "An error occurred. Please try again."},
			statusCode: http.StatusInternalServerError,
		}
	}
	if !ok {
		return registration.Record{}, false, &handlerError{
			Error:      Error{Code: NotFound, Message: "No registration found for this session."},
			statusCode: http.StatusNotFound,
		}
	}

	if rec.PaymentReference != "" {
		return rec, false, nil
	}

	if a.cfg.VerifyPayments {
		verified, err := a.provider.VerifyReference(ctx, paymentRef)
		if err != nil {
			// The callback reference is the only signal left, so trust it
			// rather than strand a completed payment.
			a.logger.Warn("Could not verify payment reference, trusting callback",
				"error", err, "paymentReference", paymentRef)
		} else if !verified {
			a.logger.Warn("Payment reference failed verification", "paymentReference", paymentRef)

			return registration.Record{}, false, &handlerError{
				Error:      Error{Code: PaymentNotVerified, Message: "Payment verification failed. Please contact support."},
				statusCode: http.StatusBadRequest,
			}
		}
	}

	rec.CompletePayment(paymentRef, "paystack", a.now())

	if err := a.store.SaveCurrent(ctx, rec); err != nil {
		a.logger.Error("Failed to persist paid registration", "error", err, "reference", rec.Reference)

		return registration.Record{}, false, &handlerError{
			Error:      Error{Code: InternalError, Message: "Payment succeeded but could not be recorded. Please contact support with reference: " + paymentRef},
			statusCode: http.StatusInternalServerError,
		}
	}

	outcome := a.sheets.SubmitStatusUpdate(ctx, rec)
	if outcome != sheets.OUTCOME_CONFIRMED {
		if _, _, err := a.store.EnqueuePending(ctx, rec); err != nil {
			a.logger.Error("Failed to enqueue paid status for sync", "error", err, "reference", rec.Reference)
		} else {
			a.kicker.Kick()
		}
	}

	a.logger.Info("Registration paid",
		"reference", rec.Reference, "paymentReference", paymentRef, "syncOutcome", outcome.String())

	return rec, true, nil
}
