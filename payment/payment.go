// Package payment initiates checkouts with the external payment processor.
// The processor owns the payment UI; this package only supplies the checkout
// parameters and interprets the callback reference.
package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"

	"github.com/globalidara/bootcamp-registration/registration"
)

type CheckoutParams struct {
	Email       string
	Amount      *money.Money
	Reference   string
	CallbackURL string
	Metadata    map[string]string
}

type CheckoutInfo struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type Provider interface {
	InitializeCheckout(ctx context.Context, params CheckoutParams) (CheckoutInfo, error)
	// VerifyReference reports whether the processor considers the payment
	// reference settled. Providers without a readable verify surface return
	// an error, and callers fall back to trusting the callback.
	VerifyReference(ctx context.Context, reference string) (bool, error)
}

// Start checks preconditions and delegates to the provider with the record's
// reference as payment reference. It fails fast, so the caller can surface a
// user-facing message before any redirect happens.
func Start(ctx context.Context, rec registration.Record, event registration.Event, provider Provider, publicKey, callbackURL string) (CheckoutInfo, error) {
	if rec.Email == "" {
		return CheckoutInfo{}, registration.NewIncompleteRecordError("Please complete the registration form first")
	}
	if rec.Status == registration.PAID {
		return CheckoutInfo{}, registration.NewAlreadyPaidError(fmt.Sprintf("Registration %q is already paid", rec.Reference))
	}
	if provider == nil || publicKey == "" || strings.Contains(publicKey, "your_public_key") {
		return CheckoutInfo{}, registration.NewPaymentUnavailableError("Payment service is not configured")
	}

	info, err := provider.InitializeCheckout(ctx, CheckoutParams{
		Email:       rec.Email,
		Amount:      event.Price,
		Reference:   rec.Reference,
		CallbackURL: callbackURL,
		Metadata: map[string]string{
			"first_name": rec.FirstName,
			"last_name":  rec.LastName,
			"bootcamp":   event.Name,
		},
	})
	if err != nil {
		return CheckoutInfo{}, registration.NewCheckoutFailedError(
			fmt.Sprintf("Failed to initialize checkout for %q", rec.Reference), err)
	}

	return info, nil
}
