// Package sheets relays registrations to the spreadsheet-backed remote
// endpoint (a Google Apps Script web app). The endpoint is best-effort: in
// opaque deployments the response can never be inspected, so every call
// reports an Outcome instead of an error.
package sheets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/globalidara/bootcamp-registration/registration"
)

type Outcome int

const (
	OUTCOME_CONFIRMED Outcome = iota
	OUTCOME_REJECTED
	OUTCOME_UNKNOWN
)

func (o Outcome) String() string {
	switch o {
	case OUTCOME_CONFIRMED:
		return "confirmed"
	case OUTCOME_REJECTED:
		return "rejected"
	default:
		return "unknown"
	}
}

// opaqueTimeout caps an opaque-mode call so the caller always gets an
// Outcome even when the transport gives no completion signal.
const opaqueTimeout = 3 * time.Second

type Client struct {
	endpoint   string
	httpClient *http.Client
	// readable is set when the deployment can read response bodies (e.g. a
	// CORS-readable proxy fronts the Apps Script). When false, outcomes are
	// always OUTCOME_UNKNOWN and reconciliation happens elsewhere.
	readable bool
	logger   *slog.Logger
}

func NewClient(endpoint string, readable bool, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		readable:   readable,
		logger:     logger,
	}
}

// SubmitNew sends the create request as form-encoded fields.
func (c *Client) SubmitNew(ctx context.Context, rec registration.Record) Outcome {
	form := url.Values{}
	form.Set("firstName", rec.FirstName)
	form.Set("lastName", rec.LastName)
	form.Set("email", rec.Email)
	form.Set("gender", rec.Gender)
	form.Set("country", rec.Country)
	form.Set("countryCode", rec.CountryCode)
	form.Set("phone", rec.Phone)
	form.Set("fullPhone", rec.FullPhone)
	form.Set("timestamp", rec.CreatedAt.Format(time.RFC3339))
	form.Set("status", rec.Status.String())
	form.Set("reference", rec.Reference)

	req, err := http.NewRequest(http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		c.logger.Error("Failed to build create request", "error", err)
		return c.failureOutcome()
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	outcome := c.do(ctx, req)
	c.logger.Info("Submitted new registration",
		"email", rec.Email, "reference", rec.Reference, "outcome", outcome.String())
	return outcome
}

// SubmitStatusUpdate sends the paid-status patch as query parameters, the
// shape the Apps Script expects for updates.
func (c *Client) SubmitStatusUpdate(ctx context.Context, rec registration.Record) Outcome {
	params := url.Values{}
	params.Set("email", rec.Email)
	params.Set("status", rec.Status.String())
	if rec.PaidAt != nil {
		params.Set("paymentDate", rec.PaidAt.Format(time.RFC3339))
	}
	params.Set("paymentMethod", rec.PaymentMethod)
	params.Set("paymentReference", rec.PaymentReference)
	params.Set("action", "update")

	req, err := http.NewRequest(http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		c.logger.Error("Failed to build update request", "error", err)
		return c.failureOutcome()
	}

	outcome := c.do(ctx, req)
	c.logger.Info("Submitted status update",
		"email", rec.Email, "reference", rec.Reference, "outcome", outcome.String())
	return outcome
}

// Ping checks reachability of the endpoint. Used by the startup connection
// test and the connectivity probe.
func (c *Client) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, opaqueTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?test=true", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return true
}

func (c *Client) do(ctx context.Context, req *http.Request) Outcome {
	if !c.readable {
		ctx, cancel := context.WithTimeout(ctx, opaqueTimeout)
		defer cancel()

		resp, err := c.httpClient.Do(req.WithContext(ctx))
		if err != nil {
			c.logger.Warn("Opaque submission transport error", "error", err)
			return OUTCOME_UNKNOWN
		}
		defer resp.Body.Close()
		// Treat the response as opaque end to end; nothing in it may
		// influence the outcome.
		io.Copy(io.Discard, resp.Body)

		return OUTCOME_UNKNOWN
	}

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		c.logger.Warn("Submission transport error", "error", err)
		return OUTCOME_REJECTED
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Endpoint returned non-2xx", "status", resp.StatusCode)
		return OUTCOME_REJECTED
	}

	var body struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("Failed to decode endpoint response", "error", err)
		return OUTCOME_REJECTED
	}

	if body.Success {
		return OUTCOME_CONFIRMED
	}
	return OUTCOME_REJECTED
}

func (c *Client) failureOutcome() Outcome {
	if c.readable {
		return OUTCOME_REJECTED
	}
	return OUTCOME_UNKNOWN
}
