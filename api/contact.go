package api

import (
	"fmt"
	"net/http"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/globalidara/bootcamp-registration/registration"
)

type ContactResponse struct {
	URL       string `json:"url"`
	Reference string `json:"reference"`
}

// handleContact is the escape hatch to the manual-contact channel: a WhatsApp
// deep link with a prefilled message carrying the record's reference.
func (a *API) handleContact(w http.ResponseWriter, r *http.Request) {
	rec, ok, err := a.store.LoadCurrent(r.Context())
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

	a.writeJSON(w, http.StatusOK, ContactResponse{
		URL:       a.contactLink(rec),
		Reference: rec.Reference,
	})
}

// handleContactQR serves the same deep link as a scannable PNG.
func (a *API) handleContactQR(w http.ResponseWriter, r *http.Request) {
	rec, ok, err := a.store.LoadCurrent(r.Context())
	if err != nil {
		a.logger.Error("Failed to load current registration", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(a.contactLink(rec), qrcode.Medium, 256)
	if err != nil {
		a.logger.Error("Failed to render contact QR code", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (a *API) contactLink(rec registration.Record) string {
	var message string
	if rec.Status == registration.PAID {
		message = fmt.Sprintf(
			"Hi! I'm %s %s.\nI just completed my payment for the %s\nReference: %s\nI would like to join the WhatsApp group.",
			rec.FirstName, rec.LastName, a.event.Name, rec.Reference)
	} else {
		message = fmt.Sprintf(
			"Hello! I just registered for the %s\n\nName: %s %s\nEmail: %s\nPhone: %s\nReference: %s\n\nI would like to discuss alternative payment options.",
			a.event.Name, rec.FirstName, rec.LastName, rec.Email, rec.FullPhone, rec.Reference)
	}

	return fmt.Sprintf("https://wa.me/%s?text=%s", a.event.ContactNumber, url.QueryEscape(message))
}
