package api

import (
	"net/http"

	"github.com/globalidara/bootcamp-registration/registration"
	"github.com/globalidara/bootcamp-registration/sheets"
)

type RegisterResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Queued    bool   `json:"queued"`
	Message   string `json:"message"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		a.logger.Warn("Malformed registration form", "error", err)

		a.writeError(w, http.StatusBadRequest, Error{
			Code:    InputValidationError,
			Message: "Malformed form submission",
		})
		return
	}

	form := registration.Form{
		FirstName:    r.PostFormValue("firstName"),
		LastName:     r.PostFormValue("lastName"),
		Email:        r.PostFormValue("email"),
		Gender:       r.PostFormValue("gender"),
		Country:      r.PostFormValue("country"),
		OtherCountry: r.PostFormValue("otherCountry"),
		CountryCode:  r.PostFormValue("countryCode"),
		Phone:        r.PostFormValue("phone"),
	}

	if fieldErrs := form.Validate(); len(fieldErrs) > 0 {
		a.logger.Warn("Registration failed validation", "fields", len(fieldErrs))

		a.writeError(w, http.StatusBadRequest, Error{
			Code:    InputValidationError,
			Message: "Please fill in all required fields correctly.",
			Fields:  fieldErrs,
		})
		return
	}

	if a.seen.Seen(form.Email, form.CountryCode+form.Phone) {
		a.logger.Warn("Duplicate submission blocked", "email", form.Email)

		a.writeError(w, http.StatusConflict, Error{
			Code:    AlreadyExists,
			Message: "A registration for this email or phone was just submitted.",
		})
		return
	}

	rec, err := registration.NewRecord(form, a.now())
	if err != nil {
		a.logger.Error("Failed to build record from validated form", "error", err)

		a.writeError(w, http.StatusInternalServerError, Error{
			Code:    InternalError,
			Message: "An error occurred. Please try again.",
		})
		return
	}

	// Local persistence must land before any remote attempt, so a crash or
	// endpoint failure never loses the submission.
	if err := a.store.SaveCurrent(ctx, rec); err != nil {
		a.logger.Error("Failed to save registration locally", "error", err, "email", rec.Email)

		a.writeError(w, http.StatusInternalServerError, Error{
			Code:    InternalError,
			Message: "An error occurred. Please try again.",
		})
		return
	}
	a.seen.Remember(rec.Email, rec.FullPhone)

	outcome := a.sheets.SubmitNew(ctx, rec)

	queued := false
	if outcome != sheets.OUTCOME_CONFIRMED {
		if _, _, err := a.store.EnqueuePending(ctx, rec); err != nil {
			a.logger.Error("Failed to enqueue registration for sync", "error", err, "email", rec.Email)
		} else {
			queued = true
			a.kicker.Kick()
		}
	}

	message := "Registration received."
	if queued {
		message = "Registration received. It will be synced to our records shortly."
	}

	a.writeJSON(w, http.StatusOK, RegisterResponse{
		Reference: rec.Reference,
		Status:    rec.Status.String(),
		Queued:    queued,
		Message:   message,
	})
}
