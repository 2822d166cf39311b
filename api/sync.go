package api

import (
	"encoding/json"
	"net/http"
	"time"
)

type SyncStatusResponse struct {
	PendingCount int        `json:"pendingCount"`
	LastUpdate   *time.Time `json:"lastUpdate,omitempty"`
}

func (a *API) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := a.store.LoadSnapshot(r.Context())
	if err != nil {
		a.logger.Error("Failed to load sync snapshot", "error", err)

		a.writeError(w, http.StatusInternalServerError, Error{
			Code:    InternalError,
			Message: "An error occurred. Please try again.",
		})
		return
	}

	resp := SyncStatusResponse{PendingCount: snap.PendingCount}
	if !snap.LastUpdate.IsZero() {
		resp.LastUpdate = &snap.LastUpdate
	}

	a.writeJSON(w, http.StatusOK, resp)
}

type ResolveRequest struct {
	Email string `json:"email"`
}

// handleResolve is the manual reconciliation path for entries stuck with
// unknown outcomes: an operator who has confirmed the remote row marks the
// entry resolved by hand.
func (a *API) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		a.writeError(w, http.StatusBadRequest, Error{
			Code:    InputValidationError,
			Message: "Must specify an email",
		})
		return
	}

	resolved, err := a.store.MarkSynced(r.Context(), req.Email, a.now())
	if err != nil {
		a.logger.Error("Failed to mark entry resolved", "error", err, "email", req.Email)

		a.writeError(w, http.StatusInternalServerError, Error{
			Code:    InternalError,
			Message: "An error occurred. Please try again.",
		})
		return
	}
	if !resolved {
		a.writeError(w, http.StatusNotFound, Error{
			Code:    NotFound,
			Message: "No unsynced entry found for this email",
		})
		return
	}

	a.logger.Info("Pending entry manually resolved", "email", req.Email)
	a.writeJSON(w, http.StatusOK, map[string]bool{"resolved": true})
}
