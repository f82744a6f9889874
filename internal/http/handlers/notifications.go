package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Notifications opens the long-lived SSE channel for a recipient. The path
// id must match the authenticated caller; a user cannot subscribe to someone
// else's job events.
func (a *App) Notifications(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	recipient := chi.URLParam(r, "user_id")
	if recipient != userID {
		a.error(w, http.StatusForbidden, "forbidden", "cannot subscribe to another user's channel")
		return
	}
	a.SSE.Serve(w, r, recipient)
}
