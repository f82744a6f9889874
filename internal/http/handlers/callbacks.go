package handlers

import (
	"context"
	"io"
	"net/http"

	"server/internal/callback"
)

// Callback handlers acknowledge with 200 whenever the delivery itself was
// acceptable; the delivery layer's retry logic keys off the relayed provider
// status inside the body plus the separate failure callback URL, not off our
// response code. Only unauthenticated or malformed deliveries are rejected.

func (a *App) CallbackSuccess(w http.ResponseWriter, r *http.Request) {
	a.handleCallback(w, r, a.Correlator.ApplySuccess)
}

func (a *App) CallbackFailure(w http.ResponseWriter, r *http.Request) {
	a.handleCallback(w, r, a.Correlator.ApplyFailure)
}

func (a *App) handleCallback(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, jobID, userID string, p *callback.Payload) error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable body")
		return
	}
	if !callback.Verify(a.CallbackSecret, body, r.Header.Get(callback.HeaderSignature)) {
		a.Logger.Warn().Str("path", r.URL.Path).Msg("callback signature rejected")
		a.error(w, http.StatusUnauthorized, "bad_signature", "signature verification failed")
		return
	}
	jobID := r.URL.Query().Get("job_id")
	userID := r.URL.Query().Get("user_id")
	if jobID == "" || userID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id and user_id are required")
		return
	}
	payload, err := callback.DecodePayload(body)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "malformed payload")
		return
	}
	if err := apply(r.Context(), jobID, userID, payload); err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("callback processing failed")
		a.error(w, http.StatusInternalServerError, "internal", "callback processing failed")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "received"})
}
