package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/illusio-designs/goldline-backend/internal/notify"
)

type NotificationsHandler struct {
	Tokens        *notify.TokenRepo
	Notifications *notify.NotificationRepo
}

func (h *NotificationsHandler) Register(r *chi.Mux) {
	r.Post("/api/notifications/register-token", h.registerToken)
	r.Post("/api/notifications/register-token-unauth", h.registerTokenUnauth)
	r.Get("/api/notifications/stats/{userId}", h.stats)
}

type registerTokenReq struct {
	UserID   int64  `json:"userId"`
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func (h *NotificationsHandler) registerToken(w http.ResponseWriter, r *http.Request) {
	var req registerTokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID <= 0 || req.Token == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Tokens.Register(ctx, req.UserID, req.Token, req.Platform); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"registered": true})
}

// registerTokenUnauth stores a token before the device has a session.
// The row is claimed by the owning user on the next authenticated
// registration of the same token.
func (h *NotificationsHandler) registerTokenUnauth(w http.ResponseWriter, r *http.Request) {
	var req registerTokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Tokens.RegisterAnonymous(ctx, req.Token, req.Platform); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"registered": true})
}

func (h *NotificationsHandler) stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, err := h.Notifications.StatsByUser(ctx, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
