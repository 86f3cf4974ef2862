package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	kafkax "github.com/illusio-designs/goldline-backend/internal/kafka"
	"github.com/illusio-designs/goldline-backend/internal/orders"
	"github.com/illusio-designs/goldline-backend/internal/realtime"
	"github.com/illusio-designs/goldline-backend/internal/users"
)

type UsersHandler struct {
	Repo     *users.Repo
	Producer *kafkax.Producer
	Realtime *realtime.Publisher
	Service  string
}

func (h *UsersHandler) Register(r *chi.Mux) {
	r.Post("/api/users", h.register)
	r.Get("/api/users/{id}", h.get)
	r.Patch("/api/users/{id}/status", h.setStatus)
	r.Post("/api/login-requests", h.createLoginRequest)
	r.Get("/api/login-requests/{id}", h.getLoginRequest)
	r.Patch("/api/login-requests/{id}/status", h.decideLoginRequest)
}

type registerReq struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber"`
	BusinessName string `json:"businessName"`
}

func (h *UsersHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Repo.Register(ctx, users.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	publishEvent(h.Producer, h.Service, orders.EventUserRegistered, r.Header.Get("X-Request-Id"),
		orders.PartitionKey(u.ID), orders.UserRegisteredPayload{
			UserID:       u.ID,
			Name:         u.Name,
			Email:        u.Email,
			BusinessName: u.BusinessName,
			PhoneNumber:  u.PhoneNumber,
		})

	realtime.Emit(func() error { return h.Realtime.EmitToAdmin(ctx, "user-registered", u) })

	writeJSON(w, http.StatusCreated, u)
}

func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type setUserStatusReq struct {
	Status  string  `json:"status"`
	Remarks *string `json:"remarks"`
}

func (h *UsersHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req setUserStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !users.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid user status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Repo.SetStatus(ctx, id, req.Status, req.Remarks)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var remarks string
	if u.Remarks != nil {
		remarks = *u.Remarks
	}
	publishEvent(h.Producer, h.Service, orders.EventUserStatusChanged, r.Header.Get("X-Request-Id"),
		orders.PartitionKey(u.ID), orders.UserStatusChangedPayload{
			UserID:  u.ID,
			Name:    u.Name,
			Status:  u.Status,
			Remarks: remarks,
		})

	realtime.Emit(func() error { return h.Realtime.EmitToUser(ctx, u.ID, "account-status-updated", u) })

	writeJSON(w, http.StatusOK, u)
}

type createLoginRequestReq struct {
	UserID             int64 `json:"userId"`
	SessionTimeMinutes int   `json:"sessionTimeMinutes"`
}

func (h *UsersHandler) createLoginRequest(w http.ResponseWriter, r *http.Request) {
	var req createLoginRequestReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}
	if req.SessionTimeMinutes <= 0 {
		req.SessionTimeMinutes = 60
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	lr, err := h.Repo.CreateLoginRequest(ctx, req.UserID, req.SessionTimeMinutes)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	publishEvent(h.Producer, h.Service, orders.EventLoginRequested, r.Header.Get("X-Request-Id"),
		orders.PartitionKey(lr.UserID), orders.LoginRequestedPayload{
			RequestID:          lr.ID,
			UserID:             lr.UserID,
			UserName:           lr.UserName,
			SessionTimeMinutes: lr.SessionTimeMinutes,
		})

	realtime.Emit(func() error { return h.Realtime.EmitToAdmin(ctx, "login-requested", lr) })

	writeJSON(w, http.StatusCreated, lr)
}

func (h *UsersHandler) getLoginRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	lr, err := h.Repo.GetLoginRequest(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lr)
}

type decideLoginRequestReq struct {
	Status  string  `json:"status"`
	Remarks *string `json:"remarks"`
}

func (h *UsersHandler) decideLoginRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req decideLoginRequestReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Status != "approved" && req.Status != "rejected" {
		writeError(w, http.StatusBadRequest, "status must be approved or rejected")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	lr, err := h.Repo.DecideLoginRequest(ctx, id, req.Status, req.Remarks)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var remarks string
	if lr.Remarks != nil {
		remarks = *lr.Remarks
	}
	publishEvent(h.Producer, h.Service, orders.EventLoginRequestDecided, r.Header.Get("X-Request-Id"),
		orders.PartitionKey(lr.UserID), orders.LoginRequestDecidedPayload{
			RequestID:          lr.ID,
			UserID:             lr.UserID,
			UserName:           lr.UserName,
			Status:             lr.Status,
			Remarks:            remarks,
			SessionTimeMinutes: lr.SessionTimeMinutes,
		})

	realtime.Emit(func() error { return h.Realtime.EmitToUser(ctx, lr.UserID, "login-request-decided", lr) })

	writeJSON(w, http.StatusOK, lr)
}
