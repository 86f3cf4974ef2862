package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/illusio-designs/goldline-backend/internal/orders"
	"github.com/illusio-designs/goldline-backend/internal/realtime"
)

type CartHandler struct {
	Repo     *orders.CartRepo
	Realtime *realtime.Publisher
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Post("/api/cart", h.add)
	r.Get("/api/users/{userId}/cart", h.userCart)
	r.Patch("/api/cart/{id}", h.updateQuantity)
	r.Delete("/api/users/{userId}/cart", h.clear)
	r.Delete("/api/cart/{id}", h.remove)
}

type addCartReq struct {
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req addCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID <= 0 || req.ProductID <= 0 || req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id, err := h.Repo.Add(ctx, req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	item, err := h.Repo.GetItem(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	realtime.Emit(func() error { return h.Realtime.EmitToUser(ctx, req.UserID, "cart-item-added", item) })

	writeJSON(w, http.StatusCreated, item)
}

func (h *CartHandler) userCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Repo.GetUserCart(ctx, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type updateQuantityReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateQuantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Repo.UpdateQuantity(ctx, id, req.Quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	item, err := h.Repo.GetItem(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// Fetch first: the user room for the emit is on the row.
	item, err := h.Repo.GetItem(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Repo.Remove(ctx, id); err != nil {
		writeDomainError(w, err)
		return
	}

	realtime.Emit(func() error { return h.Realtime.EmitToUser(ctx, item.UserID, "cart-item-removed", item) })

	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Repo.Clear(ctx, userID); err != nil {
		writeDomainError(w, err)
		return
	}

	realtime.Emit(func() error {
		return h.Realtime.EmitToUser(ctx, userID, "cart-cleared", map[string]int64{"userId": userID})
	})

	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}
