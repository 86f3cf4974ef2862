package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	kafkax "github.com/illusio-designs/goldline-backend/internal/kafka"
	"github.com/illusio-designs/goldline-backend/internal/orders"
	"github.com/illusio-designs/goldline-backend/internal/realtime"
	"github.com/illusio-designs/goldline-backend/internal/users"
)

type OrdersHandler struct {
	Svc      *orders.Service
	Repo     *orders.Repo
	Users    *users.Repo
	Producer *kafkax.Producer
	Realtime *realtime.Publisher
	Service  string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/api/orders", h.create)
	r.Post("/api/orders/from-cart", h.createFromCart)
	r.Get("/api/orders", h.list)
	r.Get("/api/orders/stats", h.stats)
	r.Get("/api/users/{userId}/orders", h.listByUser)
	r.Get("/api/orders/{id}", h.get)
	r.Patch("/api/orders/{id}/status", h.updateStatus)
	r.Patch("/api/orders/bulk-status", h.bulkUpdateStatus)
	r.Delete("/api/orders/{id}", h.delete)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

type createOrderReq struct {
	UserID         int64           `json:"userId"`
	ProductID      int64           `json:"productId"`
	Quantity       int             `json:"quantity"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Remark         *string         `json:"remark"`
	CourierCompany *string         `json:"courierCompany"`
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID <= 0 || req.ProductID <= 0 || req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.Create(ctx, orders.CreateInput{
		UserID:         req.UserID,
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		TotalAmount:    req.TotalAmount,
		Remark:         req.Remark,
		CourierCompany: req.CourierCompany,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	publishEvent(h.Producer, h.Service, orders.EventOrderCreated, r.Header.Get("X-Request-Id"),
		orders.PartitionKey(o.UserID), orders.OrderCreatedPayload{
			OrderID:     o.ID,
			UserID:      o.UserID,
			UserName:    o.UserName,
			ProductID:   o.ProductID,
			ProductName: o.ProductName,
			ProductSKU:  o.ProductSKU,
			Quantity:    o.Quantity,
			TotalAmount: o.TotalAmount.String(),
			Status:      o.Status,
		})

	realtime.Emit(func() error { return h.Realtime.EmitToAdmin(ctx, "new-order", o) })
	realtime.Emit(func() error { return h.Realtime.EmitToUser(ctx, o.UserID, "order-created", o) })

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Order created",
		"orderId": o.ID,
		"order":   o,
	})
}

type createFromCartReq struct {
	UserID         int64   `json:"userId"`
	Remark         *string `json:"remark"`
	CourierCompany *string `json:"courierCompany"`
}

func (h *OrdersHandler) createFromCart(w http.ResponseWriter, r *http.Request) {
	var req createFromCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	res, err := h.Svc.CreateFromCart(ctx, req.UserID, req.Remark, req.CourierCompany)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var userName string
	if u, err := h.Users.GetByID(ctx, req.UserID); err == nil {
		userName = u.Name
	}
	publishEvent(h.Producer, h.Service, orders.EventOrdersCreatedFromCart, r.Header.Get("X-Request-Id"),
		orders.PartitionKey(req.UserID), orders.OrdersCreatedFromCartPayload{
			UserID:          req.UserID,
			UserName:        userName,
			OrderIDs:        res.OrderIDs,
			SkippedProducts: res.SkippedProducts,
		})

	realtime.Emit(func() error { return h.Realtime.EmitToAdmin(ctx, "orders-created-from-cart", res) })
	realtime.Emit(func() error { return h.Realtime.EmitToUser(ctx, req.UserID, "orders-created-from-cart", res) })

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":         "Orders created from cart",
		"orderIds":        res.OrderIDs,
		"totalOrders":     len(res.OrderIDs),
		"skippedProducts": res.SkippedProducts,
	})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Repo.ListAll(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Repo.ListByUser(ctx, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type updateStatusReq struct {
	Status orders.Status `json:"status"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !orders.ValidStatus(req.Status) {
		writeDomainError(w, orders.ErrInvalidStatus)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var remark string
	if o.Remark != nil {
		remark = *o.Remark
	}
	publishEvent(h.Producer, h.Service, orders.EventOrderStatusUpdated, r.Header.Get("X-Request-Id"),
		orders.PartitionKey(o.UserID), orders.OrderStatusUpdatedPayload{
			OrderID:     o.ID,
			UserID:      o.UserID,
			Status:      o.Status,
			ProductName: o.ProductName,
			TotalAmount: o.TotalAmount.String(),
			Remark:      remark,
		})

	realtime.Emit(func() error { return h.Realtime.EmitToUser(ctx, o.UserID, "order-status-updated", o) })
	realtime.Emit(func() error { return h.Realtime.EmitToAdmin(ctx, "order-status-updated", o) })
	realtime.Emit(func() error { return h.Realtime.EmitToAll(ctx, "order-update", o) })

	writeJSON(w, http.StatusOK, o)
}

type bulkStatusReq struct {
	OrderIDs []int64       `json:"orderIds"`
	Status   orders.Status `json:"status"`
}

func (h *OrdersHandler) bulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.OrderIDs) == 0 {
		writeError(w, http.StatusBadRequest, "missing orderIds")
		return
	}
	if !orders.ValidStatus(req.Status) {
		writeDomainError(w, orders.ErrInvalidStatus)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	updated, err := h.Repo.BulkUpdateStatus(ctx, req.OrderIDs, req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	realtime.Emit(func() error {
		return h.Realtime.EmitToAdmin(ctx, "orders-status-updated", map[string]any{
			"orderIds": req.OrderIDs,
			"status":   req.Status,
		})
	})

	writeJSON(w, http.StatusOK, map[string]any{"updated": updated, "status": req.Status})
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Delete(ctx, id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *OrdersHandler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, err := h.Repo.Statistics(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
