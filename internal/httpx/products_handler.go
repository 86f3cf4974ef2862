package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/illusio-designs/goldline-backend/internal/catalog"
	"github.com/illusio-designs/goldline-backend/internal/realtime"
)

type ProductsHandler struct {
	Repo     *catalog.Repo
	Realtime *realtime.Publisher
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/api/products", h.list)
	r.Post("/api/products", h.create)
	r.Get("/api/products/{id}", h.get)
	r.Get("/api/products/{id}/availability", h.availability)
	r.Get("/api/products/{id}/stock-history", h.stockHistory)
	r.Patch("/api/products/{id}/publish", h.publish)
	r.Patch("/api/products/{id}/stock-status", h.setStockStatus)
	r.Get("/api/categories", h.categories)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var f catalog.ListFilter
	if v := r.URL.Query().Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		f.CategoryID = id
	}
	// ?all=1 is the admin listing and includes drafts; ?available=1
	// narrows the storefront to orderable pieces only.
	f.IncludeDrafts = r.URL.Query().Get("all") == "1"
	f.OnlyAvailable = r.URL.Query().Get("available") == "1"

	ps, err := h.Repo.List(ctx, f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

type createProductReq struct {
	CategoryID  int64           `json:"categoryId"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	NetWeight   decimal.Decimal `json:"netWeight"`
	GrossWeight decimal.Decimal `json:"grossWeight"`
	MarkAmount  decimal.Decimal `json:"markAmount"`
	Pieces      int             `json:"pieces"`
	Purity      string          `json:"purity"`
	Image       *string         `json:"image"`
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CategoryID <= 0 || req.Name == "" || req.SKU == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Repo.Create(ctx, catalog.CreateProductInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		SKU:         req.SKU,
		NetWeight:   req.NetWeight,
		GrossWeight: req.GrossWeight,
		MarkAmount:  req.MarkAmount,
		Pieces:      req.Pieces,
		Purity:      req.Purity,
		Image:       req.Image,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// availability exposes the order gate so the storefront can disable
// the buy button without attempting an order.
func (h *ProductsHandler) availability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	available, err := h.Repo.IsAvailableForOrder(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

func (h *ProductsHandler) publish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Repo.Publish(ctx, id); err != nil {
		writeDomainError(w, err)
		return
	}
	p, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Going live is storefront-wide news.
	realtime.Emit(func() error { return h.Realtime.EmitToAll(ctx, "product-published", p) })

	writeJSON(w, http.StatusOK, p)
}

type setStockStatusReq struct {
	StockStatus string `json:"stockStatus"`
	UserID      *int64 `json:"userId"`
	Notes       string `json:"notes"`
}

var validStockStatuses = map[string]bool{
	catalog.StockAvailable:  true,
	catalog.StockOutOfStock: true,
	catalog.StockReserved:   true,
}

// setStockStatus is the manual override. It bypasses the reserve path,
// so it writes its own ledger entry with the previous status.
func (h *ProductsHandler) setStockStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req setStockStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !validStockStatuses[req.StockStatus] {
		writeError(w, http.StatusBadRequest, "invalid stock status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	prev, err := h.Repo.GetStockStatus(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Repo.SetStockStatus(ctx, id, req.StockStatus); err != nil {
		writeDomainError(w, err)
		return
	}

	action := catalog.ActionReleased
	if req.StockStatus == catalog.StockOutOfStock || req.StockStatus == catalog.StockReserved {
		action = catalog.ActionReserved
	}
	entry := catalog.StockHistoryEntry{
		ProductID:      id,
		Action:         action,
		UserID:         req.UserID,
		PreviousStatus: prev,
		NewStatus:      req.StockStatus,
		Notes:          req.Notes,
	}
	if err := h.Repo.RecordStockHistory(ctx, entry); err != nil {
		writeDomainError(w, err)
		return
	}

	p, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	realtime.Emit(func() error { return h.Realtime.EmitToAll(ctx, "stock-status-changed", p) })

	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) stockHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	entries, err := h.Repo.ListStockHistory(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *ProductsHandler) categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cats, err := h.Repo.ListCategories(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}
