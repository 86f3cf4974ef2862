package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/illusio-designs/goldline-backend/internal/catalog"
	"github.com/illusio-designs/goldline-backend/internal/orders"
	"github.com/illusio-designs/goldline-backend/internal/users"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainError maps domain errors onto the HTTP surface. Approval
// failures carry the blocked orders so the admin UI can show which
// lines stopped the batch.
func writeDomainError(w http.ResponseWriter, err error) {
	var blocked *orders.BusinessNotApprovedError
	if errors.As(err, &blocked) {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error":           blocked.Error(),
			"code":            "BUSINESS_NOT_APPROVED",
			"blockedOrders":   blocked.Blocked,
			"allowedStatuses": blocked.AllowedStatuses(),
		})
		return
	}
	switch {
	case errors.Is(err, orders.ErrProductUnavailable),
		errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, orders.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, orders.ErrCartItemNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, users.ErrUserNotFound),
		errors.Is(err, users.ErrLoginRequestNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
