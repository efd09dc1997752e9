// internal/handlers/inventory/inventory_handler.go
package inventory

import (
	"errors"
	"net/http"

	"gongu-service/internal/domain/groupbuy"
	xerrors "gongu-service/internal/pkg/errors"
	"gongu-service/internal/pkg/response"
	service "gongu-service/internal/service/inventory"

	"github.com/gin-gonic/gin"
)

// InventoryHandler exposes reserve/restore to the Order collaborator. These
// routes live on the internal surface; the Order service is trusted, buyers
// never reach them directly.
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// ReserveStock decrements option stock during checkout.
func (h *InventoryHandler) ReserveStock(c *gin.Context) {
	var req groupbuy.ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	o, err := h.inventoryService.Reserve(c.Request.Context(), req.OptionID, req.Quantity)
	if err != nil {
		response.Error(c, statusForInventoryError(err), "failed to reserve stock", err)
		return
	}

	response.Success(c, http.StatusOK, "stock reserved", groupbuy.ReserveStockResponse{
		OptionID:  o.ID,
		Remaining: o.Stock,
	})
}

// RestoreStock returns stock after a cancellation or refund.
func (h *InventoryHandler) RestoreStock(c *gin.Context) {
	var req groupbuy.RestoreStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	o, err := h.inventoryService.Restore(c.Request.Context(), req.OptionID, req.Quantity)
	if err != nil {
		response.Error(c, statusForInventoryError(err), "failed to restore stock", err)
		return
	}

	response.Success(c, http.StatusOK, "stock restored", groupbuy.ReserveStockResponse{
		OptionID:  o.ID,
		Remaining: o.Stock,
	})
}

func statusForInventoryError(err error) int {
	switch {
	case errors.Is(err, groupbuy.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, groupbuy.ErrConcurrentModification):
		// The Order service retries the whole checkout step on 409s.
		return http.StatusConflict
	case errors.Is(err, groupbuy.ErrStockOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
