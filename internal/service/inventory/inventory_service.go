// internal/service/inventory/inventory_service.go
package inventory

import (
	"context"
	"fmt"

	"gongu-service/internal/domain/groupbuy"
	"gongu-service/internal/domain/order"
	"gongu-service/internal/metrics"

	"go.uber.org/zap"
)

// maxCASRetries bounds the read-decide-write cycle under contention. A
// transient spike must not turn into an unbounded busy-loop; past the bound
// the caller sees ErrConcurrentModification and decides for itself.
const maxCASRetries = 3

// InventoryService owns every mutation of option stock. Nothing else in the
// system writes stock or version.
type InventoryService struct {
	optionRepo groupbuy.OptionRepository
	orders     order.SettlementReader
	logger     *zap.Logger
}

func NewInventoryService(optionRepo groupbuy.OptionRepository, orders order.SettlementReader, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		optionRepo: optionRepo,
		orders:     orders,
		logger:     logger,
	}
}

// Reserve decrements stock for a checkout. Each attempt re-reads the option
// with its version and writes conditionally; on a lost race it retries up
// to maxCASRetries before surfacing ErrConcurrentModification.
func (s *InventoryService) Reserve(ctx context.Context, optionID int64, quantity int) (*groupbuy.Option, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", groupbuy.ErrInsufficientStock)
	}

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		o, err := s.optionRepo.FindByID(ctx, optionID)
		if err != nil {
			metrics.ReservationsTotal.WithLabelValues("error").Inc()
			return nil, err
		}

		if o.Stock < quantity {
			metrics.ReservationsTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, fmt.Errorf("%w: have %d, want %d", groupbuy.ErrInsufficientStock, o.Stock, quantity)
		}

		ok, err := s.optionRepo.CompareAndSetStock(ctx, o.ID, o.Stock-quantity, o.Version)
		if err != nil {
			metrics.ReservationsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		if ok {
			o.Stock -= quantity
			o.Version++
			metrics.ReservationsTotal.WithLabelValues("reserved").Inc()
			s.logger.Info("stock reserved",
				zap.Int64("option_id", o.ID),
				zap.Int("quantity", quantity),
				zap.Int("remaining", o.Stock),
			)
			return o, nil
		}

		metrics.CASConflictsTotal.Inc()
		s.logger.Debug("stock reservation lost version race",
			zap.Int64("option_id", optionID),
			zap.Int("attempt", attempt+1),
		)
	}

	metrics.ReservationsTotal.WithLabelValues("conflict").Inc()
	return nil, fmt.Errorf("%w: option %d", groupbuy.ErrConcurrentModification, optionID)
}

// Restore returns stock on refund or cancellation, capped at the initial
// snapshot. Exceeding it means bookkeeping upstream went wrong and is
// surfaced, not clamped.
func (s *InventoryService) Restore(ctx context.Context, optionID int64, quantity int) (*groupbuy.Option, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", groupbuy.ErrStockOverflow)
	}

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		o, err := s.optionRepo.FindByID(ctx, optionID)
		if err != nil {
			return nil, err
		}

		if o.Stock+quantity > o.InitialStock {
			return nil, fmt.Errorf("%w: %d + %d exceeds initial %d",
				groupbuy.ErrStockOverflow, o.Stock, quantity, o.InitialStock)
		}

		ok, err := s.optionRepo.CompareAndSetStock(ctx, o.ID, o.Stock+quantity, o.Version)
		if err != nil {
			return nil, err
		}
		if ok {
			o.Stock += quantity
			o.Version++
			s.logger.Info("stock restored",
				zap.Int64("option_id", o.ID),
				zap.Int("quantity", quantity),
				zap.Int("remaining", o.Stock),
			)
			return o, nil
		}

		metrics.CASConflictsTotal.Inc()
	}

	return nil, fmt.Errorf("%w: option %d", groupbuy.ErrConcurrentModification, optionID)
}

// IsDepleted reports whether every option of the campaign is out of stock.
func (s *InventoryService) IsDepleted(ctx context.Context, campaignID int64) (bool, error) {
	n, err := s.optionRepo.CountWithStock(ctx, campaignID)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// FinalizeSalePrice resolves the ladder against the settled quantity and
// writes the resulting sale price onto every option of the campaign.
// Returns the settled quantity and the earned rate for the statistics step.
func (s *InventoryService) FinalizeSalePrice(ctx context.Context, c *groupbuy.Campaign) (settledQuantity, rate int, err error) {
	settledQuantity, err = s.orders.SettledQuantity(ctx, c.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read settled quantity: %w", err)
	}

	rate = groupbuy.ResolveDiscountRate(c.Tiers, settledQuantity)

	if err := s.optionRepo.ApplyFinalDiscount(ctx, c.ID, rate); err != nil {
		return 0, 0, err
	}

	s.logger.Info("sale price finalized",
		zap.Int64("campaign_id", c.ID),
		zap.Int("settled_quantity", settledQuantity),
		zap.Int("final_discount_rate", rate),
	)
	return settledQuantity, rate, nil
}
