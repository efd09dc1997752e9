// internal/service/statistics/finalizer.go
package statistics

import (
	"context"
	"fmt"
	"time"

	"gongu-service/internal/domain/groupbuy"
	"gongu-service/internal/domain/order"

	"go.uber.org/zap"
)

// Finalizer writes the one-shot settlement snapshot when a campaign closes.
type Finalizer struct {
	statsRepo groupbuy.StatisticsRepository
	orders    order.SettlementReader
	logger    *zap.Logger
}

func NewFinalizer(statsRepo groupbuy.StatisticsRepository, orders order.SettlementReader, logger *zap.Logger) *Finalizer {
	return &Finalizer{
		statsRepo: statsRepo,
		orders:    orders,
		logger:    logger,
	}
}

// Finalize aggregates the final participant/quantity numbers and persists
// one immutable statistics row. The campaign settles as SUCCESS only if the
// settled quantity reached the lowest tier of its ladder. A second call for
// the same campaign fails with ErrStatisticsAlreadyFinalized.
func (f *Finalizer) Finalize(ctx context.Context, c *groupbuy.Campaign, settledQuantity, finalRate int) (*groupbuy.Statistics, error) {
	participants, err := f.orders.DistinctBuyers(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	finalStatus := groupbuy.FinalFailure
	if settledQuantity >= groupbuy.LowestTierQuantity(c.Tiers) {
		finalStatus = groupbuy.FinalSuccess
	}

	stats := &groupbuy.Statistics{
		CampaignID:        c.ID,
		TotalParticipants: participants,
		TotalQuantity:     settledQuantity,
		FinalDiscountRate: finalRate,
		FinalStatus:       finalStatus,
		ConfirmedAt:       time.Now(),
	}

	if err := f.statsRepo.Create(ctx, stats); err != nil {
		return nil, err
	}

	f.logger.Info("campaign statistics finalized",
		zap.Int64("campaign_id", c.ID),
		zap.Int("total_participants", participants),
		zap.Int("total_quantity", settledQuantity),
		zap.Int("final_discount_rate", finalRate),
		zap.String("final_status", string(finalStatus)),
	)

	return stats, nil
}
