// internal/service/lifecycle/orchestrator.go
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gongu-service/internal/domain/groupbuy"
	"gongu-service/internal/domain/order"
	"gongu-service/internal/metrics"
	"gongu-service/internal/service/inventory"
	"gongu-service/internal/service/statistics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const closeReasonDepleted = "stock depleted"

// batchConcurrency bounds how many campaigns of one signal are re-checked
// in parallel.
const batchConcurrency = 4

type signalKind string

const (
	kindOrderCompleted signalKind = "order_completed"
	kindStockDepleted  signalKind = "stock_depleted"
)

type signal struct {
	kind        signalKind
	campaignIDs []int64
}

// ClosedPublisher delivers the CampaignClosed notification to one outbound
// channel (Kafka topic, dashboard push, ...).
type ClosedPublisher interface {
	PublishCampaignClosed(ctx context.Context, event *groupbuy.CampaignClosed) error
}

// Orchestrator reacts to order-completed and stock-depleted signals: it
// re-checks the touched campaigns and force-closes the ones exhausted of
// stock, then settles prices and statistics. It runs on its own worker
// pool so a burst of depletion checks never competes with request handling.
type Orchestrator struct {
	campaignRepo groupbuy.CampaignRepository
	inventory    *inventory.InventoryService
	finalizer    *statistics.Finalizer
	publishers   []ClosedPublisher
	logger       *zap.Logger

	queue   chan signal
	workers int
}

func NewOrchestrator(
	campaignRepo groupbuy.CampaignRepository,
	inventorySvc *inventory.InventoryService,
	finalizer *statistics.Finalizer,
	publishers []ClosedPublisher,
	workers int,
	queueSize int,
	logger *zap.Logger,
) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 64
	}
	return &Orchestrator{
		campaignRepo: campaignRepo,
		inventory:    inventorySvc,
		finalizer:    finalizer,
		publishers:   publishers,
		logger:       logger,
		queue:        make(chan signal, queueSize),
		workers:      workers,
	}
}

// Start launches the worker pool and blocks until ctx is cancelled and the
// queue has drained in-flight signals.
func (o *Orchestrator) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < o.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case sig := <-o.queue:
					o.processSignal(ctx, sig)
				}
			}
		})
	}
	o.logger.Info("lifecycle worker pool started", zap.Int("workers", o.workers))

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// HandleOrderCompleted enqueues the campaigns touched by a committed order.
func (o *Orchestrator) HandleOrderCompleted(ctx context.Context, sig *order.CompletedSignal) error {
	return o.enqueue(ctx, signal{kind: kindOrderCompleted, campaignIDs: sig.CampaignIDs()})
}

// HandleStockDepleted enqueues campaigns some producer flagged as exhausted.
func (o *Orchestrator) HandleStockDepleted(ctx context.Context, sig *order.StockDepletedSignal) error {
	return o.enqueue(ctx, signal{kind: kindStockDepleted, campaignIDs: sig.CampaignIDs})
}

func (o *Orchestrator) enqueue(ctx context.Context, sig signal) error {
	if len(sig.campaignIDs) == 0 {
		return nil
	}
	select {
	case o.queue <- sig:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// processSignal fans out over the signal's campaigns. Each campaign is
// processed independently: one failure is logged with its id and never
// aborts the rest of the batch.
func (o *Orchestrator) processSignal(ctx context.Context, sig signal) {
	metrics.SignalsConsumedTotal.WithLabelValues(string(sig.kind)).Inc()

	g := new(errgroup.Group)
	g.SetLimit(batchConcurrency)
	for _, id := range sig.campaignIDs {
		id := id
		g.Go(func() error {
			if err := o.checkAndClose(ctx, id); err != nil {
				o.logger.Error("depletion check failed",
					zap.Int64("campaign_id", id),
					zap.String("signal", string(sig.kind)),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	g.Wait()
}

// checkAndClose re-verifies depletion and, if confirmed, runs the close
// sequence in its fixed order: status first, then sale price, then
// statistics, then the outbound notification. Status being the first write
// means no observer can see settled prices on a campaign still reading OPEN.
func (o *Orchestrator) checkAndClose(ctx context.Context, campaignID int64) error {
	depleted, err := o.inventory.IsDepleted(ctx, campaignID)
	if err != nil {
		return err
	}
	if !depleted {
		return nil
	}

	c, err := o.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		return err
	}

	now := time.Now()
	changed, err := c.Close(now)
	if err != nil {
		return err
	}
	if !changed {
		// Duplicate signal for a campaign already closed; by contract a
		// no-op success.
		o.logger.Debug("campaign already closed", zap.Int64("campaign_id", campaignID))
		return nil
	}

	won, err := o.campaignRepo.UpdateStatus(ctx, c.ID, groupbuy.StatusOpen, groupbuy.StatusClosed)
	if err != nil {
		return err
	}
	if !won {
		// Another worker or the schedule expiry closed it between our read
		// and write; that writer owns the settlement.
		o.logger.Info("campaign closed concurrently elsewhere", zap.Int64("campaign_id", campaignID))
		return nil
	}

	change := &groupbuy.StatusChange{
		CampaignID: c.ID,
		FromStatus: groupbuy.StatusOpen,
		ToStatus:   groupbuy.StatusClosed,
		Reason:     closeReasonDepleted,
		ChangedAt:  now,
	}
	if err := o.campaignRepo.RecordStatusChange(ctx, change); err != nil {
		o.logger.Warn("failed to record status change",
			zap.Int64("campaign_id", c.ID), zap.Error(err))
	}

	settledQuantity, rate, err := o.inventory.FinalizeSalePrice(ctx, c)
	if err != nil {
		return fmt.Errorf("campaign closed but price settlement failed: %w", err)
	}

	stats, err := o.finalizer.Finalize(ctx, c, settledQuantity, rate)
	if err != nil {
		return fmt.Errorf("campaign closed but statistics settlement failed: %w", err)
	}

	metrics.CampaignsClosedTotal.WithLabelValues("stock_depleted").Inc()
	o.logger.Info("campaign force-closed on depletion",
		zap.Int64("campaign_id", c.ID),
		zap.Int("final_discount_rate", rate),
		zap.String("final_status", string(stats.FinalStatus)),
	)

	o.publishClosed(ctx, c, stats)
	return nil
}

func (o *Orchestrator) publishClosed(ctx context.Context, c *groupbuy.Campaign, stats *groupbuy.Statistics) {
	event := &groupbuy.CampaignClosed{
		EventID:           uuid.NewString(),
		CampaignID:        c.ID,
		SellerID:          c.SellerID,
		Reason:            closeReasonDepleted,
		FinalDiscountRate: stats.FinalDiscountRate,
		FinalStatus:       stats.FinalStatus,
		ClosedAt:          stats.ConfirmedAt,
	}
	for _, p := range o.publishers {
		if err := p.PublishCampaignClosed(ctx, event); err != nil {
			o.logger.Error("failed to publish campaign closed event",
				zap.Int64("campaign_id", c.ID), zap.Error(err))
		}
	}
}
