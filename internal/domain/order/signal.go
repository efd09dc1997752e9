// internal/domain/order/signal.go
package order

import (
	"context"
	"time"
)

// CompletedItem identifies one purchased option inside an order-completed
// signal.
type CompletedItem struct {
	CampaignID int64 `json:"campaign_id"`
	OptionID   int64 `json:"option_id"`
}

// CompletedSignal is published by the Order collaborator after a purchase
// commits. Fire-and-forget; the producer does not deduplicate, consumers
// must tolerate replays.
type CompletedSignal struct {
	EventID    string          `json:"event_id"`
	Items      []CompletedItem `json:"items"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// CampaignIDs returns the distinct campaigns touched by the order.
func (s *CompletedSignal) CampaignIDs() []int64 {
	seen := make(map[int64]struct{}, len(s.Items))
	out := make([]int64, 0, len(s.Items))
	for _, it := range s.Items {
		if _, ok := seen[it.CampaignID]; ok {
			continue
		}
		seen[it.CampaignID] = struct{}{}
		out = append(out, it.CampaignID)
	}
	return out
}

// StockDepletedSignal carries campaigns some producer believes are out of
// stock, e.g. a batch auditor. The ids are a hint, not a fact; the
// orchestrator re-checks before closing anything.
type StockDepletedSignal struct {
	EventID     string    `json:"event_id"`
	CampaignIDs []int64   `json:"campaign_ids"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// SettlementReader exposes the settled-order aggregates the close path
// needs. Implemented by the postgres layer over the collaborator-owned
// order_items table.
type SettlementReader interface {
	// SettledQuantity sums settled (non-cancelled, paid) quantity for the
	// campaign.
	SettledQuantity(ctx context.Context, campaignID int64) (int, error)

	// DistinctBuyers counts distinct buyers with at least one settled item
	// in the campaign.
	DistinctBuyers(ctx context.Context, campaignID int64) (int, error)
}
