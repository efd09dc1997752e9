// internal/repository/postgres/order_item_repo.go
package postgres

import (
	"context"
	"fmt"

	"gongu-service/internal/domain/order"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderItemRepository reads the order_items table the Order collaborator
// owns. This core never writes to it.
type OrderItemRepository struct {
	db *pgxpool.Pool
}

func NewOrderItemRepository(pool *pgxpool.Pool) *OrderItemRepository {
	return &OrderItemRepository{db: pool}
}

// SettledQuantity sums the quantity across settled items of the campaign.
func (r *OrderItemRepository) SettledQuantity(ctx context.Context, campaignID int64) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM order_items
		WHERE campaign_id = $1 AND status = $2
	`, campaignID, order.ItemStatusSettled).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum settled quantity: %w", err)
	}
	return total, nil
}

// DistinctBuyers counts buyers with at least one settled item in the
// campaign.
func (r *OrderItemRepository) DistinctBuyers(ctx context.Context, campaignID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT buyer_id)
		FROM order_items
		WHERE campaign_id = $1 AND status = $2
	`, campaignID, order.ItemStatusSettled).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct buyers: %w", err)
	}
	return n, nil
}
