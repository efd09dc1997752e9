// internal/repository/postgres/option_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gongu-service/internal/domain/groupbuy"
	xerrors "gongu-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OptionRepository struct {
	db *pgxpool.Pool
}

func NewOptionRepository(pool *pgxpool.Pool) *OptionRepository {
	return &OptionRepository{db: pool}
}

// FindByID reads the option together with its version token.
func (r *OptionRepository) FindByID(ctx context.Context, id int64) (*groupbuy.Option, error) {
	var o groupbuy.Option
	err := r.db.QueryRow(ctx, `
		SELECT id, campaign_id, product_option_id, name,
		       initial_stock, stock, base_price, sale_price, version,
		       created_at, updated_at
		FROM campaign_options
		WHERE id = $1
	`, id).Scan(
		&o.ID, &o.CampaignID, &o.ProductOptionID, &o.Name,
		&o.InitialStock, &o.Stock, &o.BasePrice, &o.SalePrice, &o.Version,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find option: %w", err)
	}
	return &o, nil
}

func (r *OptionRepository) ListByCampaign(ctx context.Context, campaignID int64) ([]*groupbuy.Option, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, campaign_id, product_option_id, name,
		       initial_stock, stock, base_price, sale_price, version,
		       created_at, updated_at
		FROM campaign_options
		WHERE campaign_id = $1
		ORDER BY id
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	defer rows.Close()

	var options []*groupbuy.Option
	for rows.Next() {
		var o groupbuy.Option
		err := rows.Scan(
			&o.ID, &o.CampaignID, &o.ProductOptionID, &o.Name,
			&o.InitialStock, &o.Stock, &o.BasePrice, &o.SalePrice, &o.Version,
			&o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, &o)
	}
	return options, rows.Err()
}

// CompareAndSetStock is the conditional write behind every stock mutation:
// it lands only if the stored version still matches the one the caller read.
// RowsAffected == 0 is a lost race, not an error.
func (r *OptionRepository) CompareAndSetStock(ctx context.Context, id int64, newStock int, version int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE campaign_options
		SET stock = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND version = $3
	`, newStock, id, version)
	if err != nil {
		return false, fmt.Errorf("failed to write stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CountWithStock returns how many options of the campaign still have stock.
func (r *OptionRepository) CountWithStock(ctx context.Context, campaignID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM campaign_options
		WHERE campaign_id = $1 AND stock > 0
	`, campaignID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count options with stock: %w", err)
	}
	return n, nil
}

// ApplyFinalDiscount writes the settled sale price onto every option of the
// campaign. Integer division floors, matching the settlement rule.
func (r *OptionRepository) ApplyFinalDiscount(ctx context.Context, campaignID int64, rate int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE campaign_options
		SET sale_price = base_price * (100 - $1) / 100, updated_at = now()
		WHERE campaign_id = $2
	`, rate, campaignID)
	if err != nil {
		return fmt.Errorf("failed to apply final discount: %w", err)
	}
	return nil
}
