// internal/repository/postgres/campaign_repo.go
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

type CampaignRepository struct {
	db   *pgxpool.Pool
	txdb *DB
}

func NewCampaignRepository(pool *pgxpool.Pool, txdb *DB) *CampaignRepository {
	return &CampaignRepository{db: pool, txdb: txdb}
}

// Create persists the campaign with its tiers, options and images in one
// transaction and fills in the generated ids.
func (r *CampaignRepository) Create(ctx context.Context, c *groupbuy.Campaign) error {
	return r.txdb.WithinTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO campaigns (
				code, seller_id, product_id, title, description, thumbnail_url,
				limit_per_buyer, status, start_at, ends_at, display_final_price
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRow(
			ctx, query,
			c.Code, c.SellerID, c.ProductID, c.Title, c.Description, c.ThumbnailURL,
			c.LimitPerBuyer, c.Status, c.StartAt, c.EndsAt, c.DisplayFinalPrice,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create campaign: %w", err)
		}

		for i := range c.Tiers {
			_, err := tx.Exec(ctx, `
				INSERT INTO campaign_tiers (campaign_id, tier_index, min_quantity, discount_rate)
				VALUES ($1, $2, $3, $4)
			`, c.ID, i, c.Tiers[i].MinQuantity, c.Tiers[i].DiscountRate)
			if err != nil {
				return fmt.Errorf("failed to create campaign tier: %w", err)
			}
		}

		for i := range c.Options {
			o := &c.Options[i]
			o.CampaignID = c.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO campaign_options (
					campaign_id, product_option_id, name,
					initial_stock, stock, base_price, sale_price, version
				) VALUES ($1, $2, $3, $4, $5, $6, $7, 0)
				RETURNING id, created_at, updated_at
			`, c.ID, o.ProductOptionID, o.Name, o.InitialStock, o.Stock, o.BasePrice, o.SalePrice,
			).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to create campaign option: %w", err)
			}
		}

		for i := range c.Images {
			img := &c.Images[i]
			img.CampaignID = c.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO campaign_images (campaign_id, url, sort_order)
				VALUES ($1, $2, $3)
				RETURNING id
			`, c.ID, img.URL, img.SortOrder).Scan(&img.ID)
			if err != nil {
				return fmt.Errorf("failed to create campaign image: %w", err)
			}
		}

		return nil
	})
}

// FindByID loads the campaign together with its tiers and options.
func (r *CampaignRepository) FindByID(ctx context.Context, id int64) (*groupbuy.Campaign, error) {
	query := `
		SELECT id, code, seller_id, product_id, title, description, thumbnail_url,
		       limit_per_buyer, status, start_at, ends_at, display_final_price,
		       created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`

	var c groupbuy.Campaign
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Code, &c.SellerID, &c.ProductID, &c.Title, &c.Description, &c.ThumbnailURL,
		&c.LimitPerBuyer, &c.Status, &c.StartAt, &c.EndsAt, &c.DisplayFinalPrice,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find campaign: %w", err)
	}

	if c.Tiers, err = r.loadTiers(ctx, id); err != nil {
		return nil, err
	}
	if c.Options, err = r.loadOptions(ctx, id); err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *CampaignRepository) loadTiers(ctx context.Context, campaignID int64) ([]groupbuy.DiscountTier, error) {
	rows, err := r.db.Query(ctx, `
		SELECT min_quantity, discount_rate
		FROM campaign_tiers
		WHERE campaign_id = $1
		ORDER BY tier_index
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiers: %w", err)
	}
	defer rows.Close()

	var tiers []groupbuy.DiscountTier
	for rows.Next() {
		var t groupbuy.DiscountTier
		if err := rows.Scan(&t.MinQuantity, &t.DiscountRate); err != nil {
			return nil, fmt.Errorf("failed to scan tier: %w", err)
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

func (r *CampaignRepository) loadOptions(ctx context.Context, campaignID int64) ([]groupbuy.Option, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, campaign_id, product_option_id, name,
		       initial_stock, stock, base_price, sale_price, version,
		       created_at, updated_at
		FROM campaign_options
		WHERE campaign_id = $1
		ORDER BY id
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load options: %w", err)
	}
	defer rows.Close()

	var options []groupbuy.Option
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
		options = append(options, o)
	}
	return options, rows.Err()
}

// FindBySeller lists a seller's campaigns, newest first, without options.
func (r *CampaignRepository) FindBySeller(ctx context.Context, sellerID int64) ([]*groupbuy.Campaign, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, code, seller_id, product_id, title, description, thumbnail_url,
		       limit_per_buyer, status, start_at, ends_at, display_final_price,
		       created_at, updated_at
		FROM campaigns
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*groupbuy.Campaign
	for rows.Next() {
		var c groupbuy.Campaign
		err := rows.Scan(
			&c.ID, &c.Code, &c.SellerID, &c.ProductID, &c.Title, &c.Description, &c.ThumbnailURL,
			&c.LimitPerBuyer, &c.Status, &c.StartAt, &c.EndsAt, &c.DisplayFinalPrice,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, &c)
	}
	return campaigns, rows.Err()
}

// ExistsActiveForProduct reports whether the product already has a
// non-CLOSED campaign.
func (r *CampaignRepository) ExistsActiveForProduct(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM campaigns
			WHERE product_id = $1 AND status <> $2
		)
	`, productID, groupbuy.StatusClosed).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active campaign: %w", err)
	}
	return exists, nil
}

// UpdateStatus performs the transition conditioned on the stored status
// still matching from. Zero rows affected means another writer transitioned
// the campaign first.
func (r *CampaignRepository) UpdateStatus(ctx context.Context, id int64, from, to groupbuy.CampaignStatus) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE campaigns
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update campaign status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateDisplayPrice refreshes the denormalized listing price.
func (r *CampaignRepository) UpdateDisplayPrice(ctx context.Context, id int64, price int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE campaigns SET display_final_price = $1, updated_at = now() WHERE id = $2
	`, price, id)
	if err != nil {
		return fmt.Errorf("failed to update display price: %w", err)
	}
	return nil
}

// RecordStatusChange appends one row of transition history.
func (r *CampaignRepository) RecordStatusChange(ctx context.Context, change *groupbuy.StatusChange) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO campaign_status_history (campaign_id, from_status, to_status, reason, changed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, change.CampaignID, change.FromStatus, change.ToStatus, change.Reason, change.ChangedAt,
	).Scan(&change.ID)
	if err != nil {
		return fmt.Errorf("failed to record status change: %w", err)
	}
	return nil
}
