// internal/repository/postgres/statistics_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gongu-service/internal/domain/groupbuy"
	xerrors "gongu-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StatisticsRepository struct {
	db *pgxpool.Pool
}

func NewStatisticsRepository(pool *pgxpool.Pool) *StatisticsRepository {
	return &StatisticsRepository{db: pool}
}

// Create inserts the settlement snapshot. campaign_statistics carries a
// unique index on campaign_id; a second insert surfaces
// ErrStatisticsAlreadyFinalized instead of overwriting the first snapshot.
func (r *StatisticsRepository) Create(ctx context.Context, s *groupbuy.Statistics) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO campaign_statistics (
			campaign_id, total_participants, total_quantity,
			final_discount_rate, final_status, confirmed_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, s.CampaignID, s.TotalParticipants, s.TotalQuantity,
		s.FinalDiscountRate, s.FinalStatus, s.ConfirmedAt,
	).Scan(&s.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return groupbuy.ErrStatisticsAlreadyFinalized
	}
	if err != nil {
		return fmt.Errorf("failed to create statistics: %w", err)
	}
	return nil
}

func (r *StatisticsRepository) FindByCampaign(ctx context.Context, campaignID int64) (*groupbuy.Statistics, error) {
	var s groupbuy.Statistics
	err := r.db.QueryRow(ctx, `
		SELECT id, campaign_id, total_participants, total_quantity,
		       final_discount_rate, final_status, confirmed_at
		FROM campaign_statistics
		WHERE campaign_id = $1
	`, campaignID).Scan(
		&s.ID, &s.CampaignID, &s.TotalParticipants, &s.TotalQuantity,
		&s.FinalDiscountRate, &s.FinalStatus, &s.ConfirmedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find statistics: %w", err)
	}
	return &s, nil
}
