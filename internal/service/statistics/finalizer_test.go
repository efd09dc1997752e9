package statistics_test

import (
	"context"
	"sync"
	"testing"

	"gongu-service/internal/domain/groupbuy"
	xerrors "gongu-service/internal/pkg/errors"
	"gongu-service/internal/service/statistics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStatsRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*groupbuy.Statistics
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{nextID: 1, rows: make(map[int64]*groupbuy.Statistics)}
}

func (r *fakeStatsRepo) Create(ctx context.Context, s *groupbuy.Statistics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[s.CampaignID]; ok {
		return groupbuy.ErrStatisticsAlreadyFinalized
	}
	s.ID = r.nextID
	r.nextID++
	cp := *s
	r.rows[s.CampaignID] = &cp
	return nil
}

func (r *fakeStatsRepo) FindByCampaign(ctx context.Context, campaignID int64) (*groupbuy.Statistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[campaignID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

type staticOrders struct {
	buyers int
}

func (s *staticOrders) SettledQuantity(ctx context.Context, campaignID int64) (int, error) {
	return 0, nil
}

func (s *staticOrders) DistinctBuyers(ctx context.Context, campaignID int64) (int, error) {
	return s.buyers, nil
}

func testCampaign() *groupbuy.Campaign {
	return &groupbuy.Campaign{
		ID: 10,
		Tiers: []groupbuy.DiscountTier{
			{MinQuantity: 10, DiscountRate: 10},
			{MinQuantity: 30, DiscountRate: 20},
		},
	}
}

func TestFinalizeSuccess(t *testing.T) {
	repo := newFakeStatsRepo()
	f := statistics.NewFinalizer(repo, &staticOrders{buyers: 12}, zap.NewNop())

	stats, err := f.Finalize(context.Background(), testCampaign(), 35, 20)
	require.NoError(t, err)

	assert.Equal(t, groupbuy.FinalSuccess, stats.FinalStatus)
	assert.Equal(t, 35, stats.TotalQuantity)
	assert.Equal(t, 12, stats.TotalParticipants)
	assert.Equal(t, 20, stats.FinalDiscountRate)
	assert.False(t, stats.ConfirmedAt.IsZero())

	stored, err := repo.FindByCampaign(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, stats.ID, stored.ID)
}

func TestFinalizeFailureBelowLowestTier(t *testing.T) {
	repo := newFakeStatsRepo()
	f := statistics.NewFinalizer(repo, &staticOrders{buyers: 4}, zap.NewNop())

	stats, err := f.Finalize(context.Background(), testCampaign(), 9, 0)
	require.NoError(t, err)

	assert.Equal(t, groupbuy.FinalFailure, stats.FinalStatus)
	assert.Equal(t, 0, stats.FinalDiscountRate)
}

func TestFinalizeAtExactThreshold(t *testing.T) {
	repo := newFakeStatsRepo()
	f := statistics.NewFinalizer(repo, &staticOrders{buyers: 10}, zap.NewNop())

	stats, err := f.Finalize(context.Background(), testCampaign(), 10, 10)
	require.NoError(t, err)
	assert.Equal(t, groupbuy.FinalSuccess, stats.FinalStatus)
}

func TestFinalizeTwiceRejected(t *testing.T) {
	repo := newFakeStatsRepo()
	f := statistics.NewFinalizer(repo, &staticOrders{buyers: 12}, zap.NewNop())

	_, err := f.Finalize(context.Background(), testCampaign(), 35, 20)
	require.NoError(t, err)

	_, err = f.Finalize(context.Background(), testCampaign(), 35, 20)
	assert.ErrorIs(t, err, groupbuy.ErrStatisticsAlreadyFinalized)
}
