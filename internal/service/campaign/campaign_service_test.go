package campaign_test

import (
	"context"
	"testing"
	"time"

	"gongu-service/internal/domain/groupbuy"
	"gongu-service/internal/service/campaign"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCampaignService(repo *fakeCampaignRepo) *campaign.CampaignService {
	return campaign.NewCampaignService(repo, campaign.NewValidator(repo), zap.NewNop())
}

func TestCreateCampaign(t *testing.T) {
	repo := newFakeCampaignRepo()
	svc := newCampaignService(repo)

	c, err := svc.CreateCampaign(context.Background(), 7, validCreateRequest(time.Now()))
	require.NoError(t, err)

	assert.NotZero(t, c.ID)
	assert.NotEmpty(t, c.Code)
	assert.Equal(t, int64(7), c.SellerID)
	assert.Equal(t, groupbuy.StatusDraft, c.Status)

	// Options start at full stock with the sale price pinned to base.
	require.Len(t, c.Options, 2)
	assert.Equal(t, 40, c.Options[0].Stock)
	assert.Equal(t, int64(89000), c.Options[0].SalePrice)

	// Display price: cheapest base 89000 with the top rate 20% applied.
	assert.Equal(t, int64(71200), c.DisplayFinalPrice)
}

func TestCreateCampaignRejectsOverlap(t *testing.T) {
	repo := newFakeCampaignRepo()
	svc := newCampaignService(repo)

	req := validCreateRequest(time.Now())
	repo.activeProducts[req.ProductID] = true

	_, err := svc.CreateCampaign(context.Background(), 7, req)
	assert.ErrorIs(t, err, groupbuy.ErrOverlappingCampaign)
}

func TestOpenCampaign(t *testing.T) {
	repo := newFakeCampaignRepo()
	svc := newCampaignService(repo)

	now := time.Now()
	seed := repo.put(&groupbuy.Campaign{
		SellerID: 7,
		Status:   groupbuy.StatusDraft,
		StartAt:  now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
		Tiers:    []groupbuy.DiscountTier{{MinQuantity: 10, DiscountRate: 10}},
		Options:  []groupbuy.Option{{ID: 1, InitialStock: 20, Stock: 20, BasePrice: 5000}},
	})

	t.Run("wrong seller denied", func(t *testing.T) {
		_, err := svc.OpenCampaign(context.Background(), 8, seed.ID)
		assert.ErrorIs(t, err, groupbuy.ErrAccessDenied)
	})

	t.Run("owner opens", func(t *testing.T) {
		c, err := svc.OpenCampaign(context.Background(), 7, seed.ID)
		require.NoError(t, err)
		assert.Equal(t, groupbuy.StatusOpen, c.Status)

		stored, err := repo.FindByID(context.Background(), seed.ID)
		require.NoError(t, err)
		assert.Equal(t, groupbuy.StatusOpen, stored.Status)

		require.Len(t, repo.changes, 1)
		assert.Equal(t, groupbuy.StatusDraft, repo.changes[0].FromStatus)
		assert.Equal(t, groupbuy.StatusOpen, repo.changes[0].ToStatus)
	})

	t.Run("second open rejected", func(t *testing.T) {
		_, err := svc.OpenCampaign(context.Background(), 7, seed.ID)
		assert.ErrorIs(t, err, groupbuy.ErrInvalidStatusTransition)
	})
}

func TestOpenCampaignNotStarted(t *testing.T) {
	repo := newFakeCampaignRepo()
	svc := newCampaignService(repo)

	now := time.Now()
	seed := repo.put(&groupbuy.Campaign{
		SellerID: 7,
		Status:   groupbuy.StatusDraft,
		StartAt:  now.Add(time.Hour),
		EndsAt:   now.Add(3 * time.Hour),
		Options:  []groupbuy.Option{{ID: 1, InitialStock: 20, Stock: 20, BasePrice: 5000}},
	})

	_, err := svc.OpenCampaign(context.Background(), 7, seed.ID)
	assert.ErrorIs(t, err, groupbuy.ErrNotStartedYet)

	stored, err := repo.FindByID(context.Background(), seed.ID)
	require.NoError(t, err)
	assert.Equal(t, groupbuy.StatusDraft, stored.Status)
}
