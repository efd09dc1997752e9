package groupbuy_test

import (
	"testing"
	"time"

	"gongu-service/internal/domain/groupbuy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftCampaign(t *testing.T) *groupbuy.Campaign {
	t.Helper()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &groupbuy.Campaign{
		ID:       1,
		SellerID: 7,
		Status:   groupbuy.StatusDraft,
		StartAt:  start,
		EndsAt:   start.Add(48 * time.Hour),
		Tiers: []groupbuy.DiscountTier{
			{MinQuantity: 10, DiscountRate: 10},
			{MinQuantity: 30, DiscountRate: 20},
		},
		Options: []groupbuy.Option{
			{ID: 100, InitialStock: 50, Stock: 50, BasePrice: 12000},
			{ID: 101, InitialStock: 30, Stock: 30, BasePrice: 9900},
		},
	}
}

func TestCampaignOpen(t *testing.T) {
	t.Run("opens inside window", func(t *testing.T) {
		c := draftCampaign(t)
		now := c.StartAt.Add(time.Minute)

		require.NoError(t, c.Open(now))
		assert.Equal(t, groupbuy.StatusOpen, c.Status)
		assert.Equal(t, now, c.UpdatedAt)
	})

	t.Run("rejects before start", func(t *testing.T) {
		c := draftCampaign(t)
		err := c.Open(c.StartAt.Add(-time.Minute))
		assert.ErrorIs(t, err, groupbuy.ErrNotStartedYet)
		assert.Equal(t, groupbuy.StatusDraft, c.Status)
	})

	t.Run("rejects after end", func(t *testing.T) {
		c := draftCampaign(t)
		err := c.Open(c.EndsAt.Add(time.Minute))
		assert.ErrorIs(t, err, groupbuy.ErrAlreadyEnded)
	})

	t.Run("rejects without options", func(t *testing.T) {
		c := draftCampaign(t)
		c.Options = nil
		err := c.Open(c.StartAt.Add(time.Minute))
		assert.ErrorIs(t, err, groupbuy.ErrNoOptions)
	})

	t.Run("rejects with zero stock everywhere", func(t *testing.T) {
		c := draftCampaign(t)
		for i := range c.Options {
			c.Options[i].Stock = 0
		}
		err := c.Open(c.StartAt.Add(time.Minute))
		assert.ErrorIs(t, err, groupbuy.ErrNoStock)
	})

	t.Run("rejects non-draft", func(t *testing.T) {
		c := draftCampaign(t)
		c.Status = groupbuy.StatusOpen
		err := c.Open(c.StartAt.Add(time.Minute))
		assert.ErrorIs(t, err, groupbuy.ErrInvalidStatusTransition)
	})
}

func TestCampaignClose(t *testing.T) {
	t.Run("closes open campaign", func(t *testing.T) {
		c := draftCampaign(t)
		c.Status = groupbuy.StatusOpen

		changed, err := c.Close(c.EndsAt)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, groupbuy.StatusClosed, c.Status)
	})

	t.Run("double close is a no-op success", func(t *testing.T) {
		c := draftCampaign(t)
		c.Status = groupbuy.StatusOpen

		changed, err := c.Close(c.EndsAt)
		require.NoError(t, err)
		require.True(t, changed)

		changed, err = c.Close(c.EndsAt.Add(time.Second))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, groupbuy.StatusClosed, c.Status)
	})

	t.Run("cannot close a draft", func(t *testing.T) {
		c := draftCampaign(t)
		changed, err := c.Close(c.EndsAt)
		assert.ErrorIs(t, err, groupbuy.ErrInvalidStatusTransition)
		assert.False(t, changed)
	})
}

func TestRecomputeDisplayPrice(t *testing.T) {
	c := draftCampaign(t)
	c.RecomputeDisplayPrice()

	// Cheapest base price 9900 with the top rate 20% applied.
	assert.Equal(t, int64(7920), c.DisplayFinalPrice)

	c.Options = nil
	c.RecomputeDisplayPrice()
	assert.Equal(t, int64(0), c.DisplayFinalPrice)
}

func TestStockTotals(t *testing.T) {
	c := draftCampaign(t)
	assert.Equal(t, 80, c.TotalStock())
	assert.Equal(t, 80, c.TotalInitialStock())

	c.Options[0].Stock = 10
	assert.Equal(t, 40, c.TotalStock())
	assert.Equal(t, 80, c.TotalInitialStock())
	assert.Equal(t, 40, c.Options[0].SoldQuantity())
}
