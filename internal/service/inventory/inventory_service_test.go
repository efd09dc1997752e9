package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gongu-service/internal/domain/groupbuy"
	xerrors "gongu-service/internal/pkg/errors"
	"gongu-service/internal/service/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeOptionRepo implements version-checked stock writes over a map, the same
// contract the postgres layer provides with its conditional UPDATE.
type fakeOptionRepo struct {
	mu      sync.Mutex
	options map[int64]*groupbuy.Option

	// finalRates records ApplyFinalDiscount calls per campaign.
	finalRates map[int64]int
}

func newFakeOptionRepo(options ...*groupbuy.Option) *fakeOptionRepo {
	r := &fakeOptionRepo{
		options:    make(map[int64]*groupbuy.Option),
		finalRates: make(map[int64]int),
	}
	for _, o := range options {
		cp := *o
		r.options[o.ID] = &cp
	}
	return r
}

func (r *fakeOptionRepo) FindByID(ctx context.Context, id int64) (*groupbuy.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.options[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOptionRepo) ListByCampaign(ctx context.Context, campaignID int64) ([]*groupbuy.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*groupbuy.Option
	for _, o := range r.options {
		if o.CampaignID == campaignID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeOptionRepo) CompareAndSetStock(ctx context.Context, id int64, newStock int, version int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.options[id]
	if !ok {
		return false, xerrors.ErrNotFound
	}
	if o.Version != version {
		return false, nil
	}
	o.Stock = newStock
	o.Version++
	return true, nil
}

func (r *fakeOptionRepo) CountWithStock(ctx context.Context, campaignID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.options {
		if o.CampaignID == campaignID && o.Stock > 0 {
			n++
		}
	}
	return n, nil
}

func (r *fakeOptionRepo) ApplyFinalDiscount(ctx context.Context, campaignID int64, rate int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalRates[campaignID] = rate
	for _, o := range r.options {
		if o.CampaignID == campaignID {
			o.SalePrice = groupbuy.ApplyDiscount(o.BasePrice, rate)
		}
	}
	return nil
}

func (r *fakeOptionRepo) stockOf(id int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.options[id].Stock
}

// conflictingOptionRepo loses every version race.
type conflictingOptionRepo struct {
	*fakeOptionRepo
	attempts int
}

func (r *conflictingOptionRepo) CompareAndSetStock(ctx context.Context, id int64, newStock int, version int64) (bool, error) {
	r.attempts++
	return false, nil
}

type staticOrders struct {
	quantity int
	buyers   int
	err      error
}

func (s *staticOrders) SettledQuantity(ctx context.Context, campaignID int64) (int, error) {
	return s.quantity, s.err
}

func (s *staticOrders) DistinctBuyers(ctx context.Context, campaignID int64) (int, error) {
	return s.buyers, s.err
}

func TestReserve(t *testing.T) {
	repo := newFakeOptionRepo(&groupbuy.Option{ID: 1, CampaignID: 10, InitialStock: 20, Stock: 20, BasePrice: 5000})
	svc := inventory.NewInventoryService(repo, &staticOrders{}, zap.NewNop())

	o, err := svc.Reserve(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 17, o.Stock)
	assert.Equal(t, 17, repo.stockOf(1))

	t.Run("insufficient stock", func(t *testing.T) {
		_, err := svc.Reserve(context.Background(), 1, 18)
		assert.ErrorIs(t, err, groupbuy.ErrInsufficientStock)
		assert.Equal(t, 17, repo.stockOf(1))
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := svc.Reserve(context.Background(), 1, 0)
		assert.ErrorIs(t, err, groupbuy.ErrInsufficientStock)
	})

	t.Run("down to exactly zero", func(t *testing.T) {
		o, err := svc.Reserve(context.Background(), 1, 17)
		require.NoError(t, err)
		assert.Equal(t, 0, o.Stock)

		_, err = svc.Reserve(context.Background(), 1, 1)
		assert.ErrorIs(t, err, groupbuy.ErrInsufficientStock)
	})
}

func TestReserveConcurrent(t *testing.T) {
	const initialStock = 50
	const buyers = 100

	repo := newFakeOptionRepo(&groupbuy.Option{ID: 1, CampaignID: 10, InitialStock: initialStock, Stock: initialStock, BasePrice: 5000})
	svc := inventory.NewInventoryService(repo, &staticOrders{}, zap.NewNop())

	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), 1, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	reserved := 0
	for err := range results {
		if err == nil {
			reserved++
			continue
		}
		// Losers see either an exhausted retry budget or exhausted stock,
		// never a silent oversell.
		require.True(t,
			errors.Is(err, groupbuy.ErrConcurrentModification) || errors.Is(err, groupbuy.ErrInsufficientStock),
			"unexpected error: %v", err)
	}

	remaining := repo.stockOf(1)
	assert.GreaterOrEqual(t, remaining, 0)
	assert.LessOrEqual(t, reserved, initialStock)
	assert.Equal(t, initialStock-reserved, remaining)
}

func TestReserveRetriesAreBounded(t *testing.T) {
	base := newFakeOptionRepo(&groupbuy.Option{ID: 1, CampaignID: 10, InitialStock: 20, Stock: 20, BasePrice: 5000})
	repo := &conflictingOptionRepo{fakeOptionRepo: base}
	svc := inventory.NewInventoryService(repo, &staticOrders{}, zap.NewNop())

	_, err := svc.Reserve(context.Background(), 1, 1)
	assert.ErrorIs(t, err, groupbuy.ErrConcurrentModification)
	assert.Equal(t, 3, repo.attempts)
}

func TestRestore(t *testing.T) {
	repo := newFakeOptionRepo(&groupbuy.Option{ID: 1, CampaignID: 10, InitialStock: 10, Stock: 5, BasePrice: 5000})
	svc := inventory.NewInventoryService(repo, &staticOrders{}, zap.NewNop())

	o, err := svc.Restore(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 8, o.Stock)

	t.Run("restore past initial stock", func(t *testing.T) {
		_, err := svc.Restore(context.Background(), 1, 3)
		assert.ErrorIs(t, err, groupbuy.ErrStockOverflow)
		assert.Equal(t, 8, repo.stockOf(1))
	})

	t.Run("restore up to exactly initial", func(t *testing.T) {
		o, err := svc.Restore(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 10, o.Stock)
	})
}

func TestIsDepleted(t *testing.T) {
	repo := newFakeOptionRepo(
		&groupbuy.Option{ID: 1, CampaignID: 10, InitialStock: 5, Stock: 0},
		&groupbuy.Option{ID: 2, CampaignID: 10, InitialStock: 5, Stock: 2},
	)
	svc := inventory.NewInventoryService(repo, &staticOrders{}, zap.NewNop())

	depleted, err := svc.IsDepleted(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, depleted)

	_, err = svc.Reserve(context.Background(), 2, 2)
	require.NoError(t, err)

	depleted, err = svc.IsDepleted(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, depleted)
}

func TestFinalizeSalePrice(t *testing.T) {
	repo := newFakeOptionRepo(
		&groupbuy.Option{ID: 1, CampaignID: 10, InitialStock: 30, Stock: 0, BasePrice: 10000, SalePrice: 10000},
		&groupbuy.Option{ID: 2, CampaignID: 10, InitialStock: 20, Stock: 0, BasePrice: 20000, SalePrice: 20000},
	)
	svc := inventory.NewInventoryService(repo, &staticOrders{quantity: 35}, zap.NewNop())

	c := &groupbuy.Campaign{
		ID: 10,
		Tiers: []groupbuy.DiscountTier{
			{MinQuantity: 10, DiscountRate: 10},
			{MinQuantity: 30, DiscountRate: 20},
		},
	}

	quantity, rate, err := svc.FinalizeSalePrice(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 35, quantity)
	assert.Equal(t, 20, rate)
	assert.Equal(t, 20, repo.finalRates[10])

	opts, err := repo.ListByCampaign(context.Background(), 10)
	require.NoError(t, err)
	for _, o := range opts {
		assert.Equal(t, groupbuy.ApplyDiscount(o.BasePrice, 20), o.SalePrice)
	}
}

func TestFinalizeSalePriceBelowEveryTier(t *testing.T) {
	repo := newFakeOptionRepo(
		&groupbuy.Option{ID: 1, CampaignID: 10, InitialStock: 30, Stock: 0, BasePrice: 10000, SalePrice: 10000},
	)
	svc := inventory.NewInventoryService(repo, &staticOrders{quantity: 5}, zap.NewNop())

	c := &groupbuy.Campaign{
		ID:    10,
		Tiers: []groupbuy.DiscountTier{{MinQuantity: 10, DiscountRate: 10}},
	}

	_, rate, err := svc.FinalizeSalePrice(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 0, rate)

	opts, err := repo.ListByCampaign(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), opts[0].SalePrice)
}
