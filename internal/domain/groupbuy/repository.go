// internal/domain/groupbuy/repository.go
package groupbuy

import "context"

// CampaignRepository persists campaign aggregates. Implemented by the
// postgres layer; the services depend on this interface so tests can swap
// in in-memory fakes.
type CampaignRepository interface {
	// Create persists the campaign together with its tiers, options and
	// images and fills in the generated ids.
	Create(ctx context.Context, c *Campaign) error

	// FindByID loads the campaign with tiers and options.
	FindByID(ctx context.Context, id int64) (*Campaign, error)

	// FindBySeller lists a seller's campaigns, newest first, without options.
	FindBySeller(ctx context.Context, sellerID int64) ([]*Campaign, error)

	// ExistsActiveForProduct reports whether the product already has a
	// non-CLOSED campaign.
	ExistsActiveForProduct(ctx context.Context, productID int64) (bool, error)

	// UpdateStatus writes the transition only if the stored status still
	// matches from; returns false when another writer got there first.
	UpdateStatus(ctx context.Context, id int64, from, to CampaignStatus) (bool, error)

	// UpdateDisplayPrice refreshes the denormalized listing price.
	UpdateDisplayPrice(ctx context.Context, id int64, price int64) error

	// RecordStatusChange appends one row of transition history.
	RecordStatusChange(ctx context.Context, change *StatusChange) error
}

// OptionRepository is the only write path to option stock.
type OptionRepository interface {
	FindByID(ctx context.Context, id int64) (*Option, error)
	ListByCampaign(ctx context.Context, campaignID int64) ([]*Option, error)

	// CompareAndSetStock writes newStock and bumps the version, conditioned
	// on the stored version still being version. Returns false on a lost
	// race; the caller re-reads and retries.
	CompareAndSetStock(ctx context.Context, id int64, newStock int, version int64) (bool, error)

	// CountWithStock returns how many of the campaign's options still have
	// stock remaining.
	CountWithStock(ctx context.Context, campaignID int64) (int, error)

	// ApplyFinalDiscount writes sale_price = base_price * (100-rate) / 100
	// onto every option of the campaign.
	ApplyFinalDiscount(ctx context.Context, campaignID int64, rate int) error
}

// StatisticsRepository persists the one-shot settlement snapshot.
type StatisticsRepository interface {
	// Create inserts the snapshot; a second insert for the same campaign
	// fails with ErrStatisticsAlreadyFinalized.
	Create(ctx context.Context, s *Statistics) error

	FindByCampaign(ctx context.Context, campaignID int64) (*Statistics, error)
}
