// internal/domain/groupbuy/entity.go
package groupbuy

import (
	"fmt"
	"time"
)

type CampaignStatus string

const (
	StatusDraft  CampaignStatus = "DRAFT"
	StatusOpen   CampaignStatus = "OPEN"
	StatusClosed CampaignStatus = "CLOSED"
)

type FinalStatus string

const (
	FinalSuccess FinalStatus = "SUCCESS"
	FinalFailure FinalStatus = "FAILURE"
)

// Schedule bounds for a campaign window.
const (
	MinCampaignDuration = time.Hour
	MaxCampaignDuration = 7 * 24 * time.Hour
)

// Campaign is a single group-buy listing. It owns its options, its discount
// ladder and its status; status transitions go through Open/Close only.
type Campaign struct {
	ID           int64          `json:"id" db:"id"`
	Code         string         `json:"code" db:"code"`
	SellerID     int64          `json:"seller_id" db:"seller_id"`
	ProductID    int64          `json:"product_id" db:"product_id"`
	Title        string         `json:"title" db:"title"`
	Description  string         `json:"description,omitempty" db:"description"`
	ThumbnailURL string         `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	Tiers        []DiscountTier `json:"tiers"`

	LimitPerBuyer int            `json:"limit_per_buyer" db:"limit_per_buyer"`
	Status        CampaignStatus `json:"status" db:"status"`
	StartAt       time.Time      `json:"start_at" db:"start_at"`
	EndsAt        time.Time      `json:"ends_at" db:"ends_at"`

	// DisplayFinalPrice is a denormalized estimate for listing pages:
	// cheapest option base price with the highest configured tier applied.
	// The settled price lives on Option.SalePrice after close.
	DisplayFinalPrice int64 `json:"display_final_price" db:"display_final_price"`

	Options []Option        `json:"options,omitempty"`
	Images  []CampaignImage `json:"images,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Option is a purchasable SKU variant within a campaign. Stock and Version
// are mutated only through the inventory coordinator's conditional writes.
type Option struct {
	ID              int64  `json:"id" db:"id"`
	CampaignID      int64  `json:"campaign_id" db:"campaign_id"`
	ProductOptionID int64  `json:"product_option_id" db:"product_option_id"`
	Name            string `json:"name" db:"name"`

	InitialStock int   `json:"initial_stock" db:"initial_stock"`
	Stock        int   `json:"stock" db:"stock"`
	BasePrice    int64 `json:"base_price" db:"base_price"`
	SalePrice    int64 `json:"sale_price" db:"sale_price"`

	// Version is the optimistic-concurrency token; every successful stock
	// write increments it.
	Version int64 `json:"-" db:"version"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SoldQuantity is derived, never stored.
func (o *Option) SoldQuantity() int {
	return o.InitialStock - o.Stock
}

type CampaignImage struct {
	ID         int64  `json:"id" db:"id"`
	CampaignID int64  `json:"campaign_id" db:"campaign_id"`
	URL        string `json:"url" db:"url"`
	SortOrder  int    `json:"sort_order" db:"sort_order"`
}

// Statistics is the immutable settlement snapshot written exactly once when
// a campaign closes.
type Statistics struct {
	ID                int64       `json:"id" db:"id"`
	CampaignID        int64       `json:"campaign_id" db:"campaign_id"`
	TotalParticipants int         `json:"total_participants" db:"total_participants"`
	TotalQuantity     int         `json:"total_quantity" db:"total_quantity"`
	FinalDiscountRate int         `json:"final_discount_rate" db:"final_discount_rate"`
	FinalStatus       FinalStatus `json:"final_status" db:"final_status"`
	ConfirmedAt       time.Time   `json:"confirmed_at" db:"confirmed_at"`
}

// StatusChange is one row of the campaign's transition history.
type StatusChange struct {
	ID         int64          `json:"id" db:"id"`
	CampaignID int64          `json:"campaign_id" db:"campaign_id"`
	FromStatus CampaignStatus `json:"from_status" db:"from_status"`
	ToStatus   CampaignStatus `json:"to_status" db:"to_status"`
	Reason     string         `json:"reason,omitempty" db:"reason"`
	ChangedAt  time.Time      `json:"changed_at" db:"changed_at"`
}

// TotalStock sums remaining stock across the loaded options.
func (c *Campaign) TotalStock() int {
	total := 0
	for i := range c.Options {
		total += c.Options[i].Stock
	}
	return total
}

// TotalInitialStock sums the immutable initial stock snapshots.
func (c *Campaign) TotalInitialStock() int {
	total := 0
	for i := range c.Options {
		total += c.Options[i].InitialStock
	}
	return total
}

// Open transitions DRAFT -> OPEN once the open conditions hold: the window
// has started and not ended, at least one option exists and at least one
// option still has stock.
func (c *Campaign) Open(now time.Time) error {
	if c.Status != StatusDraft {
		return fmt.Errorf("%w: cannot open from %s", ErrInvalidStatusTransition, c.Status)
	}
	if now.Before(c.StartAt) {
		return ErrNotStartedYet
	}
	if now.After(c.EndsAt) {
		return ErrAlreadyEnded
	}
	if len(c.Options) == 0 {
		return ErrNoOptions
	}
	if c.TotalStock() == 0 {
		return ErrNoStock
	}

	c.Status = StatusOpen
	c.UpdatedAt = now
	return nil
}

// Close transitions OPEN -> CLOSED. Closing an already-closed campaign is a
// no-op success so duplicate depletion signals stay harmless; the returned
// flag tells the caller whether this call performed the transition and so
// owns the settlement steps that follow. Closing from DRAFT is an error.
func (c *Campaign) Close(now time.Time) (bool, error) {
	switch c.Status {
	case StatusClosed:
		return false, nil
	case StatusOpen:
		c.Status = StatusClosed
		c.UpdatedAt = now
		return true, nil
	default:
		return false, fmt.Errorf("%w: cannot close from %s", ErrInvalidStatusTransition, c.Status)
	}
}

// RecomputeDisplayPrice refreshes the denormalized listing price: the
// cheapest option's base price with the ladder's highest configured rate
// applied. This is an optimistic estimate of the best case, not the settled
// price, and is recomputed whenever the ladder or base prices change.
func (c *Campaign) RecomputeDisplayPrice() {
	if len(c.Options) == 0 {
		c.DisplayFinalPrice = 0
		return
	}
	cheapest := c.Options[0].BasePrice
	for i := range c.Options[1:] {
		if p := c.Options[i+1].BasePrice; p < cheapest {
			cheapest = p
		}
	}
	c.DisplayFinalPrice = ApplyDiscount(cheapest, HighestConfiguredRate(c.Tiers))
}
