// internal/domain/order/entity.go
package order

import "time"

// The Order collaborator owns order rows; this core only reads the settled
// subset when a campaign closes.

type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "PENDING"
	ItemStatusSettled   ItemStatus = "SETTLED"
	ItemStatusCancelled ItemStatus = "CANCELLED"
)

type Item struct {
	ID         int64      `json:"id" db:"id"`
	OrderRef   string     `json:"order_ref" db:"order_ref"`
	BuyerID    int64      `json:"buyer_id" db:"buyer_id"`
	CampaignID int64      `json:"campaign_id" db:"campaign_id"`
	OptionID   int64      `json:"option_id" db:"option_id"`
	Quantity   int        `json:"quantity" db:"quantity"`
	Status     ItemStatus `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
