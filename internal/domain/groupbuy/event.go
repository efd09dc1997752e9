// internal/domain/groupbuy/event.go
package groupbuy

import "time"

// CampaignClosed is published for downstream seller dashboards and buyer
// notifications once a campaign has been closed and settled.
type CampaignClosed struct {
	EventID           string      `json:"event_id"`
	CampaignID        int64       `json:"campaign_id"`
	SellerID          int64       `json:"seller_id"`
	Reason            string      `json:"reason"`
	FinalDiscountRate int         `json:"final_discount_rate"`
	FinalStatus       FinalStatus `json:"final_status"`
	ClosedAt          time.Time   `json:"closed_at"`
}
