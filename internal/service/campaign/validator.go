// internal/service/campaign/validator.go
package campaign

import (
	"context"
	"fmt"
	"time"

	"gongu-service/internal/domain/groupbuy"
)

// Validator runs the pre-creation and pre-transition rule checks. Everything
// here is synchronous and surfaced to the caller; nothing is retried.
type Validator struct {
	campaignRepo groupbuy.CampaignRepository
}

func NewValidator(campaignRepo groupbuy.CampaignRepository) *Validator {
	return &Validator{campaignRepo: campaignRepo}
}

// ValidateCreation checks schedule sanity, ladder consistency, ladder-vs-
// stock feasibility and the one-active-campaign-per-product rule.
func (v *Validator) ValidateCreation(ctx context.Context, req *groupbuy.CreateCampaignRequest, now time.Time) error {
	if err := v.validateSchedule(req.StartAt, req.EndsAt, now); err != nil {
		return err
	}

	tiers := make([]groupbuy.DiscountTier, len(req.Tiers))
	for i, t := range req.Tiers {
		tiers[i] = groupbuy.DiscountTier{MinQuantity: t.MinQuantity, DiscountRate: t.DiscountRate}
	}
	if err := groupbuy.ValidateLadder(tiers); err != nil {
		return err
	}

	if len(req.Options) == 0 {
		return groupbuy.ErrNoOptions
	}
	totalStock := 0
	for _, o := range req.Options {
		totalStock += o.InitialStock
	}
	if err := groupbuy.ValidateLadderAgainstStock(tiers, totalStock); err != nil {
		return err
	}

	exists, err := v.campaignRepo.ExistsActiveForProduct(ctx, req.ProductID)
	if err != nil {
		return fmt.Errorf("failed to check product campaigns: %w", err)
	}
	if exists {
		return groupbuy.ErrOverlappingCampaign
	}

	return nil
}

func (v *Validator) validateSchedule(startAt, endsAt time.Time, now time.Time) error {
	if !startAt.After(now) {
		return fmt.Errorf("%w: start must be in the future", groupbuy.ErrInvalidSchedule)
	}
	if !endsAt.After(startAt) {
		return fmt.Errorf("%w: end must be after start", groupbuy.ErrInvalidSchedule)
	}
	duration := endsAt.Sub(startAt)
	if duration < groupbuy.MinCampaignDuration || duration > groupbuy.MaxCampaignDuration {
		return fmt.Errorf("%w: duration must be between %s and %s",
			groupbuy.ErrInvalidSchedule, groupbuy.MinCampaignDuration, groupbuy.MaxCampaignDuration)
	}
	return nil
}

// ValidateSellerOwnership is checked before any mutating operation reaches
// the aggregate.
func (v *Validator) ValidateSellerOwnership(sellerID int64, c *groupbuy.Campaign) error {
	if c.SellerID != sellerID {
		return groupbuy.ErrAccessDenied
	}
	return nil
}

// ValidateOpenRequest enforces ownership and the single legal transition;
// open-condition feasibility stays with the aggregate's Open.
func (v *Validator) ValidateOpenRequest(sellerID int64, c *groupbuy.Campaign) error {
	if err := v.ValidateSellerOwnership(sellerID, c); err != nil {
		return err
	}
	if c.Status != groupbuy.StatusDraft {
		return fmt.Errorf("%w: only draft campaigns can be opened", groupbuy.ErrInvalidStatusTransition)
	}
	return nil
}
