// internal/service/campaign/campaign_service.go
package campaign

import (
	"context"
	"fmt"
	"time"

	"gongu-service/internal/domain/groupbuy"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type CampaignService struct {
	campaignRepo groupbuy.CampaignRepository
	validator    *Validator
	logger       *zap.Logger
}

func NewCampaignService(campaignRepo groupbuy.CampaignRepository, validator *Validator, logger *zap.Logger) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		validator:    validator,
		logger:       logger,
	}
}

// ========== Seller Operations ==========

// CreateCampaign validates and persists a new campaign in DRAFT.
func (s *CampaignService) CreateCampaign(ctx context.Context, sellerID int64, req *groupbuy.CreateCampaignRequest) (*groupbuy.Campaign, error) {
	now := time.Now()

	if err := s.validator.ValidateCreation(ctx, req, now); err != nil {
		return nil, err
	}

	tiers := make([]groupbuy.DiscountTier, len(req.Tiers))
	for i, t := range req.Tiers {
		tiers[i] = groupbuy.DiscountTier{MinQuantity: t.MinQuantity, DiscountRate: t.DiscountRate}
	}

	options := make([]groupbuy.Option, len(req.Options))
	for i, o := range req.Options {
		options[i] = groupbuy.Option{
			ProductOptionID: o.ProductOptionID,
			Name:            o.Name,
			InitialStock:    o.InitialStock,
			Stock:           o.InitialStock,
			BasePrice:       o.BasePrice,
			// SalePrice stays at base price until settlement rewrites it.
			SalePrice: o.BasePrice,
		}
	}

	images := make([]groupbuy.CampaignImage, len(req.ImageURLs))
	for i, url := range req.ImageURLs {
		images[i] = groupbuy.CampaignImage{URL: url, SortOrder: i}
	}

	c := &groupbuy.Campaign{
		Code:          ulid.Make().String(),
		SellerID:      sellerID,
		ProductID:     req.ProductID,
		Title:         req.Title,
		Description:   req.Description,
		ThumbnailURL:  req.ThumbnailURL,
		Tiers:         tiers,
		LimitPerBuyer: req.LimitPerBuyer,
		Status:        groupbuy.StatusDraft,
		StartAt:       req.StartAt,
		EndsAt:        req.EndsAt,
		Options:       options,
		Images:        images,
	}
	c.RecomputeDisplayPrice()

	if err := s.campaignRepo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create campaign", zap.Error(err))
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	s.logger.Info("campaign created",
		zap.Int64("campaign_id", c.ID),
		zap.String("campaign_code", c.Code),
		zap.Int64("seller_id", sellerID),
		zap.Int64("product_id", c.ProductID),
	)

	return c, nil
}

// OpenCampaign transitions a draft campaign to OPEN once its open
// conditions hold.
func (s *CampaignService) OpenCampaign(ctx context.Context, sellerID, campaignID int64) (*groupbuy.Campaign, error) {
	c, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateOpenRequest(sellerID, c); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := c.Open(now); err != nil {
		return nil, err
	}

	ok, err := s.campaignRepo.UpdateStatus(ctx, c.ID, groupbuy.StatusDraft, groupbuy.StatusOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to open campaign: %w", err)
	}
	if !ok {
		// Someone else moved the campaign out of DRAFT between our read and
		// write.
		return nil, groupbuy.ErrInvalidStatusTransition
	}

	change := &groupbuy.StatusChange{
		CampaignID: c.ID,
		FromStatus: groupbuy.StatusDraft,
		ToStatus:   groupbuy.StatusOpen,
		Reason:     "seller opened",
		ChangedAt:  now,
	}
	if err := s.campaignRepo.RecordStatusChange(ctx, change); err != nil {
		s.logger.Warn("failed to record status change",
			zap.Int64("campaign_id", c.ID), zap.Error(err))
	}

	s.logger.Info("campaign opened",
		zap.Int64("campaign_id", c.ID),
		zap.Int64("seller_id", sellerID),
	)

	return c, nil
}

// ========== Read Operations ==========

func (s *CampaignService) GetCampaign(ctx context.Context, campaignID int64) (*groupbuy.Campaign, error) {
	return s.campaignRepo.FindByID(ctx, campaignID)
}

func (s *CampaignService) ListSellerCampaigns(ctx context.Context, sellerID int64) ([]*groupbuy.Campaign, error) {
	return s.campaignRepo.FindBySeller(ctx, sellerID)
}
