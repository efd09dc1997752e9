// internal/domain/groupbuy/dto.go
package groupbuy

import "time"

type CreateTierRequest struct {
	MinQuantity  int `json:"min_quantity" binding:"required"`
	DiscountRate int `json:"discount_rate"`
}

type CreateOptionRequest struct {
	ProductOptionID int64  `json:"product_option_id" binding:"required"`
	Name            string `json:"name" binding:"required"`
	InitialStock    int    `json:"initial_stock" binding:"required,min=1"`
	BasePrice       int64  `json:"base_price" binding:"required,min=1"`
}

type CreateCampaignRequest struct {
	ProductID     int64                 `json:"product_id" binding:"required"`
	Title         string                `json:"title" binding:"required"`
	Description   string                `json:"description"`
	ThumbnailURL  string                `json:"thumbnail_url"`
	LimitPerBuyer int                   `json:"limit_per_buyer"`
	StartAt       time.Time             `json:"start_at" binding:"required"`
	EndsAt        time.Time             `json:"ends_at" binding:"required"`
	Tiers         []CreateTierRequest   `json:"tiers" binding:"required"`
	Options       []CreateOptionRequest `json:"options" binding:"required"`
	ImageURLs     []string              `json:"image_urls"`
}

type ReserveStockRequest struct {
	OptionID int64 `json:"option_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,min=1"`
}

type RestoreStockRequest struct {
	OptionID int64 `json:"option_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,min=1"`
}

type ReserveStockResponse struct {
	OptionID  int64 `json:"option_id"`
	Remaining int   `json:"remaining_stock"`
}
