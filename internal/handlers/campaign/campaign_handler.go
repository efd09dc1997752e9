// internal/handlers/campaign/campaign_handler.go
package campaign

import (
	"errors"
	"net/http"
	"strconv"

	"gongu-service/internal/domain/groupbuy"
	"gongu-service/internal/middleware"
	xerrors "gongu-service/internal/pkg/errors"
	"gongu-service/internal/pkg/response"
	service "gongu-service/internal/service/campaign"

	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	campaignService *service.CampaignService
}

func NewCampaignHandler(campaignService *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
	}
}

// ========== Seller Endpoints ==========

// CreateCampaign creates a new group-buy campaign in DRAFT.
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	sellerID := middleware.MustGetSellerID(c)

	var req groupbuy.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.campaignService.CreateCampaign(c.Request.Context(), sellerID, &req)
	if err != nil {
		status := statusForCampaignError(err)
		response.Error(c, status, "failed to create campaign", err)
		return
	}

	response.Success(c, http.StatusCreated, "campaign created successfully", result)
}

// OpenCampaign transitions a draft campaign to OPEN.
func (h *CampaignHandler) OpenCampaign(c *gin.Context) {
	sellerID := middleware.MustGetSellerID(c)

	campaignID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid campaign ID", err)
		return
	}

	result, err := h.campaignService.OpenCampaign(c.Request.Context(), sellerID, campaignID)
	if err != nil {
		status := statusForCampaignError(err)
		response.Error(c, status, "failed to open campaign", err)
		return
	}

	response.Success(c, http.StatusOK, "campaign opened successfully", result)
}

// ListMyCampaigns lists the authenticated seller's campaigns.
func (h *CampaignHandler) ListMyCampaigns(c *gin.Context) {
	sellerID := middleware.MustGetSellerID(c)

	campaigns, err := h.campaignService.ListSellerCampaigns(c.Request.Context(), sellerID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list campaigns", err)
		return
	}

	response.Success(c, http.StatusOK, "campaigns retrieved", campaigns)
}

// ========== Public Endpoints ==========

// GetCampaign returns one campaign with its options.
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	campaignID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid campaign ID", err)
		return
	}

	result, err := h.campaignService.GetCampaign(c.Request.Context(), campaignID)
	if errors.Is(err, xerrors.ErrNotFound) {
		response.NotFound(c, "campaign not found")
		return
	}
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to get campaign", err)
		return
	}

	response.Success(c, http.StatusOK, "campaign retrieved", result)
}

// statusForCampaignError maps the domain error taxonomy onto HTTP codes:
// validation and state errors are the caller's problem, overlap is a
// conflict, ownership is forbidden.
func statusForCampaignError(err error) int {
	switch {
	case errors.Is(err, groupbuy.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, groupbuy.ErrOverlappingCampaign):
		return http.StatusConflict
	case errors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, groupbuy.ErrInvalidStatusTransition),
		errors.Is(err, groupbuy.ErrNotStartedYet),
		errors.Is(err, groupbuy.ErrAlreadyEnded),
		errors.Is(err, groupbuy.ErrNoOptions),
		errors.Is(err, groupbuy.ErrNoStock):
		return http.StatusConflict
	case errors.Is(err, groupbuy.ErrInvalidSchedule),
		errors.Is(err, groupbuy.ErrEmptyLadder),
		errors.Is(err, groupbuy.ErrInvalidMinQuantity),
		errors.Is(err, groupbuy.ErrInvalidDiscountRate),
		errors.Is(err, groupbuy.ErrDuplicateTier),
		errors.Is(err, groupbuy.ErrTooManyTiers),
		errors.Is(err, groupbuy.ErrUnorderedTiers),
		errors.Is(err, groupbuy.ErrTierExceedsStock):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
