// internal/domain/groupbuy/errors.go
package groupbuy

import "errors"

// Ladder validation errors
var (
	ErrEmptyLadder        = errors.New("discount ladder must have at least one tier")
	ErrInvalidMinQuantity = errors.New("tier minimum quantity is out of range")
	ErrInvalidDiscountRate = errors.New("tier discount rate must be between 0 and 100")
	ErrDuplicateTier      = errors.New("duplicate tier minimum quantity")
	ErrTooManyTiers       = errors.New("discount ladder exceeds maximum tier count")
	ErrUnorderedTiers     = errors.New("tiers must strictly increase in both quantity and discount rate")
	ErrTierExceedsStock   = errors.New("tier minimum quantity exceeds total available stock")
)

// Campaign lifecycle errors
var (
	ErrNotStartedYet           = errors.New("campaign start time has not been reached")
	ErrAlreadyEnded            = errors.New("campaign end time has passed")
	ErrNoOptions               = errors.New("campaign has no options")
	ErrNoStock                 = errors.New("campaign has no remaining stock")
	ErrInvalidStatusTransition = errors.New("invalid campaign status transition")
	ErrOverlappingCampaign     = errors.New("product already has a non-closed campaign")
	ErrAccessDenied            = errors.New("campaign does not belong to seller")
	ErrInvalidSchedule         = errors.New("campaign schedule is invalid")
)

// Inventory errors
var (
	ErrInsufficientStock      = errors.New("insufficient stock for requested quantity")
	ErrConcurrentModification = errors.New("stock update lost too many races, giving up")
	ErrStockOverflow          = errors.New("restore would exceed initial stock")
)

// Settlement errors
var (
	ErrStatisticsAlreadyFinalized = errors.New("statistics already finalized for campaign")
)
