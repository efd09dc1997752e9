// internal/domain/groupbuy/ladder.go
package groupbuy

import (
	"fmt"
	"sort"
)

const (
	// MaxTiers caps the ladder size a campaign may commit to.
	MaxTiers = 10

	// maxTierQuantity rejects nonsense thresholds at validation time.
	maxTierQuantity = 100000
)

// DiscountTier is one rung of a campaign's discount ladder: once the settled
// quantity reaches MinQuantity, every buyer earns DiscountRate percent off.
type DiscountTier struct {
	MinQuantity  int `json:"min_quantity" db:"min_quantity"`
	DiscountRate int `json:"discount_rate" db:"discount_rate"`
}

// sortedTiers returns a copy ordered by ascending MinQuantity. The stored
// ladder is already ordered; callers that received tiers from the outside
// must not rely on that.
func sortedTiers(tiers []DiscountTier) []DiscountTier {
	out := make([]DiscountTier, len(tiers))
	copy(out, tiers)
	sort.Slice(out, func(i, j int) bool { return out[i].MinQuantity < out[j].MinQuantity })
	return out
}

// ValidateLadder checks the structural rules every ladder must satisfy:
// non-empty, at most MaxTiers tiers, quantities in [1, maxTierQuantity],
// rates in [0, 100], unique quantities, and both quantity and rate strictly
// increasing across the sorted sequence. A tier that asks buyers to clear a
// higher threshold for an equal or lower discount is rejected.
func ValidateLadder(tiers []DiscountTier) error {
	if len(tiers) == 0 {
		return ErrEmptyLadder
	}
	if len(tiers) > MaxTiers {
		return fmt.Errorf("%w: got %d, max %d", ErrTooManyTiers, len(tiers), MaxTiers)
	}

	for _, t := range tiers {
		if t.MinQuantity < 1 || t.MinQuantity > maxTierQuantity {
			return fmt.Errorf("%w: %d", ErrInvalidMinQuantity, t.MinQuantity)
		}
		if t.DiscountRate < 0 || t.DiscountRate > 100 {
			return fmt.Errorf("%w: %d", ErrInvalidDiscountRate, t.DiscountRate)
		}
	}

	sorted := sortedTiers(tiers)
	for i := 1; i < len(sorted); i++ {
		if sorted[i].MinQuantity == sorted[i-1].MinQuantity {
			return fmt.Errorf("%w: %d", ErrDuplicateTier, sorted[i].MinQuantity)
		}
		if sorted[i].DiscountRate <= sorted[i-1].DiscountRate {
			return fmt.Errorf("%w: tier %d/%d%% after %d/%d%%",
				ErrUnorderedTiers,
				sorted[i].MinQuantity, sorted[i].DiscountRate,
				sorted[i-1].MinQuantity, sorted[i-1].DiscountRate,
			)
		}
	}

	return nil
}

// ValidateLadderAgainstStock rejects ladders containing a tier that can never
// be reached with the stock the campaign actually carries. An unreachable
// tier is a modeling error, not merely unlikely.
func ValidateLadderAgainstStock(tiers []DiscountTier, totalStock int) error {
	for _, t := range tiers {
		if t.MinQuantity > totalStock {
			return fmt.Errorf("%w: tier needs %d, stock is %d", ErrTierExceedsStock, t.MinQuantity, totalStock)
		}
	}
	return nil
}

// ResolveDiscountRate returns the rate of the highest tier whose MinQuantity
// has been met by achievedQuantity, or 0 if none has. Pure; the ladder is
// assumed valid.
func ResolveDiscountRate(tiers []DiscountTier, achievedQuantity int) int {
	rate := 0
	for _, t := range sortedTiers(tiers) {
		if t.MinQuantity > achievedQuantity {
			break
		}
		rate = t.DiscountRate
	}
	return rate
}

// HighestConfiguredRate returns the rate of the last tier regardless of what
// quantity has actually been achieved. Used only for the optimistic display
// estimate, never for settlement.
func HighestConfiguredRate(tiers []DiscountTier) int {
	rate := 0
	for _, t := range tiers {
		if t.DiscountRate > rate {
			rate = t.DiscountRate
		}
	}
	return rate
}

// LowestTierQuantity returns the smallest MinQuantity in the ladder, the
// threshold a campaign must clear to settle as SUCCESS.
func LowestTierQuantity(tiers []DiscountTier) int {
	if len(tiers) == 0 {
		return 0
	}
	min := tiers[0].MinQuantity
	for _, t := range tiers[1:] {
		if t.MinQuantity < min {
			min = t.MinQuantity
		}
	}
	return min
}

// ApplyDiscount computes the discounted price with integer floor rounding.
func ApplyDiscount(price int64, rate int) int64 {
	return price * int64(100-rate) / 100
}
