package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidSchedule = errors.New("invalid shipping schedule")

// Tier charges Fee once a cart holds at least MinItems units.
type Tier struct {
	MinItems int
	Fee      decimal.Decimal
}

// ShippingSchedule is a step function from total item count to a flat fee.
type ShippingSchedule struct {
	tiers []Tier
}

func NewShippingSchedule(tiers ...Tier) ShippingSchedule {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinItems < sorted[j].MinItems })
	return ShippingSchedule{tiers: sorted}
}

// DefaultSchedule is the storefront's current waybill table.
func DefaultSchedule() ShippingSchedule {
	return NewShippingSchedule(
		Tier{MinItems: 0, Fee: decimal.Zero},
		Tier{MinItems: 1, Fee: decimal.NewFromInt(3500)},
		Tier{MinItems: 2, Fee: decimal.NewFromInt(4000)},
		Tier{MinItems: 3, Fee: decimal.NewFromInt(5000)},
	)
}

// ParseSchedule reads "minItems:fee" pairs separated by commas, e.g. "0:0,1:3500,2:4000".
func ParseSchedule(s string) (ShippingSchedule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ShippingSchedule{}, fmt.Errorf("%w: empty", ErrInvalidSchedule)
	}

	seen := make(map[int]bool)
	var tiers []Tier
	for _, part := range strings.Split(s, ",") {
		minStr, feeStr, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return ShippingSchedule{}, fmt.Errorf("%w: %q is not minItems:fee", ErrInvalidSchedule, part)
		}
		minItems, err := strconv.Atoi(strings.TrimSpace(minStr))
		if err != nil || minItems < 0 {
			return ShippingSchedule{}, fmt.Errorf("%w: bad item count %q", ErrInvalidSchedule, minStr)
		}
		fee, err := decimal.NewFromString(strings.TrimSpace(feeStr))
		if err != nil || fee.IsNegative() {
			return ShippingSchedule{}, fmt.Errorf("%w: bad fee %q", ErrInvalidSchedule, feeStr)
		}
		if seen[minItems] {
			return ShippingSchedule{}, fmt.Errorf("%w: duplicate tier %d", ErrInvalidSchedule, minItems)
		}
		seen[minItems] = true
		tiers = append(tiers, Tier{MinItems: minItems, Fee: fee})
	}

	return NewShippingSchedule(tiers...), nil
}

// Fee selects the tier with the highest MinItems not above totalItems.
// An empty cart always ships free.
func (s ShippingSchedule) Fee(totalItems int) decimal.Decimal {
	if totalItems <= 0 {
		return decimal.Zero
	}
	fee := decimal.Zero
	for _, t := range s.tiers {
		if t.MinItems > totalItems {
			break
		}
		fee = t.Fee
	}
	return fee
}

func (s ShippingSchedule) Tiers() []Tier {
	out := make([]Tier, len(s.tiers))
	copy(out, s.tiers)
	return out
}

func (s ShippingSchedule) String() string {
	parts := make([]string, len(s.tiers))
	for i, t := range s.tiers {
		parts[i] = fmt.Sprintf("%d:%s", t.MinItems, t.Fee.String())
	}
	return strings.Join(parts, ",")
}
