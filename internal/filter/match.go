package filter

import (
	"time"

	"github.com/shopspring/decimal"

	"shopcarts/internal/domain"
)

// Apply walks the ordered collection once and keeps every item satisfying all
// present criteria. An empty result is a valid outcome, not an error.
func Apply(spec Spec, items []domain.Item) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if Matches(spec, it) {
			out = append(out, it)
		}
	}
	return out
}

// Matches reports whether a single item satisfies every criterion in the spec.
func Matches(spec Spec, it domain.Item) bool {
	if spec.UserID != nil && it.UserID != *spec.UserID {
		return false
	}
	if spec.ItemID != nil && !compareInt(it.ItemID, *spec.ItemID) {
		return false
	}
	if spec.Quantity != nil && !compareInt(it.Quantity, *spec.Quantity) {
		return false
	}
	if spec.Price != nil && !comparePrice(it.Price, *spec.Price) {
		return false
	}
	if spec.Description != nil && it.Description != *spec.Description {
		return false
	}
	if spec.CreatedAt != nil {
		d, ok := itemDate(it.CreatedAt)
		if !ok || !compareDate(d, *spec.CreatedAt) {
			return false
		}
	}
	if spec.PriceRange != nil {
		if it.Price.LessThan(spec.PriceRange.Low) || it.Price.GreaterThan(spec.PriceRange.High) {
			return false
		}
	}
	if spec.QuantityRange != nil {
		if it.Quantity < spec.QuantityRange.Low || it.Quantity > spec.QuantityRange.High {
			return false
		}
	}
	if spec.CreatedAtRange != nil {
		d, ok := itemDate(it.CreatedAt)
		if !ok || d.Before(spec.CreatedAtRange.Low) || d.After(spec.CreatedAtRange.High) {
			return false
		}
	}
	if spec.MinPrice != nil && it.Price.LessThan(*spec.MinPrice) {
		return false
	}
	if spec.MaxPrice != nil && it.Price.GreaterThan(*spec.MaxPrice) {
		return false
	}
	if spec.MinQty != nil && it.Quantity < *spec.MinQty {
		return false
	}
	if spec.MaxQty != nil && it.Quantity > *spec.MaxQty {
		return false
	}
	return true
}

func compareInt(have int, c IntCriterion) bool {
	switch c.Op {
	case OpGt:
		return have > c.Value
	case OpGte:
		return have >= c.Value
	case OpLt:
		return have < c.Value
	case OpLte:
		return have <= c.Value
	default:
		return have == c.Value
	}
}

func comparePrice(have decimal.Decimal, c PriceCriterion) bool {
	switch c.Op {
	case OpGt:
		return have.GreaterThan(c.Value)
	case OpGte:
		return have.GreaterThanOrEqual(c.Value)
	case OpLt:
		return have.LessThan(c.Value)
	case OpLte:
		return have.LessThanOrEqual(c.Value)
	default:
		return have.Equal(c.Value)
	}
}

func compareDate(have time.Time, c DateCriterion) bool {
	switch c.Op {
	case OpGt:
		return have.After(c.Value)
	case OpGte:
		return !have.Before(c.Value)
	case OpLt:
		return have.Before(c.Value)
	case OpLte:
		return !have.After(c.Value)
	default:
		return have.Equal(c.Value)
	}
}

// itemDate truncates a stored RFC3339 timestamp to its calendar date. An
// unparseable timestamp never matches a date criterion.
func itemDate(raw string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}
