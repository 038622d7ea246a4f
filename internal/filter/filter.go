// Package filter turns raw query parameters into a validated Spec and
// compiles that Spec into a predicate over cart items.
package filter

import (
	"time"

	"github.com/shopspring/decimal"
)

// Op is a comparison operator on a scalar criterion.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

// IntCriterion matches an integer field either exactly (OpEq) or against a
// relational operator.
type IntCriterion struct {
	Op    Op
	Value int
}

// PriceCriterion matches the price field with decimal comparison.
type PriceCriterion struct {
	Op    Op
	Value decimal.Decimal
}

// DateCriterion matches a timestamp field as a calendar date; time-of-day is
// ignored on both sides.
type DateCriterion struct {
	Op    Op
	Value time.Time
}

// IntRange is an inclusive [Low, High] bound. Low > High matches nothing.
type IntRange struct {
	Low, High int
}

// PriceRange is an inclusive decimal bound.
type PriceRange struct {
	Low, High decimal.Decimal
}

// DateRange is an inclusive calendar-date bound.
type DateRange struct {
	Low, High time.Time
}

// Spec is the validated, request-scoped filter specification. Absent fields
// are nil and constrain nothing; the zero Spec matches every item.
type Spec struct {
	UserID      *int
	ItemID      *IntCriterion
	Quantity    *IntCriterion
	Price       *PriceCriterion
	CreatedAt   *DateCriterion
	Description *string

	PriceRange     *PriceRange
	QuantityRange  *IntRange
	CreatedAtRange *DateRange

	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	MinQty   *int
	MaxQty   *int
}

// WithUser returns a copy of the spec pinned to one user id.
func (s Spec) WithUser(userID int) Spec {
	s.UserID = &userID
	return s
}
