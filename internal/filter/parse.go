package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shopcarts/internal/domain"
)

// DateLayout is the calendar-date format accepted by date criteria and the
// created_at range.
const DateLayout = "2006-01-02"

// Parse builds a Spec from raw query parameters. Unknown parameter names are
// ignored so the HTTP layer can carry its own arguments alongside filters.
// Every failure is a domain.ValidationError with a caller-facing message.
func Parse(params map[string]string) (Spec, error) {
	var spec Spec

	if raw, ok := lookup(params, "user_id"); ok {
		n, err := parseInt("user_id", raw)
		if err != nil {
			return Spec{}, err
		}
		spec.UserID = &n
	}
	if raw, ok := lookup(params, "item_id"); ok {
		crit, err := parseIntCriterion("item_id", raw)
		if err != nil {
			return Spec{}, err
		}
		spec.ItemID = crit
	}
	if raw, ok := lookup(params, "quantity"); ok {
		crit, err := parseIntCriterion("quantity", raw)
		if err != nil {
			return Spec{}, err
		}
		spec.Quantity = crit
	}
	if raw, ok := lookup(params, "price"); ok {
		op, val, err := splitOperator(raw)
		if err != nil {
			return Spec{}, err
		}
		d, derr := decimal.NewFromString(val)
		if derr != nil {
			return Spec{}, domain.Validationf("Invalid value for price: %s", val)
		}
		spec.Price = &PriceCriterion{Op: op, Value: d}
	}
	if raw, ok := lookup(params, "created_at"); ok {
		op, val, err := splitOperator(raw)
		if err != nil {
			return Spec{}, err
		}
		t, terr := time.Parse(DateLayout, val)
		if terr != nil {
			return Spec{}, domain.Validationf("Invalid value for created_at: %s", val)
		}
		spec.CreatedAt = &DateCriterion{Op: op, Value: t}
	}
	if raw, ok := lookup(params, "description"); ok {
		spec.Description = &raw
	}

	if raw, ok := lookup(params, "price_range"); ok {
		lo, hi, err := splitRange("price_range", raw)
		if err != nil {
			return Spec{}, err
		}
		low, lerr := decimal.NewFromString(lo)
		high, herr := decimal.NewFromString(hi)
		if lerr != nil || herr != nil {
			return Spec{}, domain.Validationf("Invalid value for price_range: %s", raw)
		}
		spec.PriceRange = &PriceRange{Low: low, High: high}
	}
	if raw, ok := lookup(params, "quantity_range"); ok {
		lo, hi, err := splitRange("quantity_range", raw)
		if err != nil {
			return Spec{}, err
		}
		low, lerr := strconv.Atoi(lo)
		high, herr := strconv.Atoi(hi)
		if lerr != nil || herr != nil {
			return Spec{}, domain.Validationf("Invalid value for quantity_range: %s", raw)
		}
		spec.QuantityRange = &IntRange{Low: low, High: high}
	}
	if raw, ok := lookup(params, "created_at_range"); ok {
		lo, hi, err := splitRange("created_at_range", raw)
		if err != nil {
			return Spec{}, err
		}
		low, lerr := time.Parse(DateLayout, lo)
		high, herr := time.Parse(DateLayout, hi)
		if lerr != nil || herr != nil {
			return Spec{}, domain.Validationf("Invalid value for created_at_range: %s", raw)
		}
		spec.CreatedAtRange = &DateRange{Low: low, High: high}
	}

	if raw, ok := lookup(params, "min-price"); ok {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return Spec{}, domain.Validationf("Invalid value for min-price: %s", raw)
		}
		spec.MinPrice = &d
	}
	if raw, ok := lookup(params, "max-price"); ok {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return Spec{}, domain.Validationf("Invalid value for max-price: %s", raw)
		}
		spec.MaxPrice = &d
	}
	if raw, ok := lookup(params, "min-qty"); ok {
		n, err := parseInt("min-qty", raw)
		if err != nil {
			return Spec{}, err
		}
		spec.MinQty = &n
	}
	if raw, ok := lookup(params, "max-qty"); ok {
		n, err := parseInt("max-qty", raw)
		if err != nil {
			return Spec{}, err
		}
		spec.MaxQty = &n
	}

	if (spec.Price != nil || spec.PriceRange != nil) && (spec.MinPrice != nil || spec.MaxPrice != nil) {
		return Spec{}, domain.NewValidationError(
			"Cannot use both 'price' or 'price_range' and 'min-price'/'max-price'")
	}

	return spec, nil
}

func lookup(params map[string]string, name string) (string, bool) {
	raw, ok := params[name]
	if !ok || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return raw, true
}

// splitOperator decodes the ~op~value convention. A bare value means equality.
func splitOperator(raw string) (Op, string, error) {
	if !strings.HasPrefix(raw, "~") {
		return OpEq, raw, nil
	}
	parts := strings.SplitN(raw[1:], "~", 2)
	if len(parts) != 2 {
		return "", "", domain.Validationf("Invalid operator format: %s", raw)
	}
	switch op := Op(strings.ToLower(parts[0])); op {
	case OpGt, OpGte, OpLt, OpLte:
		return op, parts[1], nil
	default:
		return "", "", domain.Validationf("Invalid operator: %s", parts[0])
	}
}

func splitRange(field, raw string) (string, string, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return "", "", domain.Validationf("Invalid range format for %s: expected start,end", field)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

func parseIntCriterion(field, raw string) (*IntCriterion, error) {
	op, val, err := splitOperator(raw)
	if err != nil {
		return nil, err
	}
	n, nerr := strconv.Atoi(val)
	if nerr != nil {
		return nil, domain.Validationf("Invalid value for %s: %s", field, val)
	}
	return &IntCriterion{Op: op, Value: n}, nil
}

func parseInt(field, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.Validationf("Invalid value for %s: %s", field, raw)
	}
	return n, nil
}
