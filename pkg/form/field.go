package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/painel-financeiro/painel/pkg/money"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)

const DateLayout = "2006-01-02"

// MaskedKey marks a Money value as the raw keystrokes of a masked input.
const MaskedKey = "masked"

// Kind decides how raw input is coerced into a field value. A nil value means empty.
type Kind int

const (
	Text Kind = iota
	// Choice holds one of Spec.Options.
	Choice
	// Id holds an upstream record id (int).
	Id
	// Money holds a decimal.Decimal parsed from locale text, a JSON number or masked
	// keystrokes sent as {"masked": "..."}.
	Money
	// Ratio holds an exact *big.Rat.
	Ratio
	Bool
	// Count holds a positive int, restricted to Spec.Counts when set.
	Count
	// Date holds a calendar date as a UTC time.Time.
	Date
	// Number holds a non-negative int.
	Number
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Choice:
		return "choice"
	case Id:
		return "id"
	case Money:
		return "money"
	case Ratio:
		return "ratio"
	case Bool:
		return "bool"
	case Count:
		return "count"
	case Date:
		return "date"
	case Number:
		return "number"
	}
	return "unknown"
}

// Validator returns an error key ("min", ...) when the value is rejected, or "".
type Validator func(value any) string

// Spec declares a field when building a Form.
type Spec struct {
	Name       string
	Kind       Kind
	Initial    any
	Disabled   bool
	Required   bool
	Options    []string
	Counts     []int
	Validators []Validator
}

type field struct {
	spec     Spec
	value    any
	enabled  bool
	required bool
	touched  bool
}

// Min rejects decimal values lower than min. Empty values pass; Required covers them.
func Min(min decimal.Decimal) Validator {
	return func(value any) string {
		d, ok := value.(decimal.Decimal)
		if !ok {
			return ""
		}
		if d.LessThan(min) {
			return "min"
		}
		return ""
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case time.Time:
		return v.IsZero()
	case *big.Rat:
		return v == nil
	}
	return false
}

func (f *field) coerce(raw any) (any, error) {
	if raw == nil {
		if f.spec.Kind == Bool {
			return false, nil
		}
		return nil, nil
	}
	value, err := coerce(f.spec, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.spec.Name, err)
	}
	return value, nil
}

func coerce(spec Spec, raw any) (any, error) {
	switch spec.Kind {
	case Text:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected text, got %T", ErrInvalidValue, raw)
		}
		return s, nil

	case Choice:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected text, got %T", ErrInvalidValue, raw)
		}
		if s == "" {
			return nil, nil
		}
		if len(spec.Options) > 0 && !slices.Contains(spec.Options, s) {
			return nil, fmt.Errorf("%w: %q is not one of %v", ErrInvalidValue, s, spec.Options)
		}
		return s, nil

	case Id, Count, Number:
		n, empty, err := toInt(raw)
		if err != nil {
			return nil, err
		}
		if empty {
			return nil, nil
		}
		if spec.Kind == Number && n >= 0 {
			return n, nil
		}
		if n <= 0 {
			return nil, fmt.Errorf("%w: %d must be positive", ErrInvalidValue, n)
		}
		if spec.Kind == Count && len(spec.Counts) > 0 && !slices.Contains(spec.Counts, n) {
			return nil, fmt.Errorf("%w: %d is not an allowed count", ErrInvalidValue, n)
		}
		return n, nil

	case Money:
		switch v := raw.(type) {
		case decimal.Decimal:
			return v, nil
		case string:
			return money.Parse(v), nil
		case json.Number:
			d, err := decimal.NewFromString(v.String())
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
			}
			return d, nil
		case float64:
			return decimal.NewFromFloat(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case map[string]any:
			// {"masked": "123456"} carries raw keystrokes of a currency-masked input
			if keys, ok := v[MaskedKey].(string); ok && len(v) == 1 {
				return money.ParseMasked(keys), nil
			}
		}
		return nil, fmt.Errorf("%w: expected amount, got %T", ErrInvalidValue, raw)

	case Ratio:
		switch v := raw.(type) {
		case *big.Rat:
			if v == nil {
				return nil, nil
			}
			return new(big.Rat).Set(v), nil
		case decimal.Decimal:
			return v.Rat(), nil
		case json.Number:
			r, ok := new(big.Rat).SetString(v.String())
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrInvalidValue, v)
			}
			return r, nil
		case float64:
			return decimal.NewFromFloat(v).Rat(), nil
		}
		return nil, fmt.Errorf("%w: expected amount, got %T", ErrInvalidValue, raw)

	case Bool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidValue, v)
			}
			return b, nil
		}
		return nil, fmt.Errorf("%w: expected boolean, got %T", ErrInvalidValue, raw)

	case Date:
		switch v := raw.(type) {
		case time.Time:
			if v.IsZero() {
				return nil, nil
			}
			y, m, d := v.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		case string:
			return parseDate(v)
		}
		return nil, fmt.Errorf("%w: expected date, got %T", ErrInvalidValue, raw)
	}
	return nil, fmt.Errorf("%w: unsupported kind %s", ErrInvalidValue, spec.Kind)
}

func toInt(raw any) (n int, empty bool, err error) {
	switch v := raw.(type) {
	case int:
		return v, false, nil
	case int64:
		return int(v), false, nil
	case float64:
		if v != float64(int(v)) {
			return 0, false, fmt.Errorf("%w: %v is not an integer", ErrInvalidValue, v)
		}
		return int(v), false, nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, false, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, v)
		}
		return int(i), false, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, true, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, false, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, v)
		}
		return i, false, nil
	}
	return 0, false, fmt.Errorf("%w: expected integer, got %T", ErrInvalidValue, raw)
}

// parseDate accepts a plain date or any RFC 3339 timestamp; only the date part is kept.
func parseDate(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a date", ErrInvalidValue, s)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
