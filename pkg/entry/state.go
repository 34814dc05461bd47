package entry

import (
	"math/big"
	"time"

	"github.com/painel-financeiro/painel/pkg/form"
	"github.com/painel-financeiro/painel/pkg/installment"
	"github.com/painel-financeiro/painel/pkg/money"
	"github.com/shopspring/decimal"
)

type FieldState struct {
	Value any `json:"value"`
	// Display is the locale text of amounts ("R$ 1.234,56").
	Display  string   `json:"display,omitempty"`
	Enabled  bool     `json:"enabled"`
	Required bool     `json:"required"`
	Touched  bool     `json:"touched"`
	Errors   []string `json:"errors,omitempty"`
	Options  []string `json:"options,omitempty"`
	Counts   []int    `json:"counts,omitempty"`
}

type ParcelState struct {
	Number  int    `json:"number"`
	DueDate string `json:"dueDate,omitempty"`
	Amount  string `json:"amount"`
	Display string `json:"display"`
}

// State is what the browser renders for an open draft.
type State struct {
	Id       string                `json:"id"`
	Kind     string                `json:"kind"`
	RecordId int                   `json:"recordId,omitempty"`
	Valid    bool                  `json:"valid"`
	Fields   map[string]FieldState `json:"fields"`
	Order    []string              `json:"order"`
	Schedule []ParcelState         `json:"schedule,omitempty"`
}

func (e *Editor) State() State {
	s := State{
		Kind:   e.variant.Kind,
		Valid:  e.form.Valid(),
		Fields: make(map[string]FieldState),
		Order:  e.form.Names(),
	}
	specs := make(map[string]form.Spec)
	for _, spec := range e.variant.Specs() {
		specs[spec.Name] = spec
	}

	for _, name := range s.Order {
		value, display := renderValue(e.form.Value(name))
		spec := specs[name]
		s.Fields[name] = FieldState{
			Value:    value,
			Display:  display,
			Enabled:  e.form.IsEnabled(name),
			Required: e.form.IsRequired(name),
			Touched:  e.form.IsTouched(name),
			Errors:   e.form.FieldErrors(name),
			Options:  spec.Options,
			Counts:   spec.Counts,
		}
	}

	if in := e.Input(); in.Installment && in.Count > 0 && in.Total.IsPositive() {
		for _, p := range installment.Schedule(in) {
			s.Schedule = append(s.Schedule, ParcelState{
				Number:  p.Number,
				DueDate: formatDate(p.DueDate),
				Amount:  p.Amount.StringFixed(2),
				Display: money.Format(p.Amount),
			})
		}
	}
	return s
}

// renderValue turns a form value into its JSON form. Exact ratios are sent as
// "num/den" so the client can keep full precision.
func renderValue(v any) (any, string) {
	switch value := v.(type) {
	case decimal.Decimal:
		return value.String(), money.Format(value)
	case *big.Rat:
		if value == nil {
			return nil, ""
		}
		result := installment.Result{Amount: value}
		text := value.RatString()
		if n, exact := value.FloatPrec(); exact {
			text = value.FloatString(n)
		}
		return text, money.Format(result.AmountCents())
	case time.Time:
		return formatDate(value), ""
	}
	return v, ""
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(form.DateLayout)
}
