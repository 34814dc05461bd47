package entry

import (
	"errors"
	"fmt"
	"time"

	"github.com/painel-financeiro/painel/internal/utils"
	"github.com/painel-financeiro/painel/pkg/form"
	"github.com/painel-financeiro/painel/pkg/installment"
	log "github.com/sirupsen/logrus"
)

var (
	ErrReadOnlyField = errors.New("field is computed")
	ErrFieldDisabled = errors.New("field is disabled")
)

// Editor owns one draft's form. Every committed change runs the controller through
// the change listeners and then recomputes the derived fields exactly once, writing
// them silently. The recompute is never subscribed to the change stream.
type Editor struct {
	variant    Variant
	form       Form
	controller *Controller
	clock      utils.Clock
}

func NewEditor(v Variant, clock utils.Clock) *Editor {
	return newEditor(v, form.New(nil, v.Specs()...), clock)
}

func newEditor(v Variant, f Form, clock utils.Clock) *Editor {
	e := &Editor{
		variant:    v,
		form:       f,
		controller: NewController(f, v),
		clock:      clock,
	}
	e.controller.Sync()
	e.recompute()
	return e
}

func (e *Editor) Variant() Variant {
	return e.variant
}

// Change applies one user edit.
func (e *Editor) Change(name string, value any) error {
	if IsDerived(name) {
		return fmt.Errorf("%w: %s", ErrReadOnlyField, name)
	}
	if !e.form.Has(name) {
		return fmt.Errorf("%w: %s", form.ErrUnknownField, name)
	}
	if !e.form.IsEnabled(name) {
		return fmt.Errorf("%w: %s", ErrFieldDisabled, name)
	}
	if err := e.form.SetValue(name, value); err != nil {
		return err
	}
	e.recompute()
	return nil
}

// Hydrate loads a stored record. Values are written silently, then the controller
// rules are applied once and the derived fields are recomputed once. Stored derived
// values are ignored because they are recomputed.
func (e *Editor) Hydrate(values map[string]any) {
	for _, name := range e.form.Names() {
		value, ok := values[name]
		if !ok || IsDerived(name) {
			continue
		}
		if err := e.form.SetValueSilently(name, value); err != nil {
			log.Warnf("hydrating %s draft: skipping %s: %v", e.variant.Kind, name, err)
		}
	}
	e.controller.Sync()
	e.recompute()
}

func (e *Editor) Input() installment.Input {
	in := installment.Input{
		Total:       e.form.Decimal(FieldTotal),
		Installment: e.form.Bool(FieldInstallment),
		LaunchDate:  e.form.Date(FieldLaunchDate),
	}
	if n, ok := e.form.Int(FieldCount); ok {
		in.Count = n
	}
	return in
}

func (e *Editor) recompute() {
	in := e.Input()
	result := installment.Calculate(in)

	var end any
	if result.HasEndDate() {
		end = result.EndDate
	}
	var remaining any
	if in.Installment && in.Count > 0 {
		remaining = remainingParcels(in, utils.Today(e.clock))
	}

	e.setDerived(FieldParcelAmount, result.Amount)
	e.setDerived(FieldInterest, result.Interest)
	e.setDerived(FieldEndDate, end)
	e.setDerived(FieldRemaining, remaining)
}

func (e *Editor) setDerived(name string, value any) {
	if err := e.form.SetValueSilently(name, value); err != nil {
		log.Errorf("writing derived field %s: %v", name, err)
	}
}

// remainingParcels counts the parcels not yet due on today. Without a launch date
// nothing is due yet.
func remainingParcels(in installment.Input, today time.Time) int {
	if in.LaunchDate.IsZero() {
		return in.Count
	}
	due := 0
	for i := 1; i <= in.Count; i++ {
		if installment.AddMonths(in.LaunchDate, i).After(today) {
			break
		}
		due++
	}
	return in.Count - due
}

func (e *Editor) Valid() bool {
	return e.form.Valid()
}

func (e *Editor) MarkAllAsTouched() {
	e.form.MarkAllAsTouched()
}

func (e *Editor) Close() {
	e.controller.Close()
}
