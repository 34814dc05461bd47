// Package form is a small reactive form model: named fields with values, enabled and
// required flags, validators and per-field change notifications.
//
// SetValue notifies listeners of the field through the event bus; SetValueSilently
// writes without notifying anyone. A Form has a single writer and is not safe for
// concurrent use.
package form

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/painel-financeiro/painel/internal/event_bus"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Form struct {
	bus    *event_bus.EventBus
	fields map[string]*field
	order  []string
}

// New builds a form from specs. Each form gets its own bus unless one is given.
func New(bus *event_bus.EventBus, specs ...Spec) *Form {
	if bus == nil {
		bus = event_bus.NewEventBus()
	}
	f := &Form{
		bus:    bus,
		fields: make(map[string]*field, len(specs)),
	}
	for _, spec := range specs {
		fl := &field{
			spec:     spec,
			enabled:  !spec.Disabled,
			required: spec.Required,
		}
		value, err := fl.coerce(spec.Initial)
		if err != nil {
			log.Warnf("form: ignoring initial value of %s: %v", spec.Name, err)
		}
		fl.value = value
		if _, exists := f.fields[spec.Name]; !exists {
			f.order = append(f.order, spec.Name)
		}
		f.fields[spec.Name] = fl
	}
	return f
}

func (f *Form) get(name string) (*field, error) {
	fl, ok := f.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return fl, nil
}

func (f *Form) Has(name string) bool {
	_, ok := f.fields[name]
	return ok
}

// Names lists the fields in declaration order.
func (f *Form) Names() []string {
	return append([]string(nil), f.order...)
}

func (f *Form) Spec(name string) (Spec, bool) {
	fl, ok := f.fields[name]
	if !ok {
		return Spec{}, false
	}
	return fl.spec, true
}

func (f *Form) Value(name string) any {
	fl, ok := f.fields[name]
	if !ok {
		return nil
	}
	return fl.value
}

// SetValue coerces and stores the value, then notifies the field's listeners
// synchronously before returning.
func (f *Form) SetValue(name string, value any) error {
	fl, err := f.get(name)
	if err != nil {
		return err
	}
	v, err := fl.coerce(value)
	if err != nil {
		return err
	}
	fl.value = v

	err = f.bus.Publish(event_bus.NewEvent(context.Background(), event_bus.FieldChangedType(name), event_bus.FieldChanged{
		Field: name,
		Value: v,
	}))
	if err != nil {
		log.Errorf("form: change listeners of %s failed: %v", name, err)
	}
	return nil
}

// SetValueSilently stores the value without notifying listeners.
func (f *Form) SetValueSilently(name string, value any) error {
	fl, err := f.get(name)
	if err != nil {
		return err
	}
	v, err := fl.coerce(value)
	if err != nil {
		return err
	}
	fl.value = v
	return nil
}

// OnChange registers fn for committed (non-silent) changes of the field.
func (f *Form) OnChange(name string, fn func(value any)) (unsubscribe func()) {
	return event_bus.SubscribeTyped(f.bus, event_bus.FieldChangedType(name), func(e event_bus.EventT[event_bus.FieldChanged]) error {
		fn(e.Data.Value)
		return nil
	})
}

func (f *Form) Enable(name string) {
	if fl, ok := f.fields[name]; ok {
		fl.enabled = true
	}
}

func (f *Form) Disable(name string) {
	if fl, ok := f.fields[name]; ok {
		fl.enabled = false
	}
}

func (f *Form) IsEnabled(name string) bool {
	fl, ok := f.fields[name]
	return ok && fl.enabled
}

func (f *Form) SetRequired(name string, required bool) {
	if fl, ok := f.fields[name]; ok {
		fl.required = required
	}
}

func (f *Form) IsRequired(name string) bool {
	fl, ok := f.fields[name]
	return ok && fl.required
}

func (f *Form) MarkAllAsTouched() {
	for _, fl := range f.fields {
		fl.touched = true
	}
}

// Snapshot captures the state of every field. Restore puts it back without
// notifying listeners.
type Snapshot map[string]field

func (f *Form) Snapshot() Snapshot {
	snapshot := make(Snapshot, len(f.fields))
	for name, fl := range f.fields {
		snapshot[name] = *fl
	}
	return snapshot
}

func (f *Form) Restore(snapshot Snapshot) {
	for name, saved := range snapshot {
		if fl, ok := f.fields[name]; ok {
			*fl = saved
		}
	}
}

func (f *Form) IsTouched(name string) bool {
	fl, ok := f.fields[name]
	return ok && fl.touched
}

// FieldErrors lists the error keys of one field. Disabled fields never have errors.
func (f *Form) FieldErrors(name string) []string {
	fl, ok := f.fields[name]
	if !ok || !fl.enabled {
		return nil
	}
	if isEmpty(fl.value) {
		if fl.required {
			return []string{"required"}
		}
		return nil
	}
	var errs []string
	for _, validate := range fl.spec.Validators {
		if key := validate(fl.value); key != "" {
			errs = append(errs, key)
		}
	}
	return errs
}

// Errors maps each invalid field to its error keys.
func (f *Form) Errors() map[string][]string {
	errs := make(map[string][]string)
	for _, name := range f.order {
		if fieldErrs := f.FieldErrors(name); len(fieldErrs) > 0 {
			errs[name] = fieldErrs
		}
	}
	return errs
}

func (f *Form) Valid() bool {
	for _, name := range f.order {
		if len(f.FieldErrors(name)) > 0 {
			return false
		}
	}
	return true
}

// Values returns the values of enabled fields only.
func (f *Form) Values() map[string]any {
	values := make(map[string]any, len(f.fields))
	for name, fl := range f.fields {
		if fl.enabled {
			values[name] = fl.value
		}
	}
	return values
}

// RawValues returns every field value, disabled ones included.
func (f *Form) RawValues() map[string]any {
	values := make(map[string]any, len(f.fields))
	for name, fl := range f.fields {
		values[name] = fl.value
	}
	return values
}

func (f *Form) Text(name string) string {
	s, _ := f.Value(name).(string)
	return s
}

func (f *Form) Bool(name string) bool {
	b, _ := f.Value(name).(bool)
	return b
}

// Int returns the value and whether it is present.
func (f *Form) Int(name string) (int, bool) {
	n, ok := f.Value(name).(int)
	return n, ok
}

func (f *Form) Decimal(name string) decimal.Decimal {
	switch v := f.Value(name).(type) {
	case decimal.Decimal:
		return v
	case *big.Rat:
		if v != nil {
			return decimal.NewFromBigRat(v, 2)
		}
	}
	return decimal.Zero
}

func (f *Form) Rat(name string) *big.Rat {
	switch v := f.Value(name).(type) {
	case *big.Rat:
		return v
	case decimal.Decimal:
		return v.Rat()
	}
	return nil
}

// Date returns the zero time when the field is empty.
func (f *Form) Date(name string) time.Time {
	t, _ := f.Value(name).(time.Time)
	return t
}
