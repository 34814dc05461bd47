package entry

import (
	"math/big"
	"time"

	"github.com/painel-financeiro/painel/pkg/form"
	"github.com/shopspring/decimal"
)

// Form is what the entry editor needs from the form model.
type Form interface {
	Names() []string
	Has(name string) bool
	Value(name string) any
	SetValue(name string, value any) error
	SetValueSilently(name string, value any) error
	OnChange(name string, fn func(value any)) (unsubscribe func())
	Enable(name string)
	Disable(name string)
	IsEnabled(name string) bool
	SetRequired(name string, required bool)
	IsRequired(name string) bool
	IsTouched(name string) bool
	MarkAllAsTouched()
	Snapshot() form.Snapshot
	Restore(snapshot form.Snapshot)
	FieldErrors(name string) []string
	Errors() map[string][]string
	Valid() bool
	RawValues() map[string]any

	Text(name string) string
	Bool(name string) bool
	Int(name string) (int, bool)
	Decimal(name string) decimal.Decimal
	Rat(name string) *big.Rat
	Date(name string) time.Time
}

// Controller keeps the card and installment-count fields consistent with their driver
// fields. Each dependent field is either enabled and required, or disabled, cleared
// and optional.
type Controller struct {
	form        Form
	variant     Variant
	unsubscribe []func()
}

// NewController subscribes to committed changes of both driver fields.
func NewController(f Form, v Variant) *Controller {
	c := &Controller{form: f, variant: v}
	c.unsubscribe = append(c.unsubscribe,
		f.OnChange(v.DriverField, c.driverChanged),
		f.OnChange(FieldInstallment, c.installmentChanged),
	)
	return c
}

// Sync applies the rules once from the current driver values. It is used after
// hydration, whose writes bypass the change listeners. Enabling never clears, so
// dependents populated by the loaded record keep their values.
func (c *Controller) Sync() {
	c.driverChanged(c.form.Value(c.variant.DriverField))
	c.installmentChanged(c.form.Value(FieldInstallment))
}

func (c *Controller) Close() {
	for _, unsubscribe := range c.unsubscribe {
		unsubscribe()
	}
	c.unsubscribe = nil
}

func (c *Controller) driverChanged(value any) {
	if c.variant.IsCard(value) {
		c.require(FieldCard)
	} else {
		c.release(FieldCard)
	}
}

func (c *Controller) installmentChanged(value any) {
	if on, _ := value.(bool); on {
		c.require(FieldCount)
	} else {
		c.release(FieldCount)
	}
}

func (c *Controller) require(name string) {
	c.form.Enable(name)
	c.form.SetRequired(name, true)
}

func (c *Controller) release(name string) {
	// nil is valid for every kind, so this cannot fail.
	_ = c.form.SetValueSilently(name, nil)
	c.form.Disable(name)
	c.form.SetRequired(name, false)
}
