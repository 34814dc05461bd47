package entry

import (
	"strconv"
	"time"

	"github.com/painel-financeiro/painel/pkg/installment"
	"github.com/shopspring/decimal"
)

// Draft is the submission snapshot of an editor. It carries only persisted fields:
// derived fields are always left out and recomputed on the next load.
type Draft struct {
	Kind        string
	RecordId    int
	Description string
	Driver      string
	Installment bool
	// Count is 0 when the entry is not split.
	Count      int
	Total      decimal.Decimal
	LaunchDate time.Time
	// CardId is 0 when no card applies.
	CardId int
	UserId string
	// Values holds every persisted field, variant-specific ones included.
	Values map[string]any
}

// Draft snapshots the current form for submission.
func (e *Editor) Draft() Draft {
	values := e.form.RawValues()
	for _, name := range DerivedFields {
		delete(values, name)
	}

	d := Draft{
		Kind:        e.variant.Kind,
		Description: e.form.Text(FieldDescription),
		Driver:      e.form.Text(e.variant.DriverField),
		Installment: e.form.Bool(FieldInstallment),
		Total:       e.form.Decimal(FieldTotal),
		LaunchDate:  e.form.Date(FieldLaunchDate),
		Values:      values,
	}
	if d.Installment {
		d.Count, _ = e.form.Int(FieldCount)
	}
	if e.form.IsEnabled(FieldCard) {
		d.CardId, _ = e.form.Int(FieldCard)
	}
	return d
}

func (d Draft) Input() installment.Input {
	return installment.Input{
		Total:       d.Total,
		Installment: d.Installment,
		Count:       d.Count,
		LaunchDate:  d.LaunchDate,
	}
}

func (d Draft) Text(name string) string {
	s, _ := d.Values[name].(string)
	return s
}

// OptionalId returns nil for absent ids so they are omitted from payloads.
func (d Draft) OptionalId(name string) *int {
	n, ok := d.Values[name].(int)
	if !ok || n <= 0 {
		return nil
	}
	return &n
}

// Payload is the generic submission body: persisted values plus the owner.
func (d Draft) Payload() map[string]any {
	payload := make(map[string]any, len(d.Values)+1)
	for name, value := range d.Values {
		if IsDerived(name) {
			continue
		}
		payload[name] = value
	}
	payload["usuarioId"] = d.OwnerId()
	return payload
}

// OwnerId is the user id as the upstream expects it: a number when it is numeric.
func (d Draft) OwnerId() any {
	if n, err := strconv.Atoi(d.UserId); err == nil {
		return n
	}
	return d.UserId
}
