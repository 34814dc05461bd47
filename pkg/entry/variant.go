package entry

import (
	"context"
	"slices"

	"github.com/painel-financeiro/painel/pkg/form"
	"github.com/painel-financeiro/painel/pkg/installment"
	"github.com/painel-financeiro/painel/pkg/money"
	"github.com/shopspring/decimal"
)

// Fields shared by every entry form.
const (
	FieldDescription  = "descricao"
	FieldCard         = "cartaoId"
	FieldLaunchDate   = "data_lancamento"
	FieldTotal        = "valor_total"
	FieldInstallment  = "parcelado"
	FieldCount        = "qtd_parcelas"
	FieldParcelAmount = "valor_parcela"
	FieldInterest     = "juros_aplicado"
	FieldEndDate      = "data_fim_parcela"
	FieldRemaining    = "qant_parcelas_restantes"
)

// DerivedFields are computed from the other fields and never submitted upstream.
var DerivedFields = []string{FieldParcelAmount, FieldInterest, FieldEndDate, FieldRemaining}

func IsDerived(name string) bool {
	return slices.Contains(DerivedFields, name)
}

// Store is the persistence side of an entry kind: it loads a record as form values and
// saves a draft, returning the record id. Save creates when id is 0.
type Store interface {
	Load(ctx context.Context, id int) (map[string]any, error)
	Save(ctx context.Context, id int, draft Draft) (int, error)
}

// Variant describes one entry form (expense, debt). The variants differ in the driver
// field that decides whether a card is needed and in their extra fields.
type Variant struct {
	// Kind is the route segment and event kind ("despesas", "dividas").
	Kind          string
	DriverField   string
	DriverOptions []string
	// CardValues are the driver values that require a card.
	CardValues        []string
	InstallmentCounts []int
	// Fields are declared between the description and the driver field.
	Fields []form.Spec
	Store  Store
}

func (v Variant) IsCard(value any) bool {
	s, ok := value.(string)
	return ok && slices.Contains(v.CardValues, s)
}

func (v Variant) counts() []int {
	if len(v.InstallmentCounts) > 0 {
		return v.InstallmentCounts
	}
	return installment.AllowedCounts
}

// Specs lists the form fields in declaration order. Driver fields come before the
// fields they control.
func (v Variant) Specs() []form.Spec {
	specs := []form.Spec{
		{Name: FieldDescription, Kind: form.Text, Initial: "", Required: true},
	}
	specs = append(specs, v.Fields...)
	specs = append(specs,
		form.Spec{Name: v.DriverField, Kind: form.Choice, Options: v.DriverOptions, Required: true},
		form.Spec{Name: FieldCard, Kind: form.Id, Disabled: true},
		form.Spec{Name: FieldLaunchDate, Kind: form.Date, Required: true},
		form.Spec{Name: FieldTotal, Kind: form.Money, Initial: decimal.Zero, Required: true,
			Validators: []form.Validator{form.Min(money.Cent)}},
		form.Spec{Name: FieldInstallment, Kind: form.Bool, Initial: false, Required: true},
		form.Spec{Name: FieldCount, Kind: form.Count, Counts: v.counts(), Disabled: true},
		form.Spec{Name: FieldParcelAmount, Kind: form.Ratio, Initial: decimal.Zero, Disabled: true},
		form.Spec{Name: FieldInterest, Kind: form.Money, Initial: decimal.Zero},
		form.Spec{Name: FieldEndDate, Kind: form.Date, Disabled: true},
		form.Spec{Name: FieldRemaining, Kind: form.Number},
	)
	return specs
}
