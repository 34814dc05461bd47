package expense

import (
	"github.com/painel-financeiro/painel/internal/config"
	"github.com/painel-financeiro/painel/pkg/entry"
	"github.com/painel-financeiro/painel/pkg/form"
	"github.com/shopspring/decimal"
)

const Kind = "despesas"

const (
	FieldGroup         = "grupo"
	FieldCategory      = "categoria"
	FieldPaymentMethod = "formaPagamento"
	FieldBank          = "bancoId"
	FieldSupplier      = "fornecedorId"
	FieldSubCategory   = "subCategoriaId"
)

type Ref struct {
	Id        int    `json:"id"`
	Descricao string `json:"descricao,omitempty"`
	Nome      string `json:"nome,omitempty"`
}

// Despesa is the upstream expense record.
type Despesa struct {
	Id               int              `json:"id"`
	Descricao        string           `json:"descricao"`
	Categoria        string           `json:"categoria"`
	Grupo            string           `json:"grupo"`
	Valor            decimal.Decimal  `json:"valor"`
	FormaDePagamento string           `json:"formaDePagamento"`
	Parcelado        bool             `json:"parcelado"`
	QtdParcelas      *int             `json:"qtd_parcelas,omitempty"`
	ValorParcela     *decimal.Decimal `json:"valor_parcela,omitempty"`
	TotalComJuros    *decimal.Decimal `json:"total_com_juros,omitempty"`
	JurosAplicado    *decimal.Decimal `json:"juros_aplicado,omitempty"`
	DataLancamento   string           `json:"data_lancamento"`
	DataFimParcela   *string          `json:"data_fim_parcela,omitempty"`
	CartaoId         *int             `json:"cartaoId,omitempty"`
	SubCategoriaId   int              `json:"subCategoriaId"`
	FornecedorId     *int             `json:"fornecedorId,omitempty"`
	BancoId          *int             `json:"bancoId,omitempty"`
	Cartao           *Ref             `json:"cartao,omitempty"`
	SubCategoria     *Ref             `json:"subCategoria,omitempty"`
	Fornecedor       *Ref             `json:"fornecedor,omitempty"`
	Banco            *Ref             `json:"banco,omitempty"`
	CreatedAt        string           `json:"created_at,omitempty"`
	UpdatedAt        string           `json:"updated_at,omitempty"`
}

// Filters accepted by the expense listing.
var Filters = []string{"id", "descricao", "tipoDespesa", "cartaoId", "parcelado"}

var filterRenames = map[string]string{"tipoDespesa": "tipo_despesa"}

// NewVariant builds the expense form. A card is needed for the card payment methods.
func NewVariant(forms config.Forms, store entry.Store) entry.Variant {
	return entry.Variant{
		Kind:              Kind,
		DriverField:       FieldPaymentMethod,
		DriverOptions:     forms.Expense.PaymentMethods,
		CardValues:        forms.Expense.CardMethods,
		InstallmentCounts: forms.InstallmentCounts,
		Fields: []form.Spec{
			{Name: FieldGroup, Kind: form.Choice, Options: forms.Expense.Groups, Required: true},
			{Name: FieldCategory, Kind: form.Choice, Options: forms.Expense.Categories, Required: true},
			{Name: FieldBank, Kind: form.Id},
			{Name: FieldSupplier, Kind: form.Id},
			{Name: FieldSubCategory, Kind: form.Id, Required: true},
		},
		Store: store,
	}
}
