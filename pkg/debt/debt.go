package debt

import (
	"github.com/painel-financeiro/painel/internal/config"
	"github.com/painel-financeiro/painel/pkg/entry"
	"github.com/shopspring/decimal"
)

const Kind = "dividas"

const FieldType = "tipo_divida"

type CardRef struct {
	Id           int     `json:"id"`
	Descricao    string  `json:"descricao"`
	Bandeira     string  `json:"bandeira,omitempty"`
	TipoCartao   string  `json:"tipo_cartao,omitempty"`
	ImagemCartao *string `json:"imagem_cartao,omitempty"`
}

// Divida is the upstream debt record.
type Divida struct {
	Id                    int              `json:"id"`
	Descricao             string           `json:"descricao"`
	ValorTotal            decimal.Decimal  `json:"valor_total"`
	Parcelado             bool             `json:"parcelado"`
	QtdParcelas           *int             `json:"qtd_parcelas,omitempty"`
	ValorParcela          *decimal.Decimal `json:"valor_parcela,omitempty"`
	TotalComJuros         *decimal.Decimal `json:"total_com_juros,omitempty"`
	DataLancamento        string           `json:"data_lancamento"`
	DataFimParcela        *string          `json:"data_fim_parcela,omitempty"`
	TipoDivida            string           `json:"tipo_divida"`
	CartaoId              *int             `json:"cartaoId,omitempty"`
	JurosAplicado         *decimal.Decimal `json:"juros_aplicado,omitempty"`
	QantParcelasRestantes *int             `json:"qant_parcelas_restantes,omitempty"`
	Cartao                *CardRef         `json:"cartao,omitempty"`
	CreatedAt             string           `json:"created_at,omitempty"`
	UpdatedAt             string           `json:"updated_at,omitempty"`
}

// Filters accepted by the debt listing.
var Filters = []string{"id", "descricao", "tipoDivida", "cartaoId", "parcelado"}

var filterRenames = map[string]string{"tipoDivida": "tipo_divida"}

// NewVariant builds the debt form. A card is needed for the card debt types.
func NewVariant(forms config.Forms, store entry.Store) entry.Variant {
	return entry.Variant{
		Kind:              Kind,
		DriverField:       FieldType,
		DriverOptions:     forms.Debt.Types,
		CardValues:        forms.Debt.CardTypes,
		InstallmentCounts: forms.InstallmentCounts,
		Store:             store,
	}
}
