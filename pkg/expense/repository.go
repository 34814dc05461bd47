package expense

import (
	"context"
	"fmt"
	"net/url"

	"github.com/painel-financeiro/painel/pkg/entry"
	"github.com/painel-financeiro/painel/pkg/form"
	"github.com/painel-financeiro/painel/pkg/money"
	"github.com/painel-financeiro/painel/pkg/upstream"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	entry.Store
	List(ctx context.Context, filters url.Values) ([]Despesa, error)
	Get(ctx context.Context, id int) (Despesa, error)
	Delete(ctx context.Context, id int) error
}

type RepositoryImpl struct {
	resource *upstream.Resource[Despesa]
}

func NewRepository(client *upstream.Client) *RepositoryImpl {
	return &RepositoryImpl{resource: upstream.NewResource[Despesa](client, "/despesas")}
}

func (r *RepositoryImpl) List(ctx context.Context, filters url.Values) ([]Despesa, error) {
	items, err := r.resource.List(ctx, upstream.FilterQuery(filters, Filters, filterRenames))
	if err != nil {
		log.Errorf("failed to list expenses: %v", err)
		return nil, err
	}
	return items, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id int) (Despesa, error) {
	return r.resource.Get(ctx, id)
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int) error {
	if err := r.resource.Delete(ctx, id); err != nil {
		log.Errorf("failed to delete expense %d: %v", id, err)
		return err
	}
	return nil
}

// Load reads an expense as form values. Stored derived values are left to the editor,
// which recomputes them.
func (r *RepositoryImpl) Load(ctx context.Context, id int) (map[string]any, error) {
	d, err := r.resource.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return formValues(d), nil
}

// Save creates the expense when id is 0 and updates it otherwise.
func (r *RepositoryImpl) Save(ctx context.Context, id int, draft entry.Draft) (int, error) {
	body := upstream.JSON(payload(draft))
	if id == 0 {
		created, err := r.resource.Create(ctx, body)
		if err != nil {
			return 0, fmt.Errorf("failed to create expense: %w", err)
		}
		return created.Id, nil
	}
	if _, err := r.resource.Update(ctx, id, body); err != nil {
		return 0, fmt.Errorf("failed to update expense %d: %w", id, err)
	}
	return id, nil
}

func formValues(d Despesa) map[string]any {
	return map[string]any{
		entry.FieldDescription: d.Descricao,
		FieldGroup:             d.Grupo,
		FieldCategory:          d.Categoria,
		FieldPaymentMethod:     d.FormaDePagamento,
		FieldBank:              optional(d.BancoId),
		FieldSupplier:          optional(d.FornecedorId),
		FieldSubCategory:       d.SubCategoriaId,
		entry.FieldCard:        optional(d.CartaoId),
		entry.FieldLaunchDate:  d.DataLancamento,
		entry.FieldTotal:       d.Valor,
		entry.FieldInstallment: d.Parcelado,
		entry.FieldCount:       optional(d.QtdParcelas),
	}
}

// payload uses the field aliases the expense endpoint accepts. Absent ids are omitted.
func payload(d entry.Draft) map[string]any {
	total := money.Number(d.Total)
	p := map[string]any{
		"descricao":        d.Description,
		"categoria":        d.Text(FieldCategory),
		"grupo":            d.Text(FieldGroup),
		"formaDePagamento": d.Driver,
		"valor":            total,
		"total_com_juros":  total,
		"parcelado":        d.Installment,
		"data_lancamento":  d.LaunchDate.Format(form.DateLayout),
		"usuarioId":        d.OwnerId(),
	}
	if d.Installment && d.Count > 0 {
		p["qtd_parcelas"] = d.Count
	}
	if d.CardId > 0 {
		p["cartaoId"] = d.CardId
	}
	for _, name := range []string{FieldSubCategory, FieldSupplier, FieldBank} {
		if id := d.OptionalId(name); id != nil {
			p[name] = *id
		}
	}
	return p
}

func optional(id *int) any {
	if id == nil {
		return nil
	}
	return *id
}
