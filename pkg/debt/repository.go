package debt

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
	List(ctx context.Context, filters url.Values) ([]Divida, error)
	Get(ctx context.Context, id int) (Divida, error)
	Delete(ctx context.Context, id int) error
}

type RepositoryImpl struct {
	resource *upstream.Resource[Divida]
}

func NewRepository(client *upstream.Client) *RepositoryImpl {
	return &RepositoryImpl{resource: upstream.NewResource[Divida](client, "/dividas")}
}

func (r *RepositoryImpl) List(ctx context.Context, filters url.Values) ([]Divida, error) {
	items, err := r.resource.List(ctx, upstream.FilterQuery(filters, Filters, filterRenames))
	if err != nil {
		log.Errorf("failed to list debts: %v", err)
		return nil, err
	}
	return items, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id int) (Divida, error) {
	return r.resource.Get(ctx, id)
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int) error {
	if err := r.resource.Delete(ctx, id); err != nil {
		log.Errorf("failed to delete debt %d: %v", id, err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Load(ctx context.Context, id int) (map[string]any, error) {
	d, err := r.resource.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	values := map[string]any{
		entry.FieldDescription: d.Descricao,
		FieldType:              d.TipoDivida,
		entry.FieldCard:        nil,
		entry.FieldLaunchDate:  d.DataLancamento,
		entry.FieldTotal:       d.ValorTotal,
		entry.FieldInstallment: d.Parcelado,
		entry.FieldCount:       nil,
	}
	if d.CartaoId != nil {
		values[entry.FieldCard] = *d.CartaoId
	}
	if d.QtdParcelas != nil {
		values[entry.FieldCount] = *d.QtdParcelas
	}
	return values, nil
}

func (r *RepositoryImpl) Save(ctx context.Context, id int, draft entry.Draft) (int, error) {
	p := map[string]any{
		"descricao":       draft.Description,
		FieldType:         draft.Driver,
		"valor_total":     money.Number(draft.Total),
		"parcelado":       draft.Installment,
		"data_lancamento": draft.LaunchDate.Format(form.DateLayout),
		"usuarioId":       draft.OwnerId(),
	}
	if draft.Installment && draft.Count > 0 {
		p["qtd_parcelas"] = draft.Count
	}
	if draft.CardId > 0 {
		p["cartaoId"] = draft.CardId
	}

	if id == 0 {
		created, err := r.resource.Create(ctx, upstream.JSON(p))
		if err != nil {
			return 0, fmt.Errorf("failed to create debt: %w", err)
		}
		return created.Id, nil
	}
	if _, err := r.resource.Update(ctx, id, upstream.JSON(p)); err != nil {
		return 0, fmt.Errorf("failed to update debt %d: %w", id, err)
	}
	return id, nil
}
