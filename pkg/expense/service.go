package expense

import (
	"context"
	"net/url"
	"strconv"

	"github.com/painel-financeiro/painel/internal/event_bus"
	"github.com/painel-financeiro/painel/pkg/entry"
	"github.com/painel-financeiro/painel/pkg/money"
	"github.com/painel-financeiro/painel/pkg/report"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	List(ctx context.Context, filters url.Values) ([]Despesa, error)
	Get(ctx context.Context, id int) (Despesa, error)
	Delete(ctx context.Context, id int) error
	Export(ctx context.Context, filters url.Values) (report.Sheet, error)
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *ServiceImpl) List(ctx context.Context, filters url.Values) ([]Despesa, error) {
	return s.repo.List(ctx, filters)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Despesa, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	entry.PublishDeleted(ctx, s.eventBus, Kind, id)
	return nil
}

var columns = []report.Column{
	{Title: "ID", Width: 8},
	{Title: "Descrição", Width: 30},
	{Title: "Grupo", Width: 12},
	{Title: "Categoria", Width: 14},
	{Title: "Sub-categoria", Width: 18},
	{Title: "Forma de pagamento", Width: 18},
	{Title: "Cartão", Width: 16},
	{Title: "Valor", Width: 14},
	{Title: "Parcelas", Width: 10},
	{Title: "Lançamento", Width: 12},
	{Title: "Fim das parcelas", Width: 16},
}

// Export renders the filtered listing as a sheet.
func (s *ServiceImpl) Export(ctx context.Context, filters url.Values) (report.Sheet, error) {
	items, err := s.repo.List(ctx, filters)
	if err != nil {
		return report.Sheet{}, err
	}
	log.Debugf("exporting %d expenses", len(items))

	sheet := report.Sheet{Name: "Despesas", Columns: columns}
	for _, d := range items {
		parcels := "À vista"
		if d.Parcelado && d.QtdParcelas != nil {
			parcels = strconv.Itoa(*d.QtdParcelas)
		}
		sheet.AddRow(
			d.Id,
			d.Descricao,
			d.Grupo,
			d.Categoria,
			refName(d.SubCategoria),
			d.FormaDePagamento,
			refName(d.Cartao),
			money.Format(d.Valor),
			parcels,
			report.Date(d.DataLancamento),
			report.Date(deref(d.DataFimParcela)),
		)
	}
	return sheet, nil
}

func refName(ref *Ref) string {
	if ref == nil {
		return ""
	}
	if ref.Descricao != "" {
		return ref.Descricao
	}
	return ref.Nome
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
