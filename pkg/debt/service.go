package debt

import (
	"context"
	"net/url"
	"strconv"

	"github.com/painel-financeiro/painel/internal/event_bus"
	"github.com/painel-financeiro/painel/pkg/entry"
	"github.com/painel-financeiro/painel/pkg/money"
	"github.com/painel-financeiro/painel/pkg/report"
)

type Service interface {
	List(ctx context.Context, filters url.Values) ([]Divida, error)
	Get(ctx context.Context, id int) (Divida, error)
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

func (s *ServiceImpl) List(ctx context.Context, filters url.Values) ([]Divida, error) {
	return s.repo.List(ctx, filters)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Divida, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	entry.PublishDeleted(ctx, s.eventBus, Kind, id)
	return nil
}

func (s *ServiceImpl) Export(ctx context.Context, filters url.Values) (report.Sheet, error) {
	items, err := s.repo.List(ctx, filters)
	if err != nil {
		return report.Sheet{}, err
	}
	sheet := report.Sheet{
		Name: "Dívidas",
		Columns: []report.Column{
			{Title: "ID", Width: 8},
			{Title: "Descrição", Width: 30},
			{Title: "Tipo", Width: 14},
			{Title: "Cartão", Width: 16},
			{Title: "Valor total", Width: 14},
			{Title: "Parcelas", Width: 10},
			{Title: "Restantes", Width: 10},
			{Title: "Lançamento", Width: 12},
			{Title: "Fim das parcelas", Width: 16},
		},
	}
	for _, d := range items {
		card := ""
		if d.Cartao != nil {
			card = d.Cartao.Descricao
		}
		sheet.AddRow(
			d.Id,
			d.Descricao,
			d.TipoDivida,
			card,
			money.Format(d.ValorTotal),
			optionalCount(d.Parcelado, d.QtdParcelas),
			optionalCount(d.Parcelado, d.QantParcelasRestantes),
			report.Date(d.DataLancamento),
			report.Date(deref(d.DataFimParcela)),
		)
	}
	return sheet, nil
}

func optionalCount(installment bool, n *int) string {
	if !installment || n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
