// Package lookup loads the option lists the entry forms offer: cards, banks,
// suppliers and sub-categories.
package lookup

import (
	"context"
	"errors"
	"net/http"

	"github.com/painel-financeiro/painel/internal/rest"
	"github.com/painel-financeiro/painel/pkg/auth"
	"github.com/painel-financeiro/painel/pkg/catalog"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Cards         []catalog.Cartao       `json:"cartoes"`
	Banks         []catalog.Banco        `json:"bancos"`
	Suppliers     []catalog.Fornecedor   `json:"fornecedores"`
	SubCategories []catalog.SubCategoria `json:"subCategorias"`
}

type Service struct {
	cards         *catalog.Cards
	banks         *catalog.Banks
	suppliers     *catalog.Records[catalog.Fornecedor]
	subCategories *catalog.Records[catalog.SubCategoria]
}

func NewService(
	cards *catalog.Cards,
	banks *catalog.Banks,
	suppliers *catalog.Records[catalog.Fornecedor],
	subCategories *catalog.Records[catalog.SubCategoria],
) *Service {
	return &Service{cards: cards, banks: banks, suppliers: suppliers, subCategories: subCategories}
}

// Load fetches the four lists at once. A failing list is logged and left empty; only a
// missing or rejected session fails the whole load.
func (s *Service) Load(ctx context.Context) (Options, error) {
	opts := Options{
		Cards:         []catalog.Cartao{},
		Banks:         []catalog.Banco{},
		Suppliers:     []catalog.Fornecedor{},
		SubCategories: []catalog.SubCategoria{},
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return fill(ctx, "cards", &opts.Cards, func(ctx context.Context) ([]catalog.Cartao, error) {
			return s.cards.List(ctx, nil)
		})
	})
	g.Go(func() error {
		return fill(ctx, "banks", &opts.Banks, func(ctx context.Context) ([]catalog.Banco, error) {
			return s.banks.List(ctx, nil)
		})
	})
	g.Go(func() error {
		return fill(ctx, "suppliers", &opts.Suppliers, s.suppliers.List)
	})
	g.Go(func() error {
		return fill(ctx, "sub-categories", &opts.SubCategories, s.subCategories.List)
	})
	if err := g.Wait(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func fill[T any](ctx context.Context, name string, dst *[]T, load func(context.Context) ([]T, error)) error {
	items, err := load(ctx)
	if errors.Is(err, auth.ErrUnauthenticated) || errors.Is(err, auth.ErrNoSession) {
		return err
	}
	if err != nil {
		log.Errorf("failed to load %s: %v", name, err)
		return nil
	}
	if items != nil {
		*dst = items
	}
	return nil
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get godoc
// @Summary Form options
// @Description Cards, banks, suppliers and sub-categories for the entry forms. A list
// @Description that could not be loaded is empty.
// @Tags Lookup
// @Produce json
// @Success 200 {object} Options
// @Failure 401 {object} rest.ErrorResponse
// @Router /api/lookups [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Load(r.Context())
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) || errors.Is(err, auth.ErrNoSession) {
			rest.WriteError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		log.Errorf("failed to load lookups: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to load form options")
		return
	}
	rest.WriteJSON(w, http.StatusOK, opts)
}
