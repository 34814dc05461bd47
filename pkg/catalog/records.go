package catalog

import (
	"context"
	"net/http"

	"github.com/painel-financeiro/painel/internal/validation"
	"github.com/painel-financeiro/painel/pkg/upstream"
	log "github.com/sirupsen/logrus"
)

type Fornecedor struct {
	Id           int     `json:"id"`
	RazaoSocial  string  `json:"razaoSocial"`
	NomeFantasia string  `json:"nomeFantasia"`
	Cnpj         string  `json:"cnpj"`
	Ie           *string `json:"ie"`
	DataCadastro string  `json:"dataCadastro,omitempty"`
	Ativo        bool    `json:"ativo"`
	Telefone     string  `json:"telefone"`
	Whatsapp     *string `json:"whatsapp"`
	Email        *string `json:"email"`
}

type SubCategoria struct {
	Id        int    `json:"id"`
	Descricao string `json:"descricao"`
	Status    bool   `json:"status"`
}

// Records is a JSON collection. Bodies are restricted to the known fields.
type Records[T any] struct {
	name     string
	resource *upstream.Resource[T]
	fields   []string
	required []string
	// partial updates only check the fields they carry.
	partial bool
}

func NewSuppliers(client *upstream.Client) *Records[Fornecedor] {
	return &Records[Fornecedor]{
		name:     "supplier",
		resource: upstream.NewResource[Fornecedor](client, "/fornecedor").WithUpdateMethod(http.MethodPut),
		fields:   []string{"razaoSocial", "nomeFantasia", "cnpj", "ie", "ativo", "telefone", "whatsapp", "email"},
		required: []string{"razaoSocial", "nomeFantasia", "cnpj"},
	}
}

func NewSubCategories(client *upstream.Client) *Records[SubCategoria] {
	return &Records[SubCategoria]{
		name:     "sub-category",
		resource: upstream.NewResource[SubCategoria](client, "/sub-categoria"),
		fields:   []string{"descricao", "status"},
		required: []string{"descricao"},
		partial:  true,
	}
}

func (r *Records[T]) List(ctx context.Context) ([]T, error) {
	return r.resource.List(ctx, nil)
}

func (r *Records[T]) Get(ctx context.Context, id int) (T, error) {
	return r.resource.Get(ctx, id)
}

func (r *Records[T]) Create(ctx context.Context, input map[string]any) (T, error) {
	body, err := r.body(input, false)
	if err != nil {
		var zero T
		return zero, err
	}
	created, err := r.resource.Create(ctx, upstream.JSON(body))
	if err != nil {
		log.Errorf("failed to create %s: %v", r.name, err)
	}
	return created, err
}

func (r *Records[T]) Update(ctx context.Context, id int, input map[string]any) (T, error) {
	body, err := r.body(input, r.partial)
	if err != nil {
		var zero T
		return zero, err
	}
	updated, err := r.resource.Update(ctx, id, upstream.JSON(body))
	if err != nil {
		log.Errorf("failed to update %s %d: %v", r.name, id, err)
	}
	return updated, err
}

func (r *Records[T]) Delete(ctx context.Context, id int) error {
	return r.resource.Delete(ctx, id)
}

func (r *Records[T]) body(input map[string]any, partial bool) (map[string]any, error) {
	body := make(map[string]any, len(r.fields))
	for _, name := range r.fields {
		if value, ok := input[name]; ok {
			body[name] = value
		}
	}
	rules := make(map[string]string, len(r.required))
	for _, name := range r.required {
		if _, ok := body[name]; ok || !partial {
			rules[name] = "notblank"
		}
	}
	if err := invalid(validation.Map(body, rules)); err != nil {
		return nil, err
	}
	return body, nil
}
