package catalog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/painel-financeiro/painel/internal/validation"
	"github.com/painel-financeiro/painel/pkg/auth"
	"github.com/painel-financeiro/painel/pkg/upstream"
	log "github.com/sirupsen/logrus"
)

var cardFilters = []string{"id", "descricao", "tipoCartao", "bandeira"}

type Cartao struct {
	Id           int     `json:"id"`
	Descricao    string  `json:"descricao"`
	Bandeira     string  `json:"bandeira"`
	TipoCartao   string  `json:"tipo_cartao"`
	ImagemCartao *string `json:"imagem_cartao,omitempty"`
	Status       string  `json:"status"`
	UsuarioId    any     `json:"usuarioId,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

// CardInput is a card form submission. Image is optional.
type CardInput struct {
	Descricao  string         `json:"descricao" validate:"notblank"`
	Bandeira   string         `json:"bandeira" validate:"notblank,oneof=Mastercard Visa Elo"`
	TipoCartao string         `json:"tipo_cartao" validate:"notblank,oneof=debito credito"`
	Status     string         `json:"status" validate:"omitempty,oneof=Ativo Inativo"`
	Image      *upstream.File `json:"-"`
}

func (in CardInput) Validate() error {
	return invalid(validation.Struct(in))
}

type Cards struct {
	resource *upstream.Resource[Cartao]
}

func NewCards(client *upstream.Client) *Cards {
	return &Cards{resource: upstream.NewResource[Cartao](client, "/cartoes")}
}

func (c *Cards) List(ctx context.Context, filters url.Values) ([]Cartao, error) {
	return c.resource.List(ctx, upstream.FilterQuery(filters, cardFilters, nil))
}

func (c *Cards) Get(ctx context.Context, id int) (Cartao, error) {
	return c.resource.Get(ctx, id)
}

func (c *Cards) Create(ctx context.Context, in CardInput) (Cartao, error) {
	body, err := c.body(ctx, in)
	if err != nil {
		return Cartao{}, err
	}
	created, err := c.resource.Create(ctx, body)
	if err != nil {
		log.Errorf("failed to create card: %v", err)
		return Cartao{}, err
	}
	return created, nil
}

func (c *Cards) Update(ctx context.Context, id int, in CardInput) (Cartao, error) {
	body, err := c.body(ctx, in)
	if err != nil {
		return Cartao{}, err
	}
	updated, err := c.resource.Update(ctx, id, body)
	if err != nil {
		log.Errorf("failed to update card %d: %v", id, err)
		return Cartao{}, err
	}
	return updated, nil
}

func (c *Cards) Delete(ctx context.Context, id int) error {
	return c.resource.Delete(ctx, id)
}

// body is the multipart form the card endpoint expects, owned by the session's user.
func (c *Cards) body(ctx context.Context, in CardInput) (*upstream.Multipart, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	userId, err := auth.CurrentUserId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if userId == "" {
		return nil, auth.ErrUnauthenticated
	}
	status := in.Status
	if status == "" {
		status = StatusActive
	}

	body := (&upstream.Multipart{}).
		Set("descricao", in.Descricao).
		Set("bandeira", in.Bandeira).
		Set("tipo_cartao", in.TipoCartao).
		Set("status", status).
		Set("usuarioId", userId)
	if in.Image != nil {
		image := *in.Image
		image.Field = "imagem_cartao_file"
		body.Attach(image)
	}
	return body, nil
}
