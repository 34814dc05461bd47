package catalog

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/painel-financeiro/painel/internal/validation"
	"github.com/painel-financeiro/painel/pkg/upstream"
	log "github.com/sirupsen/logrus"
)

// Banco is a bank account. Older records carry tipo_banco and imagem instead of
// tipo_conta and imagem_banco, and ativo instead of status; they are read into the
// same fields.
type Banco struct {
	Id          int     `json:"id"`
	Nome        string  `json:"nome"`
	AccountType string  `json:"tipo_conta"`
	Status      string  `json:"status"`
	Ativo       bool    `json:"ativo"`
	Image       *string `json:"imagem_banco,omitempty"`
}

func (b *Banco) UnmarshalJSON(data []byte) error {
	var raw struct {
		Id          int     `json:"id"`
		Nome        string  `json:"nome"`
		TipoConta   *string `json:"tipo_conta"`
		TipoBanco   *string `json:"tipo_banco"`
		Status      *string `json:"status"`
		Ativo       *bool   `json:"ativo"`
		ImagemBanco *string `json:"imagem_banco"`
		Imagem      *string `json:"imagem"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Banco{Id: raw.Id, Nome: raw.Nome}
	if raw.TipoConta != nil {
		b.AccountType = *raw.TipoConta
	} else if raw.TipoBanco != nil {
		b.AccountType = *raw.TipoBanco
	}
	if raw.ImagemBanco != nil {
		b.Image = raw.ImagemBanco
	} else {
		b.Image = raw.Imagem
	}
	switch {
	case raw.Status != nil && *raw.Status != "":
		b.Status = *raw.Status
	case raw.Ativo != nil:
		b.Status = statusOf(*raw.Ativo)
	default:
		b.Status = StatusActive
	}
	b.Ativo = b.Status == StatusActive
	return nil
}

// BankInput is a bank form submission. Status wins over Ativo when both are set.
type BankInput struct {
	Nome      string         `json:"nome" validate:"notblank"`
	TipoConta string         `json:"tipo_conta" validate:"notblank"`
	Status    string         `json:"status" validate:"omitempty,oneof=Ativo Inativo"`
	Ativo     *bool          `json:"ativo"`
	Image     *upstream.File `json:"-"`
}

func (in BankInput) status() string {
	if in.Status != "" {
		return in.Status
	}
	if in.Ativo != nil {
		return statusOf(*in.Ativo)
	}
	return ""
}

type Banks struct {
	resource *upstream.Resource[Banco]
}

func NewBanks(client *upstream.Client) *Banks {
	return &Banks{resource: upstream.NewResource[Banco](client, "/banco")}
}

// List filters locally: the bank endpoint takes no query. id and descricao match by
// substring, tipo_banco matches the account type ignoring case.
func (b *Banks) List(ctx context.Context, filters url.Values) ([]Banco, error) {
	banks, err := b.resource.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSpace(filters.Get("id"))
	name := strings.ToLower(strings.TrimSpace(filters.Get("descricao")))
	accountType := strings.ToLower(strings.TrimSpace(filters.Get("tipo_banco")))

	matched := make([]Banco, 0, len(banks))
	for _, bank := range banks {
		if id != "" && !strings.Contains(strconv.Itoa(bank.Id), id) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(bank.Nome), name) {
			continue
		}
		if accountType != "" && !strings.Contains(strings.ToLower(bank.AccountType), accountType) {
			continue
		}
		matched = append(matched, bank)
	}
	return matched, nil
}

func (b *Banks) Get(ctx context.Context, id int) (Banco, error) {
	return b.resource.Get(ctx, id)
}

func (b *Banks) Create(ctx context.Context, in BankInput) (Banco, error) {
	if err := invalid(validation.Struct(in)); err != nil {
		return Banco{}, err
	}

	status := in.status()
	if status == "" {
		status = StatusActive
	}
	body := (&upstream.Multipart{}).
		Set("nome", in.Nome).
		Set("tipo_conta", in.TipoConta).
		Set("status", status)
	attachBankImage(body, in.Image)

	created, err := b.resource.Create(ctx, body)
	if err != nil {
		log.Errorf("failed to create bank: %v", err)
		return Banco{}, err
	}
	return created, nil
}

// Update sends only the fields that were given.
func (b *Banks) Update(ctx context.Context, id int, in BankInput) (Banco, error) {
	if err := invalid(validation.Struct(in, "Status")); err != nil {
		return Banco{}, err
	}

	body := &upstream.Multipart{}
	if in.Nome != "" {
		body.Set("nome", in.Nome)
	}
	if in.TipoConta != "" {
		body.Set("tipo_conta", in.TipoConta)
	}
	if status := in.status(); status != "" {
		body.Set("status", status)
	}
	attachBankImage(body, in.Image)

	updated, err := b.resource.Update(ctx, id, body)
	if err != nil {
		log.Errorf("failed to update bank %d: %v", id, err)
		return Banco{}, err
	}
	return updated, nil
}

func (b *Banks) Delete(ctx context.Context, id int) error {
	return b.resource.Delete(ctx, id)
}

func attachBankImage(body *upstream.Multipart, image *upstream.File) {
	if image == nil {
		return
	}
	f := *image
	f.Field = "imagem_banco"
	body.Attach(f)
}
