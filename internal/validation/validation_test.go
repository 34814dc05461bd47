package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type account struct {
	Name   string `json:"nome" validate:"notblank"`
	Kind   string `json:"tipo" validate:"required,oneof=corrente poupanca"`
	Email  string `json:"email" validate:"omitempty,email"`
	Secret string `json:"senha" validate:"omitempty,min=6"`
	Note   string `validate:"max=3"`
}

func TestStruct(t *testing.T) {
	t.Run("should key failures by json name with client error keys", func(t *testing.T) {
		failed := Struct(account{Name: "  ", Kind: "salario", Email: "ana", Secret: "123", Note: "longa"})

		assert.Equal(t, map[string][]string{
			"nome":  {"required"},
			"tipo":  {"option"},
			"email": {"email"},
			"senha": {"minlength"},
			"Note":  {"maxlength"},
		}, failed)
	})

	t.Run("should return an empty map when valid", func(t *testing.T) {
		assert.Empty(t, Struct(account{Name: "Conta", Kind: "corrente"}))
	})

	t.Run("should check only the given fields", func(t *testing.T) {
		failed := Struct(account{Kind: "salario"}, "Kind")

		assert.Equal(t, map[string][]string{"tipo": {"option"}}, failed)
	})
}

func TestMap(t *testing.T) {
	t.Run("should check present and missing values", func(t *testing.T) {
		failed := Map(map[string]any{"razaoSocial": " ", "cnpj": "12.345"}, map[string]string{
			"razaoSocial":  "notblank",
			"nomeFantasia": "notblank",
			"cnpj":         "notblank",
		})

		assert.Equal(t, map[string][]string{
			"razaoSocial":  {"required"},
			"nomeFantasia": {"required"},
		}, failed)
	})
}
