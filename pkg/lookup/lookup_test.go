package lookup

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/painel-financeiro/painel/pkg/catalog"
	"github.com/painel-financeiro/painel/pkg/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, answers map[string]string, status map[string]int) *Service {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code, ok := status[r.URL.Path]; ok {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"message":"falhou"}`))
			return
		}
		_, _ = w.Write([]byte(answers[r.URL.Path]))
	}))
	t.Cleanup(server.Close)
	client := upstream.NewClient(server.URL, upstream.Anonymous{})
	return NewService(catalog.NewCards(client), catalog.NewBanks(client), catalog.NewSuppliers(client), catalog.NewSubCategories(client))
}

var answers = map[string]string{
	"/cartoes":       `[{"id": 1, "descricao": "Nubank", "bandeira": "Mastercard", "tipo_cartao": "credito", "status": "Ativo"}]`,
	"/banco":         `[{"id": 2, "nome": "Inter", "tipo_banco": "corrente"}]`,
	"/fornecedor":    `[{"id": 3, "razaoSocial": "ACME Ltda", "nomeFantasia": "ACME", "cnpj": "1"}]`,
	"/sub-categoria": `[{"id": 4, "descricao": "Mercado", "status": true}]`,
}

func TestService_Load(t *testing.T) {
	t.Run("should load every list", func(t *testing.T) {
		service := newService(t, answers, nil)

		opts, err := service.Load(t.Context())

		require.NoError(t, err)
		require.Len(t, opts.Cards, 1)
		assert.Equal(t, "Nubank", opts.Cards[0].Descricao)
		require.Len(t, opts.Banks, 1)
		assert.Equal(t, "corrente", opts.Banks[0].AccountType)
		require.Len(t, opts.Suppliers, 1)
		require.Len(t, opts.SubCategories, 1)
	})

	t.Run("should leave a failing list empty", func(t *testing.T) {
		service := newService(t, answers, map[string]int{"/banco": http.StatusInternalServerError})

		opts, err := service.Load(t.Context())

		require.NoError(t, err)
		assert.NotNil(t, opts.Banks)
		assert.Empty(t, opts.Banks)
		assert.Len(t, opts.Cards, 1)
	})

	t.Run("should fail when the session is rejected", func(t *testing.T) {
		service := newService(t, answers, map[string]int{"/fornecedor": http.StatusUnauthorized})

		_, err := service.Load(t.Context())

		assert.ErrorIs(t, err, upstream.ErrUnauthenticated)
	})
}

func TestHandler_Get(t *testing.T) {
	t.Run("should answer empty lists as arrays", func(t *testing.T) {
		service := newService(t, map[string]string{}, map[string]int{"/cartoes": http.StatusBadGateway})
		rr := httptest.NewRecorder()

		NewHandler(service).Get(rr, httptest.NewRequest("GET", "/api/lookups", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"cartoes":[],"bancos":[],"fornecedores":[],"subCategorias":[]}`, rr.Body.String())
	})

	t.Run("should answer 401 without a valid session", func(t *testing.T) {
		service := newService(t, answers, map[string]int{"/cartoes": http.StatusUnauthorized})
		rr := httptest.NewRecorder()

		NewHandler(service).Get(rr, httptest.NewRequest("GET", "/api/lookups", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
