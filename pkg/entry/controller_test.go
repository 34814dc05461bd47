package entry

import (
	"math/big"
	"testing"
	"time"

	"github.com/painel-financeiro/painel/internal/utils"
	"github.com/painel-financeiro/painel/pkg/form"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const driverField = "formaPagamento"

var testNow = time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)

func testVariant(store Store) Variant {
	return Variant{
		Kind:          "despesas",
		DriverField:   driverField,
		DriverOptions: []string{"pix", "dinheiro", "boleto", "cartao_credito", "cartao_debito"},
		CardValues:    []string{"cartao_credito", "cartao_debito"},
		Fields: []form.Spec{
			{Name: "subCategoriaId", Kind: form.Id, Required: true},
			{Name: "fornecedorId", Kind: form.Id},
		},
		Store: store,
	}
}

func newTestEditor() *Editor {
	return NewEditor(testVariant(NewStubStore()), &utils.MockClock{FixedNow: testNow})
}

type dependentState struct {
	Enabled  bool
	Required bool
	Cleared  bool
}

var (
	activeState   = dependentState{Enabled: true, Required: true, Cleared: false}
	releasedState = dependentState{Enabled: false, Required: false, Cleared: true}
)

func stateOfField(f Form, name string) dependentState {
	return dependentState{
		Enabled:  f.IsEnabled(name),
		Required: f.IsRequired(name),
		Cleared:  f.Value(name) == nil,
	}
}

func TestController_FieldStateTotality(t *testing.T) {
	cases := []struct {
		name        string
		driver      string
		installment bool
		card        dependentState
		count       dependentState
	}{
		{"card with installments", "cartao_credito", true, dependentState{Enabled: true, Required: true}, activeState},
		{"card without installments", "cartao_debito", false, dependentState{Enabled: true, Required: true}, releasedState},
		{"no card with installments", "pix", true, releasedState, activeState},
		{"no card without installments", "boleto", false, releasedState, releasedState},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEditor()

			require.NoError(t, e.Change(driverField, tc.driver))
			require.NoError(t, e.Change(FieldInstallment, tc.installment))
			if tc.card.Enabled {
				require.NoError(t, e.Change(FieldCard, 5))
				tc.card.Cleared = false
			}
			if tc.count.Enabled {
				require.NoError(t, e.Change(FieldCount, 12))
			}

			assert.Equal(t, tc.card, stateOfField(e.form, FieldCard))
			assert.Equal(t, tc.count, stateOfField(e.form, FieldCount))
		})
	}
}

func TestController_Transitions(t *testing.T) {
	t.Run("should start with both dependents released", func(t *testing.T) {
		e := newTestEditor()

		assert.Equal(t, releasedState, stateOfField(e.form, FieldCard))
		assert.Equal(t, releasedState, stateOfField(e.form, FieldCount))
	})

	t.Run("should clear the card when switching away from a card method", func(t *testing.T) {
		e := newTestEditor()
		require.NoError(t, e.Change(driverField, "cartao_credito"))
		require.NoError(t, e.Change(FieldCard, 7))

		require.NoError(t, e.Change(driverField, "pix"))

		assert.Equal(t, releasedState, stateOfField(e.form, FieldCard))
	})

	t.Run("should keep the card when switching between card methods", func(t *testing.T) {
		e := newTestEditor()
		require.NoError(t, e.Change(driverField, "cartao_credito"))
		require.NoError(t, e.Change(FieldCard, 7))

		require.NoError(t, e.Change(driverField, "cartao_debito"))

		id, ok := e.form.Int(FieldCard)
		assert.True(t, ok)
		assert.Equal(t, 7, id)
	})

	t.Run("should clear the count when installments are turned off", func(t *testing.T) {
		e := newTestEditor()
		require.NoError(t, e.Change(FieldInstallment, true))
		require.NoError(t, e.Change(FieldCount, 3))

		require.NoError(t, e.Change(FieldInstallment, false))

		assert.Equal(t, releasedState, stateOfField(e.form, FieldCount))
	})

	t.Run("should reject edits of a disabled dependent", func(t *testing.T) {
		e := newTestEditor()

		err := e.Change(FieldCard, 3)

		assert.ErrorIs(t, err, ErrFieldDisabled)
	})

	t.Run("should apply credit card without installments scenario", func(t *testing.T) {
		e := newTestEditor()
		require.NoError(t, e.Change(FieldInstallment, true))
		require.NoError(t, e.Change(FieldCount, 6))

		require.NoError(t, e.Change(driverField, "cartao_credito"))
		require.NoError(t, e.Change(FieldInstallment, false))

		card := stateOfField(e.form, FieldCard)
		assert.True(t, card.Enabled)
		assert.True(t, card.Required)
		assert.Equal(t, releasedState, stateOfField(e.form, FieldCount))
	})
}

func TestEditor_Hydrate(t *testing.T) {
	t.Run("should keep dependents populated by the record", func(t *testing.T) {
		e := newTestEditor()
		listenerCalls := 0
		e.form.OnChange(driverField, func(any) { listenerCalls++ })
		e.form.OnChange(FieldInstallment, func(any) { listenerCalls++ })

		e.Hydrate(map[string]any{
			FieldDescription: "Notebook",
			driverField:      "cartao_credito",
			FieldCard:        9,
			FieldLaunchDate:  "2024-01-31",
			FieldTotal:       decimal.RequireFromString("1200.00"),
			FieldInstallment: true,
			FieldCount:       12,
			"subCategoriaId": 4,
		})

		assert.Equal(t, 0, listenerCalls)
		card, _ := e.form.Int(FieldCard)
		count, _ := e.form.Int(FieldCount)
		assert.Equal(t, 9, card)
		assert.Equal(t, 12, count)
		assert.True(t, e.form.IsEnabled(FieldCard))
		assert.True(t, e.form.IsRequired(FieldCount))
		assert.Equal(t, 0, e.form.Rat(FieldParcelAmount).Cmp(big.NewRat(100, 1)))
		assert.Equal(t, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), e.form.Date(FieldEndDate))
		assert.True(t, e.Valid())
	})

	t.Run("should release the card when the record method is not a card", func(t *testing.T) {
		e := newTestEditor()

		e.Hydrate(map[string]any{
			driverField:      "pix",
			FieldCard:        9,
			FieldInstallment: false,
			FieldCount:       3,
		})

		assert.Equal(t, releasedState, stateOfField(e.form, FieldCard))
		assert.Equal(t, releasedState, stateOfField(e.form, FieldCount))
	})

	t.Run("should recompute stored derived values", func(t *testing.T) {
		e := newTestEditor()

		e.Hydrate(map[string]any{
			FieldTotal:        "90",
			FieldInstallment:  true,
			FieldCount:        3,
			FieldParcelAmount: "1",
			FieldInterest:     "5",
		})

		assert.Equal(t, 0, e.form.Rat(FieldParcelAmount).Cmp(big.NewRat(30, 1)))
		assert.True(t, e.form.Decimal(FieldInterest).IsZero())
	})

	t.Run("should skip values the form cannot hold", func(t *testing.T) {
		e := newTestEditor()

		e.Hydrate(map[string]any{
			driverField:      "cheque",
			FieldDescription: "Aluguel",
		})

		assert.Nil(t, e.form.Value(driverField))
		assert.Equal(t, "Aluguel", e.form.Text(FieldDescription))
	})
}
