package entry

import (
	"math/big"
	"testing"
	"time"

	"github.com/painel-financeiro/painel/internal/utils"
	"github.com/painel-financeiro/painel/pkg/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyForm counts writes going through the form.
type spyForm struct {
	*form.Form
	silent    map[string]int
	committed map[string]int
}

func newSpyForm(v Variant) *spyForm {
	return &spyForm{
		Form:      form.New(nil, v.Specs()...),
		silent:    make(map[string]int),
		committed: make(map[string]int),
	}
}

func (s *spyForm) SetValue(name string, value any) error {
	s.committed[name]++
	return s.Form.SetValue(name, value)
}

func (s *spyForm) SetValueSilently(name string, value any) error {
	s.silent[name]++
	return s.Form.SetValueSilently(name, value)
}

func (s *spyForm) reset() {
	clear(s.silent)
	clear(s.committed)
}

func newSpyEditor(t *testing.T) (*Editor, *spyForm) {
	t.Helper()
	v := testVariant(NewStubStore())
	spy := newSpyForm(v)
	e := newEditor(v, spy, &utils.MockClock{FixedNow: testNow})
	spy.reset()
	return e, spy
}

func TestEditor_RecomputesOncePerChange(t *testing.T) {
	changes := []struct {
		name  string
		field string
		value any
	}{
		{"installment flag", FieldInstallment, true},
		{"payment method", driverField, "cartao_credito"},
		{"total", FieldTotal, "R$ 1.000,00"},
		{"launch date", FieldLaunchDate, "2024-03-31"},
		{"description", FieldDescription, "Mercado"},
	}

	for _, tc := range changes {
		t.Run("should write each derived field once after a "+tc.name+" change", func(t *testing.T) {
			e, spy := newSpyEditor(t)

			require.NoError(t, e.Change(tc.field, tc.value))

			assert.Equal(t, 1, spy.committed[tc.field])
			for _, name := range DerivedFields {
				assert.Equal(t, 1, spy.silent[name], "derived field %s", name)
			}
		})
	}

	t.Run("should clear the dependent once when a driver releases it", func(t *testing.T) {
		e, spy := newSpyEditor(t)
		require.NoError(t, e.Change(FieldInstallment, true))
		require.NoError(t, e.Change(FieldCount, 3))
		spy.reset()

		require.NoError(t, e.Change(FieldInstallment, false))

		assert.Equal(t, 1, spy.silent[FieldCount])
		for _, name := range DerivedFields {
			assert.Equal(t, 1, spy.silent[name], "derived field %s", name)
		}
		assert.Zero(t, spy.committed[FieldCount])
	})

	t.Run("should never commit derived fields", func(t *testing.T) {
		e, spy := newSpyEditor(t)

		require.NoError(t, e.Change(FieldInstallment, true))
		require.NoError(t, e.Change(FieldCount, 12))
		require.NoError(t, e.Change(FieldTotal, "R$ 120,00"))

		for _, name := range DerivedFields {
			assert.Zero(t, spy.committed[name], "derived field %s", name)
		}
	})

	t.Run("should reject edits of derived fields", func(t *testing.T) {
		e, _ := newSpyEditor(t)

		err := e.Change(FieldParcelAmount, "10")

		assert.ErrorIs(t, err, ErrReadOnlyField)
	})

	t.Run("should recompute once on hydration", func(t *testing.T) {
		e, spy := newSpyEditor(t)

		e.Hydrate(map[string]any{FieldTotal: "50", FieldInstallment: true, FieldCount: 2})

		for _, name := range DerivedFields {
			assert.Equal(t, 1, spy.silent[name], "derived field %s", name)
		}
	})
}

func TestEditor_Calculation(t *testing.T) {
	t.Run("should derive the thirds scenario", func(t *testing.T) {
		e := newTestEditor()

		require.NoError(t, e.Change(FieldTotal, "R$ 1.000,00"))
		require.NoError(t, e.Change(FieldLaunchDate, "2024-03-31"))
		require.NoError(t, e.Change(FieldInstallment, true))
		require.NoError(t, e.Change(FieldCount, 3))

		assert.Equal(t, 0, e.form.Rat(FieldParcelAmount).Cmp(big.NewRat(1000, 3)))
		assert.True(t, e.form.Decimal(FieldInterest).IsZero())
		assert.Equal(t, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), e.form.Date(FieldEndDate))
		remaining, _ := e.form.Int(FieldRemaining)
		assert.Equal(t, 2, remaining)
	})

	t.Run("should carry the full total when not split", func(t *testing.T) {
		e := newTestEditor()

		require.NoError(t, e.Change(FieldTotal, "R$ 250,40"))
		require.NoError(t, e.Change(FieldLaunchDate, "2024-03-31"))

		assert.Equal(t, "250.40", e.form.Decimal(FieldParcelAmount).StringFixed(2))
		assert.Nil(t, e.form.Value(FieldEndDate))
		assert.Nil(t, e.form.Value(FieldRemaining))
	})

	t.Run("should fall back to the total while the count is missing", func(t *testing.T) {
		e := newTestEditor()

		require.NoError(t, e.Change(FieldTotal, "R$ 90,00"))
		require.NoError(t, e.Change(FieldInstallment, true))

		assert.Equal(t, 0, e.form.Rat(FieldParcelAmount).Cmp(big.NewRat(90, 1)))
		assert.False(t, e.Valid())
		assert.Equal(t, []string{"required"}, e.form.FieldErrors(FieldCount))
	})
}

func TestRemainingParcels(t *testing.T) {
	launch := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		now   time.Time
		count int
		want  int
	}{
		{"nothing due yet", time.Date(2024, time.February, 28, 23, 0, 0, 0, time.UTC), 3, 3},
		{"first parcel due on its day", time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), 3, 2},
		{"all due", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor()
			e.clock = &utils.MockClock{FixedNow: tt.now}
			require.NoError(t, e.Change(FieldTotal, "R$ 300,00"))
			require.NoError(t, e.Change(FieldLaunchDate, launch.Format(form.DateLayout)))
			require.NoError(t, e.Change(FieldInstallment, true))
			require.NoError(t, e.Change(FieldCount, tt.count))

			remaining, ok := e.form.Int(FieldRemaining)
			require.True(t, ok)
			assert.Equal(t, tt.want, remaining)
		})
	}
}

func TestEditor_Draft(t *testing.T) {
	fill := func(t *testing.T) *Editor {
		e := newTestEditor()
		require.NoError(t, e.Change(FieldDescription, "Geladeira"))
		require.NoError(t, e.Change("subCategoriaId", 2))
		require.NoError(t, e.Change(driverField, "cartao_credito"))
		require.NoError(t, e.Change(FieldCard, 4))
		require.NoError(t, e.Change(FieldLaunchDate, "2024-03-31"))
		require.NoError(t, e.Change(FieldTotal, "R$ 3.000,00"))
		require.NoError(t, e.Change(FieldInstallment, true))
		require.NoError(t, e.Change(FieldCount, 10))
		return e
	}

	t.Run("should strip derived fields", func(t *testing.T) {
		d := fill(t).Draft()

		for _, name := range DerivedFields {
			assert.NotContains(t, d.Values, name)
			assert.NotContains(t, d.Payload(), name)
		}
		assert.Equal(t, "Geladeira", d.Description)
		assert.Equal(t, "cartao_credito", d.Driver)
		assert.Equal(t, 4, d.CardId)
		assert.Equal(t, 10, d.Count)
		assert.Equal(t, "3000", d.Total.String())
	})

	t.Run("should include the owner in the payload", func(t *testing.T) {
		d := fill(t).Draft()
		d.UserId = "42"

		assert.Equal(t, 42, d.Payload()["usuarioId"])
		d.UserId = "f3b1"
		assert.Equal(t, "f3b1", d.Payload()["usuarioId"])
	})

	t.Run("should drop count and card when released", func(t *testing.T) {
		e := fill(t)
		require.NoError(t, e.Change(driverField, "pix"))
		require.NoError(t, e.Change(FieldInstallment, false))

		d := e.Draft()

		assert.Zero(t, d.CardId)
		assert.Zero(t, d.Count)
		assert.Nil(t, d.OptionalId(FieldCard))
		assert.Equal(t, 2, *d.OptionalId("subCategoriaId"))
	})
}

func TestEditor_State(t *testing.T) {
	e := newTestEditor()
	require.NoError(t, e.Change(FieldTotal, "R$ 1.000,00"))
	require.NoError(t, e.Change(FieldLaunchDate, "2024-03-31"))
	require.NoError(t, e.Change(FieldInstallment, true))
	require.NoError(t, e.Change(FieldCount, 3))

	s := e.State()

	assert.Equal(t, "1000/3", s.Fields[FieldParcelAmount].Value)
	assert.Equal(t, "R$ 333,33", s.Fields[FieldParcelAmount].Display)
	assert.Equal(t, "R$ 1.000,00", s.Fields[FieldTotal].Display)
	assert.Equal(t, "2024-06-30", s.Fields[FieldEndDate].Value)
	assert.Equal(t, []string{"required"}, s.Fields[FieldDescription].Errors)
	assert.False(t, s.Fields[FieldDescription].Touched)
	assert.Len(t, s.Fields[FieldCount].Counts, 22)
	require.Len(t, s.Schedule, 3)
	assert.Equal(t, "333.34", s.Schedule[2].Amount)
	assert.Equal(t, "2024-06-30", s.Schedule[2].DueDate)
	assert.False(t, s.Valid)
}
