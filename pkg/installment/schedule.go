package installment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Parcel struct {
	Number  int
	DueDate time.Time
	Amount  decimal.Decimal
}

// Schedule splits the total into cent-exact monthly parcels. Every parcel gets the
// truncated share and the last one absorbs the remaining cents, so the parcels always
// sum to the total. Parcel i is due i months after the launch date; the last due date
// equals Calculate's EndDate.
//
// Calculate keeps exact division; Schedule is the cent-level view used for display.
func Schedule(in Input) []Parcel {
	if !in.Installment || in.Count <= 0 || !in.Total.IsPositive() {
		return []Parcel{{Number: 1, DueDate: in.LaunchDate, Amount: in.Total}}
	}

	totalCents := in.Total.Shift(2).Round(0).IntPart()
	count := int64(in.Count)
	share := totalCents / count
	remainder := totalCents - share*count

	parcels := make([]Parcel, 0, in.Count)
	for i := 1; i <= in.Count; i++ {
		cents := share
		if i == in.Count {
			cents += remainder
		}
		var due time.Time
		if !in.LaunchDate.IsZero() {
			due = AddMonths(in.LaunchDate, i)
		}
		parcels = append(parcels, Parcel{
			Number:  i,
			DueDate: due,
			Amount:  decimal.New(cents, -2),
		})
	}
	return parcels
}
