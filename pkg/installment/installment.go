// Package installment derives the per-parcel amount, applied interest and final due
// date of an entry that may be split into monthly installments (parcelas).
package installment

import (
	"math/big"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// AllowedCounts are the installment counts offered by the entry forms.
var AllowedCounts = []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 24, 36, 48, 60, 72, 84, 95, 100, 120, 180, 360}

func IsAllowedCount(n int) bool {
	return slices.Contains(AllowedCounts, n)
}

type Input struct {
	Total       decimal.Decimal
	Installment bool
	// Count <= 0 means the count is absent.
	Count int
	// LaunchDate zero value means the date is absent.
	LaunchDate time.Time
}

type Result struct {
	// Amount is the exact per-parcel amount. Under the zero-interest policy it is
	// Total/Count with no rounding applied.
	Amount   *big.Rat
	Interest decimal.Decimal
	// EndDate zero value means there is no end date.
	EndDate time.Time
}

// Calculate is total over its input: an absent or non-positive count, a non-positive
// total, or a non-installment entry all yield the full total as the per-entry amount.
func Calculate(in Input) Result {
	if !in.Installment || in.Count <= 0 || !in.Total.IsPositive() {
		return Result{
			Amount:   in.Total.Rat(),
			Interest: decimal.Zero,
		}
	}

	amount := new(big.Rat).Quo(in.Total.Rat(), new(big.Rat).SetInt64(int64(in.Count)))

	var end time.Time
	if !in.LaunchDate.IsZero() {
		end = AddMonths(in.LaunchDate, in.Count)
	}
	return Result{
		Amount:   amount,
		Interest: decimal.Zero,
		EndDate:  end,
	}
}

// AmountCents rounds the exact amount half away from zero to two decimal places.
func (r Result) AmountCents() decimal.Decimal {
	if r.Amount == nil {
		return decimal.Zero
	}
	num := decimal.NewFromBigInt(r.Amount.Num(), 0)
	den := decimal.NewFromBigInt(r.Amount.Denom(), 0)
	return num.DivRound(den, 2)
}

func (r Result) HasEndDate() bool {
	return !r.EndDate.IsZero()
}

// AddMonths adds n calendar months to d. The day of month is kept when the target
// month has it, otherwise it is clamped to the target month's last day
// (2024-01-31 + 1 month = 2024-02-29).
func AddMonths(d time.Time, n int) time.Time {
	year, month, day := d.Date()
	firstOfTarget := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, d.Location())
	if last := daysIn(firstOfTarget.Year(), firstOfTarget.Month(), d.Location()); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
