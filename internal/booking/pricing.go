package booking

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const priceScale = 2

// ComputePrice returns nightlyRate × nights, rounded to currency precision only
// after the multiplication.
func ComputePrice(nightlyRate decimal.Decimal, checkIn, checkOut Date) (decimal.Decimal, error) {
	nights := DateRange{CheckIn: checkIn, CheckOut: checkOut}.Nights()
	if nights < 1 {
		return decimal.Decimal{}, fmt.Errorf("%w: %d nights", ErrInvalidStay, nights)
	}
	if nightlyRate.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrInvalidRate, nightlyRate)
	}
	return nightlyRate.Mul(decimal.NewFromInt(int64(nights))).Round(priceScale), nil
}
