package utils

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

const batchSuffixChars = "ABCDEFGHJKLMNPQRSTUVWXYZ0123456789"

// RandomUpperAlnum returns n random uppercase alphanumeric characters
// (used as the human-readable batch number suffix).
func RandomUpperAlnum(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = batchSuffixChars[rand.Intn(len(batchSuffixChars))]
	}
	return string(b)
}

func NewTrue() *bool {
	b := true
	return &b
}

// RoundMoney rounds to 2 decimal places, the precision all monetary
// columns are compared at.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MonthBounds returns [first day 00:00, first day of next month 00:00) in UTC.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// DaysInMonth returns the number of calendar days in the month.
func DaysInMonth(year int, month time.Month) int {
	start, end := MonthBounds(year, month)
	return int(end.Sub(start).Hours() / 24)
}
