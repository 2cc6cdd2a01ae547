package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FlatInterest returns principal × rate rounded half away from zero to whole units.
func FlatInterest(principal int64, rate float64) int64 {
	if principal <= 0 || rate <= 0 {
		return 0
	}
	return decimal.NewFromInt(principal).
		Mul(decimal.NewFromFloat(rate)).
		Round(0).
		IntPart()
}

// MonthlyInterest returns principal × rate × months rounded to whole units.
// Multiplying before rounding keeps a multi-month catch-up equal to a single
// accrual over the same span.
func MonthlyInterest(principal int64, rate float64, months int) int64 {
	if principal <= 0 || rate <= 0 || months <= 0 {
		return 0
	}
	return decimal.NewFromInt(principal).
		Mul(decimal.NewFromFloat(rate)).
		Mul(decimal.NewFromInt(int64(months))).
		Round(0).
		IntPart()
}

// ParseAmount converts a user-entered amount such as "1,500" or "1500.00" into whole
// currency units.
func ParseAmount(s string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return 0, fmt.Errorf("amount is required")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount cannot be negative")
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("amount must be a whole number")
	}
	return d.IntPart(), nil
}

// FormatAmount renders whole units with thousands separators.
func FormatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	b.WriteString(sign)
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
