package parse

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred      = decimal.NewFromInt(100)
	ten          = decimal.NewFromInt(10)
	tenThousand  = decimal.NewFromInt(10000)
	roundPercent = int32(2)
)

// wireDecimal parses a fixed-point wire value. Comma decimals are accepted.
func wireDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// BettingFraction converts the pool share, published as percent×100
// (1534 = 15.34 %), into a 0..1 fraction. Absent data yields 0.
func BettingFraction(raw string) float64 {
	d, ok := wireDecimal(raw)
	if !ok {
		return 0
	}
	return d.Div(tenThousand).InexactFloat64()
}

// WinFraction converts a career winning percentage (23.5 = 23.5 %) into a
// 0..1 fraction. When no percentage is published it falls back to wins/starts,
// rounded to two percent decimals. Absent data yields 0.
func WinFraction(percent string, wins, starts int) float64 {
	if d, ok := wireDecimal(percent); ok {
		return d.Div(hundred).InexactFloat64()
	}
	if starts <= 0 || wins <= 0 {
		return 0
	}

	pct := decimal.NewFromInt(int64(wins)).
		Div(decimal.NewFromInt(int64(starts))).
		Mul(hundred).
		Round(roundPercent)
	return pct.Div(hundred).InexactFloat64()
}

// WinOdds converts odds published ×10 (152 = 15.2) into the actual odds
func WinOdds(raw string) float64 {
	d, ok := wireDecimal(raw)
	if !ok {
		return 0
	}
	return d.Div(ten).InexactFloat64()
}

// FirstPrize converts the winner's prize, published in cents×100, into euros
func FirstPrize(raw string) float64 {
	d, ok := wireDecimal(raw)
	if !ok {
		return 0
	}
	return d.Div(tenThousand).InexactFloat64()
}
