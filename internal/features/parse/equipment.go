package parse

import (
	"strings"

	"totoforecast/internal/domain/race"
)

// ParseShoes maps the published shoe field onto the three shoe states
func ParseShoes(s string) race.ShoeStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HAS_SHOES", "TRUE", "YES", "1":
		return race.HasShoes
	case "NO_SHOES", "FALSE", "NO", "0":
		return race.NoShoes
	}
	return race.ShoesUnknown
}

// ParseCart maps the special-cart field onto yes/no/unknown
func ParseCart(s string) race.CartStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES":
		return race.CartYes
	case "NO":
		return race.CartNo
	}
	return race.CartUnknown
}

// Gender codes
const (
	GenderMare     = 1
	GenderGelding  = 2
	GenderStallion = 3
)

// ParseGender returns 1 for a mare, 3 for a stallion and 2 for anything else
func ParseGender(s string) int {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TAMMA", "MARE":
		return GenderMare
	case "ORI", "STALLION":
		return GenderStallion
	}
	return GenderGelding
}
