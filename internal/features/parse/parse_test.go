package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totoforecast/internal/domain/race"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  Juhani Mäkinen ", "Juhani Makinen"},
		{"ÅSA Öhman", "ASA Ohman"},
		{"Hevonen* (FI)", "Hevonen FI"},
		{"Start 12:30 - J.M.", "Start 12:30 - J.M."},
		{"é’ü", ""},
		{"tab\tname", "tabname"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), tt.in)
	}
}

func TestParseKmTime(t *testing.T) {
	tests := []struct {
		code string
		want KmTime
	}{
		{"15,5a", KmTime{Value: 15.5, CarStart: true}},
		{"15,5", KmTime{Value: 15.5}},
		{"17,2x", KmTime{Value: 17.2, GaitFault: true}},
		{"16,0ax", KmTime{Value: 16.0, CarStart: true, GaitFault: true}},
		{"x", KmTime{GaitFault: true}},
		{"", KmTime{}},
		{"-", KmTime{}},
		{"14", KmTime{Value: 14}},
	}

	for _, tt := range tests {
		got := ParseKmTime(tt.code)
		assert.InDelta(t, tt.want.Value, got.Value, 1e-12, tt.code)
		assert.Equal(t, tt.want.CarStart, got.CarStart, tt.code)
		assert.Equal(t, tt.want.GaitFault, got.GaitFault, tt.code)
	}
}

func TestNormalizeKmTime(t *testing.T) {
	for _, km := range []float64{10.1, 15.5, 29.9, 0.01} {
		assert.Equal(t, km, NormalizeKmTime(km, KmTimeAnchorDistance))
	}

	assert.InDelta(t, 15.5+0.3, NormalizeKmTime(15.5, 1500), 1e-12)
	assert.InDelta(t, 15.5-0.5, NormalizeKmTime(15.5, 3100), 1e-12)
	assert.Equal(t, 15.5, NormalizeKmTime(15.5, 0))

	assert.Equal(t, 0.0, NormalizeKmTime(0, 1600))
	assert.Equal(t, -1.0, NormalizeKmTime(-1, 1600))
}

func TestParseFinish(t *testing.T) {
	tests := []struct {
		code string
		want Finish
	}{
		{"2", Finish{Position: 2, Known: true}},
		{"12", Finish{Position: 12, Known: true}},
		{"d", Finish{Position: DisqualifiedPosition, Disqualified: true, Known: true}},
		{"HYL", Finish{Position: DisqualifiedPosition, Disqualified: true, Known: true}},
		{"p", Finish{Position: DisqualifiedPosition, Disqualified: true, Known: true}},
		{"k", Finish{Position: DNFPosition, DNF: true, Known: true}},
		{"5d", Finish{Position: 5, Disqualified: true, Known: true}},
		{"-", Finish{Position: NotPlacedPosition, Known: true}},
		{"", Finish{Position: NotPlacedPosition}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseFinish(tt.code), tt.code)
	}

	assert.True(t, ParseFinish("3").Podium())
	assert.False(t, ParseFinish("4").Podium())
	assert.False(t, ParseFinish("d").Podium())
}

func TestParseShoesAndCart(t *testing.T) {
	for _, s := range []string{"HAS_SHOES", "has_shoes", "true", "YES", "1"} {
		assert.Equal(t, race.HasShoes, ParseShoes(s), s)
	}
	for _, s := range []string{"NO_SHOES", "false", "no", "0"} {
		assert.Equal(t, race.NoShoes, ParseShoes(s), s)
	}
	for _, s := range []string{"", "UNKNOWN", "maybe"} {
		assert.Equal(t, race.ShoesUnknown, ParseShoes(s), s)
	}

	assert.Equal(t, race.CartYes, ParseCart("yes"))
	assert.Equal(t, race.CartNo, ParseCart(" NO "))
	assert.Equal(t, race.CartUnknown, ParseCart(""))
	assert.Equal(t, race.CartUnknown, ParseCart("UNKNOWN"))
}

func TestParseGender(t *testing.T) {
	assert.Equal(t, GenderMare, ParseGender("TAMMA"))
	assert.Equal(t, GenderStallion, ParseGender("ORI"))
	assert.Equal(t, GenderGelding, ParseGender("RUUNA"))
	assert.Equal(t, GenderGelding, ParseGender(""))
	assert.Equal(t, GenderGelding, ParseGender("??"))
}

func TestSelectRecord(t *testing.T) {
	fields := RecordFields{Mobile: "12,6aly", Handicap: "15,2ke", Vault: "16,0"}

	car := SelectRecord(fields, true)
	assert.True(t, car.Found)
	assert.InDelta(t, 12.6, car.Value, 1e-12)
	assert.True(t, car.FromCarStart)

	line := SelectRecord(fields, false)
	assert.InDelta(t, 15.2, line.Value, 1e-12)
	assert.False(t, line.FromCarStart)

	fallback := SelectRecord(RecordFields{Mobile: "", Handicap: "ke", Vault: "16,0"}, true)
	assert.InDelta(t, 16.0, fallback.Value, 1e-12)
	assert.False(t, fallback.FromCarStart)

	mobileOnly := SelectRecord(RecordFields{Mobile: "13,1a"}, false)
	assert.True(t, mobileOnly.FromCarStart)

	none := SelectRecord(RecordFields{Mobile: "0,0", Handicap: "", Vault: "a12"}, false)
	assert.Equal(t, Record{}, none)
}

func TestEncodeTrackCondition(t *testing.T) {
	assert.Equal(t, 0.0, EncodeTrackCondition("Heavy track"))
	assert.Equal(t, 0.25, EncodeTrackCondition("quite heavy track"))
	assert.Equal(t, 0.75, EncodeTrackCondition(" winter track "))
	assert.Equal(t, 1.0, EncodeTrackCondition("LIGHT TRACK"))
	assert.Equal(t, NeutralTrackCondition, EncodeTrackCondition(""))
	assert.Equal(t, NeutralTrackCondition, EncodeTrackCondition("mud"))
}

func TestMarketFractions(t *testing.T) {
	assert.InDelta(t, 0.1534, BettingFraction("1534"), 1e-12)
	assert.Equal(t, 0.0, BettingFraction(""))
	assert.Equal(t, 0.0, BettingFraction("abc"))
	assert.Equal(t, 0.0, BettingFraction("-5"))

	assert.InDelta(t, 0.235, WinFraction("23.5", 0, 0), 1e-12)
	assert.InDelta(t, 0.235, WinFraction("23,5", 0, 0), 1e-12)
	assert.InDelta(t, 0.3333, WinFraction("", 1, 3), 1e-12)
	assert.Equal(t, 0.0, WinFraction("", 0, 10))
	assert.Equal(t, 0.0, WinFraction("", 3, 0))

	assert.InDelta(t, 15.2, WinOdds("152"), 1e-12)
	assert.Equal(t, 0.0, WinOdds(""))
	assert.InDelta(t, 100.0, FirstPrize("1000000"), 1e-12)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

	for _, s := range []string{"2026-01-10", "2026-01-10T18:30:00+02:00", "10.1.26", "10.01.2026"} {
		got, ok := ParseDate(s)
		require.True(t, ok, s)
		assert.True(t, want.Equal(got), s)
	}

	for _, s := range []string{"", "0", "NaT", "yesterday", "31.2.26", "2026-13-01", "1.2"} {
		_, ok := ParseDate(s)
		assert.False(t, ok, s)
	}
}

func TestInt(t *testing.T) {
	assert.Equal(t, 2100, Int("2100"))
	assert.Equal(t, 2100, Int(" 2100 m"))
	assert.Equal(t, 0, Int(""))
	assert.Equal(t, 0, Int("m"))
}
