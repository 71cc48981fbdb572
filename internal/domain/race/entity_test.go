package race

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartersSkipsScratched(t *testing.T) {
	r := Race{Runners: []Runner{
		{Number: 1},
		{Number: 2, Scratched: true},
		{Number: 3},
	}}

	starters := r.Starters()
	assert.Len(t, starters, 2)
	assert.Equal(t, 1, starters[0].Number)
	assert.Equal(t, 3, starters[1].Number)
}

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		name  string
		start PriorStart
		want  bool
	}{
		{"date and driver", PriorStart{Date: "2026-01-10", Driver: "J Makinen"}, false},
		{"no date", PriorStart{Driver: "J Makinen"}, true},
		{"blank driver", PriorStart{Date: "2026-01-01", Driver: "  "}, true},
		{"empty row", PriorStart{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.start.IsPlaceholder())
		})
	}
}

func TestStatusFlags(t *testing.T) {
	assert.True(t, HasShoes.Active())
	assert.True(t, HasShoes.Known())
	assert.False(t, NoShoes.Active())
	assert.True(t, NoShoes.Known())
	assert.False(t, ShoesUnknown.Known())

	assert.True(t, CartYes.Active())
	assert.True(t, CartNo.Known())
	assert.False(t, CartUnknown.Known())
}
