package ingest

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totoforecast/internal/domain/race"
	"totoforecast/internal/features/vector"
)

func loadRace(t *testing.T) RawRace {
	t.Helper()
	data, err := os.ReadFile("testdata/race.json")
	require.NoError(t, err)

	var raw RawRace
	require.NoError(t, json.Unmarshal(data, &raw))
	return raw
}

func TestScalarUnmarshal(t *testing.T) {
	var v struct {
		A Scalar `json:"a"`
		B Scalar `json:"b"`
		C Scalar `json:"c"`
		D Scalar `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"15,5a","b":2100,"c":null,"d":true}`), &v))

	assert.Equal(t, "15,5a", v.A.String())
	assert.Equal(t, 2100, v.B.Int())
	assert.Equal(t, "", v.C.String())
	assert.Equal(t, 0, v.C.Int())
	assert.True(t, v.D.Bool())
	assert.False(t, v.A.Bool())
	assert.Equal(t, 15, v.A.Int())
}

func TestNormalizeRace(t *testing.T) {
	r := NormalizeRace(loadRace(t))

	assert.Equal(t, "1234567", r.ID)
	assert.Equal(t, "2026-03-01", r.Date)
	assert.Equal(t, 2100, r.Distance)
	assert.True(t, r.ColdBlood)
	assert.True(t, r.CarStart)
	require.Len(t, r.Runners, 2)

	runner := r.Runners[0]
	assert.Equal(t, 3, runner.Number)
	assert.Equal(t, "Parla", runner.Name)
	assert.Equal(t, "Jorgen Aberg", runner.Coach)
	assert.Equal(t, "Juhani Makinen", runner.Driver)
	assert.Equal(t, 7, runner.Age)
	assert.Equal(t, 3, runner.Gender)
	assert.Equal(t, race.HasShoes, runner.FrontShoes)
	assert.Equal(t, race.NoShoes, runner.RearShoes)
	assert.True(t, runner.FrontShoesChanged)
	assert.False(t, runner.RearShoesChanged)
	assert.Equal(t, race.CartNo, runner.SpecialCart)
	assert.InDelta(t, 0.1534, runner.BettingFraction, 1e-9)
	assert.InDelta(t, 0.25, runner.WinFraction, 1e-9)
	assert.Equal(t, 26.1, runner.Record)
	assert.True(t, runner.RecordFromCarStart)
	assert.False(t, runner.Scratched)
	assert.Equal(t, 2, runner.FinishPosition)

	require.Len(t, runner.PriorStarts, 2)
	ps := runner.PriorStarts[0]
	assert.Equal(t, "20.2.26", ps.Date)
	assert.Equal(t, "Juhani Makinen", ps.Driver)
	assert.Equal(t, "Vermo", ps.Track)
	assert.Equal(t, 2100, ps.Distance)
	assert.Equal(t, 4, ps.StartPost)
	assert.Equal(t, "27,1a", ps.KmTime)
	assert.Equal(t, "2", ps.Result)
	assert.Equal(t, race.HasShoes, ps.FrontShoes)
	assert.Equal(t, race.ShoesUnknown, ps.RearShoes)
	assert.InDelta(t, 15.2, ps.WinOdds, 1e-9)
	assert.InDelta(t, 1000.0, ps.FirstPrize, 1e-9)
	assert.Equal(t, "good", ps.TrackCondition)

	assert.True(t, runner.PriorStarts[1].IsPlaceholder())
	assert.Len(t, vector.ValidStarts(runner.PriorStarts), 1)

	other := r.Runners[1]
	assert.Equal(t, 5, other.Number)
	assert.Equal(t, "Other", other.Name)
	assert.Equal(t, "Unknown", other.Coach)
	assert.Equal(t, 1, other.Gender)
	assert.True(t, other.Scratched)
	assert.Equal(t, 1, other.FinishPosition)
	assert.Empty(t, other.PriorStarts)
	assert.Equal(t, 0.0, other.BettingFraction)
	assert.Equal(t, 0.0, other.Record)

	assert.Len(t, r.Starters(), 1)
}

func TestNormalizeRaceDefaults(t *testing.T) {
	r := NormalizeRace(RawRace{ID: "9", Breed: "L", StartType: "VOLT_START"})

	assert.Equal(t, "9", r.ID)
	assert.Equal(t, 2100, r.Distance)
	assert.False(t, r.ColdBlood)
	assert.False(t, r.CarStart)
	assert.Empty(t, r.Runners)
}

func TestRecordPriorityFollowsStartType(t *testing.T) {
	raw := loadRace(t)
	raw.StartType = "VOLT_START"

	runner := NormalizeRace(raw).Runners[0]
	assert.Equal(t, 27.0, runner.Record)
	assert.False(t, runner.RecordFromCarStart)
}

func TestFinishPosition(t *testing.T) {
	podium := podiumNumbers(" 5 - 3-7")

	assert.Equal(t, 1, finishPosition(5, podium))
	assert.Equal(t, 3, finishPosition(7, podium))
	assert.Equal(t, 0, finishPosition(1, podium))
	assert.Equal(t, 0, finishPosition(0, podium))
	assert.Equal(t, 0, finishPosition(5, podiumNumbers("")))
}
