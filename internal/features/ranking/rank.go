// Package ranking turns a per-runner market signal into a position relative to
// the other starters of the same race.
package ranking

import "sort"

// Rank is one runner's position for one signal
type Rank struct {
	Value float64
	Known bool
}

// Neutral is the rank assigned when a runner has no usable signal
func Neutral(starters int) float64 {
	return float64(starters+1) / 2
}

// Ranks ranks values descending. Index i of the result belongs to values[i].
// Callers pass only the non-scratched starters of a single race.
//
// A runner with a positive value gets its 1-based position in a stable sort, so
// ties keep input order. Runners without a positive value, and every runner when
// nobody in the race has one, get the neutral middle rank.
func Ranks(values []float64) []Rank {
	n := len(values)
	ranks := make([]Rank, n)
	neutral := Neutral(n)

	hasSignal := false
	for _, v := range values {
		if v > 0 {
			hasSignal = true
			break
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] > values[order[b]]
	})

	position := make([]int, n)
	for pos, idx := range order {
		position[idx] = pos + 1
	}

	for i, v := range values {
		if hasSignal && v > 0 {
			ranks[i] = Rank{Value: float64(position[i]), Known: true}
			continue
		}
		ranks[i] = Rank{Value: neutral}
	}
	return ranks
}
