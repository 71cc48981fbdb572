// Package identity maps free-text coach, driver and track names to stable small
// integers. IDs are assigned during training by a Builder and resolved read-only
// at inference time by a Resolver; both derive lookup keys with the same rule.
package identity

import (
	"strings"

	"totoforecast/pkg/errors"
)

// Namespace separates the three ID spaces
type Namespace string

const (
	Coach  Namespace = "coach"
	Driver Namespace = "driver"
	Track  Namespace = "track"
)

// Namespaces lists every namespace a persisted map must carry
var Namespaces = []Namespace{Coach, Driver, Track}

// Unknown is the ID of placeholder and unseen names
const Unknown = 0

// Maps is the persisted form of the identity tables. The JSON layout matches the
// mappings file consumed by the browser inference path.
type Maps struct {
	Coaches map[string]int `json:"coaches"`
	Drivers map[string]int `json:"drivers"`
	Tracks  map[string]int `json:"tracks"`
	Counts  Counts         `json:"counts"`
}

// Counts holds the next free integer per namespace
type Counts struct {
	Coach  int `json:"c"`
	Driver int `json:"d"`
	Track  int `json:"t"`
}

// NewMaps returns empty tables with every counter at 1
func NewMaps() Maps {
	return Maps{
		Coaches: make(map[string]int),
		Drivers: make(map[string]int),
		Tracks:  make(map[string]int),
		Counts:  Counts{Coach: 1, Driver: 1, Track: 1},
	}
}

func (m *Maps) table(ns Namespace) map[string]int {
	switch ns {
	case Coach:
		return m.Coaches
	case Driver:
		return m.Drivers
	case Track:
		return m.Tracks
	}
	return nil
}

func (m *Maps) counter(ns Namespace) *int {
	switch ns {
	case Coach:
		return &m.Counts.Coach
	case Driver:
		return &m.Counts.Driver
	case Track:
		return &m.Counts.Track
	}
	return nil
}

// Len returns the number of names known in a namespace
func (m *Maps) Len(ns Namespace) int {
	return len(m.table(ns))
}

// Validate checks the structural contract: every namespace present, every ID
// positive and below its namespace counter.
func (m *Maps) Validate() error {
	for _, ns := range Namespaces {
		table := m.table(ns)
		if table == nil {
			return errors.Wrapf(errors.ErrNamespaceMissing, "namespace %q", ns)
		}

		next := *m.counter(ns)
		if next < 1 {
			return errors.Wrapf(errors.ErrInvariantViolation, "namespace %q: counter %d", ns, next)
		}
		for key, id := range table {
			if id < 1 || id >= next {
				return errors.Wrapf(errors.ErrInvariantViolation,
					"namespace %q: id %d for %q outside [1, %d)", ns, id, key, next)
			}
		}
	}
	return nil
}

// Clone deep-copies the tables
func (m *Maps) Clone() Maps {
	clone := Maps{Counts: m.Counts}
	clone.Coaches = cloneTable(m.Coaches)
	clone.Drivers = cloneTable(m.Drivers)
	clone.Tracks = cloneTable(m.Tracks)
	return clone
}

func cloneTable(src map[string]int) map[string]int {
	if src == nil {
		return nil
	}
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Key derives the lookup key for a name. Drivers collapse to their lower-cased
// surname so "J Makinen" and "Juhani Makinen" share one identity. Placeholder
// names return ok=false.
func Key(ns Namespace, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if isPlaceholder(name) {
		return "", false
	}

	lower := strings.ToLower(name)
	if ns == Driver {
		fields := strings.Fields(lower)
		return fields[len(fields)-1], true
	}
	return lower, true
}

func isPlaceholder(name string) bool {
	return name == "" || name == "0" || strings.EqualFold(name, "unknown")
}
