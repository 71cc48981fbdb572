package identity

import "totoforecast/pkg/errors"

// IDSource resolves a name to its integer ID. Resolver and Builder both satisfy it,
// so the feature builder does not care which mode it runs in.
type IDSource interface {
	ID(ns Namespace, name string) int
}

// Resolver is the read-only inference view of the identity tables.
// It is safe for concurrent use.
type Resolver struct {
	maps Maps
}

// NewResolver validates maps and takes a private copy of them
func NewResolver(maps Maps) (*Resolver, error) {
	if err := maps.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid identity maps")
	}
	return &Resolver{maps: maps.Clone()}, nil
}

// ID returns the stored ID, or Unknown for placeholders and unseen names
func (r *Resolver) ID(ns Namespace, name string) int {
	key, ok := Key(ns, name)
	if !ok {
		return Unknown
	}
	return r.maps.table(ns)[key]
}

// Builder assigns IDs during training. Each unseen key gets the next integer of
// its namespace. Not safe for concurrent use: assignment order defines the IDs.
type Builder struct {
	maps Maps
}

// NewBuilder starts from empty tables
func NewBuilder() *Builder {
	return &Builder{maps: NewMaps()}
}

// NewBuilderFrom continues assigning on top of existing tables
func NewBuilderFrom(maps Maps) (*Builder, error) {
	if err := maps.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid identity maps")
	}
	return &Builder{maps: maps.Clone()}, nil
}

// ID returns the ID for name, assigning a new one if the key is unseen
func (b *Builder) ID(ns Namespace, name string) int {
	key, ok := Key(ns, name)
	if !ok {
		return Unknown
	}

	table := b.maps.table(ns)
	if id, seen := table[key]; seen {
		return id
	}

	counter := b.maps.counter(ns)
	id := *counter
	table[key] = id
	*counter++
	return id
}

// Maps returns a copy of the tables built so far
func (b *Builder) Maps() Maps {
	return b.maps.Clone()
}
