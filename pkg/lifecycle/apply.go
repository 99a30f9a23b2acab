package lifecycle

import "github.com/mesh-intelligence/entitykit/pkg/types"

// ApplyIdentifier assigns a fresh identifier to e on insert and returns e.
// On update e is returned unchanged.
func ApplyIdentifier[T types.HasID](e T, insert bool) T {
	defaultStamper.StampID(e, insert)
	return e
}

// ApplyTimestamps sets CreatedAt (insert only) and UpdatedAt from a single
// clock reading and returns e.
func ApplyTimestamps[T types.HasTimestamps](e T, insert bool) T {
	defaultStamper.StampTimestamps(e, insert)
	return e
}

// ApplyIdentifierAndTimestamps is ApplyIdentifier followed by
// ApplyTimestamps with one shared clock reading.
func ApplyIdentifierAndTimestamps[T types.Stamped](e T, insert bool) T {
	defaultStamper.StampAll(e, insert)
	return e
}
