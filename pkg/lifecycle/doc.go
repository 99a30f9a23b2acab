// Package lifecycle populates surrogate identifiers and audit timestamps on
// entities immediately before a write.
//
// Entities opt into identifier injection by implementing types.HasID and
// into timestamp injection by implementing types.HasTimestamps. A Stamper
// holds the clock and identifier sources; the generic Apply functions and the
// Hook constructors operate purely over those interfaces so no per-type code
// is needed.
//
// Rules, for a write flagged as insert or update:
//
//   - identifier: assigned a fresh UUID on insert, untouched on update
//   - created_at: set on insert only
//   - updated_at: set on every write
//
// Every call samples the clock at most once, so an inserted entity always has
// CreatedAt equal to UpdatedAt. Calling with insert=false repeatedly advances
// UpdatedAt each time.
//
// Stampers hold no mutable state after construction and are safe for
// concurrent use.
package lifecycle
