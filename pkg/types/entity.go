package types

import "time"

// HasID is implemented by entities that receive a surrogate identifier on
// creation.
type HasID interface {
	SetID(id string)
}

// HasTimestamps is implemented by entities that carry audit timestamps.
// CreatedAt is written once on creation; UpdatedAt on every write.
type HasTimestamps interface {
	SetCreatedAt(t time.Time)
	SetUpdatedAt(t time.Time)
}

// Identity is an embeddable surrogate identifier. Embed it in an entity
// struct to satisfy HasID through the pointer receiver.
type Identity struct {
	ID string `json:"id"`
}

// SetID assigns the identifier.
func (i *Identity) SetID(id string) { i.ID = id }

// GetID returns the identifier, empty before creation.
func (i *Identity) GetID() string { return i.ID }

// Timestamps is an embeddable pair of audit timestamps satisfying
// HasTimestamps through the pointer receiver.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetCreatedAt sets the creation timestamp.
func (t *Timestamps) SetCreatedAt(at time.Time) { t.CreatedAt = at }

// SetUpdatedAt sets the last-modification timestamp.
func (t *Timestamps) SetUpdatedAt(at time.Time) { t.UpdatedAt = at }

// GetCreatedAt returns the creation timestamp.
func (t *Timestamps) GetCreatedAt() time.Time { return t.CreatedAt }

// GetUpdatedAt returns the last-modification timestamp.
func (t *Timestamps) GetUpdatedAt() time.Time { return t.UpdatedAt }

// Model embeds both Identity and Timestamps. Most entity types embed Model;
// types that need only one capability embed the narrower struct.
type Model struct {
	Identity
	Timestamps
}

// Stamped is implemented by entities that opt into both capabilities.
type Stamped interface {
	HasID
	HasTimestamps
}
