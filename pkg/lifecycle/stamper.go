package lifecycle

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/entitykit/pkg/types"
)

// Clock returns the current wall-clock time.
type Clock func() time.Time

// IDFunc returns a new globally unique identifier. It must not return an
// empty string; generator failure is fatal and should panic.
type IDFunc func() string

// ErrNilSource is returned by options given a nil clock or ID function.
var ErrNilSource = errors.New("lifecycle: clock and id sources must not be nil")

// Stamper injects identifiers and timestamps into entities.
type Stamper struct {
	clock     Clock
	newID     IDFunc
	location  *time.Location
	precision time.Duration
}

// Option configures a Stamper.
type Option func(*Stamper) error

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Stamper) error {
		if c == nil {
			return ErrNilSource
		}
		s.clock = c
		return nil
	}
}

// WithIDFunc replaces the identifier generator.
func WithIDFunc(f IDFunc) Option {
	return func(s *Stamper) error {
		if f == nil {
			return ErrNilSource
		}
		s.newID = f
		return nil
	}
}

// WithUUIDVersion selects UUID v7 (time-ordered, the default) or v4 (random).
func WithUUIDVersion(version string) Option {
	return func(s *Stamper) error {
		switch version {
		case "", types.UUIDv7:
			s.newID = NewUUIDv7
		case types.UUIDv4:
			s.newID = NewUUIDv4
		default:
			return types.ErrUUIDVersionUnknown
		}
		return nil
	}
}

// WithPrecision truncates every sampled instant to d. Zero disables truncation.
// Writes within the same d interval get equal timestamps, so updated_at only
// advances across intervals; keep d at or below the expected gap between
// updates of one entity.
func WithPrecision(d time.Duration) Option {
	return func(s *Stamper) error {
		if d < 0 {
			return types.ErrPrecisionInvalid
		}
		s.precision = d
		return nil
	}
}

// WithLocation converts every sampled instant to loc. Nil keeps the clock's zone.
func WithLocation(loc *time.Location) Option {
	return func(s *Stamper) error {
		s.location = loc
		return nil
	}
}

// NewStamper returns a Stamper using UUID v7 identifiers and the UTC wall
// clock, adjusted by opts.
func NewStamper(opts ...Option) (*Stamper, error) {
	s := &Stamper{
		clock:    time.Now,
		newID:    NewUUIDv7,
		location: time.UTC,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewStamperFromConfig builds a Stamper from the write-path settings of cfg,
// followed by any extra options.
func NewStamperFromConfig(cfg types.Config, opts ...Option) (*Stamper, error) {
	precision, err := cfg.PrecisionDuration()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.TimeLocation()
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithUUIDVersion(cfg.UUIDVersion),
		WithPrecision(precision),
		WithLocation(loc),
	}
	return NewStamper(append(base, opts...)...)
}

// defaultStamper backs the package-level Apply functions.
var defaultStamper = &Stamper{clock: time.Now, newID: NewUUIDv7, location: time.UTC}

// Now samples the clock once, applying the configured zone and precision.
func (s *Stamper) Now() time.Time {
	t := s.clock()
	if s.location != nil {
		t = t.In(s.location)
	}
	if s.precision > 0 {
		t = t.Truncate(s.precision)
	}
	return t
}

// NewID returns a fresh identifier from the configured generator.
func (s *Stamper) NewID() string {
	return s.newID()
}

// StampID assigns a fresh identifier when insert is true and leaves e
// untouched otherwise.
func (s *Stamper) StampID(e types.HasID, insert bool) {
	if insert {
		e.SetID(s.newID())
	}
}

// StampTimestamps samples the clock once, sets CreatedAt to that instant
// when insert is true, and always sets UpdatedAt to it.
func (s *Stamper) StampTimestamps(e types.HasTimestamps, insert bool) {
	s.stampTimestampsAt(e, insert, s.Now())
}

// StampAll applies StampID and StampTimestamps with the same insert flag.
func (s *Stamper) StampAll(e types.Stamped, insert bool) {
	s.StampID(e, insert)
	s.stampTimestampsAt(e, insert, s.Now())
}

func (s *Stamper) stampTimestampsAt(e types.HasTimestamps, insert bool, now time.Time) {
	if insert {
		e.SetCreatedAt(now)
	}
	e.SetUpdatedAt(now)
}

// NewUUIDv7 generates a time-ordered UUID v7, falling back to v4 if v7
// generation fails.
func NewUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// NewUUIDv4 generates a random UUID v4. It panics if the system randomness
// source fails.
func NewUUIDv4() string {
	return uuid.New().String()
}
