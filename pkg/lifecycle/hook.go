package lifecycle

import "github.com/mesh-intelligence/entitykit/pkg/types"

// Hook is the call-before-write extension point. It receives the candidate
// entity and whether the write is an insert, and returns the entity to
// persist or an error that aborts the write.
type Hook[T any] func(e T, insert bool) (T, error)

// IdentifierHook returns a Hook applying s.StampID. A nil s uses the
// package default stamper.
func IdentifierHook[T types.HasID](s *Stamper) Hook[T] {
	s = orDefault(s)
	return func(e T, insert bool) (T, error) {
		s.StampID(e, insert)
		return e, nil
	}
}

// TimestampHook returns a Hook applying s.StampTimestamps. A nil s uses the
// package default stamper.
func TimestampHook[T types.HasTimestamps](s *Stamper) Hook[T] {
	s = orDefault(s)
	return func(e T, insert bool) (T, error) {
		s.StampTimestamps(e, insert)
		return e, nil
	}
}

// IdentifierAndTimestampHook returns a Hook applying s.StampAll. A nil s
// uses the package default stamper.
func IdentifierAndTimestampHook[T types.Stamped](s *Stamper) Hook[T] {
	s = orDefault(s)
	return func(e T, insert bool) (T, error) {
		s.StampAll(e, insert)
		return e, nil
	}
}

// Chain runs hooks in order, feeding each the entity returned by the
// previous one. The first error stops the chain. Nil hooks are skipped.
func Chain[T any](hooks ...Hook[T]) Hook[T] {
	return func(e T, insert bool) (T, error) {
		var err error
		for _, h := range hooks {
			if h == nil {
				continue
			}
			if e, err = h(e, insert); err != nil {
				return e, err
			}
		}
		return e, nil
	}
}

func orDefault(s *Stamper) *Stamper {
	if s == nil {
		return defaultStamper
	}
	return s
}
