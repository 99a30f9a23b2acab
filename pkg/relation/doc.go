// Package relation composes relation descriptors from the relation
// definitions each entity type declares for its immediate neighbors.
//
// Entity types declare named relations on a Registry at start-up. Register
// then composes every descriptor the application needs, either directly
// (source -> target, exactly the declared definition) or through one
// junction type (source -> junction -> target), where the first hop is the
// Reverse of the junction's declared relation back to the source. A
// reference to an undeclared entity or relation fails registration, so a
// misconfigured process never starts serving.
//
// After Freeze the registry is read-only and Lookup is safe for concurrent
// use.
package relation
