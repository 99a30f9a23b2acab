// Package types defines the entity capability interfaces, relation metadata,
// the Store and Table interfaces, configuration, and standard error types for
// entitykit.
//
// Two behaviors are shared by every persistable entity: identifier and
// timestamp injection on write (see package lifecycle), and composition of
// direct and junction-mediated relation descriptors (see package relation).
// This package holds only the values those behaviors operate on.
package types
