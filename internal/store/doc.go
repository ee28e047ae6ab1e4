// Package store defines the persistence contract for cities and points of
// interest. Repositories follow a unit-of-work shape: reads go straight to the
// backing store, while additions, deletions and edits to tracked entities stay
// pending until SaveChanges commits them together.
package store
