// Package memory provides a process-local implementation of the store
// interfaces. All state lives in a single Store guarded by a mutex, so it is
// lost when the process exits.
package memory
