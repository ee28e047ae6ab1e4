// Package jsonpatch implements JSON Patch (RFC 6902) over generic JSON values.
//
// A Patch is an ordered list of operations (add, remove, replace, move, copy,
// test) addressed by JSON Pointers (RFC 6901). Decode parses and validates a
// patch document, Patch.Apply applies it to a value produced by
// encoding/json, and ApplyTo applies it to a typed Go struct by round-tripping
// the struct through its JSON form. Failures are reported as *Error values that
// identify the offending operation, or as *TargetError when the patched
// document no longer fits the target type.
package jsonpatch
