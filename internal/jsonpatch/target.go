package jsonpatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ApplyTo applies patch to the JSON form of target and decodes the result back
// into target. target must be a non-nil pointer. Members the target type does
// not declare are rejected. target is left untouched when any step fails.
func ApplyTo(patch Patch, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer", ErrTargetMismatch)
	}

	encoded, err := json.Marshal(target)
	if err != nil {
		return &TargetError{Err: err}
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return &TargetError{Err: err}
	}

	patched, err := patch.Apply(doc)
	if err != nil {
		return err
	}

	out, err := json.Marshal(patched)
	if err != nil {
		return &TargetError{Err: err}
	}

	fresh := reflect.New(rv.Elem().Type())
	dec := json.NewDecoder(bytes.NewReader(out))
	dec.DisallowUnknownFields()
	if err := dec.Decode(fresh.Interface()); err != nil {
		return targetError(err)
	}

	rv.Elem().Set(fresh.Elem())
	return nil
}

func targetError(err error) *TargetError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &TargetError{Field: typeErr.Field, Err: fmt.Errorf("cannot use %s as %s", typeErr.Value, typeErr.Type)}
	}
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return &TargetError{Field: strings.Trim(field, `"`), Err: errors.New("unknown field")}
	}
	return &TargetError{Err: err}
}
