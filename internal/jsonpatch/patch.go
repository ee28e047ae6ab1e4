package jsonpatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// Operation names defined by RFC 6902.
const (
	OpAdd     = "add"
	OpRemove  = "remove"
	OpReplace = "replace"
	OpMove    = "move"
	OpCopy    = "copy"
	OpTest    = "test"
)

// Operation is a single validated patch operation.
type Operation struct {
	Op    string
	Path  Pointer
	From  Pointer
	Value any

	rawPath string
}

// Patch is an ordered sequence of operations.
type Patch []Operation

// Decode parses a JSON Patch document. Every operation is validated up front:
// the op must be known, pointers must be well formed, value is required for
// add, replace and test, and from is required for move and copy.
func Decode(data []byte) (Patch, error) {
	var raw []map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after the operations array", ErrInvalidPatch)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: document must be an array of operations", ErrInvalidPatch)
	}

	patch := make(Patch, 0, len(raw))
	for i, fields := range raw {
		op, err := decodeOperation(fields)
		if err != nil {
			return nil, &Error{Index: i, Op: op.Op, Path: op.rawPath, Err: err}
		}
		patch = append(patch, op)
	}
	return patch, nil
}

func decodeOperation(fields map[string]json.RawMessage) (Operation, error) {
	var op Operation

	if err := decodeString(fields, "op", &op.Op); err != nil {
		return op, err
	}
	if err := decodeString(fields, "path", &op.rawPath); err != nil {
		return op, err
	}

	switch op.Op {
	case OpAdd, OpRemove, OpReplace, OpMove, OpCopy, OpTest:
	default:
		return op, fmt.Errorf("%w: unknown op %q", ErrInvalidPatch, op.Op)
	}

	path, err := ParsePointer(op.rawPath)
	if err != nil {
		return op, err
	}
	op.Path = path

	switch op.Op {
	case OpAdd, OpReplace, OpTest:
		rawValue, ok := fields["value"]
		if !ok {
			return op, fmt.Errorf("%w: %q requires a value", ErrInvalidPatch, op.Op)
		}
		if err := json.Unmarshal(rawValue, &op.Value); err != nil {
			return op, fmt.Errorf("%w: invalid value: %v", ErrInvalidPatch, err)
		}
	case OpMove, OpCopy:
		var from string
		if err := decodeString(fields, "from", &from); err != nil {
			return op, err
		}
		op.From, err = ParsePointer(from)
		if err != nil {
			return op, err
		}
	}
	return op, nil
}

func decodeString(fields map[string]json.RawMessage, name string, dst *string) error {
	raw, ok := fields[name]
	if !ok {
		return fmt.Errorf("%w: missing %q", ErrInvalidPatch, name)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %q must be a string", ErrInvalidPatch, name)
	}
	return nil
}

// Apply applies the patch to doc and returns the patched document. doc is
// never modified; operations run on a deep copy and the first failing
// operation aborts the whole patch.
func (p Patch) Apply(doc any) (any, error) {
	out := deepCopy(doc)
	for i, op := range p {
		var err error
		out, err = op.apply(out)
		if err != nil {
			return nil, &Error{Index: i, Op: op.Op, Path: op.Path.String(), Err: err}
		}
	}
	return out, nil
}

func (op Operation) apply(doc any) (any, error) {
	switch op.Op {
	case OpAdd:
		return add(doc, op.Path, deepCopy(op.Value))
	case OpRemove:
		if len(op.Path) == 0 {
			return nil, fmt.Errorf("%w: cannot remove the document root", ErrInvalidPointer)
		}
		out, _, err := remove(doc, op.Path)
		return out, err
	case OpReplace:
		return replace(doc, op.Path, deepCopy(op.Value))
	case OpMove:
		if op.From.IsPrefixOf(op.Path) {
			return nil, ErrMoveIntoChild
		}
		if op.From.String() == op.Path.String() {
			_, err := get(doc, op.From)
			return doc, err
		}
		out, value, err := remove(doc, op.From)
		if err != nil {
			return nil, err
		}
		return add(out, op.Path, value)
	case OpCopy:
		value, err := get(doc, op.From)
		if err != nil {
			return nil, err
		}
		return add(doc, op.Path, deepCopy(value))
	case OpTest:
		value, err := get(doc, op.Path)
		if err != nil {
			return nil, err
		}
		if !equal(value, op.Value) {
			return nil, ErrTestFailed
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: unknown op %q", ErrInvalidPatch, op.Op)
	}
}

// get resolves path within doc.
func get(doc any, path Pointer) (any, error) {
	node := doc
	for _, tok := range path {
		switch n := node.(type) {
		case map[string]any:
			child, ok := n[tok]
			if !ok {
				return nil, ErrPathNotFound
			}
			node = child
		case []any:
			i, err := arrayIndex(tok, len(n))
			if err != nil {
				return nil, err
			}
			node = n[i]
		default:
			return nil, ErrPathNotFound
		}
	}
	return node, nil
}

// add inserts value at path. Objects gain or overwrite a member; arrays get
// value inserted before the index, or appended for "-".
func add(node any, path Pointer, value any) (any, error) {
	if len(path) == 0 {
		return value, nil
	}
	tok, rest := path[0], path[1:]

	switch n := node.(type) {
	case map[string]any:
		if len(rest) == 0 {
			n[tok] = value
			return n, nil
		}
		child, ok := n[tok]
		if !ok {
			return nil, ErrPathNotFound
		}
		updated, err := add(child, rest, value)
		if err != nil {
			return nil, err
		}
		n[tok] = updated
		return n, nil
	case []any:
		if len(rest) == 0 {
			if tok == "-" {
				return append(n, value), nil
			}
			i, err := arrayIndex(tok, len(n)+1)
			if err != nil {
				return nil, err
			}
			n = append(n, nil)
			copy(n[i+1:], n[i:])
			n[i] = value
			return n, nil
		}
		i, err := arrayIndex(tok, len(n))
		if err != nil {
			return nil, err
		}
		updated, err := add(n[i], rest, value)
		if err != nil {
			return nil, err
		}
		n[i] = updated
		return n, nil
	default:
		return nil, ErrPathNotFound
	}
}

// remove deletes the value at path and returns the updated node and the
// removed value.
func remove(node any, path Pointer) (any, any, error) {
	tok, rest := path[0], path[1:]

	switch n := node.(type) {
	case map[string]any:
		child, ok := n[tok]
		if !ok {
			return nil, nil, ErrPathNotFound
		}
		if len(rest) == 0 {
			delete(n, tok)
			return n, child, nil
		}
		updated, removed, err := remove(child, rest)
		if err != nil {
			return nil, nil, err
		}
		n[tok] = updated
		return n, removed, nil
	case []any:
		i, err := arrayIndex(tok, len(n))
		if err != nil {
			return nil, nil, err
		}
		if len(rest) == 0 {
			removed := n[i]
			return append(n[:i], n[i+1:]...), removed, nil
		}
		updated, removed, err := remove(n[i], rest)
		if err != nil {
			return nil, nil, err
		}
		n[i] = updated
		return n, removed, nil
	default:
		return nil, nil, ErrPathNotFound
	}
}

// replace overwrites an existing value at path.
func replace(node any, path Pointer, value any) (any, error) {
	if len(path) == 0 {
		return value, nil
	}
	if _, err := get(node, path); err != nil {
		return nil, err
	}
	if parent, err := get(node, path[:len(path)-1]); err == nil {
		if arr, ok := parent.([]any); ok {
			i, err := arrayIndex(path[len(path)-1], len(arr))
			if err != nil {
				return nil, err
			}
			arr[i] = value
			return node, nil
		}
	}
	return add(node, path, value)
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}

// equal compares two JSON values structurally. Numbers compare by value
// regardless of their Go representation.
func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}

	switch ta := a.(type) {
	case nil:
		return b == nil
	case string:
		tb, ok := b.(string)
		return ok && ta == tb
	case bool:
		tb, ok := b.(bool)
		return ok && ta == tb
	case map[string]any:
		tb, ok := b.(map[string]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for k, va := range ta {
			vb, ok := tb[k]
			if !ok || !equal(va, vb) {
				return false
			}
		}
		return true
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !equal(ta[i], tb[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil && !math.IsNaN(f)
	default:
		return 0, false
	}
}
