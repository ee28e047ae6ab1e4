package jsonpatch

import (
	"fmt"
	"strconv"
	"strings"
)

// Pointer is a parsed JSON Pointer. The empty Pointer addresses the whole document.
type Pointer []string

// ParsePointer parses s according to RFC 6901.
func ParsePointer(s string) (Pointer, error) {
	if s == "" {
		return Pointer{}, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("%w: %q must start with '/'", ErrInvalidPointer, s)
	}

	raw := strings.Split(s[1:], "/")
	tokens := make(Pointer, len(raw))
	for i, tok := range raw {
		unescaped, err := unescapeToken(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPointer, s, err)
		}
		tokens[i] = unescaped
	}
	return tokens, nil
}

// String renders the pointer back to its escaped form.
func (p Pointer) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, tok := range p {
		b.WriteByte('/')
		b.WriteString(strings.NewReplacer("~", "~0", "/", "~1").Replace(tok))
	}
	return b.String()
}

// IsPrefixOf reports whether p is a proper prefix of other.
func (p Pointer) IsPrefixOf(other Pointer) bool {
	if len(p) >= len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func unescapeToken(tok string) (string, error) {
	if !strings.Contains(tok, "~") {
		return tok, nil
	}
	var b strings.Builder
	for i := 0; i < len(tok); i++ {
		if tok[i] != '~' {
			b.WriteByte(tok[i])
			continue
		}
		if i+1 >= len(tok) {
			return "", fmt.Errorf("dangling '~'")
		}
		switch tok[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", fmt.Errorf("invalid escape '~%c'", tok[i+1])
		}
		i++
	}
	return b.String(), nil
}

// arrayIndex parses an array index token. Valid indexes are in [0, limit).
func arrayIndex(tok string, limit int) (int, error) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIndex, tok)
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidIndex, tok)
		}
	}
	i, err := strconv.Atoi(tok)
	if err != nil || i >= limit {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidIndex, tok)
	}
	return i, nil
}
