package jsonpatch

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeDoc(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestDecode(t *testing.T) {
	t.Run("valid operations", func(t *testing.T) {
		p, err := Decode([]byte(`[
			{"op":"replace","path":"/name","value":"x"},
			{"op":"add","path":"/description","value":null},
			{"op":"remove","path":"/a"},
			{"op":"move","from":"/a","path":"/b"},
			{"op":"copy","from":"/a","path":"/b"},
			{"op":"test","path":"/a","value":1}
		]`))
		require.NoError(t, err)
		require.Len(t, p, 6)
		assert.Equal(t, OpReplace, p[0].Op)
		assert.Equal(t, Pointer{"name"}, p[0].Path)
		assert.Equal(t, "x", p[0].Value)
		assert.Nil(t, p[1].Value)
		assert.Equal(t, Pointer{"a"}, p[3].From)
	})

	tests := []struct {
		name      string
		input     string
		wantIndex int
		wantErr   error
	}{
		{name: "unknown op", input: `[{"op":"frobnicate","path":"/a"}]`, wantErr: ErrInvalidPatch},
		{name: "missing op", input: `[{"path":"/a"}]`, wantErr: ErrInvalidPatch},
		{name: "missing path", input: `[{"op":"remove"}]`, wantErr: ErrInvalidPatch},
		{name: "missing value", input: `[{"op":"remove","path":"/a"},{"op":"add","path":"/a"}]`, wantIndex: 1, wantErr: ErrInvalidPatch},
		{name: "missing from", input: `[{"op":"move","path":"/a"}]`, wantErr: ErrInvalidPatch},
		{name: "malformed pointer", input: `[{"op":"remove","path":"a"}]`, wantErr: ErrInvalidPointer},
		{name: "malformed from", input: `[{"op":"copy","from":"/a~9","path":"/b"}]`, wantErr: ErrInvalidPointer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			require.Error(t, err)
			var opErr *Error
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, tt.wantIndex, opErr.Index)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("not an array", func(t *testing.T) {
		_, err := Decode([]byte(`{"op":"add"}`))
		assert.ErrorIs(t, err, ErrInvalidPatch)
	})

	t.Run("trailing data", func(t *testing.T) {
		for _, input := range []string{
			`[{"op":"remove","path":"/a"}] garbage`,
			`[{"op":"remove","path":"/a"}][]`,
			`[{"op":"remove","path":"/a"}] {"op":"add"}`,
		} {
			_, err := Decode([]byte(input))
			assert.ErrorIs(t, err, ErrInvalidPatch, input)
		}
	})

	t.Run("trailing whitespace", func(t *testing.T) {
		p, err := Decode([]byte("[{\"op\":\"remove\",\"path\":\"/a\"}]\n\t "))
		require.NoError(t, err)
		assert.Len(t, p, 1)
	})

	t.Run("null document", func(t *testing.T) {
		_, err := Decode([]byte(`null`))
		assert.ErrorIs(t, err, ErrInvalidPatch)
	})
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		patch string
		want  string
	}{
		{
			name:  "replace member",
			doc:   `{"name":"a","description":"b"}`,
			patch: `[{"op":"replace","path":"/name","value":"c"}]`,
			want:  `{"name":"c","description":"b"}`,
		},
		{
			name:  "add member",
			doc:   `{"name":"a"}`,
			patch: `[{"op":"add","path":"/description","value":"d"}]`,
			want:  `{"name":"a","description":"d"}`,
		},
		{
			name:  "add null value",
			doc:   `{"name":"a","description":"d"}`,
			patch: `[{"op":"add","path":"/description","value":null}]`,
			want:  `{"name":"a","description":null}`,
		},
		{
			name:  "insert into array",
			doc:   `{"a":[1,3]}`,
			patch: `[{"op":"add","path":"/a/1","value":2}]`,
			want:  `{"a":[1,2,3]}`,
		},
		{
			name:  "append with dash",
			doc:   `{"a":[1]}`,
			patch: `[{"op":"add","path":"/a/-","value":2}]`,
			want:  `{"a":[1,2]}`,
		},
		{
			name:  "append at length",
			doc:   `{"a":[1]}`,
			patch: `[{"op":"add","path":"/a/1","value":2}]`,
			want:  `{"a":[1,2]}`,
		},
		{
			name:  "remove member",
			doc:   `{"a":1,"b":2}`,
			patch: `[{"op":"remove","path":"/a"}]`,
			want:  `{"b":2}`,
		},
		{
			name:  "remove array element",
			doc:   `{"a":[1,2,3]}`,
			patch: `[{"op":"remove","path":"/a/1"}]`,
			want:  `{"a":[1,3]}`,
		},
		{
			name:  "replace array element",
			doc:   `[1,2]`,
			patch: `[{"op":"replace","path":"/0","value":9}]`,
			want:  `[9,2]`,
		},
		{
			name:  "replace root",
			doc:   `{"a":1}`,
			patch: `[{"op":"replace","path":"","value":[1]}]`,
			want:  `[1]`,
		},
		{
			name:  "move member",
			doc:   `{"a":{"x":1},"b":{}}`,
			patch: `[{"op":"move","from":"/a/x","path":"/b/y"}]`,
			want:  `{"a":{},"b":{"y":1}}`,
		},
		{
			name:  "move to same location",
			doc:   `{"a":1}`,
			patch: `[{"op":"move","from":"/a","path":"/a"}]`,
			want:  `{"a":1}`,
		},
		{
			name:  "copy member",
			doc:   `{"a":{"x":1}}`,
			patch: `[{"op":"copy","from":"/a","path":"/b"}]`,
			want:  `{"a":{"x":1},"b":{"x":1}}`,
		},
		{
			name:  "escaped keys",
			doc:   `{"a/b":1,"c~d":2}`,
			patch: `[{"op":"replace","path":"/a~1b","value":3},{"op":"remove","path":"/c~0d"}]`,
			want:  `{"a/b":3}`,
		},
		{
			name:  "passing test",
			doc:   `{"a":{"b":[1,"x",null,true]}}`,
			patch: `[{"op":"test","path":"/a","value":{"b":[1.0,"x",null,true]}},{"op":"add","path":"/c","value":1}]`,
			want:  `{"a":{"b":[1,"x",null,true]},"c":1}`,
		},
		{
			name:  "sequential operations see earlier results",
			doc:   `{}`,
			patch: `[{"op":"add","path":"/a","value":[]},{"op":"add","path":"/a/-","value":"x"},{"op":"replace","path":"/a/0","value":"y"}]`,
			want:  `{"a":["y"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode([]byte(tt.patch))
			require.NoError(t, err)
			got, err := p.Apply(decodeDoc(t, tt.doc))
			require.NoError(t, err)
			assert.Equal(t, decodeDoc(t, tt.want), got)
		})
	}
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		patch     string
		wantIndex int
		wantErr   error
	}{
		{name: "replace missing member", doc: `{}`, patch: `[{"op":"replace","path":"/a","value":1}]`, wantErr: ErrPathNotFound},
		{name: "remove missing member", doc: `{}`, patch: `[{"op":"remove","path":"/a"}]`, wantErr: ErrPathNotFound},
		{name: "add under missing parent", doc: `{}`, patch: `[{"op":"add","path":"/a/b","value":1}]`, wantErr: ErrPathNotFound},
		{name: "index out of range", doc: `[1]`, patch: `[{"op":"add","path":"/5","value":1}]`, wantErr: ErrInvalidIndex},
		{name: "leading zero index", doc: `[1,2]`, patch: `[{"op":"remove","path":"/01"}]`, wantErr: ErrInvalidIndex},
		{name: "failed test", doc: `{"a":1}`, patch: `[{"op":"add","path":"/b","value":2},{"op":"test","path":"/a","value":"1"}]`, wantIndex: 1, wantErr: ErrTestFailed},
		{name: "move into child", doc: `{"a":{"b":{}}}`, patch: `[{"op":"move","from":"/a","path":"/a/b/c"}]`, wantErr: ErrMoveIntoChild},
		{name: "copy missing source", doc: `{}`, patch: `[{"op":"copy","from":"/x","path":"/y"}]`, wantErr: ErrPathNotFound},
		{name: "remove root", doc: `{}`, patch: `[{"op":"remove","path":""}]`, wantErr: ErrInvalidPointer},
		{name: "traverse scalar", doc: `{"a":1}`, patch: `[{"op":"add","path":"/a/b","value":1}]`, wantErr: ErrPathNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode([]byte(tt.patch))
			require.NoError(t, err)

			doc := decodeDoc(t, tt.doc)
			before := decodeDoc(t, tt.doc)
			_, err = p.Apply(doc)
			require.Error(t, err)

			var opErr *Error
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, tt.wantIndex, opErr.Index)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, doc, "input document must not change")
		})
	}
}

type patchTarget struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Count       int     `json:"count"`
}

func TestApplyTo(t *testing.T) {
	desc := "old"

	t.Run("updates target", func(t *testing.T) {
		target := patchTarget{Name: "a", Description: &desc, Count: 1}
		p, err := Decode([]byte(`[{"op":"replace","path":"/name","value":"b"},{"op":"replace","path":"/description","value":null},{"op":"replace","path":"/count","value":2}]`))
		require.NoError(t, err)

		require.NoError(t, ApplyTo(p, &target))
		assert.Equal(t, patchTarget{Name: "b", Count: 2}, target)
	})

	t.Run("unknown member leaves target untouched", func(t *testing.T) {
		target := patchTarget{Name: "a", Description: &desc}
		p, err := Decode([]byte(`[{"op":"replace","path":"/name","value":"b"},{"op":"add","path":"/bogus","value":1}]`))
		require.NoError(t, err)

		err = ApplyTo(p, &target)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTargetMismatch)
		var targetErr *TargetError
		require.True(t, errors.As(err, &targetErr))
		assert.Equal(t, "bogus", targetErr.Field)
		assert.Equal(t, "a", target.Name)
	})

	t.Run("type mismatch names field", func(t *testing.T) {
		target := patchTarget{Name: "a"}
		p, err := Decode([]byte(`[{"op":"replace","path":"/name","value":42}]`))
		require.NoError(t, err)

		err = ApplyTo(p, &target)
		var targetErr *TargetError
		require.True(t, errors.As(err, &targetErr))
		assert.Equal(t, "name", targetErr.Field)
		assert.Equal(t, "a", target.Name)
	})

	t.Run("operation failure is reported as operation error", func(t *testing.T) {
		target := patchTarget{Name: "a"}
		p, err := Decode([]byte(`[{"op":"remove","path":"/missing"}]`))
		require.NoError(t, err)

		err = ApplyTo(p, &target)
		assert.ErrorIs(t, err, ErrPathNotFound)
		assert.NotErrorIs(t, err, ErrTargetMismatch)
	})

	t.Run("requires pointer", func(t *testing.T) {
		err := ApplyTo(Patch{}, patchTarget{})
		assert.ErrorIs(t, err, ErrTargetMismatch)
	})
}
