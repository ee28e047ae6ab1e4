package shared

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// Format is a response representation.
type Format int

// Supported response formats.
const (
	FormatJSON Format = iota
	FormatXML
)

// ContentType returns the media type written for f.
func (f Format) ContentType() string {
	if f == FormatXML {
		return "application/xml; charset=utf-8"
	}
	return "application/json"
}

var mediaFormats = map[string]Format{
	"*/*":              FormatJSON,
	"application/*":    FormatJSON,
	"application/json": FormatJSON,
	"text/json":        FormatJSON,
	"application/xml":  FormatXML,
	"text/xml":         FormatXML,
}

// Negotiate picks the response format from the Accept header. A missing
// header selects JSON. The highest quality acceptable media range wins, with
// ties going to the earlier entry. ok is false when nothing acceptable was
// offered.
func Negotiate(r *http.Request) (format Format, ok bool) {
	accept := strings.TrimSpace(r.Header.Get("Accept"))
	if accept == "" {
		return FormatJSON, true
	}

	bestQ := 0.0
	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		f, known := mediaFormats[mediaType]
		if !known {
			continue
		}
		q := 1.0
		if raw, has := params["q"]; has {
			if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
				q = parsed
			}
		}
		if q > bestQ {
			bestQ, format, ok = q, f, true
		}
	}
	return format, ok
}

// RequireAcceptable rejects requests whose Accept header names no supported
// representation with 406 Not Acceptable, before any handler runs.
func RequireAcceptable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := Negotiate(r); !ok {
			w.WriteHeader(http.StatusNotAcceptable)
			return
		}
		next.ServeHTTP(w, r)
	})
}
