package shared

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/phrazzld/cityinfo-api/internal/domain"
	"github.com/phrazzld/cityinfo-api/internal/platform/logger"
	"github.com/phrazzld/cityinfo-api/internal/redact"
)

// ValidationTitle is the title of every validation problem response.
const ValidationTitle = "One or more validation errors occurred."

// ErrorResponse defines the standard error response structure.
type ErrorResponse struct {
	XMLName xml.Name `json:"-"                  xml:"Error"`
	Error   string   `json:"error"              xml:"Message"`
	Code    int      `json:"-"                  xml:"-"` // used for logging only
	TraceID string   `json:"trace_id,omitempty" xml:"TraceId,omitempty"`
}

// ValidationProblem is the 400 body for field-level validation failures.
type ValidationProblem struct {
	XMLName     xml.Name            `json:"-"                  xml:"ValidationProblem"`
	Title       string              `json:"title"              xml:"Title"`
	Status      int                 `json:"status"             xml:"Status"`
	Errors      map[string][]string `json:"errors"             xml:"-"`
	FieldErrors []FieldError        `json:"-"                  xml:"Errors>Field"`
	TraceID     string              `json:"trace_id,omitempty" xml:"TraceId,omitempty"`
}

// FieldError is the XML form of one field's validation messages.
type FieldError struct {
	Name     string   `xml:"name,attr"`
	Messages []string `xml:"Message"`
}

// MessageResponse is a body carrying a human-readable confirmation.
type MessageResponse struct {
	XMLName xml.Name `json:"-"       xml:"Response"`
	Message string   `json:"message" xml:"Message"`
}

// ListResponse wraps a slice so it renders as a bare JSON array and as a
// named XML element containing one child per item.
type ListResponse struct {
	XMLName xml.Name
	Items   any
}

// List wraps items for Respond. name is the XML element enclosing the items.
func List(name string, items any) ListResponse {
	return ListResponse{XMLName: xml.Name{Local: name}, Items: items}
}

// MarshalJSON renders only the items.
func (l ListResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Items)
}

// ResponseOption defines a function to customize response behavior.
type ResponseOption func(*responseOptions)

// responseOptions holds configurable options for error responses.
type responseOptions struct {
	elevateLogLevel bool
}

// WithElevatedLogLevel returns a ResponseOption that raises 4xx errors to WARN level
// instead of the default DEBUG level.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// Respond writes data in the representation negotiated from the Accept
// header, falling back to JSON.
func Respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	format, _ := Negotiate(r)
	if format == FormatXML {
		RespondWithXML(w, r, status, data)
		return
	}
	RespondWithJSON(w, r, status, data)
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", FormatJSON.ContentType())
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		requestLogger(r).Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// RespondWithXML writes an XML response with the given status code and data.
func RespondWithXML(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", FormatXML.ContentType())
	w.WriteHeader(status)
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	if err := xml.NewEncoder(w).Encode(data); err != nil {
		requestLogger(r).Error("failed to encode XML response", slog.String("error", err.Error()))
	}
}

// RespondWithError writes an error response with the given status code and message.
// It also sets the TraceID from the request context if available.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	traceID := GetTraceID(r.Context())

	requestLogger(r).Debug("sending error response",
		slog.Int("status_code", status),
		slog.String("message", message),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method))

	Respond(w, r, status, ErrorResponse{
		Error:   message,
		Code:    status,
		TraceID: traceID,
	})
}

// RespondWithErrorAndLog writes an error response and also logs the detailed error.
// Only userMessage reaches the client; the logged error text is redacted.
//
// Log level strategy:
// - 5xx errors: Always logged at ERROR level
// - 429 Too Many Requests: Logged at WARN level
// - Other status codes: Logged at DEBUG level unless elevated
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
	opts ...ResponseOption,
) {
	traceID := GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	responseOpts := responseOptions{}
	for _, opt := range opts {
		opt(&responseOpts)
	}

	logLevel := slog.LevelDebug
	switch {
	case status >= http.StatusInternalServerError:
		logLevel = slog.LevelError
	case status == http.StatusTooManyRequests:
		logLevel = slog.LevelWarn
	case responseOpts.elevateLogLevel && status >= http.StatusBadRequest:
		logLevel = slog.LevelWarn
	}
	requestLogger(r).LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	Respond(w, r, status, ErrorResponse{
		Error:   userMessage,
		Code:    status,
		TraceID: traceID,
	})
}

// RespondWithValidationError writes a 400 validation problem listing every
// field error in verr.
func RespondWithValidationError(w http.ResponseWriter, r *http.Request, verr *domain.ValidationError) {
	problem := NewValidationProblem(verr)
	problem.TraceID = GetTraceID(r.Context())

	requestLogger(r).Debug("validation failed",
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.String("error", verr.Error()))

	Respond(w, r, http.StatusBadRequest, problem)
}

// NewValidationProblem converts verr into a response body.
func NewValidationProblem(verr *domain.ValidationError) ValidationProblem {
	problem := ValidationProblem{
		Title:  ValidationTitle,
		Status: http.StatusBadRequest,
		Errors: map[string][]string{},
	}
	if verr == nil {
		return problem
	}

	names := make([]string, 0, len(verr.Fields))
	for name, messages := range verr.Fields {
		problem.Errors[name] = append([]string(nil), messages...)
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		problem.FieldErrors = append(problem.FieldErrors, FieldError{Name: name, Messages: verr.Fields[name]})
	}
	return problem
}

// RespondNotFound writes an empty 404 response.
func RespondNotFound(w http.ResponseWriter, r *http.Request, reason string) {
	requestLogger(r).Debug("resource not found",
		slog.String("path", r.URL.Path),
		slog.String("reason", reason))
	w.WriteHeader(http.StatusNotFound)
}

func requestLogger(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), slog.Default())
}
