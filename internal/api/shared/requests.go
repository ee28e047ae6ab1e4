package shared

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/cityinfo-api/internal/domain"
)

// MaxBodyBytes limits the size of request bodies.
const MaxBodyBytes = 1 << 20

// ErrInvalidBody is returned when a request body cannot be decoded.
var ErrInvalidBody = errors.New("invalid request body")

// Global validator instance for reuse. Field errors are reported under the
// field's JSON name.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		}
		return name
	})
	return v
}

// DecodeBody decodes the request body into v. XML bodies are accepted when the
// Content-Type says so; anything else is decoded as JSON.
func DecodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var err error
	switch mediaType(r.Header.Get("Content-Type")) {
	case "application/xml", "text/xml":
		err = xml.NewDecoder(body).Decode(v)
	default:
		err = json.NewDecoder(body).Decode(v)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// ReadBody returns the raw request body, bounded by MaxBodyBytes.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return data, nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}

// MessageProvider lets a request type override the message reported for a
// failed rule. Keys have the form "field.tag", for example "name.required".
type MessageProvider interface {
	ValidationMessages() map[string]string
}

// ValidateRequest runs the struct tag rules on v and then its Validate hook,
// if it has one. All field failures are collected into a single
// *domain.ValidationError. Other errors are returned as-is.
func ValidateRequest(v any) error {
	verr := &domain.ValidationError{}

	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		var custom map[string]string
		if p, ok := v.(MessageProvider); ok {
			custom = p.ValidationMessages()
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), fieldMessage(fe, custom))
		}
	}

	if hook, ok := v.(interface{ Validate() error }); ok {
		if err := hook.Validate(); err != nil {
			var hookErr *domain.ValidationError
			if !errors.As(err, &hookErr) {
				return err
			}
			verr.Merge(hookErr)
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func fieldMessage(fe validator.FieldError, custom map[string]string) string {
	if msg, ok := custom[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "max":
		return fmt.Sprintf("The field %s must be a string with a maximum length of '%s'.", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("The field %s must be a string with a minimum length of '%s'.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("The field %s is invalid.", fe.Field())
	}
}
