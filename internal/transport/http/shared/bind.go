package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"hrkey/internal/transport/http/api"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// StructIssues converts validator/v10 tag failures into field issues keyed
// by the JSON path below the root struct.
func StructIssues(payload any) []ValidationIssue {
	rv := reflect.Indirect(reflect.ValueOf(payload))
	switch rv.Kind() {
	case reflect.Slice:
		var issues []ValidationIssue
		for i := 0; i < rv.Len(); i++ {
			for _, issue := range StructIssues(rv.Index(i).Interface()) {
				issue.Field = fmt.Sprintf("%d.%s", i, issue.Field)
				issues = append(issues, issue)
			}
		}
		return issues
	case reflect.Struct:
	default:
		return nil
	}
	err := structValidator().Struct(rv.Interface())
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationIssue{{Field: "", Reason: err.Error()}}
	}
	issues := make([]ValidationIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		issues = append(issues, ValidationIssue{Field: field, Reason: reasonFor(fe)})
	}
	return issues
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "numeric":
		return "must contain only digits"
	case "datetime":
		return "must match layout " + fe.Param()
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// DecodeJSON reads one JSON document into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return io.EOF
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

// Bind decodes and validates the request body, writing the failure
// response itself. It reports whether the handler may continue.
func Bind(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	if err := DecodeJSON(r, dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return false
	}
	v := NewValidator()
	v.Struct(dst)
	return !v.Reject(w, requestID)
}
