package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	apperrors "github.com/alchemorsel/recipebox/pkg/errors"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// RequestValidator checks decoded request bodies against their validate tags
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a validator that reports fields by their JSON
// names
func NewRequestValidator() *RequestValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: validate}
}

// Struct validates s and reports the first failing field as a validation
// error
func (v *RequestValidator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		details := fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			details = fmt.Sprintf("%s failed the %s=%s check", fe.Field(), fe.Tag(), fe.Param())
		}
		return apperrors.NewValidationError(details).WithCause(err)
	}
	return apperrors.NewValidationError(err.Error()).WithCause(err)
}

// decodeJSON reads a JSON body of at most maxBodyBytes into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewBadRequestError("Request body is required")
		}
		return apperrors.NewBadRequestError("Request body is not valid JSON").WithCause(err)
	}
	return nil
}
