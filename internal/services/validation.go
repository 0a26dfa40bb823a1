package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"stockman/internal/apperror"

	"github.com/go-playground/validator/v10"
)

// dateLayouts are the accepted input formats for dates.
var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validationError turns validator output into a Validation app error.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Wrap(apperror.Validation, "Validation failed", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return apperror.NewValidation("Validation failed", fields)
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperror.NewValidation("Validation failed", map[string]string{
		field: fmt.Sprintf("Field '%s' must be a date (YYYY-MM-DD or RFC 3339)", field),
	})
}
