// Package validation runs struct-tag validation on store inputs and turns
// validator failures into an *errs.ValidationError naming every bad field.
//
// Besides the stock validator tags it registers:
//
//	emailaddr  local@domain.tld with no whitespace
//	objectid   24 hex characters
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"devevent/errs"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SpaceClass is the body of a character class matching the same runes as
// IsSpace. RE2's \s is ASCII-only, so patterns that must treat no-break and
// other Unicode spaces as whitespace use [SpaceClass] instead.
const SpaceClass = `\t\n\v\f\r \x{a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

// EmailPattern is the address shape bookings accept.
var EmailPattern = regexp.MustCompile(`^[^` + SpaceClass + `@]+@[^` + SpaceClass + `@]+\.[^` + SpaceClass + `@]+$`)

// IsSpace reports whether r is whitespace for slugs and emails. Unlike
// unicode.IsSpace it includes U+FEFF and excludes U+0085.
func IsSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0xa0, 0x1680, 0x2028, 0x2029, 0x202f, 0x205f, 0x3000, 0xfeff:
		return true
	}
	return r >= 0x2000 && r <= 0x200a
}

// TrimSpace strips leading and trailing IsSpace runes.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, IsSpace)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return EmailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	return v
}

// Struct validates s. It returns nil or a *errs.ValidationError; never any
// other error type.
func Struct(s any) *errs.ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errs.NewValidationError("input", err.Error())
	}

	out := &errs.ValidationError{}
	for _, fe := range verrs {
		field, item := fe.Field(), false
		if i := strings.IndexByte(field, '['); i >= 0 {
			field, item = field[:i], true
		}
		if out.Has(field) {
			continue
		}
		out.Fields = append(out.Fields, errs.FieldError{Field: field, Error: message(fe, item)})
	}
	return out
}

// Merge folds b's fields into a, skipping fields a already reports.
// Either side may be nil.
func Merge(a, b *errs.ValidationError) *errs.ValidationError {
	if b == nil {
		return a
	}
	if a == nil {
		return b
	}
	for _, f := range b.Fields {
		if !a.Has(f.Field) {
			a.Fields = append(a.Fields, f)
		}
	}
	return a
}

func message(fe validator.FieldError, item bool) string {
	if item {
		return "items must not be empty"
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "emailaddr":
		return "must be a valid email address"
	case "objectid":
		return "must be a valid id"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
		}
		return "failed " + fe.Tag()
	}
}
