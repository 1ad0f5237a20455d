// Package validate wraps go-playground/validator with the marketplace's own rules
// and bluemonday sanitising for user-supplied text.
package validate

import (
	"fmt"
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/RiskiJayaPutra/whfood/internal/domain"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{7,18}$`)

type Validator struct {
	v      *validator.Validate
	strict *bluemonday.Policy
}

// FieldError is a single failed rule, phrased for display next to a form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Message
}

// Messages returns field -> message for templates.
func (e Errors) Messages() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// Empty passes; pair with required / required_if when the number is mandatory.
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		return s == "" || phonePattern.MatchString(s)
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.IsCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return domain.PaymentMethodKind(fl.Field().String()).Valid()
	})

	return &Validator{v: v, strict: bluemonday.StrictPolicy()}
}

// Struct validates s and converts validator errors into Errors.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

// Text strips all markup from user input and trims it. Entities are decoded again
// because templates escape on output.
func (v *Validator) Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(v.strict.Sanitize(s)))
}

func message(fe validator.FieldError) string {
	f := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", f)
	case "email":
		return "enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", f, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match", f)
	case "phone":
		return "enter a valid WhatsApp number"
	case "category":
		return "choose a category"
	case "payment_method":
		return "choose a payment method"
	}
	return fmt.Sprintf("%s is invalid", f)
}
