// Package validation проверяет тела HTTP запросов через go-playground/validator
// и переводит ошибки в apperrors с деталями по полям.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/go-playground/validator/v10"
)

// Validator оборачивает validator.Validate
type Validator struct {
	v *validator.Validate
}

// New создает валидатор, который называет поля по json тегам
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "":
			return fld.Name
		case "-":
			return ""
		}
		return name
	})

	return &Validator{v: v}
}

// Validate проверяет структуру, ошибка - *apperrors.Error с кодом VALIDATION
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	details := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		details[fieldPath(e)] = friendlyMessage(e)
	}
	return apperrors.ValidationWithDetails("validation failed", details)
}

// fieldPath отрезает имя корневой структуры: RecipeRequest.ingredients[0].amount -> ingredients[0].amount
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	collection := false
	switch e.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		collection = true
	}

	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if collection {
			return fmt.Sprintf("must contain at least %s items", e.Param())
		}
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return "must not exceed " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
