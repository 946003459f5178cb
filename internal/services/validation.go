package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"tokoorder/internal/apperror"
	"tokoorder/internal/models"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that reports json field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("order_rating_tag", knownOrderRatingTag); err != nil {
		panic(fmt.Sprintf("services: register order_rating_tag: %v", err))
	}
	return v
}

func knownOrderRatingTag(fl validator.FieldLevel) bool {
	tag := fl.Field().String()
	for _, known := range models.OrderRatingTags {
		if tag == known {
			return true
		}
	}
	return false
}

// validateRequest runs struct validation and converts failures to a
// ValidationError naming the first offending fields.
func validateRequest(v *validator.Validate, req interface{}) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Wrap(err, apperror.CodeValidation, "invalid request")
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperror.Validation(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
