package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
)

var fieldMessages = map[string]string{
	"name":        "Product name is required",
	"description": "Description must be at least 10 characters",
	"price":       "Price must be a non-negative number",
	"category":    "Invalid category",
	"stock":       "Stock must be a non-negative integer",
	"rating":      "Rating must be between 0 and 5",
	"image":       "Image must be a string",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.Category(fl.Field().String()).Valid()
	})
	return v
}

func validateProduct(v *validator.Validate, req domain.CreateProductRequest) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range vErrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe.Field()),
			Value:   fe.Value(),
		})
	}
	return out
}

func fieldMessage(field string) string {
	if msg, ok := fieldMessages[field]; ok {
		return msg
	}
	return "Invalid value"
}

// TypeMismatch reports a JSON value of the wrong type, e.g. a string price.
func TypeMismatch(field string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: fieldMessage(field)}}}
}
