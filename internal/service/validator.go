package service

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

// NewValidator returns a validator with the record form rules registered.
// Register rules once; validator.Validate is not safe for registration under load.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		_, err := time.Parse(models.DateLayout, value)
		return err == nil
	})
	return v
}

// validateForm runs struct validation and maps the first failing field to a
// user-facing message.
func validateForm(v *validator.Validate, form interface{}, messages map[string]string) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	message := appErrors.ErrValidation.Message
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if msg, ok := messages[fieldErrs[0].Field()]; ok {
			message = msg
		}
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
