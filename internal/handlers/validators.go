package handlers

import (
	"errors"

	"github.com/farellandr/eventick/internal/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags used by the request types.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return v.RegisterValidation("pincode", validatePinCode)
}

func validatePinCode(fl validator.FieldLevel) bool {
	n := len(fl.Field().String())
	return n >= models.PinCodeMinLength && n <= models.PinCodeMaxLength
}
