package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/caretrip/coordination-api/internal/model"
)

// RegisterCustomValidations attaches the domain validations to gin's
// binding validator. Call once at startup.
func RegisterCustomValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("profilerole", validRole); err != nil {
		return err
	}
	if err := v.RegisterValidation("profilestatus", validStatus); err != nil {
		return err
	}
	return nil
}

func validRole(fl validator.FieldLevel) bool {
	return model.Role(fl.Field().String()).Valid()
}

func validStatus(fl validator.FieldLevel) bool {
	return model.ValidStatus(fl.Field().String())
}
