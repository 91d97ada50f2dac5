package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/linkup-app/linkup-api/internal/model"
)

// RegisterValidators installs custom binding rules on gin's validator
// engine. Call once at startup.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("activity", func(fl validator.FieldLevel) bool {
		return model.Activity(fl.Field().String()).Valid()
	})
}
