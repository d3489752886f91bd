package server

import (
	"time"

	"github.com/go-playground/validator/v10"

	"example.com/finance-tracker/backend/internal/models"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator создает валидатор с тегами category и isodate.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("category", validateCategory)
	_ = v.RegisterValidation("isodate", validateISODate)
	return &CustomValidator{validator: v}
}

// Validate запускает проверку структуры по тегам.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func validateCategory(fl validator.FieldLevel) bool {
	_, ok := models.ParseCategory(fl.Field().String())
	return ok
}

// validateISODate принимает YYYY-MM-DD и метки времени, начинающиеся с такой даты.
func validateISODate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) < len(time.DateOnly) {
		return false
	}
	_, err := time.Parse(time.DateOnly, value[:len(time.DateOnly)])
	return err == nil
}
