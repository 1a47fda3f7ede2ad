package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

var (
	// Calendar date, zero-padded: 2024-03-15. The zero padding matters;
	// expiration comparisons rely on lexicographic ordering.
	isoDateRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
	// Year-less birthday: --03-15.
	monthDayRe = regexp.MustCompile(`^--(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
)

func NewValidator() *Validator {
	v := validator.New()

	// Custom validations
	v.RegisterValidation("isodate", validateISODate)
	v.RegisterValidation("monthday", validateMonthDay)

	return &Validator{
		validate: v,
	}
}

func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

func validateISODate(fl validator.FieldLevel) bool {
	return isoDateRe.MatchString(fl.Field().String())
}

func validateMonthDay(fl validator.FieldLevel) bool {
	return monthDayRe.MatchString(fl.Field().String())
}
