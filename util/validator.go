package util

import "github.com/go-playground/validator/v10"

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("phone", validatePhone)
	validate.RegisterValidation("username", validateUsername)
}

func validatePhone(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if phone == "" {
		return true
	}
	return IsPhone(phone)
}

func validateUsername(fl validator.FieldLevel) bool {
	return RgxUsername.MatchString(fl.Field().String())
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
