package validation

import (
	"errors"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// Validate is the global validator instance
	Validate *validator.Validate

	// ChatRoles are the roles accepted on inbound chat messages.
	ChatRoles = []string{"user", "assistant", "system"}
)

func init() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("chat_role", validateChatRole)
	_ = Validate.RegisterValidation("not_blank", validateNotBlank)
}

// ValidateStruct validates a struct and returns a ValidationError if validation fails
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// IsChatRole reports whether role is exactly one of ChatRoles.
func IsChatRole(role string) bool {
	return slices.Contains(ChatRoles, role)
}

func validateChatRole(fl validator.FieldLevel) bool {
	return IsChatRole(fl.Field().String())
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

