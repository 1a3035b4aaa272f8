package app

import (
	"net/mail"
	"strings"
)

func validateRegisterInput(req RegisterRequest) (string, map[string]string) {
	validationErrors := make(map[string]string)

	if strings.TrimSpace(req.Email) == "" {
		validationErrors["email"] = "email_required"
	}
	if req.Password == "" {
		validationErrors["password"] = "password_required"
	}
	if len(validationErrors) > 0 {
		return ErrMissingFields, validationErrors
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		validationErrors["email"] = "invalid_email_format"
		return ErrInvalidEmail, validationErrors
	}

	return "", nil
}

func validateLoginInput(username, password string) map[string]string {
	validationErrors := make(map[string]string)

	if strings.TrimSpace(username) == "" {
		validationErrors["username"] = "username_required"
	}
	if password == "" {
		validationErrors["password"] = "password_required"
	}

	return validationErrors
}
