package auth

import (
	"strings"

	"github.com/frahmantamala/clearance-management/internal"
)

type RegisterDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate reports every invalid field, not just the first one.
func (dto RegisterDTO) Validate() error {
	var fieldErrors []internal.ValidationError

	if strings.TrimSpace(dto.Username) == "" {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field: "username", Message: "username is required", Code: "REQUIRED",
		})
	}
	if strings.TrimSpace(dto.Email) == "" {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field: "email", Message: "email is required", Code: "REQUIRED",
		})
	} else if !strings.Contains(dto.Email, "@") {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field: "email", Message: "email is invalid", Code: "INVALID",
		})
	}
	if dto.Password == "" {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field: "password", Message: "password is required", Code: "REQUIRED",
		})
	} else if len(dto.Password) < 8 {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field: "password", Message: "password must be at least 8 characters", Code: "TOO_SHORT",
		})
	}

	if len(fieldErrors) > 0 {
		return internal.NewFieldValidationError(fieldErrors)
	}
	return nil
}

type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (dto LoginDTO) Validate() error {
	var fieldErrors []internal.ValidationError

	if strings.TrimSpace(dto.Username) == "" {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field: "username", Message: "username is required", Code: "REQUIRED",
		})
	}
	if dto.Password == "" {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field: "password", Message: "password is required", Code: "REQUIRED",
		})
	}

	if len(fieldErrors) > 0 {
		return internal.NewFieldValidationError(fieldErrors)
	}
	return nil
}
