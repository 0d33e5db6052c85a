package usecase

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	maxActionLength  = 255
	maxDetailsBytes  = 16 << 10
	maxXPAward       = 100_000
	DefaultLeadLimit = 50
	MaxLeadLimit     = 200
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateRecordActivityInput(input RecordActivityInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Type) == "" {
		errors = append(errors, ValidationError{"type", "is required"})
	}

	if strings.TrimSpace(input.Action) == "" {
		errors = append(errors, ValidationError{"action", "is required"})
	} else if len(input.Action) > maxActionLength {
		errors = append(errors, ValidationError{"action", fmt.Sprintf("must not exceed %d characters", maxActionLength)})
	}

	if email := strings.TrimSpace(input.Email); email != "" && !validEmail(email) {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if len(input.Details) > maxDetailsBytes {
		errors = append(errors, ValidationError{"details", "is too large"})
	}

	return errors
}

// validEmail aceita só o endereço puro; "Ana <a@b.com>" viraria outra chave de lead.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Name == "" && addr.Address == email
}

func ValidateAwardXPInput(input AwardXPInput) []ValidationError {
	var errors []ValidationError

	if input.Amount <= 0 {
		errors = append(errors, ValidationError{"amount", "must be greater than zero"})
	} else if input.Amount > maxXPAward {
		errors = append(errors, ValidationError{"amount", fmt.Sprintf("must not exceed %d", maxXPAward)})
	}

	return errors
}

func validationFailed(errs []ValidationError) *DomainError {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
	}
}
