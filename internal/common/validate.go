package common

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 100
	MaxNameLength     = 50
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail checks email syntax. Uniqueness is the store's job.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email cannot exceed 254 characters")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("email must be a valid address")
	}
	return nil
}

// ValidatePassword enforces the length bounds for new passwords, at
// registration and for the new password on a change.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password cannot exceed %d characters", MaxPasswordLength)
	}
	return nil
}

// ValidateName checks a first or last name supplied at registration or in a
// profile patch.
func ValidateName(name, fieldName string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%s cannot exceed %d characters", fieldName, MaxNameLength)
	}
	return nil
}

// ValidateUUID validates UUID path parameters.
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s must be a valid UUID", fieldName)
	}
	return id, nil
}
