package auth

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 8

// Validation errors. Their messages are returned to clients verbatim.
var (
	ErrFieldsRequired      = errors.New("All fields are required.")
	ErrUsernameHasSpaces   = errors.New("Username cannot contain spaces.")
	ErrWeakPassword        = errors.New("Password must be at least 8 characters long and include an uppercase letter and a number.")
	ErrCredentialsRequired = errors.New("Username and password are required.")
)

// ValidateSignup checks registration fields and returns the first rule that fails.
func ValidateSignup(name, username, password string) error {
	if name == "" || username == "" || password == "" {
		return ErrFieldsRequired
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return ErrUsernameHasSpaces
	}
	if !isStrongPassword(password) {
		return ErrWeakPassword
	}
	return nil
}

// ValidateLogin only checks presence. Strength rules apply at signup and must
// not leak through login responses.
func ValidateLogin(username, password string) error {
	if username == "" || password == "" {
		return ErrCredentialsRequired
	}
	return nil
}

func isStrongPassword(password string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return false
	}
	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	return hasUpper && hasDigit
}

// IsValidationError reports whether err is one of the field validation errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrFieldsRequired) ||
		errors.Is(err, ErrUsernameHasSpaces) ||
		errors.Is(err, ErrWeakPassword) ||
		errors.Is(err, ErrCredentialsRequired) ||
		errors.Is(err, ErrPasswordTooLong)
}
