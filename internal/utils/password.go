package utils

import "strings"

const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// ValidatePassword enforces the registration password policy: at least
// eight characters containing an upper-case letter, a lower-case letter,
// a digit and a symbol. Returns a human-readable reason when the password
// is rejected.
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters long"
	}

	var hasUpper, hasLower, hasNumber, hasSymbol bool

	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	if !hasUpper || !hasLower || !hasNumber || !hasSymbol {
		return false, "Password must contain upper and lower case letters, a number and a symbol"
	}

	return true, ""
}
