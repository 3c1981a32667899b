package utils

import (
	"regexp"
	"strings"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_]*$`)

// reserved names collide with routes or would impersonate staff.
var reservedUsernames = map[string]bool{
	"admin": true, "administrator": true, "agora": true, "api": true,
	"moderator": true, "support": true, "system": true, "me": true,
}

// ValidateUsername enforces 3-20 characters of letters, digits and
// underscores, starting with a letter or digit.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)

	switch {
	case len(username) < MinUsernameLength:
		return &ValidationError{Field: "username", Message: "Username must be at least 3 characters"}
	case len(username) > MaxUsernameLength:
		return &ValidationError{Field: "username", Message: "Username must be at most 20 characters"}
	case !usernameRegex.MatchString(username):
		return &ValidationError{Field: "username", Message: "Username can only contain letters, numbers, and underscores, and must start with a letter or number"}
	case reservedUsernames[NormalizeUsername(username)]:
		return &ValidationError{Field: "username", Message: "This username is reserved"}
	}
	return nil
}

// NormalizeUsername is the stored and compared form of a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidationError is a user-facing input error tied to a field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
