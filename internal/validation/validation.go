package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateUsername checks the account name format used at registration.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}
	if len(username) > 30 {
		return fmt.Errorf("username must not exceed 30 characters")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}
	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}
	return nil
}

// ValidatePassword checks password length bounds. Complexity rules are kept
// loose on purpose; the audience is students picking memorable passwords.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}
	return nil
}

// ValidateNickname checks the display name. Nicknames are often Chinese, so
// bounds are counted in runes rather than bytes.
func ValidateNickname(nickname string) error {
	n := utf8.RuneCountInString(nickname)
	if n < 1 {
		return fmt.Errorf("nickname is required")
	}
	if n > 20 {
		return fmt.Errorf("nickname must not exceed 20 characters")
	}
	return nil
}

// ValidateTag checks a tag label. Tags are short labels like 伙食 or 失物招领.
func ValidateTag(tag string) error {
	n := utf8.RuneCountInString(tag)
	if n < 1 {
		return fmt.Errorf("tag is required")
	}
	if n > 12 {
		return fmt.Errorf("tag must not exceed 12 characters")
	}
	return nil
}
