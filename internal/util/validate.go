package util

import (
	"fmt"
	"regexp"
)

// validEntityChars matches only alphanumeric characters, hyphens, and periods.
var validEntityChars = regexp.MustCompile(`^[a-zA-Z0-9.\-]+$`)

// ValidateEntityID checks that an entity identifier is usable as a
// config value and storage key component:
//   - At least 2 characters
//   - Only alphanumeric characters (a-z, A-Z, 0-9), hyphens (-), and periods (.)
//   - First character must be alphanumeric
//   - Last character must not be a hyphen or period
func ValidateEntityID(id string) error {
	if len(id) < 2 {
		return fmt.Errorf("entity id must be at least 2 characters, got %d", len(id))
	}

	if !validEntityChars.MatchString(id) {
		return fmt.Errorf("entity id %q contains invalid characters (only a-z, A-Z, 0-9, hyphens, and periods are allowed)", id)
	}

	first := id[0]
	if !isAlphanumeric(first) {
		return fmt.Errorf("entity id must start with an alphanumeric character, got %q", string(first))
	}

	last := id[len(id)-1]
	if last == '-' || last == '.' {
		return fmt.Errorf("entity id must not end with a hyphen or period, got %q", string(last))
	}

	return nil
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
