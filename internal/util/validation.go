package util

import (
	"regexp"
	"strings"
)

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func IsValidUUID(s string) bool {
	if s == "" {
		return false
	}
	return uuidRegex.MatchString(s)
}

// MinVisitorNameLength is the floor for a portal visitor's display name.
const MinVisitorNameLength = 3

func IsValidVisitorName(name string) bool {
	return len(strings.TrimSpace(name)) >= MinVisitorNameLength
}
