// Package sanitizer prepares free-text request fields for validation. It only
// strips surrounding whitespace; anything inside the value is left for the
// validator to accept or reject.
package sanitizer

import "strings"

// SanitizeReservedBy trims the name a reservation is made under.
func SanitizeReservedBy(name string) string {
	return strings.TrimSpace(name)
}

// SanitizeRoomName trims a room reference coming from a request.
func SanitizeRoomName(name string) string {
	return strings.TrimSpace(name)
}
