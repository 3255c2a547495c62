package todo

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTitle trims and NFC-normalizes a title.
// Returns a VALIDATION error if nothing is left.
func NormalizeTitle(title string) (string, error) {
	t := norm.NFC.String(strings.TrimSpace(title))
	if t == "" {
		return "", NewValidationError("create", "title must not be empty")
	}
	return t, nil
}

// NormalizeDescription trims and NFC-normalizes a description.
// A blank description becomes None.
func NormalizeDescription(desc Option[string]) Option[string] {
	d, ok := desc.Get()
	if !ok {
		return desc
	}
	d = norm.NFC.String(strings.TrimSpace(d))
	if d == "" {
		return None[string]()
	}
	return Some(d)
}
