package auth

import (
	"regexp"
	"strconv"
)

var numericID = regexp.MustCompile(`^[0-9]+$`)

// ParseID validates a raw identifier from a path or query and converts
// it to int64. The whole string must be decimal digits.
func ParseID(raw string) (int64, error) {
	if !numericID.MatchString(raw) {
		return 0, ErrInvalidID.WithMetadata(map[string]any{"id": raw})
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidID.WithSource(err).WithMetadata(map[string]any{"id": raw})
	}
	return id, nil
}
