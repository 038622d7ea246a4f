package validate

import (
	"strconv"
	"strings"
)

// ID validates a non-negative integer path parameter (user or item id).
func ID(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Description trims and bounds a displayable item description.
func Description(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 255 {
		return "", false
	}
	return s, true
}
