// ABOUTME: Local operator-input checks performed before anything is sent to a node.
// ABOUTME: ValidName enforces the letters-and-digits charset; ParsePort mirrors JavaScript parseInt.
package api

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrIllegalName is returned when a node name fails the charset check.
var ErrIllegalName = errors.New("illegal name")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidName reports whether name is one or more ASCII letters or digits.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// CheckName returns an ErrIllegalName-wrapped error carrying the operator
// diagnostic when name fails ValidName.
func CheckName(name string) error {
	if ValidName(name) {
		return nil
	}
	return fmt.Errorf("%w %s, use only letters and digits", ErrIllegalName, name)
}

// ParsePort parses operator input the way JavaScript parseInt(s, 10) does:
// leading whitespace is skipped, an optional sign is accepted, and parsing
// stops at the first non-digit. Returns nil when no digits were found. There
// is no range check.
func ParsePort(s string) *int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign = s[:1]
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil
	}
	n, err := strconv.Atoi(sign + s[:end])
	if err != nil {
		// Out of int range; parseInt would return a float here.
		return nil
	}
	return &n
}
