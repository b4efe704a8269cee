package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reNum   = regexp.MustCompile(`^[0-9]+`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 254 {
		return "", false
	}
	return strings.ToLower(s), reEmail.MatchString(s)
}

// Qty parses a quantity field. Non-numeric or negative input normalizes to
// zero so callers can treat it as "remove".
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	if n > 99 {
		return 99 // clamp to avoid abuse
	}
	return n
}

// ID parses a numeric resource id.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil && n > 0
}

// SlugID extracts the leading numeric id from a product slug like
// "3-vintage-wood-grain-turntable". A bare numeric id is also accepted.
func SlugID(s string) (int64, bool) {
	m := reNum.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(m, 10, 64)
	return n, err == nil && n > 0
}

// Price parses a non-negative money field.
func Price(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil && v >= 0
}

// Stock parses a non-negative unit count.
func Stock(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil && n >= 0
}

// Password enforces the account policy: at least 10 characters with one
// lowercase, one uppercase and one digit.
func Password(s string) bool {
	if len(s) < 10 {
		return false
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}
