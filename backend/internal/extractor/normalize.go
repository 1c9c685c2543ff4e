package extractor

import (
	"regexp"
	"strings"

	"unigraph/backend/internal/constants"
)

var (
	emailShape      = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	usPhoneShape    = regexp.MustCompile(`^\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]\d{4}$`)
	courseCodeShape = regexp.MustCompile(`^([A-Z]{2,5})\s*[-.]?\s*(\d{3,4}[A-Z]?)$`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// NormalizeEmail lower-cases and trims an address, dropping a mailto: prefix
func NormalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	email = strings.TrimPrefix(email, "mailto:")
	return strings.Trim(email, ".,;:<>()[]\"'")
}

// ValidEmail reports whether a normalized address has a plausible shape
func ValidEmail(email string) bool {
	return emailShape.MatchString(email)
}

// NormalizePhone converts a formatted number to its canonical digit form.
// A +<countryCode> prefix becomes a leading 0; other international numbers
// keep their +. It reports false when the result is not a plausible number.
func NormalizePhone(raw, countryCode string) (string, bool) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "tel:"))
	if raw == "" {
		return "", false
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()
	// "(+84) 28 ..." carries the same country code as "+84 28 ..."
	lead := strings.TrimLeft(raw, "( ")

	switch {
	case strings.HasPrefix(lead, "+"):
		if countryCode != "" && strings.HasPrefix(number, countryCode) {
			number = "0" + strings.TrimPrefix(number, countryCode)
		} else {
			number = "+" + number
		}
	case strings.HasPrefix(number, "00") && countryCode != "" && strings.HasPrefix(number[2:], countryCode):
		number = "0" + strings.TrimPrefix(number[2:], countryCode)
	case strings.HasPrefix(number, "0"), strings.HasPrefix(raw, "("), usPhoneShape.MatchString(raw):
	default:
		return "", false
	}

	n := len(strings.TrimPrefix(number, "+"))
	if n < constants.MinPhoneDigits || n > constants.MaxPhoneDigits {
		return "", false
	}
	return number, true
}

// NormalizeAddress collapses whitespace and trims surrounding punctuation
func NormalizeAddress(raw string) string {
	address := whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
	return strings.Trim(address, " ,;:.-|")
}

// NormalizeCourseCode upper-cases a course code and removes the separator
// between prefix and number ("it 001" -> "IT001"). Strings that are not
// course codes are returned trimmed and whitespace-collapsed.
func NormalizeCourseCode(raw string) string {
	code := whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
	upper := strings.ToUpper(code)
	if m := courseCodeShape.FindStringSubmatch(upper); m != nil {
		return m[1] + m[2]
	}
	return code
}

// CoursePrefix returns the alphabetic prefix of a course code, or "" if the
// value is not a course code
func CoursePrefix(code string) string {
	if m := courseCodeShape.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(code))); m != nil {
		return m[1]
	}
	return ""
}
