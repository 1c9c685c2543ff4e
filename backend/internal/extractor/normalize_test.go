package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"national", "028 3725 2002", "02837252002", true},
		{"international same country", "+84 28 3725 2002", "02837252002", true},
		{"international with 00", "0084 28 3725 2002", "02837252002", true},
		{"bracketed country code", "(+84) 28 3725 2002", "02837252002", true},
		{"bracketed area code", "(028) 3725 2002", "02837252002", true},
		{"bracketed other country", "(+1) 555 123 4567", "+15551234567", true},
		{"international other country", "+1 (555) 123-4567", "+15551234567", true},
		{"us parenthesized", "(555) 123-4567", "5551234567", true},
		{"us dashed", "555-123-4567", "5551234567", true},
		{"tel prefix", "tel:0912345678", "0912345678", true},
		{"too short", "0123 456", "", false},
		{"too long", "+44 1234 5678 9012 3456", "", false},
		{"year range", "2023-2024", "", false},
		{"empty", "  ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePhone(tt.raw, "84")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@uni.edu", NormalizeEmail(" mailto:Jane@UNI.edu. "))
	assert.True(t, ValidEmail("jane@uni.edu"))
	assert.False(t, ValidEmail("jane@uni"))
	assert.False(t, ValidEmail("not an email"))
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "Quarter 6, Linh Trung", NormalizeAddress("  Quarter 6,\n  Linh   Trung, "))
	assert.Equal(t, "", NormalizeAddress(" ;, "))
}

func TestNormalizeCourseCode(t *testing.T) {
	assert.Equal(t, "IT001", NormalizeCourseCode("it 001"))
	assert.Equal(t, "CS101", NormalizeCourseCode("CS-101"))
	assert.Equal(t, "SE104A", NormalizeCourseCode("se104a"))
	assert.Equal(t, "Introduction to Programming", NormalizeCourseCode("  Introduction  to Programming "))

	assert.Equal(t, "IT", CoursePrefix("it001"))
	assert.Equal(t, "", CoursePrefix("Calculus"))
}
