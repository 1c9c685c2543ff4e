package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Register(LabelFaculty, "Jane Doe"))
	assert.False(t, r.Register(LabelFaculty, "Jane Doe"))
	assert.False(t, r.Register(LabelFaculty, "  jane   DOE "), "case and whitespace variants share identity")

	// Same key under another label is a different node
	assert.True(t, r.Register(LabelDepartment, "Jane Doe"))

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, map[Label]int{LabelFaculty: 1, LabelDepartment: 1}, r.CountByLabel())
}

func TestRegistry_EmptyKeyIsNeverRegistered(t *testing.T) {
	r := NewRegistry()

	assert.False(t, r.Register(LabelCourse, ""))
	assert.False(t, r.Register(LabelCourse, "   \t\n"))
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Contains(LabelCourse, ""))
}

func TestRegistry_CanonicalKeepsFirstSpelling(t *testing.T) {
	r := NewRegistry()
	r.Register(LabelDepartment, "Computer  Science")
	r.Register(LabelDepartment, "COMPUTER SCIENCE")

	canonical, ok := r.Canonical(LabelDepartment, "computer science")
	assert.True(t, ok)
	assert.Equal(t, "Computer Science", canonical)

	_, ok = r.Canonical(LabelFaculty, "computer science")
	assert.False(t, ok)
}

func TestRegistry_UnicodeNormalization(t *testing.T) {
	r := NewRegistry()

	// Precomposed and decomposed forms of the same name
	assert.True(t, r.Register(LabelFaculty, "Nguyễn Văn A"))
	assert.False(t, r.Register(LabelFaculty, "Nguye\u0302\u0303n Va\u0306n A"))
	assert.Equal(t, 1, r.Len())
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Jane   Doe ", "jane doe"},
		{"CS101", "cs101"},
		{"Straße", "strasse"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.in))
		})
	}
}

func TestCleanKey(t *testing.T) {
	assert.Equal(t, "Jane Doe", CleanKey("\tJane \n Doe  "))
	assert.Equal(t, "", CleanKey("   "))
}
