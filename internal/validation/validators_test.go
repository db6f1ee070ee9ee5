package validation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	v := Required("Name is required.")
	assert.Empty(t, v("alice"))
	assert.Equal(t, "Name is required.", v(""))
	assert.Equal(t, "Name is required.", v("   "))
}

func TestPresent(t *testing.T) {
	v := Present("Password is required.")
	assert.Empty(t, v("  "))
	assert.Equal(t, "Password is required.", v(""))
}

func TestMinLength(t *testing.T) {
	v := MinLength(6, "too short")
	assert.Equal(t, "too short", v("abcde"))
	assert.Empty(t, v("abcdef"))
	assert.Empty(t, v("ééééëë"), "runes, not bytes")
}

func TestEquals(t *testing.T) {
	assert.Empty(t, Equals("secret", "mismatch")("secret"))
	assert.Equal(t, "mismatch", Equals("secret", "mismatch")("Secret"))
}

func TestIntRange(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"13", false},
		{"120", false},
		{" 42 ", false},
		{"12", true},
		{"121", true},
		{"abc", true},
		{"", true},
	}
	v := IntRange(13, 120, "bad age")
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if tt.wantErr {
				assert.Equal(t, "bad age", v(tt.value))
			} else {
				assert.Empty(t, v(tt.value))
			}
		})
	}
}

func TestOneOf(t *testing.T) {
	v := OneOf([]string{"Reader", "Author"}, "bad role")
	assert.Empty(t, v("Reader"))
	assert.Equal(t, "bad role", v("reader"))
	assert.Equal(t, "bad role", v("Admin"))
}

func TestPattern(t *testing.T) {
	v := Pattern(regexp.MustCompile(`^\d+$`), "digits only")
	assert.Empty(t, v(""), "empty passes")
	assert.Empty(t, v("123"))
	assert.Equal(t, "digits only", v("12a"))
}

func TestFieldValidator_FirstKeepsOrder(t *testing.T) {
	fv := New().
		Validate("userName", "alice", Required("required")).
		Validate("password", "abc", MinLength(6, "short")).
		Validate("email", "nope", Pattern(regexp.MustCompile(`@`), "bad email"))

	field, msg, ok := fv.First()
	assert.True(t, ok)
	assert.Equal(t, "password", field)
	assert.Equal(t, "short", msg)
	assert.Len(t, fv.Errors(), 2)
}

func TestFieldValidator_StopsAtFirstErrorPerField(t *testing.T) {
	fv := New().Validate("password", "", Present("required"), MinLength(6, "short"))
	assert.Equal(t, map[string]string{"password": "required"}, fv.Errors())

	_, _, ok := New().Validate("ok", "fine", Required("x")).First()
	assert.False(t, ok)
}
