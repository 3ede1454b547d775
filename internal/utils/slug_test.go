package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Blue T-Shirt":       "blue-t-shirt",
		"  Leading spaces":   "leading-spaces",
		"Trailing! ":         "trailing",
		"Multi   spaces":     "multi-spaces",
		"MiXeD CaSe 123":     "mixed-case-123",
		"émoji ☕ product":    "moji-product",
		"":                   "",
		"---":                "",
		"already-slugified":  "already-slugified",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestNewSessionToken(t *testing.T) {
	a := NewSessionToken()
	b := NewSessionToken()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}
