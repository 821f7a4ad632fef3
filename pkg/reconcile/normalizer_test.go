package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer("co.com")

	tests := []struct {
		in   string
		want string
	}{
		{"x@co.com", "x@co.com"},
		{"  X@Co.COM  ", "x@co.com"},
		{"x@co.com.", "x@co.com"},
		{"x@co.com; ", "x@co.com"},
		{"x@co.com,,", "x@co.com"},
		{"x@other.org", "x@other.org"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, n.Normalize(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer("co.com")

	inputs := []string{
		"x@co.com",
		" X@CO.com.. ",
		"x@co.com;;",
		"x@co.com.cn",
		"weird@other.io ",
		"",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "not idempotent for %q", in)
	}
}

func TestNormalizeWithoutDomain(t *testing.T) {
	n := NewNormalizer("")
	assert.Equal(t, "x@co.com.", n.Normalize(" X@Co.COM. "))
}
