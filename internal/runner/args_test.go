package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"lint", []string{"lint"}},
		{"lint:src:fast", []string{"lint", "src", "fast"}},
		{`copy:a\:b:c`, []string{"copy", "a:b", "c"}},
		{"a::b", []string{"a", "", "b"}},
		{`trail\`, []string{`trail\`}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitArgs(tt.in))
		})
	}
}

func TestJoinArgs(t *testing.T) {
	assert.Equal(t, "a:b:c", JoinArgs([]string{"a", "b", "c"}))
	assert.Equal(t, "", JoinArgs(nil))
}
