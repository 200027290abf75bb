package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOneLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short", "access denied", 20, "access denied"},
		{"exact", "abcdef", 6, "abcdef"},
		{"cut", "abcdefghij", 6, "abc..."},
		{"whitespace collapsed", "line one\n\tline   two\r\n", 50, "line one line two"},
		{"html body", "<html>\n  <body>Service Unavailable</body>\n</html>", 30, "<html> <body>Service Unava..."},
		{"unicode safe", "héllo wörld ❤❤❤", 8, "héllo..."},
		{"tiny max clamped", "abcdef", 1, "a..."},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OneLine(tt.input, tt.maxLen))
		})
	}
}
