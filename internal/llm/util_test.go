package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"title\": \"Engineer\"}\n```",
			expected: `{"title": "Engineer"}`,
		},
		{
			name:     "plain code block",
			input:    "```\n{\"title\": \"Engineer\"}\n```",
			expected: `{"title": "Engineer"}`,
		},
		{
			name:     "no wrapping",
			input:    `{"title": "Engineer"}`,
			expected: `{"title": "Engineer"}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n{\"a\": 1}\n  ",
			expected: `{"a": 1}`,
		},
		{
			name:     "language identifier line",
			input:    "```javascript\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}
