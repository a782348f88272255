package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple two sentences",
			input:    "Hello world. This is DPA.",
			expected: []string{"Hello world.", "This is DPA."},
		},
		{
			name:     "abbreviation does not split",
			input:    "Dr. Smith wrote the report. It was thorough.",
			expected: []string{"Dr. Smith wrote the report.", "It was thorough."},
		},
		{
			name:     "question and exclamation",
			input:    "Is this correct? Yes! It is.",
			expected: []string{"Is this correct?", "Yes!", "It is."},
		},
		{
			name:     "quoted span not split mid-quote",
			input:    `She said "stop. now." and left.`,
			expected: []string{`She said "stop. now." and left.`},
		},
		{
			name:     "cjk terminator",
			input:    "你好。这是一个测试。",
			expected: []string{"你好。", "这是一个测试。"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEndsWithAbbreviation(t *testing.T) {
	assert.True(t, endsWithAbbreviation("Dr."))
	assert.True(t, endsWithAbbreviation("Meet Prof."))
	assert.False(t, endsWithAbbreviation("end of sentence."))
}
