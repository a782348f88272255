package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectHeadings(t *testing.T) {
	text := "# Title\n\nSome intro text.\n\n## Section One\n\nBody text here.\n"
	headings := DetectHeadings(text)

	require.Len(t, headings, 2)
	assert.Equal(t, 1, headings[0].Level)
	assert.Equal(t, "Title", headings[0].Text)
	assert.Equal(t, 2, headings[1].Level)
	assert.Equal(t, "Section One", headings[1].Text)
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected StructureKind
	}{
		{"atx heading", "## Heading", StructureHeading},
		{"numbered list", "1. First item", StructureList},
		{"bullet list", "- item", StructureList},
		{"code fence", "```go", StructureCode},
		{"table row", "| a | b |", StructureTable},
		{"plain body", "Just a sentence.", StructureBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyLine(tt.line))
		})
	}
}
