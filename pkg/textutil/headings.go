package textutil

import (
	"regexp"
	"strings"
)

// Heading is a detected structural marker within a document, used by the
// chunker's structural pre-pass to build a tree of sections.
type Heading struct {
	Level int    // 1-6, Markdown-style depth
	Text  string
	Start int // byte offset of the heading line in the source text
	End   int // byte offset just past the heading line
}

var (
	mdHeadingPattern    = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	setextH1Pattern     = regexp.MustCompile(`(?m)^(.+)\n=+\s*$`)
	setextH2Pattern     = regexp.MustCompile(`(?m)^(.+)\n-+\s*$`)
	numberedListPattern = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	bulletListPattern   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	codeFencePattern    = regexp.MustCompile("(?m)^```")
	tablePattern        = regexp.MustCompile(`(?m)^\s*\|.+\|\s*$`)
)

// DetectHeadings scans text for Markdown-style ATX headings (# ... ######)
// and Setext headings (underlined with === or ---), returning them ordered
// by position.
func DetectHeadings(text string) []Heading {
	var headings []Heading

	for _, m := range mdHeadingPattern.FindAllStringSubmatchIndex(text, -1) {
		level := len(text[m[2]:m[3]])
		heading := strings.TrimSpace(text[m[4]:m[5]])
		headings = append(headings, Heading{Level: level, Text: heading, Start: m[0], End: m[1]})
	}
	for _, m := range setextH1Pattern.FindAllStringSubmatchIndex(text, -1) {
		headings = append(headings, Heading{Level: 1, Text: strings.TrimSpace(text[m[2]:m[3]]), Start: m[0], End: m[1]})
	}
	for _, m := range setextH2Pattern.FindAllStringSubmatchIndex(text, -1) {
		headings = append(headings, Heading{Level: 2, Text: strings.TrimSpace(text[m[2]:m[3]]), Start: m[0], End: m[1]})
	}

	// Sort by start offset; stable because each regexp's matches are
	// already ordered and we're doing a simple merge.
	for i := 1; i < len(headings); i++ {
		for j := i; j > 0 && headings[j].Start < headings[j-1].Start; j-- {
			headings[j], headings[j-1] = headings[j-1], headings[j]
		}
	}
	return headings
}

// StructureKind classifies a line-range of text for the chunker's
// structural pre-pass.
type StructureKind int

const (
	StructureBody StructureKind = iota
	StructureHeading
	StructureList
	StructureCode
	StructureTable
)

// ClassifyLine reports the structural kind of a single line, used when the
// chunker decides whether a span belongs to chunk_type list/code/table.
func ClassifyLine(line string) StructureKind {
	switch {
	case mdHeadingPattern.MatchString(line):
		return StructureHeading
	case codeFencePattern.MatchString(line):
		return StructureCode
	case numberedListPattern.MatchString(line), bulletListPattern.MatchString(line):
		return StructureList
	case tablePattern.MatchString(line):
		return StructureTable
	default:
		return StructureBody
	}
}
