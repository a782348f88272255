package chunker

import (
	"strings"

	"github.com/codeready-toolchain/dpa/pkg/textutil"
)

// section is a leaf of the structural pre-pass tree (step 1 of spec.md
// §4.B's algorithm): a contiguous span of text bounded by headings, with
// its own structural kind (list/code/table/body).
type section struct {
	Start int
	End   int
	Text  string
	Kind  textutil.StructureKind
	// HeadingText is non-empty when this section begins with a heading
	// line. It is recorded only; chunk_type comes from Kind.
	HeadingText string
}

// buildSections splits text into leaf sections at heading boundaries, then
// further splits each heading-delimited block into body/list/code/table
// runs by scanning lines, per spec.md §4.B step 1.
func buildSections(text string) []section {
	headings := textutil.DetectHeadings(text)

	bounds := []int{0}
	for _, h := range headings {
		bounds = append(bounds, h.Start)
	}
	bounds = append(bounds, len(text))

	var blocks []section
	for i := 0; i < len(bounds)-1; i++ {
		start, end := bounds[i], bounds[i+1]
		if start >= end {
			continue
		}
		blockText := text[start:end]
		headingText := ""
		for _, h := range headings {
			if h.Start == start {
				headingText = h.Text
				break
			}
		}
		blocks = append(blocks, splitByLineKind(start, blockText, headingText)...)
	}
	return blocks
}

// splitByLineKind groups consecutive lines of the same StructureKind into
// one section, so a fenced code block or a markdown table becomes its own
// chunk_type=code/table chunk rather than being merged into body text.
func splitByLineKind(baseOffset int, text string, headingText string) []section {
	lines := strings.SplitAfter(text, "\n")

	var out []section
	var curStart int
	var curKind textutil.StructureKind
	var curLines []string
	inCodeFence := false

	flush := func(end int) {
		if len(curLines) == 0 {
			return
		}
		out = append(out, section{
			Start:       baseOffset + curStart,
			End:         baseOffset + end,
			Text:        strings.Join(curLines, ""),
			Kind:        curKind,
			HeadingText: headingText,
		})
		headingText = "" // only the first section of the block carries it
		curLines = nil
	}

	offset := 0
	for i, line := range lines {
		kind := textutil.ClassifyLine(line)
		if kind == textutil.StructureCode {
			inCodeFence = !inCodeFence
		} else if inCodeFence {
			kind = textutil.StructureCode
		}

		if len(curLines) == 0 {
			curStart = offset
			curKind = kind
		} else if kind != curKind {
			flush(offset)
			curStart = offset
		}
		curKind = kind
		curLines = append(curLines, line)

		offset += len(line)
		if i == len(lines)-1 {
			flush(offset)
		}
	}
	return out
}

func sectionChunkType(kind textutil.StructureKind) Type {
	switch kind {
	case textutil.StructureHeading:
		return TypeHeading
	case textutil.StructureList:
		return TypeList
	case textutil.StructureCode:
		return TypeCode
	case textutil.StructureTable:
		return TypeTable
	default:
		return TypeBody
	}
}
