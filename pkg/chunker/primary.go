package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/codeready-toolchain/dpa/pkg/textutil"
)

// primarySegment packs the sentences of one section greedily up to
// target_chunk_size, never splitting a sentence, respecting min/max, per
// spec.md §4.B step 2. When UseSentence is false, the section is split on
// whitespace into chunks of about target_chunk_size tokens instead (see
// packFixedSize); that path does not enforce max_chunk_size.
func primarySegment(sec section, cfg Config, tokenFamily textutil.ModelFamily) []Chunk {
	if !cfg.UseSentence {
		return packFixedSize(sec, cfg, tokenFamily)
	}

	sentences := textutil.SplitSentences(sec.Text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []Chunk
	var cur strings.Builder
	curStart := sec.Start
	curTokens := 0
	offset := 0

	flush := func(end int) {
		text := strings.TrimSpace(cur.String())
		if text == "" {
			return
		}
		chunks = append(chunks, newChunk(sec, curStart, end, text))
		cur.Reset()
		curTokens = 0
	}

	pos := sec.Start
	for _, s := range sentences {
		idx := strings.Index(sec.Text[offset:], s)
		if idx >= 0 {
			pos = sec.Start + offset + idx
			offset += idx + len(s)
		}
		sentTokens := textutil.EstimateTokens(s, tokenFamily)

		if cur.Len() > 0 && curTokens+sentTokens > cfg.TargetChunkSize && curTokens >= cfg.MinChunkSize {
			flush(pos)
			curStart = pos
		}

		if cur.Len() > 0 {
			cur.WriteString(" ")
		}
		cur.WriteString(s)
		curTokens += sentTokens

		// Hard cap: flush as soon as the chunk reaches max_chunk_size. The
		// check runs after the sentence is added, so one long sentence can
		// still leave a chunk above max.
		if curTokens >= cfg.MaxChunkSize {
			flush(pos + len(s))
			curStart = pos + len(s)
		}
	}
	flush(sec.End)

	return chunks
}

// packFixedSize is the UseSentence=false / fallback path: split on
// whitespace boundaries up to target size, used when the chunker cannot
// rely on sentence boundaries (e.g. semantic services unavailable and the
// caller also disabled sentence segmentation).
func packFixedSize(sec section, cfg Config, tokenFamily textutil.ModelFamily) []Chunk {
	words := strings.Fields(sec.Text)
	if len(words) == 0 {
		return nil
	}

	var chunks []Chunk
	var cur []string
	curTokens := 0
	start := sec.Start
	pos := sec.Start

	flush := func(end int) {
		if len(cur) == 0 {
			return
		}
		text := strings.Join(cur, " ")
		chunks = append(chunks, newChunk(sec, start, end, text))
		cur = nil
		curTokens = 0
	}

	for _, w := range words {
		idx := strings.Index(sec.Text[pos-sec.Start:], w)
		wordEnd := pos
		if idx >= 0 {
			wordEnd = pos + idx + len(w)
			pos = wordEnd
		}
		wTokens := textutil.EstimateTokens(w, tokenFamily)
		if curTokens+wTokens > cfg.TargetChunkSize && curTokens >= cfg.MinChunkSize {
			flush(wordEnd)
			start = wordEnd
		}
		cur = append(cur, w)
		curTokens += wTokens
	}
	flush(sec.End)
	return chunks
}

func newChunk(sec section, start, end int, text string) Chunk {
	return Chunk{
		StartChar:   start,
		EndChar:     end,
		Text:        text,
		ContentHash: contentHash(text),
		CharCount:   len(text),
		ChunkType:   sectionChunkType(sec.Kind),
		Strategy:    StrategyPrimary,
	}
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
