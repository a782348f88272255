package chunker

import (
	"strings"

	"github.com/codeready-toolchain/dpa/pkg/textutil"
)

// applyContextWindows annotates each chunk with `overlap` tokens of
// preceding and following text from the full document, kept in
// ContextWindow rather than merged into Text, per spec.md §4.B step 4.
func applyContextWindows(fullText string, chunks []Chunk, overlapTokens int, tokenFamily textutil.ModelFamily) {
	if overlapTokens <= 0 {
		return
	}
	for i := range chunks {
		before := takeTokensBefore(fullText, chunks[i].StartChar, overlapTokens, tokenFamily)
		after := takeTokensAfter(fullText, chunks[i].EndChar, overlapTokens, tokenFamily)
		chunks[i].ContextWindow = strings.TrimSpace(before + "\n...\n" + after)
	}
}

func takeTokensBefore(text string, pos, maxTokens int, family textutil.ModelFamily) string {
	if pos <= 0 {
		return ""
	}
	start := pos
	tokens := 0
	for start > 0 && tokens < maxTokens {
		prevSpace := strings.LastIndexAny(text[:start], " \n\t")
		if prevSpace < 0 {
			prevSpace = 0
		}
		word := text[prevSpace:start]
		tokens += textutil.EstimateTokens(word, family)
		start = prevSpace
	}
	return strings.TrimSpace(text[start:pos])
}

func takeTokensAfter(text string, pos, maxTokens int, family textutil.ModelFamily) string {
	if pos >= len(text) {
		return ""
	}
	end := pos
	tokens := 0
	for end < len(text) && tokens < maxTokens {
		nextSpace := strings.IndexAny(text[end:], " \n\t")
		if nextSpace < 0 {
			end = len(text)
			break
		}
		nextSpace += end + 1
		word := text[end:nextSpace]
		tokens += textutil.EstimateTokens(word, family)
		end = nextSpace
	}
	return strings.TrimSpace(text[pos:end])
}

// slidingWindowChunks produces an additional overlapping set of chunks
// over the full document text, per spec.md §4.B step 5. Each window spans
// about target_chunk_size tokens and the next starts about
// target_chunk_size - overlap tokens later (half the target when overlap
// is not smaller than it), both rounded to whitespace boundaries, so
// consecutive windows share roughly `overlap` tokens. Used for long passages where
// the primary chunking risks splitting coreferent content; these chunks
// are tagged Strategy=sliding_window and are expected to overlap (unlike
// the primary partition).
func slidingWindowChunks(docID, fullText string, cfg Config, tokenFamily textutil.ModelFamily) []Chunk {
	if !cfg.UseSlidingWindow || strings.TrimSpace(fullText) == "" {
		return nil
	}

	stepTokens := cfg.TargetChunkSize - cfg.Overlap
	if stepTokens <= 0 {
		stepTokens = cfg.TargetChunkSize / 2
	}

	var out []Chunk
	pos := 0
	for pos < len(fullText) {
		end := advanceByTokens(fullText, pos, cfg.TargetChunkSize, tokenFamily)
		if end <= pos {
			break
		}
		text := strings.TrimSpace(fullText[pos:end])
		if text != "" {
			out = append(out, Chunk{
				DocID:       docID,
				StartChar:   pos,
				EndChar:     end,
				Text:        text,
				ContentHash: contentHash(text),
				CharCount:   len(text),
				ChunkType:   TypeBody,
				Strategy:    StrategySlidingWindow,
			})
		}
		if end >= len(fullText) {
			break
		}
		nextPos := advanceByTokens(fullText, pos, stepTokens, tokenFamily)
		if nextPos <= pos {
			nextPos = end
		}
		pos = nextPos
	}
	return out
}

func advanceByTokens(text string, from, tokens int, family textutil.ModelFamily) int {
	pos := from
	count := 0
	for pos < len(text) && count < tokens {
		nextSpace := strings.IndexAny(text[pos:], " \n\t")
		if nextSpace < 0 {
			return len(text)
		}
		nextSpace += pos + 1
		count += textutil.EstimateTokens(text[pos:nextSpace], family)
		pos = nextSpace
	}
	return pos
}
