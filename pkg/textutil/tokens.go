package textutil

import "unicode"

// ModelFamily selects the token-estimation ratio for EstimateTokens.
// Real tokenizers are model-specific and not vendored here; the estimate is
// a deliberately simple heuristic used for chunk sizing and rate-limit
// budgeting only, never for exact provider billing.
type ModelFamily string

const (
	ModelFamilyGPT    ModelFamily = "gpt"
	ModelFamilyClaude ModelFamily = "claude"
	ModelFamilyGeneric ModelFamily = "generic"
)

// charsPerToken is an approximate characters-per-token ratio per family,
// derived from published tokenizer behavior on English prose; CJK text is
// detected separately and counted per-rune instead.
var charsPerToken = map[ModelFamily]float64{
	ModelFamilyGPT:     4.0,
	ModelFamilyClaude:  3.8,
	ModelFamilyGeneric: 4.0,
}

// EstimateTokens returns an approximate token count for text under the
// given model family. CJK runes are counted roughly one token each since
// they tokenize far denser than the Latin character-per-token ratio.
func EstimateTokens(text string, family ModelFamily) int {
	if text == "" {
		return 0
	}
	ratio, ok := charsPerToken[family]
	if !ok {
		ratio = charsPerToken[ModelFamilyGeneric]
	}

	var latinChars, cjkRunes int
	for _, r := range text {
		if isCJK(r) {
			cjkRunes++
		} else if !unicode.IsSpace(r) {
			latinChars++
		}
	}

	latinTokens := float64(latinChars) / ratio
	return int(latinTokens) + cjkRunes
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
