package textutil

import "unicode"

// DetectLanguage classifies text into a coarse language code using script
// and stopword heuristics. It is not a statistical classifier; it is a
// deterministic best-effort tag. Its one caller, the analyzer's prepare
// node, discards the result: sentence splitting does not depend on it and
// no chunk metadata records it.
func DetectLanguage(text string) string {
	if text == "" {
		return "unknown"
	}

	var han, hiraganaKatakana, hangul, latin, total int
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			continue
		}
		total++
		switch {
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
			hiraganaKatakana++
		case unicode.Is(unicode.Han, r):
			han++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}

	if total == 0 {
		return "unknown"
	}

	switch {
	case hiraganaKatakana > 0:
		return "ja"
	case hangul > total/4:
		return "ko"
	case han > total/2:
		return "zh"
	case latin > total/2:
		return detectLatinLanguage(text)
	default:
		return "unknown"
	}
}

// stopwords is a tiny per-language marker set sufficient to distinguish the
// handful of Latin-script languages the pipeline is expected to see;
// anything else falls back to "en".
var stopwords = map[string][]string{
	"en": {" the ", " and ", " of ", " to ", " is "},
	"es": {" el ", " la ", " de ", " y ", " que "},
	"fr": {" le ", " la ", " de ", " et ", " les "},
	"de": {" der ", " die ", " das ", " und ", " ist "},
}

func detectLatinLanguage(text string) string {
	padded := " " + text + " "
	best, bestCount := "en", 0
	for lang, words := range stopwords {
		count := 0
		for _, w := range words {
			count += countOccurrences(padded, w)
		}
		if count > bestCount {
			best, bestCount = lang, count
		}
	}
	return best
}

func countOccurrences(haystack, needle string) int {
	count := 0
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			count++
		}
	}
	return count
}
