package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	text := strings.Repeat("a", 400)
	tokens := EstimateTokens(text, ModelFamilyGPT)
	assert.InDelta(t, 100, tokens, 5)

	assert.Equal(t, 0, EstimateTokens("", ModelFamilyGPT))

	cjk := strings.Repeat("字", 10)
	assert.Equal(t, 10, EstimateTokens(cjk, ModelFamilyGeneric))
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "zh", DetectLanguage("这是一个关于人工智能的长篇技术文档，包含很多汉字内容用于测试语言检测功能。"))
	assert.Equal(t, "ja", DetectLanguage("これはテストです。ひらがなとカタカナを含みます。"))
	assert.Equal(t, "en", DetectLanguage("The quick brown fox and the lazy dog, is this a test of the language detector."))
	assert.Equal(t, "unknown", DetectLanguage(""))
}
