package tokenizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCutAlphanumericRuns(t *testing.T) {
	tok := New()
	tokens := tok.Cut("Weather Station ESP32")
	assert.Equal(t, []string{"weather", " ", "station", " ", "esp32"}, tokens)
}

func TestCutVocabularyLongestMatch(t *testing.T) {
	tok := New()
	tok.AddTerm("天安门")
	tok.AddTerm("北京")
	tok.AddTerm("天安")

	tokens := tok.Cut("北京天安门")
	assert.Equal(t, []string{"北京", "天安门"}, tokens)
}

func TestCutUnknownRunesFallBackToSingles(t *testing.T) {
	tok := New()
	tokens := tok.Cut("你好go")
	assert.Equal(t, []string{"你", "好", "go"}, tokens)
}

func TestCutEmpty(t *testing.T) {
	tok := New()
	assert.Nil(t, tok.Cut(""))
}

func TestTrimDropsStopWordsAndPunctuation(t *testing.T) {
	tok := New()
	tok.AddStopWord("the")

	trimmed := tok.Trim([]string{"the", "weather", " ", "!", "station"})
	assert.Equal(t, []string{"weather", "station"}, trimmed)
}

func TestTokenizeForIndex(t *testing.T) {
	tok := New()
	tok.AddTerm("控制台")
	tok.AddStopWord("a")

	result := tok.TokenizeForIndex("A Go 控制台 tool!")
	assert.Equal(t, "go 控制台 tool", result)
}

func TestTokenizeForQueryMatchesIndexing(t *testing.T) {
	tok := New()
	tok.AddTerm("博客")

	assert.Equal(t, tok.TokenizeForIndex("Go 博客"), tok.TokenizeForQuery("Go 博客"))
}

func TestAddTermDeduplicates(t *testing.T) {
	tok := New()
	tok.AddTerm("Go")
	tok.AddTerm("go")
	tok.AddTerm("  GO  ")
	assert.Len(t, tok.terms, 1)
}

func TestLoadDictionary(t *testing.T) {
	tok := New()
	path := writeTempFile(t, "# comment\n\n天安门 128\n北京\n")
	require.NoError(t, tok.LoadDictionary(path))

	assert.True(t, tok.inVocab("天安门"))
	assert.True(t, tok.inVocab("北京"))
	assert.False(t, tok.inVocab("comment"))
}
