// Package tokenizer derives the search_tokens field from content text. It
// splits alphanumeric runs directly and matches everything else (CJK and
// other unsegmented scripts) against an optional vocabulary trie, longest
// match first. With no vocabulary loaded it degrades to per-rune tokens,
// which FTS still indexes usefully.
package tokenizer

import (
	"bufio"
	"os"
	"strings"
	"unicode"

	"github.com/vcaesar/cedar"
)

type Tokenizer struct {
	trie      *cedar.Cedar
	terms     []string
	maxLen    int // longest vocabulary term, in runes
	stopWords map[string]bool
}

func New() *Tokenizer {
	return &Tokenizer{
		trie:      cedar.New(),
		stopWords: make(map[string]bool),
	}
}

// AddTerm inserts a vocabulary term. Terms are matched case-insensitively.
func (t *Tokenizer) AddTerm(term string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return
	}
	key := []byte(term)
	if _, err := t.trie.Get(key); err == nil {
		return
	}
	t.trie.Insert(key, len(t.terms))
	t.terms = append(t.terms, term)
	if n := len([]rune(term)); n > t.maxLen {
		t.maxLen = n
	}
}

// AddStopWord marks a token to be dropped from index output.
func (t *Tokenizer) AddStopWord(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word != "" {
		t.stopWords[word] = true
	}
}

// LoadDictionary reads one term per line ("term" or "term freq"), skipping
// blanks and # comments.
func (t *Tokenizer) LoadDictionary(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		t.AddTerm(fields[0])
	}
	return scanner.Err()
}

// LoadStopWords reads one stop word per line.
func (t *Tokenizer) LoadStopWords(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		t.AddStopWord(scanner.Text())
	}
	return scanner.Err()
}

func (t *Tokenizer) inVocab(word string) bool {
	id, err := t.trie.Jump([]byte(word), 0)
	if err != nil {
		return false
	}
	_, err = t.trie.Value(id)
	return err == nil
}

func isAlphanum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Cut splits text into tokens. Alphanumeric runs are kept whole and
// lowercased; other spans are matched greedily against the vocabulary.
func (t *Tokenizer) Cut(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	tokens := make([]string, 0, len(runes)/3)

	start := 0
	inAlphanum := isAlphanum(runes[0])
	flush := func(end int) {
		segment := runes[start:end]
		if len(segment) == 0 {
			return
		}
		if inAlphanum {
			tokens = append(tokens, strings.ToLower(string(segment)))
		} else {
			tokens = append(tokens, t.cutSpan(segment)...)
		}
	}

	for i := 1; i < len(runes); i++ {
		if current := isAlphanum(runes[i]); current != inAlphanum {
			flush(i)
			start = i
			inAlphanum = current
		}
	}
	flush(len(runes))

	return tokens
}

// cutSpan tokenizes a non-alphanumeric span: longest vocabulary match wins,
// unknown runes come through one at a time.
func (t *Tokenizer) cutSpan(runes []rune) []string {
	tokens := make([]string, 0, len(runes)/2)
	for k := 0; k < len(runes); {
		matched := false
		max := k + t.maxLen
		if max > len(runes) {
			max = len(runes)
		}
		for end := max; end > k+1; end-- {
			word := strings.ToLower(string(runes[k:end]))
			if t.inVocab(word) {
				tokens = append(tokens, word)
				k = end
				matched = true
				break
			}
		}
		if !matched {
			tokens = append(tokens, strings.ToLower(string(runes[k:k+1])))
			k++
		}
	}
	return tokens
}

// Trim drops stop words and tokens that are pure punctuation or whitespace.
func (t *Tokenizer) Trim(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = filterSymbols(token)
		if token == "" || t.stopWords[token] {
			continue
		}
		result = append(result, token)
	}
	return result
}

func filterSymbols(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if !unicode.IsSymbol(r) && !unicode.IsSpace(r) && !unicode.IsPunct(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TokenizeForIndex produces the space-joined token string stored in
// search_tokens and fed to the FTS index.
func (t *Tokenizer) TokenizeForIndex(text string) string {
	return strings.Join(t.Trim(t.Cut(text)), " ")
}

// TokenizeForQuery segments a user query the same way indexed text was.
func (t *Tokenizer) TokenizeForQuery(query string) string {
	return t.TokenizeForIndex(query)
}
