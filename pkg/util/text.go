package util

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lower lower-cases s rune by rune, leaving any rune whose lower-case form has a
// different UTF-8 width untouched. Byte offsets found in the result are valid in s.
func Lower(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(s[i])
			i++
			continue
		}
		l := unicode.ToLower(r)
		if utf8.RuneLen(l) == size {
			b.WriteRune(l)
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:[^\p{L}\p{N}_]|$)`
)

// WordPattern compiles a case-insensitive regexp that matches any of words as a
// whole word. Boundaries are Unicode aware, unlike \b.
func WordPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)` + wordStart + `(?:` + strings.Join(quoted, "|") + `)` + wordEnd)
}

// Bounded wraps a regexp fragment so it only matches on word boundaries.
func Bounded(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + wordStart + `(?:` + expr + `)` + wordEnd)
}

// Vocabulary is a list of words compiled for whole-word lookups.
type Vocabulary struct {
	words []string
	res   []*regexp.Regexp
}

func NewVocabulary(words ...string) *Vocabulary {
	v := &Vocabulary{}
	for _, w := range words {
		if re := WordPattern(w); re != nil {
			v.words = append(v.words, w)
			v.res = append(v.res, re)
		}
	}
	return v
}

// Find returns the words that occur in text as whole words, in vocabulary order.
func (v *Vocabulary) Find(text string) []string {
	if v == nil {
		return nil
	}
	var found []string
	for i, re := range v.res {
		if re.MatchString(text) {
			found = append(found, v.words[i])
		}
	}
	return found
}

// First returns the first vocabulary word found in text.
func (v *Vocabulary) First(text string) (string, bool) {
	if v == nil {
		return "", false
	}
	for i, re := range v.res {
		if re.MatchString(text) {
			return v.words[i], true
		}
	}
	return "", false
}

func (v *Vocabulary) Words() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.words...)
}
