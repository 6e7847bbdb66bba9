package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerKeepsOffsets(t *testing.T) {
	in := "Crea Carpeta MÚSICA en İstanbul"
	out := Lower(in)
	assert.Len(t, out, len(in))
	assert.Equal(t, "crea carpeta música en İstanbul", out)
}

func TestLowerInvalidUTF8(t *testing.T) {
	in := "AB\xffC"
	assert.Equal(t, "ab\xffc", Lower(in))
}

func TestWordPattern(t *testing.T) {
	re := WordPattern("código", "git")
	assert.True(t, re.MatchString("ayuda con CÓDIGO python"))
	assert.True(t, re.MatchString("git"))
	assert.False(t, re.MatchString("digital"))
	assert.False(t, re.MatchString("códigos"))
	assert.Nil(t, WordPattern("", "  "))
}

func TestVocabulary(t *testing.T) {
	v := NewVocabulary("open", "term", "terminal", "")
	assert.Equal(t, []string{"open", "terminal"}, v.Find("Open the terminal please"))

	w, ok := v.First("the TERMINAL")
	assert.True(t, ok)
	assert.Equal(t, "terminal", w)

	_, ok = v.First("nothing here")
	assert.False(t, ok)
	assert.Equal(t, []string{"open", "term", "terminal"}, v.Words())

	var empty *Vocabulary
	assert.Nil(t, empty.Find("open"))
}
