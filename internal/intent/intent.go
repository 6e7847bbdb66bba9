package intent

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"murmur/pkg/util"
)

type Intent string

const (
	SystemCommand        Intent = "system_command"
	Translator           Intent = "translator_llm"
	Coder                Intent = "coder"
	Conversational       Intent = "conversational"
	ConversationResponse Intent = "conversation_response"
)

var systemVerbs = []string{
	"abre", "inicia", "ejecuta", "crea", "haz", "nueva", "nuevo", "carpeta", "archivo",
	"open", "run", "start", "launch", "make", "create", "folder", "file",
}

var systemTemplates = []*regexp.Regexp{
	util.Bounded(`(?:abre|inicia|ejecuta)\s+(?:el\s+|la\s+|un\s+|una\s+)?[^\s.]+`),
	util.Bounded(`(?:crea|haz)\s+(?:una?\s+)?(?:carpeta|archivo)\s+(?:llamad[ao]\s+)?[^\s.]+`),
	util.Bounded(`nuev[ao]\s+(?:carpeta|archivo)\s+[^\s.]+`),
	util.Bounded(`(?:open|start|launch|run)\s+(?:the\s+|a\s+|an\s+)?[^\s.]+`),
	util.Bounded(`(?:create|make)\s+(?:a\s+|an\s+|new\s+)*(?:folder|directory|file)\s+(?:called\s+|named\s+)?[^\s.]+`),
	util.Bounded(`informaci[oó]n\s+del\s+sistema|system\s+info(?:rmation)?`),
}

var translateStem = util.Bounded(`(?:traduc|translat)[\p{L}]*`)

var codeWords = []string{
	"código", "codigo", "programa", "python", "java", "javascript", "golang",
	"function", "función", "error", "debug", "variable", "clase", "class",
	"html", "css", "sql", "git", "commit", "repositorio", "repository",
}

type Diagnosis struct {
	Input   string
	Intent  Intent
	Reasons []string
}

// Classifier maps utterances to coarse intents using fixed vocabularies and
// the names of the applications the registry knows how to launch.
type Classifier struct {
	verbs *util.Vocabulary
	code  *util.Vocabulary

	mu   sync.RWMutex
	apps *util.Vocabulary
}

func New(appNames []string) *Classifier {
	c := &Classifier{
		verbs: util.NewVocabulary(systemVerbs...),
		code:  util.NewVocabulary(codeWords...),
	}
	c.SetApps(appNames)
	return c
}

// SetApps replaces the known application names.
func (c *Classifier) SetApps(names []string) {
	apps := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(strings.ToLower(n)); n != "" {
			apps = append(apps, n)
		}
	}

	vocab := util.NewVocabulary(apps...)

	c.mu.Lock()
	c.apps = vocab
	c.mu.Unlock()
}

func (c *Classifier) Classify(text string) Intent {
	return c.Diagnose(text).Intent
}

func (c *Classifier) ClassifyWithContext(text string, pending bool) Intent {
	if pending {
		return ConversationResponse
	}
	return c.Classify(text)
}

func (c *Classifier) Diagnose(text string) Diagnosis {
	d := Diagnosis{Input: text, Intent: Conversational}

	t := strings.TrimSpace(text)
	if t == "" {
		d.Reasons = append(d.Reasons, "empty input: default to conversational")
		return d
	}

	verbs := c.verbs.Find(t)
	templates := 0
	for _, re := range systemTemplates {
		if re.MatchString(t) {
			templates++
		}
	}

	c.mu.RLock()
	apps := c.apps.Find(t)
	c.mu.RUnlock()

	if len(verbs) > 0 || templates > 0 || len(apps) > 0 {
		d.Intent = SystemCommand
		if len(verbs) > 0 {
			d.Reasons = append(d.Reasons, fmt.Sprintf("system verbs: %v", verbs))
		}
		if templates > 0 {
			d.Reasons = append(d.Reasons, fmt.Sprintf("system templates matched: %d", templates))
		}
		if len(apps) > 0 {
			d.Reasons = append(d.Reasons, fmt.Sprintf("known apps: %v", apps))
		}
		return d
	}

	if m := translateStem.FindString(t); m != "" {
		d.Intent = Translator
		d.Reasons = append(d.Reasons, fmt.Sprintf("translation stem: %q", strings.TrimSpace(m)))
		return d
	}

	if words := c.code.Find(t); len(words) > 0 {
		d.Intent = Coder
		d.Reasons = append(d.Reasons, fmt.Sprintf("programming terms: %v", words))
		return d
	}

	d.Reasons = append(d.Reasons, "no specific signal: default to conversational")
	return d
}
