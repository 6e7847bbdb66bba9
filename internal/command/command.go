package command

import (
	"regexp"
	"strings"

	"murmur/pkg/util"
)

type Kind string

const (
	OpenApp      Kind = "open_app"
	CreateFolder Kind = "create_folder"
	CreateFile   Kind = "create_file"
	SearchFolder Kind = "search_folder"
	SystemInfo   Kind = "system_info"
	Unrecognized Kind = "unrecognized"
)

type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	None   Confidence = "none"
)

type ParamTag string

const (
	TagNone    ParamTag = "none"
	TagSimple  ParamTag = "simple"
	TagLocated ParamTag = "located"
)

// Params is either a single value or a name/location pair. Consumers switch on Tag.
type Params struct {
	Tag      ParamTag `json:"tag"`
	Value    *string  `json:"value,omitempty"`
	Name     *string  `json:"name,omitempty"`
	Location *string  `json:"location,omitempty"`
}

func NoParams() Params { return Params{Tag: TagNone} }

func Simple(v *string) Params { return Params{Tag: TagSimple, Value: v} }

func Located(name, location *string) Params {
	return Params{Tag: TagLocated, Name: name, Location: location}
}

type Command struct {
	Kind       Kind       `json:"kind"`
	Params     Params     `json:"params"`
	Confidence Confidence `json:"confidence"`
	Text       string     `json:"text"`
}

const unsafeChars = `<>:"/\|?*`

// Sanitize strips path-unsafe characters and surrounding whitespace. An empty
// result is reported as nil.
func Sanitize(s string) *string {
	clean := strings.TrimSpace(strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeChars, r) {
			return -1
		}
		return r
	}, s))
	if clean == "" {
		return nil
	}
	return &clean
}

type located struct {
	re       *regexp.Regexp
	name     int // capture group index, 0 when absent
	location int
}

type rule struct {
	kind Kind
	res  []*regexp.Regexp
}

type Classifier struct {
	folderTriggers []string
	fileTriggers   []string
	folders        [][]located
	files          [][]located
	rules          []rule
}

func New() *Classifier {
	return &Classifier{
		folderTriggers: []string{"crea", "carpeta", "create", "folder"},
		fileTriggers:   []string{"crea", "archivo", "create", "file"},
		folders: [][]located{
			{
				{re: regexp.MustCompile(`crea\s+(?:una\s+)?carpeta\s+(?:llamada\s+)?([^\n]+?)\s+en\s+([^\n]+)`), name: 1, location: 2},
				{re: regexp.MustCompile(`(?:create|make)\s+(?:a\s+)?(?:new\s+)?folder\s+(?:called\s+|named\s+)?([^\n]+?)\s+in\s+([^\n]+)`), name: 1, location: 2},
			},
			{
				{re: regexp.MustCompile(`crea\s+(?:una\s+)?carpeta\s+en\s+([^\n]+?)\s+(?:llamada\s+)?([^\n]+)`), location: 1, name: 2},
				{re: regexp.MustCompile(`(?:create|make)\s+(?:a\s+)?(?:new\s+)?folder\s+in\s+([^\n]+?)\s+(?:called\s+|named\s+)?([^\n]+)`), location: 1, name: 2},
			},
			{
				{re: regexp.MustCompile(`crea\s+(?:una\s+)?carpeta\s+en\s+([^\n]+)`), location: 1},
				{re: regexp.MustCompile(`(?:create|make)\s+(?:a\s+)?(?:new\s+)?folder\s+in\s+([^\n]+)`), location: 1},
			},
		},
		files: [][]located{
			{
				{re: regexp.MustCompile(`crea\s+(?:un\s+)?archivo\s+(?:llamado\s+)?([^\n]+?)\s+en\s+([^\n]+)`), name: 1, location: 2},
				{re: regexp.MustCompile(`(?:create|make)\s+(?:a\s+)?(?:new\s+)?file\s+(?:called\s+|named\s+)?([^\n]+?)\s+in\s+([^\n]+)`), name: 1, location: 2},
			},
		},
		rules: []rule{
			{OpenApp, compile(
				`abre\s+(.+)`,
				`inicia\s+(.+)`,
				`ejecuta\s+(.+)`,
				`open\s+(.+)`,
				`run\s+(.+)`,
				`lanzar\s+(.+)`,
				`launch\s+(.+)`,
				`start\s+(.+)`,
			)},
			{CreateFolder, compile(
				`crea\s+(?:una\s+)?carpeta\s+(?:llamada\s+)?(.+)$`,
				`make\s+(?:a\s+)?(?:new\s+)?folder\s+(?:called\s+|named\s+)?(.+)$`,
				`create\s+(?:a\s+)?(?:new\s+)?folder\s+(?:called\s+|named\s+)?(.+)$`,
				`nueva\s+carpeta\s+(.+)$`,
			)},
			{CreateFile, compile(
				`crea\s+(?:un\s+)?archivo\s+(?:llamado\s+)?(.+)`,
				`create\s+(?:a\s+)?(?:new\s+)?file\s+(?:called\s+|named\s+)?(.+)`,
				`make\s+(?:a\s+)?(?:new\s+)?file\s+(?:called\s+|named\s+)?(.+)`,
				`nuevo\s+archivo\s+(.+)`,
			)},
			{SearchFolder, compile(
				`busca\s+(?:la\s+)?carpeta\s+(.+)`,
				`encuentra\s+(?:la\s+)?carpeta\s+(.+)`,
				`search\s+(?:for\s+)?(?:the\s+)?folder\s+(.+)`,
				`find\s+(?:the\s+)?folder\s+(.+)`,
			)},
			{SystemInfo, compile(
				`informaci[oó]n\s+del\s+sistema`,
				`system\s+information`,
				`system\s+info`,
			)},
		},
	}
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// Classify parses a system-command utterance. Location-bearing folder and file
// phrasings are tried first, and only when their trigger words are present.
func (c *Classifier) Classify(text string) Command {
	orig := strings.TrimSpace(text)
	lower := util.Lower(orig)

	if containsAny(lower, c.folderTriggers) {
		if cmd, ok := matchLocated(CreateFolder, c.folders, orig, lower); ok {
			return cmd
		}
	}
	if containsAny(lower, c.fileTriggers) {
		if cmd, ok := matchLocated(CreateFile, c.files, orig, lower); ok {
			return cmd
		}
	}

	for _, r := range c.rules {
		for _, re := range r.res {
			m := re.FindStringSubmatchIndex(lower)
			if m == nil {
				continue
			}
			if r.kind == SystemInfo {
				return Command{Kind: SystemInfo, Params: NoParams(), Confidence: High, Text: orig}
			}

			param := Sanitize(slice(orig, m, 1))
			conf := Medium
			if param != nil {
				conf = High
			}
			return Command{Kind: r.kind, Params: Simple(param), Confidence: conf, Text: orig}
		}
	}

	return Command{Kind: Unrecognized, Params: NoParams(), Confidence: None, Text: orig}
}

func matchLocated(kind Kind, stages [][]located, orig, lower string) (Command, bool) {
	for _, stage := range stages {
		for _, p := range stage {
			m := p.re.FindStringSubmatchIndex(lower)
			if m == nil {
				continue
			}
			var name, location *string
			if p.name > 0 {
				name = Sanitize(slice(orig, m, p.name))
			}
			if p.location > 0 {
				location = Sanitize(slice(orig, m, p.location))
			}
			return Command{Kind: kind, Params: Located(name, location), Confidence: High, Text: orig}, true
		}
	}
	return Command{}, false
}

// slice returns capture group g of a match computed on the lower-cased copy,
// taken from the original text so capitalisation survives.
func slice(orig string, m []int, g int) string {
	start, end := m[2*g], m[2*g+1]
	if start < 0 || end < 0 {
		return ""
	}
	return orig[start:end]
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
