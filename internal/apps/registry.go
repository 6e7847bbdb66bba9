package apps

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	log "log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"murmur/pkg/util"
)

// Defaults returns the launch commands known out of the box on goos.
func Defaults(goos string) map[string]string {
	switch goos {
	case "windows":
		return map[string]string{
			"navegador":   "msedge",
			"browser":     "msedge",
			"edge":        "msedge",
			"chrome":      "chrome",
			"calculadora": "calc.exe",
			"calculator":  "calc.exe",
			"editor":      "notepad.exe",
			"notepad":     "notepad.exe",
			"terminal":    "cmd.exe",
			"archivos":    "explorer.exe",
			"files":       "explorer.exe",
			"documentos":  "winword.exe",
			"word":        "winword.exe",
			"excel":       "excel.exe",
		}
	case "darwin":
		return map[string]string{
			"navegador":   "Safari",
			"browser":     "Safari",
			"safari":      "Safari",
			"chrome":      "Google Chrome",
			"edge":        "Microsoft Edge",
			"calculadora": "Calculator",
			"calculator":  "Calculator",
			"editor":      "TextEdit",
			"terminal":    "Terminal",
			"archivos":    "Finder",
			"files":       "Finder",
		}
	default:
		return map[string]string{
			"navegador":   "microsoft-edge-stable",
			"browser":     "firefox",
			"firefox":     "firefox",
			"chrome":      "google-chrome",
			"edge":        "microsoft-edge-stable",
			"calculadora": "gnome-calculator",
			"calculator":  "gnome-calculator",
			"editor":      "gnome-text-editor",
			"terminal":    "gnome-terminal",
			"archivos":    "nautilus",
			"files":       "nautilus",
			"documentos":  "libreoffice",
			"writer":      "libreoffice --writer",
			"excel":       "libreoffice --calc",
			"libreoffice": "libreoffice",
		}
	}
}

type entry struct {
	key     string
	command string
	words   *util.Vocabulary
}

// Registry maps spoken application names to launch commands. It is backed by
// a JSON file that is created with OS defaults when missing.
type Registry struct {
	path string
	goos string

	mu      sync.RWMutex
	entries []entry
}

func Load(path string) (*Registry, error) {
	r := &Registry{path: path, goos: runtime.GOOS}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewStatic builds a registry that is not backed by a file.
func NewStatic(apps map[string]string) *Registry {
	r := &Registry{goos: runtime.GOOS}
	r.set(apps)
	return r
}

func (r *Registry) Path() string { return r.path }

// Reload re-reads the registry file. A missing file is created with defaults;
// an unreadable one falls back to defaults without touching it.
func (r *Registry) Reload() error {
	apps, err := r.read()
	if err != nil {
		return err
	}
	r.set(apps)
	log.Debug("Application registry loaded", "path", r.path, "apps", len(apps))
	return nil
}

func (r *Registry) read() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		defaults := Defaults(r.goos)
		if err := r.write(defaults); err != nil {
			log.Warn("Failed to write default application registry", "path", r.path, "err", err)
		} else {
			log.Info("Created application registry", "path", r.path)
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var apps map[string]string
	if err := json.Unmarshal(data, &apps); err != nil {
		log.Warn("Invalid application registry, using defaults", "path", r.path, "err", err)
		return Defaults(r.goos), nil
	}
	return apps, nil
}

func (r *Registry) write(apps map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(apps, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o644)
}

func (r *Registry) set(apps map[string]string) {
	entries := make([]entry, 0, len(apps))
	for k, cmd := range apps {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || strings.TrimSpace(cmd) == "" {
			continue
		}
		entries = append(entries, entry{key: k, command: cmd, words: util.NewVocabulary(k)})
	}
	// Longer names first so "libreoffice writer" prefers the more specific key.
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].key) != len(entries[j].key) {
			return len(entries[i].key) > len(entries[j].key)
		}
		return entries[i].key < entries[j].key
	})

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
}

// Names returns the registered application names in lookup order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.key
	}
	return names
}

// Lookup finds the first registered name that occurs as a whole word in
// appName and returns its launch command.
func (r *Registry) Lookup(appName string) (command, key string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if _, hit := e.words.First(appName); hit {
			return e.command, e.key, true
		}
	}
	return "", "", false
}
