package backend

import (
	"errors"
	"fmt"
	"io/fs"
	log "log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
	ProviderGemini  = "gemini"
	ProviderExec    = "exec"
	ProviderService = "service"
)

// Core is one entry of cores.yaml.
type Core struct {
	Provider    string   `yaml:"provider"`
	Model       string   `yaml:"model"`
	System      string   `yaml:"system,omitempty"`
	Host        string   `yaml:"host,omitempty"`
	Command     []string `yaml:"command,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

type coresFile struct {
	Cores map[string]Core `yaml:"cores"`
}

// DefaultCores runs everything on a local Ollama.
func DefaultCores() map[string]Core {
	return map[string]Core{
		"conversational": {Provider: ProviderOllama, Model: "llama3"},
		"coder": {
			Provider: ProviderOllama,
			Model:    "codellama",
			System:   "You are a concise programming assistant. Answer with code when it helps.",
		},
		"translator_llm": {
			Provider: ProviderOllama,
			Model:    "llama3",
			System:   "Translate the user's text exactly, without adding, removing or commenting. Keep technical names untranslated. Output only the translation.",
		},
	}
}

// LoadCores reads cores.yaml, writing the defaults first when it is missing.
func LoadCores(path string) (map[string]Core, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cores := DefaultCores()
		if err := writeCores(path, cores); err != nil {
			log.Warn("Failed to write default cores", "path", path, "err", err)
		} else {
			log.Info("Created cores config", "path", path)
		}
		return cores, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cores: %w", err)
	}

	var f coresFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Cores) == 0 {
		return nil, fmt.Errorf("%s: no cores defined", path)
	}
	return f.Cores, nil
}

func writeCores(path string, cores map[string]Core) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(coresFile{Cores: cores})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
