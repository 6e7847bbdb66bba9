package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os/exec"
	"strings"
)

// Exec runs a local command with the prompt on stdin and returns its stdout.
// The default command is `ollama run <model>`.
type Exec struct {
	argv []string
	core Core
}

func NewExec(core Core) *Exec {
	argv := core.Command
	if len(argv) == 0 {
		argv = []string{"ollama", "run", core.Model}
	}
	return &Exec{argv: argv, core: core}
}

func (b *Exec) Generate(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, b.argv[0], b.argv[1:]...)
	cmd.Stdin = strings.NewReader(withSystem(b.core.System, prompt))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		log.Debug("Core stderr", "cmd", b.argv[0], "stderr", msg)
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%s: %w", strings.Join(b.argv, " "), err)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", errors.New("empty output")
	}
	return out, nil
}
