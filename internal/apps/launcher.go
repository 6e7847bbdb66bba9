package apps

import (
	"context"
	"fmt"
	log "log/slog"
	"os/exec"
	"runtime"
	"strings"

	"murmur/internal/fault"
)

// Launcher starts registered applications as detached processes.
type Launcher struct {
	registry *Registry
	goos     string
	lookPath func(string) (string, error)
	start    func(*exec.Cmd) error
}

type Option func(*Launcher)

// WithStarter replaces the function that starts the built command.
func WithStarter(start func(*exec.Cmd) error) Option {
	return func(l *Launcher) { l.start = start }
}

func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(l *Launcher) { l.lookPath = lookPath }
}

func WithGOOS(goos string) Option {
	return func(l *Launcher) { l.goos = goos }
}

func NewLauncher(registry *Registry, opts ...Option) *Launcher {
	l := &Launcher{
		registry: registry,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		start:    startDetached,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Open launches the application named in appName. Registered names are tried
// first, then an executable of that name on PATH.
func (l *Launcher) Open(_ context.Context, appName string) (string, error) {
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return "", fmt.Errorf("empty application name: %w", fault.ErrClassificationAmbiguous)
	}

	command, name, ok := l.registry.Lookup(appName)
	if !ok {
		if _, err := l.lookPath(appName); err != nil {
			return "", fmt.Errorf("application %q: %w", appName, fault.ErrPathNotFound)
		}
		command, name = appName, appName
	}

	cmd, err := l.build(command, name)
	if err != nil {
		return "", err
	}

	log.Info("Launching application", "app", name, "cmd", cmd.Args)
	if err := l.start(cmd); err != nil {
		return "", fault.Execution("open "+name, err)
	}

	return fmt.Sprintf("Application '%s' opened", name), nil
}

func (l *Launcher) build(command, name string) (*exec.Cmd, error) {
	switch l.goos {
	case "darwin":
		return exec.Command("open", "-a", command), nil
	case "windows":
		return exec.Command("cmd", "/C", "start", "", command), nil
	}

	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command for %q: %w", name, fault.ErrPathNotFound)
	}
	if _, err := l.lookPath(fields[0]); err != nil {
		return nil, fmt.Errorf("executable %q for %q: %w", fields[0], name, fault.ErrPathNotFound)
	}
	return exec.Command(fields[0], fields[1:]...), nil
}

func startDetached(cmd *exec.Cmd) error {
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
