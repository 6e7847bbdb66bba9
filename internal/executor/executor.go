// Package executor runs system commands that need no clarification turn.
package executor

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"

	"murmur/internal/command"
	"murmur/internal/fault"
	"murmur/internal/fsops"
	"murmur/internal/sysinfo"
)

type Launcher interface {
	Open(ctx context.Context, appName string) (string, error)
}

type Searcher interface {
	Base() string
	SearchFolder(namePart, root string) (fsops.Search, error)
}

const maxListed = 5

type Executor struct {
	apps  Launcher
	files Searcher
	info  func(baseDir string) sysinfo.Info
}

func New(apps Launcher, files Searcher) *Executor {
	return &Executor{apps: apps, files: files, info: sysinfo.Collect}
}

func (e *Executor) Execute(ctx context.Context, cmd command.Command) (string, error) {
	log.Debug("Executing command", "kind", cmd.Kind, "params", cmd.Params.Tag)

	switch cmd.Kind {
	case command.OpenApp:
		name := value(cmd.Params)
		if name == "" {
			return "", fmt.Errorf("open_app without application: %w", fault.ErrClassificationAmbiguous)
		}
		return e.apps.Open(ctx, name)

	case command.SearchFolder:
		query := value(cmd.Params)
		if query == "" {
			return "", fmt.Errorf("search_folder without name: %w", fault.ErrClassificationAmbiguous)
		}
		s, err := e.files.SearchFolder(query, "")
		if err != nil {
			return "", err
		}
		return searchMessage(s), nil

	case command.SystemInfo:
		return e.info(e.files.Base()).String(), nil
	}

	return "", fmt.Errorf("unsupported command %q: %w", cmd.Kind, fault.ErrClassificationAmbiguous)
}

func searchMessage(s fsops.Search) string {
	if len(s.Matches) == 0 {
		return fmt.Sprintf("No folders matching '%s' in %s", s.Query, s.Root)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d matches for '%s'", len(s.Matches), s.Query)
	for i, m := range s.Matches {
		if i == maxListed {
			fmt.Fprintf(&b, "\n  ... and %d more", len(s.Matches)-maxListed)
			break
		}
		fmt.Fprintf(&b, "\n  %s", m.Path)
	}
	return b.String()
}

func value(p command.Params) string {
	switch p.Tag {
	case command.TagSimple:
		if p.Value != nil {
			return *p.Value
		}
	case command.TagLocated:
		if p.Name != nil {
			return *p.Name
		}
	}
	return ""
}
