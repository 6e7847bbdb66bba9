package conversation

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"murmur/internal/command"
	"murmur/internal/fault"
	"murmur/internal/fsops"
	"murmur/pkg/util"
)

type Files interface {
	CreateFolderAt(name, location string) (fsops.Result, error)
	CreateFileAt(name, location, content string) (fsops.Result, error)
	SuggestedFolders() []string
	SuggestForFile(fileName string) []string
}

// Executor runs commands that need no clarification.
type Executor interface {
	Execute(ctx context.Context, cmd command.Command) (string, error)
}

// Single words that name a place rather than a new folder.
var locationWords = util.NewVocabulary(
	"documentos", "escritorio", "descargas", "imágenes", "música", "videos",
	"documents", "desktop", "downloads", "pictures", "music",
)

const maxPromptSuggestions = 3

// Manager resolves missing folder and file parameters over several turns.
//
// A user has at most one pending action. A new command that needs
// clarification replaces any unresolved one; the replacement is logged.
type Manager struct {
	files Files
	exec  Executor
	store Store
	now   func() time.Time
}

func New(files Files, exec Executor, store Store) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Manager{files: files, exec: exec, store: store, now: time.Now}
}

func (m *Manager) HandleCommand(ctx context.Context, user string, cmd command.Command) (string, error) {
	switch cmd.Kind {
	case command.CreateFolder:
		return m.folderCommand(ctx, user, cmd.Params)
	case command.CreateFile:
		return m.fileCommand(ctx, user, cmd.Params)
	case command.Unrecognized:
		return "", fault.ErrClassificationAmbiguous
	}

	if m.exec == nil {
		return "", fmt.Errorf("%s: %w", cmd.Kind, fault.ErrExecution)
	}
	return m.exec.Execute(ctx, cmd)
}

func (m *Manager) folderCommand(ctx context.Context, user string, p command.Params) (string, error) {
	var name, location string
	switch p.Tag {
	case command.TagLocated:
		name, location = deref(p.Name), deref(p.Location)
	case command.TagSimple:
		v := deref(p.Value)
		if _, ok := locationWords.First(v); ok {
			location = v
		} else {
			name = v
		}
	}

	switch {
	case name != "" && location != "":
		res, err := m.files.CreateFolderAt(name, location)
		if err != nil {
			return "", err
		}
		return folderMessage(name, res), nil

	case name == "":
		if err := m.put(ctx, user, PendingAction{Kind: AwaitingFolderName, Location: location}); err != nil {
			return "", err
		}
		if location == "" {
			return "What name do you want for the new folder?", nil
		}
		return fmt.Sprintf("What name do you want for the folder in '%s'?", location), nil

	default:
		suggestions := top(m.files.SuggestedFolders())
		if err := m.put(ctx, user, PendingAction{Kind: AwaitingFolderLocation, Name: name, Suggestions: suggestions}); err != nil {
			return "", err
		}
		return fmt.Sprintf("Where do you want to create the folder '%s'?%s", name, suggestionText(suggestions)), nil
	}
}

func (m *Manager) fileCommand(ctx context.Context, user string, p command.Params) (string, error) {
	var name, location string
	switch p.Tag {
	case command.TagLocated:
		name, location = deref(p.Name), deref(p.Location)
	case command.TagSimple:
		name = deref(p.Value)
	}

	switch {
	case name != "" && location != "":
		res, err := m.files.CreateFileAt(name, location, "")
		if err != nil {
			return "", err
		}
		return fileMessage(name, res), nil

	case name == "":
		if err := m.put(ctx, user, PendingAction{Kind: AwaitingFileName, Location: location}); err != nil {
			return "", err
		}
		if location == "" {
			return "What should the new file be called?", nil
		}
		return fmt.Sprintf("What should the file in '%s' be called?", location), nil

	default:
		suggestions := m.files.SuggestForFile(name)
		if err := m.put(ctx, user, PendingAction{Kind: AwaitingFileDestination, Name: name, Suggestions: suggestions}); err != nil {
			return "", err
		}
		if len(suggestions) == 0 {
			return fmt.Sprintf("Where do you want to save '%s'? Tell me a folder or a full path.", name), nil
		}
		return fmt.Sprintf("Which folder should I save '%s' in?%s", name, suggestionText(suggestions)), nil
	}
}

// HandleResponse completes the user's pending action with text, used verbatim
// after trimming. The pending action is removed before anything is executed,
// so a failing turn never leaves the user stuck.
func (m *Manager) HandleResponse(ctx context.Context, user, text string) (reply string, err error) {
	action, ok, err := m.store.Get(ctx, user)
	if err != nil {
		return "", fault.Execution("load pending action", err)
	}
	if !ok {
		return "I have no pending actions to process.", nil
	}

	if err := m.store.Delete(ctx, user); err != nil {
		log.Warn("Failed to clear pending action", "user", user, "err", err)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("Pending action panicked", "user", user, "kind", action.Kind, "panic", r)
			reply, err = "", fmt.Errorf("%v: %w", r, fault.ErrExecution)
		}
	}()

	answer := strings.TrimSpace(text)
	log.Debug("Resolving pending action", "user", user, "kind", action.Kind, "answer", answer)

	switch action.Kind {
	case AwaitingFolderName:
		res, err := m.files.CreateFolderAt(answer, action.Location)
		if err != nil {
			return "", err
		}
		return folderMessage(answer, res), nil

	case AwaitingFolderLocation:
		res, err := m.files.CreateFolderAt(action.Name, answer)
		if err != nil {
			return "", err
		}
		return folderMessage(action.Name, res), nil

	case AwaitingFileDestination:
		res, err := m.files.CreateFileAt(action.Name, answer, "")
		if err != nil {
			return "", err
		}
		return fileMessage(action.Name, res), nil

	case AwaitingFileName:
		res, err := m.files.CreateFileAt(answer, action.Location, "")
		if err != nil {
			return "", err
		}
		return fileMessage(answer, res), nil
	}

	return "I couldn't understand your answer for the pending action.", nil
}

func (m *Manager) HasPending(ctx context.Context, user string) bool {
	_, ok, err := m.store.Get(ctx, user)
	if err != nil {
		log.Warn("Failed to read pending action", "user", user, "err", err)
		return false
	}
	return ok
}

func (m *Manager) Pending(ctx context.Context, user string) (PendingAction, bool, error) {
	return m.store.Get(ctx, user)
}

func (m *Manager) Clear(ctx context.Context, user string) error {
	return m.store.Delete(ctx, user)
}

func (m *Manager) put(ctx context.Context, user string, action PendingAction) error {
	if prev, ok, err := m.store.Get(ctx, user); err == nil && ok {
		log.Warn("Replacing unresolved pending action", "user", user, "old", prev.Kind, "new", action.Kind)
	}

	action.CreatedAt = m.now()
	if err := m.store.Put(ctx, user, action); err != nil {
		return fault.Execution("save pending action", err)
	}
	log.Debug("Pending action stored", "user", user, "kind", action.Kind)
	return nil
}

func folderMessage(name string, res fsops.Result) string {
	if !res.Created {
		return fmt.Sprintf("The folder '%s' already exists at %s", name, res.Path)
	}
	return fmt.Sprintf("Folder '%s' created at %s", name, res.Path)
}

func fileMessage(name string, res fsops.Result) string {
	msg := fmt.Sprintf("File '%s' created at %s", name, res.Path)
	if res.ParentCreated {
		msg += " (the containing folder was created)"
	}
	return msg
}

func suggestionText(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return " Suggestions: " + strings.Join(s, ", ")
}

func top(s []string) []string {
	if len(s) > maxPromptSuggestions {
		return s[:maxPromptSuggestions]
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
