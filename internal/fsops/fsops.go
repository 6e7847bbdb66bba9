package fsops

import (
	"errors"
	"fmt"
	"io/fs"
	log "log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"murmur/internal/fault"
)

// Candidate folders offered as destinations, in priority order.
var candidates = []string{
	"Documentos", "Escritorio", "Descargas", "Imágenes", "Música", "Videos", "Proyectos",
	"Documents", "Desktop", "Downloads", "Pictures", "Music", "Projects",
}

type Result struct {
	Path          string
	Created       bool
	ParentCreated bool
}

type Match struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Parent string `json:"parent"`
}

type Search struct {
	Root    string
	Query   string
	Matches []Match
}

// FS performs folder and file operations anchored under a base directory.
type FS struct {
	base string
}

// New returns an FS rooted at base, or at the user's home directory when base is empty.
func New(base string) (*FS, error) {
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("home dir: %w", err)
		}
		base = home
	}

	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("base dir: %w", err)
	}
	return &FS{base: filepath.Clean(abs)}, nil
}

func (f *FS) Base() string { return f.base }

// Resolve builds the target path for name inside location. Relative locations
// are anchored under the base directory and may not climb out of it; absolute
// locations are used as-is. name must be a single path segment.
func (f *FS) Resolve(location, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	dir, err := f.dir(location)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func (f *FS) dir(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return f.base, nil
	}
	if filepath.IsAbs(location) {
		return filepath.Clean(location), nil
	}

	dir := filepath.Join(f.base, location)
	if !within(f.base, dir) || !within(realPath(f.base), realPath(dir)) {
		return "", fmt.Errorf("%q: %w", location, fault.ErrOutsideBase)
	}
	return dir, nil
}

func within(base, p string) bool {
	rel, err := filepath.Rel(base, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// realPath resolves symlinks in the longest existing prefix of p and keeps
// the missing tail as written.
func realPath(p string) string {
	existing, tail := p, ""
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return p
		}
		tail = filepath.Join(filepath.Base(existing), tail)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return p
	}
	return filepath.Join(resolved, tail)
}

// path anchors a relative path under the base directory.
func (f *FS) path(p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	return f.dir(p)
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%q: %w", name, fault.ErrInvalidName)
	}
	return nil
}

// CreateFolder creates path and any missing parents. An existing directory is
// not an error.
func (f *FS) CreateFolder(path string) (Result, error) {
	full, err := f.path(path)
	if err != nil {
		return Result{}, err
	}

	info, err := os.Stat(full)
	switch {
	case err == nil && info.IsDir():
		return Result{Path: full}, nil
	case err == nil, errors.Is(err, syscall.ENOTDIR):
		return Result{Path: full}, fmt.Errorf("%s: %w", full, fault.ErrFilesystemConflict)
	case !errors.Is(err, fs.ErrNotExist):
		return Result{Path: full}, fault.Execution("stat", err)
	}

	if err := os.MkdirAll(full, 0o755); err != nil {
		if errors.Is(err, syscall.ENOTDIR) {
			return Result{Path: full}, fmt.Errorf("%s: %w", full, fault.ErrFilesystemConflict)
		}
		return Result{Path: full}, fault.Execution("create folder", err)
	}

	log.Debug("Folder created", "path", full)
	return Result{Path: full, Created: true}, nil
}

func (f *FS) CreateFolderAt(name, location string) (Result, error) {
	full, err := f.Resolve(location, name)
	if err != nil {
		return Result{}, err
	}
	return f.CreateFolder(full)
}

// CreateFile creates a new file with content. It never truncates an existing
// file: an occupied path reports fault.ErrAlreadyExists.
func (f *FS) CreateFile(path, content string) (Result, error) {
	full, err := f.path(path)
	if err != nil {
		return Result{}, err
	}
	res := Result{Path: full}

	parent := filepath.Dir(full)
	if _, err := os.Stat(parent); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			if errors.Is(err, syscall.ENOTDIR) {
				return res, fmt.Errorf("%s: %w", parent, fault.ErrFilesystemConflict)
			}
			return res, fault.Execution("create parent", err)
		}
		res.ParentCreated = true
	}

	file, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrExist):
			return res, fmt.Errorf("%s: %w", full, fault.ErrAlreadyExists)
		case errors.Is(err, syscall.ENOTDIR):
			// Some ancestor is a regular file.
			return res, fmt.Errorf("%s: %w", parent, fault.ErrFilesystemConflict)
		}
		return res, fault.Execution("create file", err)
	}
	defer file.Close()

	if _, err := file.WriteString(content); err != nil {
		return res, fault.Execution("write file", err)
	}

	log.Debug("File created", "path", full, "parent_created", res.ParentCreated)
	res.Created = true
	return res, nil
}

func (f *FS) CreateFileAt(name, location, content string) (Result, error) {
	full, err := f.Resolve(location, name)
	if err != nil {
		return Result{}, err
	}
	return f.CreateFile(full, content)
}

// SearchFolder walks root (the base directory when empty) and collects every
// directory whose name contains namePart, ignoring case. Unreadable subtrees
// are skipped.
func (f *FS) SearchFolder(namePart, root string) (Search, error) {
	dir := f.base
	if root != "" {
		var err error
		if dir, err = f.path(root); err != nil {
			return Search{}, err
		}
	}

	s := Search{Root: dir, Query: namePart}
	needle := strings.ToLower(strings.TrimSpace(namePart))

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return s, fmt.Errorf("%s: %w", dir, fault.ErrPathNotFound)
	}

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			log.Debug("Skipping unreadable path", "path", p, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if p == dir || !d.IsDir() {
			return nil
		}
		if strings.Contains(strings.ToLower(d.Name()), needle) {
			s.Matches = append(s.Matches, Match{Path: p, Name: d.Name(), Parent: filepath.Dir(p)})
		}
		return nil
	})
	if err != nil {
		return s, fault.Execution("search", err)
	}

	return s, nil
}

func (f *FS) FolderExists(path string) bool {
	full, err := f.path(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.IsDir()
}

// SuggestedFolders lists the candidate folders that exist under the base
// directory, in priority order.
func (f *FS) SuggestedFolders() []string {
	var out []string
	for _, c := range candidates {
		if f.FolderExists(c) {
			out = append(out, c)
		}
	}
	return out
}

var extPreferences = []struct {
	exts      []string
	preferred []string
}{
	{[]string{".txt", ".doc", ".docx", ".pdf", ".xlsx", ".pptx", ".odt", ".md"},
		[]string{"Documentos", "Documents", "Escritorio", "Desktop"}},
	{[]string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp"},
		[]string{"Imágenes", "Pictures", "Fotos", "Escritorio", "Desktop"}},
	{[]string{".mp4", ".avi", ".mov", ".mkv", ".wmv"},
		[]string{"Videos", "Películas", "Escritorio", "Desktop"}},
	{[]string{".mp3", ".wav", ".flac", ".aac", ".ogg"},
		[]string{"Música", "Music", "Audios", "Escritorio", "Desktop"}},
	{[]string{".py", ".js", ".go", ".html", ".css", ".java", ".cpp", ".c", ".rs"},
		[]string{"Proyectos", "Projects", "Desarrollo", "Documentos", "Documents"}},
}

var defaultPreference = []string{"Documentos", "Documents", "Escritorio", "Desktop", "Descargas", "Downloads"}

const maxSuggestions = 3

// SuggestForFile proposes up to three existing destination folders for a file,
// preferring folders that match its extension.
func (f *FS) SuggestForFile(fileName string) []string {
	ext := strings.ToLower(filepath.Ext(fileName))

	preferred := defaultPreference
	for _, p := range extPreferences {
		if slices.Contains(p.exts, ext) {
			preferred = p.preferred
			break
		}
	}

	existing := f.SuggestedFolders()

	var out []string
	for _, p := range preferred {
		if slices.Contains(existing, p) && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	for _, e := range existing {
		if len(out) >= maxSuggestions {
			break
		}
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
