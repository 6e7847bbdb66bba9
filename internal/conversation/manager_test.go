package conversation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murmur/internal/command"
	"murmur/internal/fault"
	"murmur/internal/fsops"
)

type stubExecutor struct {
	calls []command.Command
	reply string
	err   error
}

func (s *stubExecutor) Execute(_ context.Context, cmd command.Command) (string, error) {
	s.calls = append(s.calls, cmd)
	return s.reply, s.err
}

type panicFiles struct{ Files }

func (panicFiles) CreateFolderAt(string, string) (fsops.Result, error) { panic("disk on fire") }

func setup(t *testing.T, dirs ...string) (*Manager, *fsops.FS, *stubExecutor) {
	t.Helper()
	fs, err := fsops.New(t.TempDir())
	require.NoError(t, err)
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(fs.Base(), d), 0o755))
	}
	exec := &stubExecutor{reply: "done"}
	return New(fs, exec, NewMemoryStore()), fs, exec
}

func classify(text string) command.Command {
	return command.New().Classify(text)
}

func TestFolderWithNameAndLocationRunsImmediately(t *testing.T) {
	m, fs, _ := setup(t)
	ctx := context.Background()

	reply, err := m.HandleCommand(ctx, "default", classify("create folder Projects in Desktop"))
	require.NoError(t, err)
	assert.Contains(t, reply, "Folder 'Projects' created")
	assert.DirExists(t, filepath.Join(fs.Base(), "Desktop", "Projects"))
	assert.False(t, m.HasPending(ctx, "default"))
}

func TestFolderLocationOnlyAsksForName(t *testing.T) {
	m, fs, _ := setup(t)
	ctx := context.Background()

	reply, err := m.HandleCommand(ctx, "default", classify("create folder in Desktop"))
	require.NoError(t, err)
	assert.Equal(t, "What name do you want for the folder in 'Desktop'?", reply)
	require.True(t, m.HasPending(ctx, "default"))

	pending, ok, err := m.Pending(ctx, "default")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, AwaitingFolderName, pending.Kind)
	assert.Equal(t, "Desktop", pending.Location)

	reply, err = m.HandleResponse(ctx, "default", "  Notes  ")
	require.NoError(t, err)
	assert.Contains(t, reply, "Folder 'Notes' created")
	assert.DirExists(t, filepath.Join(fs.Base(), "Desktop", "Notes"))
	assert.False(t, m.HasPending(ctx, "default"))
}

func TestFolderNameOnlyAsksForLocation(t *testing.T) {
	m, fs, _ := setup(t, "Documentos", "Escritorio", "Descargas", "Música")
	ctx := context.Background()

	reply, err := m.HandleCommand(ctx, "u1", classify("crea carpeta Proyectos"))
	require.NoError(t, err)
	assert.Equal(t, "Where do you want to create the folder 'Proyectos'? Suggestions: Documentos, Escritorio, Descargas", reply)

	reply, err = m.HandleResponse(ctx, "u1", "Documentos/Trabajo")
	require.NoError(t, err)
	assert.Contains(t, reply, "created")
	assert.DirExists(t, filepath.Join(fs.Base(), "Documentos", "Trabajo", "Proyectos"))
}

func TestSimpleParamThatLooksLikeLocation(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()

	cmd := command.Command{Kind: command.CreateFolder, Params: command.Simple(ptr("Documentos")), Confidence: command.High}
	reply, err := m.HandleCommand(ctx, "default", cmd)
	require.NoError(t, err)
	assert.Equal(t, "What name do you want for the folder in 'Documentos'?", reply)

	pending, _, _ := m.Pending(ctx, "default")
	assert.Equal(t, AwaitingFolderName, pending.Kind)
}

func TestFileNameOnlySuggestsByExtension(t *testing.T) {
	m, fs, _ := setup(t, "Imágenes", "Documentos", "Escritorio")
	ctx := context.Background()

	reply, err := m.HandleCommand(ctx, "default", classify("crea archivo foto.png"))
	require.NoError(t, err)
	assert.Equal(t, "Which folder should I save 'foto.png' in? Suggestions: Imágenes, Escritorio, Documentos", reply)

	pending, _, _ := m.Pending(ctx, "default")
	assert.Equal(t, AwaitingFileDestination, pending.Kind)
	assert.Equal(t, []string{"Imágenes", "Escritorio", "Documentos"}, pending.Suggestions)

	reply, err = m.HandleResponse(ctx, "default", "Imágenes")
	require.NoError(t, err)
	assert.Contains(t, reply, "File 'foto.png' created")
	assert.FileExists(t, filepath.Join(fs.Base(), "Imágenes", "foto.png"))
}

func TestFileNameOnlyWithoutSuggestions(t *testing.T) {
	m, _, _ := setup(t)

	reply, err := m.HandleCommand(context.Background(), "default", classify("create file notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Where do you want to save 'notes.txt'? Tell me a folder or a full path.", reply)
}

func TestFileWithLocationCreatesParent(t *testing.T) {
	m, fs, _ := setup(t)

	reply, err := m.HandleCommand(context.Background(), "default", classify("crea archivo Notas.txt en Documentos"))
	require.NoError(t, err)
	assert.Contains(t, reply, "containing folder was created")
	assert.FileExists(t, filepath.Join(fs.Base(), "Documentos", "Notas.txt"))

	_, err = m.HandleCommand(context.Background(), "default", classify("crea archivo Notas.txt en Documentos"))
	assert.ErrorIs(t, err, fault.ErrAlreadyExists)
}

func TestFailedResponseClearsPending(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()

	_, err := m.HandleCommand(ctx, "default", classify("create folder in Desktop"))
	require.NoError(t, err)

	_, err = m.HandleResponse(ctx, "default", "../../escape")
	assert.ErrorIs(t, err, fault.ErrInvalidName)
	assert.False(t, m.HasPending(ctx, "default"))
}

func TestPanicDuringResponseClearsPending(t *testing.T) {
	fs, err := fsops.New(t.TempDir())
	require.NoError(t, err)
	store := NewMemoryStore()
	m := New(panicFiles{fs}, nil, store)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "default", PendingAction{Kind: AwaitingFolderName, Location: "Desktop"}))

	_, err = m.HandleResponse(ctx, "default", "Notes")
	assert.ErrorIs(t, err, fault.ErrExecution)
	assert.False(t, m.HasPending(ctx, "default"))
}

func TestNewPendingOverwritesOld(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()

	_, err := m.HandleCommand(ctx, "default", classify("create folder in Desktop"))
	require.NoError(t, err)
	_, err = m.HandleCommand(ctx, "default", classify("create file notes.txt"))
	require.NoError(t, err)

	pending, ok, err := m.Pending(ctx, "default")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, AwaitingFileDestination, pending.Kind)
	assert.Equal(t, "notes.txt", pending.Name)
}

func TestUsersAreIndependent(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()

	_, err := m.HandleCommand(ctx, "alice", classify("create folder in Desktop"))
	require.NoError(t, err)

	assert.True(t, m.HasPending(ctx, "alice"))
	assert.False(t, m.HasPending(ctx, "bob"))

	reply, err := m.HandleResponse(ctx, "bob", "Notes")
	require.NoError(t, err)
	assert.Equal(t, "I have no pending actions to process.", reply)
	assert.True(t, m.HasPending(ctx, "alice"))

	require.NoError(t, m.Clear(ctx, "alice"))
	assert.False(t, m.HasPending(ctx, "alice"))
}

func TestOtherKindsGoToExecutor(t *testing.T) {
	m, _, exec := setup(t)

	reply, err := m.HandleCommand(context.Background(), "default", classify("abre navegador"))
	require.NoError(t, err)
	assert.Equal(t, "done", reply)
	require.Len(t, exec.calls, 1)
	assert.Equal(t, command.OpenApp, exec.calls[0].Kind)
}

func TestUnrecognizedIsAmbiguous(t *testing.T) {
	m, _, exec := setup(t)

	_, err := m.HandleCommand(context.Background(), "default", classify("hmm"))
	assert.ErrorIs(t, err, fault.ErrClassificationAmbiguous)
	assert.Empty(t, exec.calls)
}

func ptr(s string) *string { return &s }
