package notify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeepMissingFile(t *testing.T) {
	err := Beep(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"))
	assert.ErrorContains(t, err, "open cue")
}

func TestBeepNotMP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cue.mp3")
	require.NoError(t, os.WriteFile(path, []byte("definitely not audio"), 0o644))

	err := Beep(context.Background(), path)
	assert.ErrorContains(t, err, "decode cue")
}

func TestCueNeverFails(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	Cue(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"), "Listening...")
}
