package apps

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murmur/internal/fault"
)

type recorder struct {
	args [][]string
	err  error
}

func (r *recorder) start(cmd *exec.Cmd) error {
	r.args = append(r.args, cmd.Args)
	return r.err
}

func onPath(names ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range names {
			if n == name {
				return "/usr/bin/" + n, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestOpenRegistered(t *testing.T) {
	rec := &recorder{}
	l := NewLauncher(
		NewStatic(map[string]string{"writer": "libreoffice --writer"}),
		WithGOOS("linux"), WithStarter(rec.start), WithLookPath(onPath("libreoffice")),
	)

	reply, err := l.Open(context.Background(), "Writer")
	require.NoError(t, err)
	assert.Equal(t, "Application 'writer' opened", reply)
	assert.Equal(t, [][]string{{"libreoffice", "--writer"}}, rec.args)
}

func TestOpenFromPath(t *testing.T) {
	rec := &recorder{}
	l := NewLauncher(NewStatic(nil), WithGOOS("linux"), WithStarter(rec.start), WithLookPath(onPath("htop")))

	_, err := l.Open(context.Background(), "htop")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"htop"}}, rec.args)
}

func TestOpenPlatforms(t *testing.T) {
	apps := NewStatic(map[string]string{"browser": "Safari"})

	rec := &recorder{}
	_, err := NewLauncher(apps, WithGOOS("darwin"), WithStarter(rec.start)).Open(context.Background(), "browser")
	require.NoError(t, err)
	assert.Equal(t, []string{"open", "-a", "Safari"}, rec.args[0])

	rec = &recorder{}
	_, err = NewLauncher(apps, WithGOOS("windows"), WithStarter(rec.start)).Open(context.Background(), "browser")
	require.NoError(t, err)
	assert.Equal(t, []string{"cmd", "/C", "start", "", "Safari"}, rec.args[0])
}

func TestOpenFailures(t *testing.T) {
	rec := &recorder{}
	l := NewLauncher(
		NewStatic(map[string]string{"navegador": "microsoft-edge-stable"}),
		WithGOOS("linux"), WithStarter(rec.start), WithLookPath(onPath()),
	)

	_, err := l.Open(context.Background(), "navegador")
	assert.ErrorIs(t, err, fault.ErrPathNotFound)

	_, err = l.Open(context.Background(), "unknown-thing")
	assert.ErrorIs(t, err, fault.ErrPathNotFound)

	_, err = l.Open(context.Background(), "  ")
	assert.ErrorIs(t, err, fault.ErrClassificationAmbiguous)
	assert.Empty(t, rec.args)

	rec.err = errors.New("fork failed")
	l = NewLauncher(NewStatic(map[string]string{"x": "x"}), WithGOOS("linux"), WithStarter(rec.start), WithLookPath(onPath("x")))
	_, err = l.Open(context.Background(), "x")
	assert.ErrorIs(t, err, fault.ErrExecution)
}
