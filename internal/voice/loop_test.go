package voice

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRouter struct{ got []string }

func (r *echoRouter) Route(_ context.Context, text, user string) string {
	r.got = append(r.got, user+":"+text)
	return "echo " + text
}

type result struct {
	text string
	err  error
}

type scriptedListener struct {
	script []result
	calls  int
}

func (s *scriptedListener) Listen(context.Context) (string, error) {
	s.calls++
	if len(s.script) == 0 {
		return "salir", nil
	}
	r := s.script[0]
	s.script = s.script[1:]
	return r.text, r.err
}

type recordingSpeaker struct{ said []string }

func (s *recordingSpeaker) Speak(_ context.Context, text string) error {
	s.said = append(s.said, text)
	return nil
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Voice ")
	require.NoError(t, err)
	assert.Equal(t, ModeVoice, m)

	_, err = ParseMode("telepathy")
	assert.Error(t, err)
}

func TestTextMode(t *testing.T) {
	r := &echoRouter{}
	var out bytes.Buffer
	l := New(r, nil, nil, strings.NewReader("hola\n\n  abre navegador  \nexit\nnever read\n"), &out, "ana")

	require.NoError(t, l.Run(context.Background(), ModeText))
	assert.Equal(t, []string{"ana:hola", "ana:abre navegador"}, r.got)
	assert.Contains(t, out.String(), "murmur: echo abre navegador")
	assert.Contains(t, out.String(), "murmur: Goodbye!")
}

func TestTextModeEOF(t *testing.T) {
	r := &echoRouter{}
	l := New(r, nil, nil, strings.NewReader("hola"), &bytes.Buffer{}, "default")

	require.NoError(t, l.Run(context.Background(), ModeText))
	assert.Equal(t, []string{"default:hola"}, r.got)
}

func TestVoiceModeRequiresListener(t *testing.T) {
	l := New(&echoRouter{}, nil, nil, strings.NewReader(""), &bytes.Buffer{}, "default")
	assert.Error(t, l.Run(context.Background(), ModeVoice))
}

func TestVoiceModeSpeaksAndExits(t *testing.T) {
	r := &echoRouter{}
	sp := &recordingSpeaker{}
	ls := &scriptedListener{script: []result{
		{err: ErrNoSpeech},
		{text: "  "},
		{text: "crea carpeta Fotos"},
		{text: "bueno, adiós"},
	}}
	var out bytes.Buffer
	l := New(r, ls, sp, strings.NewReader(""), &out, "default")

	require.NoError(t, l.Run(context.Background(), ModeVoice))
	assert.Equal(t, []string{"default:crea carpeta Fotos"}, r.got)
	assert.Equal(t, []string{"echo crea carpeta Fotos"}, sp.said)
	assert.Contains(t, out.String(), "You said: crea carpeta Fotos")
}

func TestSwitchBetweenModes(t *testing.T) {
	r := &echoRouter{}
	ls := &scriptedListener{script: []result{{text: "pasa a modo texto"}}}
	l := New(r, ls, nil, strings.NewReader("qué tal\nmodo voz\n"), &bytes.Buffer{}, "default")

	require.NoError(t, l.Run(context.Background(), ModeVoice))
	assert.Equal(t, []string{"default:qué tal"}, r.got)
	// voice, text, then voice again until the default "salir".
	assert.Equal(t, 2, ls.calls)
}

func TestAutoFallsBackToText(t *testing.T) {
	r := &echoRouter{}
	ls := &scriptedListener{script: []result{{err: errors.New("no input device")}}}
	var out bytes.Buffer
	l := New(r, ls, nil, strings.NewReader("hola\nsalir\n"), &out, "default")

	require.NoError(t, l.Run(context.Background(), ModeAuto))
	assert.Equal(t, 1, ls.calls)
	assert.Equal(t, []string{"default:hola"}, r.got)
	assert.Contains(t, out.String(), "switching to text mode")
}

func TestAutoWithoutListener(t *testing.T) {
	r := &echoRouter{}
	l := New(r, nil, nil, strings.NewReader("voice\nhola\n"), &bytes.Buffer{}, "default")

	require.NoError(t, l.Run(context.Background(), ModeAuto))
	assert.Equal(t, []string{"default:hola"}, r.got)
}

func TestVoiceGivesUpAfterRepeatedFailures(t *testing.T) {
	boom := errors.New("device busy")
	ls := &scriptedListener{script: []result{{text: "hola"}, {err: boom}, {err: boom}, {err: boom}}}
	l := New(&echoRouter{}, ls, nil, strings.NewReader(""), &bytes.Buffer{}, "default")

	require.NoError(t, l.Run(context.Background(), ModeAuto))
	assert.Equal(t, 4, ls.calls)
}

func TestTurn(t *testing.T) {
	r := &echoRouter{}
	sp := &recordingSpeaker{}
	l := New(r, &scriptedListener{script: []result{{text: "hola"}}}, sp, nil, &bytes.Buffer{}, "default")

	heard, reply, err := l.Turn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hola", heard)
	assert.Equal(t, "echo hola", reply)
	assert.Equal(t, []string{"echo hola"}, sp.said)

	_, _, err = New(r, nil, nil, nil, &bytes.Buffer{}, "default").Turn(context.Background())
	assert.Error(t, err)
}
