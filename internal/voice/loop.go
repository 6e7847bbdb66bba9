// Package voice runs the interactive session: listen or read, route, answer.
package voice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"slices"
	"strings"

	"murmur/pkg/util"
)

type Mode string

const (
	ModeVoice Mode = "voice"
	ModeText  Mode = "text"
	ModeAuto  Mode = "auto"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeVoice, ModeText, ModeAuto:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (voice, text, auto)", s)
}

// ErrNoSpeech is returned by listeners when nothing was said.
var ErrNoSpeech = errors.New("no speech")

type Listener interface {
	Listen(ctx context.Context) (string, error)
}

type Speaker interface {
	Speak(ctx context.Context, text string) error
}

type Router interface {
	Route(ctx context.Context, text, user string) string
}

var (
	// Spoken commands are matched as whole words anywhere in the utterance.
	voiceExit   = util.NewVocabulary("salir", "terminar", "adiós", "exit", "quit", "goodbye")
	voiceToText = util.NewVocabulary("modo texto", "teclado", "text mode", "keyboard")

	// Typed commands must be the whole line.
	textExit    = []string{"salir", "exit", "quit", "adiós"}
	textToVoice = []string{"modo voz", "voz", "audio", "voice mode", "voice"}
)

const maxListenFailures = 3

type Loop struct {
	router   Router
	listener Listener
	speaker  Speaker
	in       *bufio.Scanner
	out      io.Writer
	user     string
}

// New builds a loop. listener and speaker may be nil when no audio stack is
// available; voice mode is then refused.
func New(router Router, listener Listener, speaker Speaker, in io.Reader, out io.Writer, user string) *Loop {
	return &Loop{
		router:   router,
		listener: listener,
		speaker:  speaker,
		in:       bufio.NewScanner(in),
		out:      out,
		user:     user,
	}
}

// Run alternates between voice and text input until the user says goodbye,
// input ends or ctx is done.
func (l *Loop) Run(ctx context.Context, mode Mode) error {
	auto := mode == ModeAuto
	if mode == ModeAuto || mode == ModeVoice {
		if l.listener == nil {
			if !auto {
				return errors.New("voice mode needs a microphone and a speech model")
			}
			l.say("Voice is not available, switching to text mode.")
			mode = ModeText
		} else {
			mode = ModeVoice
		}
	}

	for {
		var next Mode
		var err error
		switch mode {
		case ModeVoice:
			next, err = l.voice(ctx, auto)
		default:
			next, err = l.text(ctx)
		}
		if err != nil || next == "" {
			return err
		}
		mode, auto = next, false
	}
}

func (l *Loop) voice(ctx context.Context, auto bool) (Mode, error) {
	l.say("Voice mode. Say 'text mode' to type, 'exit' to quit.")

	failures := 0
	heardOnce := false
	for {
		text, err := l.listener.Listen(ctx)
		if ctx.Err() != nil {
			return "", nil
		}
		if errors.Is(err, ErrNoSpeech) {
			continue
		}
		if err != nil {
			failures++
			log.Warn("Listening failed", "err", err, "failures", failures)
			if (auto && !heardOnce) || failures >= maxListenFailures {
				l.say("Voice is not available, switching to text mode.")
				return ModeText, nil
			}
			continue
		}
		failures, heardOnce = 0, true

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		fmt.Fprintf(l.out, "You said: %s\n", text)

		if _, ok := voiceExit.First(text); ok {
			l.say("Goodbye!")
			return "", nil
		}
		if _, ok := voiceToText.First(text); ok {
			return ModeText, nil
		}

		l.answer(ctx, l.router.Route(ctx, text, l.user))
	}
}

func (l *Loop) text(ctx context.Context) (Mode, error) {
	l.say("Text mode. Type 'voice mode' to talk, 'exit' to quit.")

	for {
		fmt.Fprint(l.out, "\nYou: ")
		if !l.in.Scan() {
			return "", l.in.Err()
		}
		if ctx.Err() != nil {
			return "", nil
		}

		text := strings.TrimSpace(l.in.Text())
		if text == "" {
			continue
		}

		lower := strings.ToLower(text)
		if slices.Contains(textExit, lower) {
			l.say("Goodbye!")
			return "", nil
		}
		if slices.Contains(textToVoice, lower) {
			if l.listener == nil {
				l.say("Voice is not available.")
				continue
			}
			return ModeVoice, nil
		}

		l.say(l.router.Route(ctx, text, l.user))
	}
}

// Turn runs a single voice exchange and returns what was heard and answered.
func (l *Loop) Turn(ctx context.Context) (heard, reply string, err error) {
	if l.listener == nil {
		return "", "", errors.New("no listener configured")
	}
	heard, err = l.listener.Listen(ctx)
	if err != nil {
		return "", "", err
	}
	reply = l.router.Route(ctx, heard, l.user)
	l.answer(ctx, reply)
	return heard, reply, nil
}

func (l *Loop) answer(ctx context.Context, reply string) {
	l.say(reply)
	if l.speaker == nil || reply == "" {
		return
	}
	if err := l.speaker.Speak(ctx, reply); err != nil {
		log.Warn("Failed to voice out", "err", err)
	}
}

func (l *Loop) say(text string) {
	fmt.Fprintf(l.out, "murmur: %s\n", text)
}
