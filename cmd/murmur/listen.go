package main

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"runtime"
	"strings"

	"murmur/internal/audio"
	"murmur/internal/config"
	"murmur/internal/notify"
	"murmur/internal/voice"
	"murmur/pkg/audioconv"
	"murmur/pkg/stt"
)

// micListener records one utterance and transcribes it. Other applications
// are ducked for the duration of the recording.
type micListener struct {
	rec   *audio.Recorder
	stt   *stt.Transcriber
	duck  *audio.Ducker
	beep  string
	ready bool
}

func newMicListener(cfg *config.Config) (*micListener, error) {
	t, err := newTranscriber(cfg)
	if err != nil {
		return nil, err
	}

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		t.Close()
		return nil, fmt.Errorf("init audio: %w", err)
	}

	l := &micListener{rec: rec, stt: t, beep: cfg.BeepFile, ready: true}
	if cfg.Duck {
		l.duck = audio.NewDucker([]string{"murmur", "espeak"}, 0.25, 10)
	}
	return l, nil
}

func newTranscriber(cfg *config.Config) (*stt.Transcriber, error) {
	t, err := stt.NewTranscriber(cfg.WhisperModel, stt.Options{
		Language: cfg.Language,
		Threads:  runtime.NumCPU(),
	})
	if err != nil {
		return nil, fmt.Errorf("speech model: %w", err)
	}
	return t, nil
}

func (l *micListener) Listen(ctx context.Context) (string, error) {
	notify.Cue(ctx, l.beep, "Listening...")

	if l.duck != nil {
		if err := l.duck.Duck(ctx); err != nil {
			log.Debug("Failed to duck other streams", "err", err)
		}
		defer func() {
			if err := l.duck.Restore(context.WithoutCancel(ctx)); err != nil {
				log.Debug("Failed to restore other streams", "err", err)
			}
		}()
	}

	pcm, err := l.rec.Record(ctx)
	if errors.Is(err, audio.ErrNoSpeech) {
		return "", voice.ErrNoSpeech
	}
	if err != nil {
		return "", err
	}

	res, err := l.stt.Transcribe(ctx, pcm)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", voice.ErrNoSpeech
	}
	log.Debug("Transcribed", "text", text, "lang", res.Language)
	return text, nil
}

func (l *micListener) Close() {
	if !l.ready {
		return
	}
	l.ready = false
	l.rec.Close()
	if err := l.stt.Close(); err != nil {
		log.Warn("Failed to close speech model", "err", err)
	}
}

// transcribeFile decodes an audio file and returns its transcript.
func transcribeFile(ctx context.Context, cfg *config.Config, path string) (string, error) {
	pcm, err := audioconv.ConvertFile(path, audioconv.Options{})
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}

	t, err := newTranscriber(cfg)
	if err != nil {
		return "", err
	}
	defer t.Close()

	res, err := t.Transcribe(ctx, pcm)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Text), nil
}
