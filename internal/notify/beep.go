// Package notify gives the user a cue that the assistant is listening.
package notify

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

var speakerOnce struct {
	sync.Once
	rate beep.SampleRate
	err  error
}

// Beep plays the mp3 at path and waits for it to finish.
func Beep(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open cue: %w", err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode cue: %w", err)
	}
	defer streamer.Close()

	speakerOnce.Do(func() {
		speakerOnce.rate = format.SampleRate
		speakerOnce.err = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if speakerOnce.err != nil {
		return fmt.Errorf("init speaker: %w", speakerOnce.err)
	}

	var s beep.Streamer = streamer
	if format.SampleRate != speakerOnce.rate {
		s = beep.Resample(4, format.SampleRate, speakerOnce.rate, streamer)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() { close(done) })))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// Desktop shows a short desktop notification when notify-send is available.
func Desktop(ctx context.Context, msg string) {
	path, err := exec.LookPath("notify-send")
	if err != nil {
		return
	}
	if err := exec.CommandContext(ctx, path, "-t", "2000", "murmur", msg).Run(); err != nil {
		log.Debug("Desktop notification failed", "err", err)
	}
}

// Cue beeps and notifies; failures are logged, never fatal.
func Cue(ctx context.Context, beepPath, msg string) {
	if beepPath != "" {
		if err := Beep(ctx, beepPath); err != nil {
			log.Debug("No listening beep", "err", err)
		}
	}
	Desktop(ctx, msg)
}
