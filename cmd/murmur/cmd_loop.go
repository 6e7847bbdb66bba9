package main

import (
	"context"
	log "log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"murmur/internal/tts"
	"murmur/internal/voice"
)

var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Chat by typing",
	Args:  cobra.NoArgs,
	RunE:  loopRunner(voice.ModeText),
}

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Talk through the microphone; say \"modo texto\" to type instead",
	Args:  cobra.NoArgs,
	RunE:  loopRunner(voice.ModeVoice),
}

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Start with voice and fall back to text when no microphone is usable",
	Long: `Start in voice mode. When the microphone or speech model cannot be used,
or listening fails repeatedly, continue in text mode.`,
	Args: cobra.NoArgs,
	RunE: loopRunner(voice.ModeAuto),
}

func loopRunner(mode voice.Mode) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runLoop(ctx, mode)
	}
}

func runLoop(ctx context.Context, mode voice.Mode) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	a.watchApps(ctx)

	var (
		listener voice.Listener
		speaker  voice.Speaker
	)
	if mode != voice.ModeText {
		mic, err := newMicListener(cfg)
		if err != nil {
			if mode == voice.ModeVoice {
				return err
			}
			log.Warn("Voice unavailable, using text", "err", err)
		} else {
			defer mic.Close()
			listener = mic
			speaker = tts.New(cfg.Language)
		}
	}

	loop := voice.New(a.router, listener, speaker, os.Stdin, os.Stdout, cfg.User)
	return loop.Run(ctx, mode)
}
