package main

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"murmur/internal/ipc"
	"murmur/internal/transport"
	"murmur/internal/tts"
	"murmur/internal/voice"
)

var (
	serveSocket string
	serveNoMic  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a daemon driven by murmur-ctl, NATS, the message bus or HTTP",
	Long: `Run the assistant in the background.

murmur-ctl talks to the daemon over a unix socket: "trigger" records one
utterance from the microphone and answers it aloud, "say" routes text,
"clear" drops the user's pending action. NATS, the websocket bus and the
HTTP API are started when MURMUR_NATS_URL, MURMUR_BUS_URL and
MURMUR_HTTP_ADDR are set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveSocket, "socket", ipc.SocketPath, "Control socket path")
	serveCmd.Flags().BoolVar(&serveNoMic, "no-mic", false, "Do not open the microphone; trigger is refused")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Booting up")

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	a.watchApps(ctx)

	var loop *voice.Loop
	if !serveNoMic {
		mic, err := newMicListener(cfg)
		if err != nil {
			log.Warn("Microphone unavailable, trigger disabled", "err", err)
		} else {
			defer mic.Close()
			loop = voice.New(a.router, mic, tts.New(cfg.Language), nil, os.Stdout, cfg.User)
		}
	}

	srv, err := ipc.StartServer(serveSocket, controlHandler(a, loop))
	if err != nil {
		return fmt.Errorf("ipc server: %w", err)
	}
	defer srv.Close()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.NatsURL != "" {
		nc, err := transport.NewNATS(cfg.NatsURL, cfg.NatsSubject, cfg.User, a.router)
		if err != nil {
			return err
		}
		defer nc.Close()
		if err := nc.Start(); err != nil {
			return err
		}
	}

	if cfg.BusURL != "" {
		bus := transport.NewBus(cfg.BusURL, cfg.BusName, a.router)
		g.Go(func() error { return bus.Run(gctx) })
	}

	if cfg.HTTPAddr != "" {
		api := transport.NewHTTP(a.router, cfg.User)
		g.Go(func() error { return api.Serve(gctx, cfg.HTTPAddr) })
	}

	log.Info("Boot up - successful", "socket", serveSocket)

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("Shutting down")
	return nil
}

func controlHandler(a *app, loop *voice.Loop) ipc.Handler {
	return func(ctx context.Context, msg ipc.ControlMessage) ipc.Reply {
		user := msg.User
		if user == "" {
			user = cfg.User
		}

		switch msg.Cmd {
		case ipc.CmdTrigger:
			if loop == nil {
				return ipc.Reply{ID: msg.ID, Error: "microphone is not available"}
			}
			heard, reply, err := loop.Turn(ctx)
			if errors.Is(err, voice.ErrNoSpeech) {
				return ipc.Reply{ID: msg.ID, Text: "I didn't hear anything."}
			}
			if err != nil {
				log.Error("Trigger failed", "err", err)
				return ipc.Reply{ID: msg.ID, Error: err.Error()}
			}
			log.Info("Answered", "heard", heard, "reply", reply)
			return ipc.Reply{ID: msg.ID, Text: reply}

		case ipc.CmdSay:
			return ipc.Reply{ID: msg.ID, Text: a.router.Route(ctx, msg.Text, user)}

		case ipc.CmdClear:
			if err := a.router.ClearPendingAction(ctx, user); err != nil {
				return ipc.Reply{ID: msg.ID, Error: err.Error()}
			}
			return ipc.Reply{ID: msg.ID, Text: "Pending action cleared."}
		}

		log.Warn("Unknown command", "cmd", msg.Cmd)
		return ipc.Reply{ID: msg.ID, Error: fmt.Sprintf("unknown command %q", msg.Cmd)}
	}
}
