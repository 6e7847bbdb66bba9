package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askAudio   string
	askBackend string
)

var askCmd = &cobra.Command{
	Use:   "ask [text]",
	Short: "Route a single utterance and print the reply",
	Long: `Route one utterance through the assistant and print the reply.

The utterance is taken from the arguments or transcribed from --audio
(wav, mp3, ogg vorbis or ogg opus). With --backend the text is sent
straight to that core, skipping classification.`,
	Example: `  murmur ask "crea carpeta Proyectos en Documentos"
  murmur ask --audio note.ogg
  murmur ask --backend coder "write a haiku about goroutines"`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askAudio, "audio", "a", "", "Transcribe this audio file instead of reading arguments")
	askCmd.Flags().StringVarP(&askBackend, "backend", "b", "", "Send directly to this core")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	text := strings.Join(args, " ")
	if askAudio != "" {
		heard, err := transcribeFile(ctx, cfg, askAudio)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "You said: %s\n", heard)
		text = heard
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("nothing to ask: pass text or --audio")
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var reply string
	if askBackend != "" {
		reply = a.router.SendDirect(ctx, askBackend, text)
	} else {
		reply = a.router.Route(ctx, text, cfg.User)
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}
