package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"murmur/internal/apps"
	"murmur/internal/command"
	"murmur/internal/intent"
)

var classifyJSON bool

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Show how an utterance would be classified without running it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print JSON")
}

type classification struct {
	Intent  intent.Intent    `json:"intent"`
	Reasons []string         `json:"reasons"`
	Command *command.Command `json:"command,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	registry, err := apps.Load(cfg.AppsFile)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	d := intent.New(registry.Names()).Diagnose(text)
	out := classification{Intent: d.Intent, Reasons: d.Reasons}
	if d.Intent == intent.SystemCommand {
		c := command.New().Classify(text)
		out.Command = &c
	}

	w := cmd.OutOrStdout()
	if classifyJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "intent: %s\n", out.Intent)
	for _, r := range out.Reasons {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	if c := out.Command; c != nil {
		fmt.Fprintf(w, "command: %s (%s)\n", c.Kind, c.Confidence)
		switch c.Params.Tag {
		case command.TagSimple:
			fmt.Fprintf(w, "  value: %s\n", show(c.Params.Value))
		case command.TagLocated:
			fmt.Fprintf(w, "  name: %s\n  location: %s\n", show(c.Params.Name), show(c.Params.Location))
		}
	}
	return nil
}

func show(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
