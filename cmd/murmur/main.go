package main

import (
	log "log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"murmur/internal/config"
	"murmur/internal/voice"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

var (
	envFile    string
	logLevel   string
	baseDir    string
	user       string
	socksProxy string
	modeFlag   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "murmur",
	Short:         "Voice and text assistant that runs system commands and talks to local or remote models",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetDefault(log.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level: logLevelMap[logLevel],
		})))

		if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env") {
			log.Warn("Failed to load env file", "path", envFile, "err", err)
		}

		cfg = config.Load()
		if cmd.Flags().Changed("base-dir") {
			cfg.BaseDir = baseDir
		}
		if cmd.Flags().Changed("user") {
			cfg.User = user
		}
		if cmd.Flags().Changed("proxy") {
			cfg.SocksProxy = socksProxy
		}
		return nil
	},
	// Without a subcommand, run the loop in the configured mode.
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("mode") {
			cfg.Mode = modeFlag
		}
		mode, err := voice.ParseMode(cfg.Mode)
		if err != nil {
			return err
		}
		return loopRunner(mode)(cmd, args)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&envFile, "env", "e", ".env", "Env file path")
	pf.StringVarP(&logLevel, "log", "l", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&baseDir, "base-dir", "", "Directory folders and files are created under (default: home)")
	pf.StringVarP(&user, "user", "u", "default", "User id for conversation state")
	pf.StringVarP(&socksProxy, "proxy", "p", "", "SOCKS5 proxy for remote backends")

	rootCmd.Flags().StringVarP(&modeFlag, "mode", "m", "auto", "Input mode (voice, text, auto)")

	rootCmd.AddCommand(textCmd, voiceCmd, autoCmd, askCmd, classifyCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("murmur failed", "err", err)
		os.Exit(1)
	}
}
