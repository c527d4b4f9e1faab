package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dymon-dev/dymon/internal/config"
)

func main() {
	cfg := config.Load()
	initLogger(cfg.LogLevel)

	rootCmd := &cobra.Command{
		Use:   "dymon",
		Short: "Live room monitor for the Douyin web platform",
		Long: `dymon resolves a live room's identity, opens the authenticated push
connection and streams decoded room events (chat, gifts, likes, entries,
follows, statistics) to the terminal.

Environment Variables:
  DYMON_SIGN_SCRIPT  Path to the vendor signing script (required for watch)
  DYMON_USER_AGENT   Override the default browser user agent
  DYMON_LOG_LEVEL    Log level: trace, debug, info, warn, error (default info)

A .env file in the working directory is read if present.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		statusCmd(cfg),
		rankCmd(cfg),
		watchCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func initLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
