package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dymon-dev/dymon/internal/config"
	"github.com/dymon-dev/dymon/internal/engine"
	"github.com/dymon-dev/dymon/internal/identity"
	"github.com/dymon-dev/dymon/internal/sign"
)

func watchCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <room>",
		Short: "Stream live room events to the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.SignScript == "" {
				return fmt.Errorf("DYMON_SIGN_SCRIPT is required for watch")
			}
			signer, err := sign.NewScriptSigner(cfg.SignScript)
			if err != nil {
				return err
			}

			resolver := identity.NewResolver(cfg.UserAgent, log.Logger)

			if ok, status, _, _ := resolver.RoomStatus(args[0]); ok && status != "live" {
				log.Warn().Str("status", status).Msg("room is not live, watching anyway")
			}

			eng := engine.New(resolver, signer, newEventLogger(log.Logger), log.Logger)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				eng.Stop()
			}()

			return eng.Start(args[0])
		},
	}
}
