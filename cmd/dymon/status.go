package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dymon-dev/dymon/internal/config"
	"github.com/dymon-dev/dymon/internal/identity"
)

func statusCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status <room>",
		Short: "Show whether a live room is currently broadcasting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := identity.NewResolver(cfg.UserAgent, log.Logger)

			ok, status, nickname, userID := resolver.RoomStatus(args[0])
			if !ok {
				return fmt.Errorf("could not determine status of room %s", args[0])
			}

			fmt.Printf("room %s: %s (anchor %s, id %s)\n", args[0], status, nickname, userID)
			return nil
		},
	}
}
