package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dymon-dev/dymon/internal/config"
	"github.com/dymon-dev/dymon/internal/identity"
	"github.com/dymon-dev/dymon/internal/ranking"
)

func rankCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rank <room> <anchor>",
		Short: "Fetch the audience leaderboard for a room and anchor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := identity.NewResolver(cfg.UserAgent, log.Logger)

			roomID := resolver.RoomID(args[0])
			if roomID == "" {
				return fmt.Errorf("could not resolve room %s", args[0])
			}

			entries := ranking.NewClient(log.Logger).AudienceRank(roomID, args[1])
			if len(entries) == 0 {
				return fmt.Errorf("no audience data for room %s", args[0])
			}

			for i, e := range entries {
				fmt.Printf("%3d. %s (%s) id=%s\n", i+1, e.Nickname, e.DisplayID, e.ID)
			}
			return nil
		},
	}
}
