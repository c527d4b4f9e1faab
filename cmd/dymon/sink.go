package main

import (
	"github.com/rs/zerolog"

	"github.com/dymon-dev/dymon/internal/domain"
)

// eventLogger renders decoded room events as log lines, one per event.
type eventLogger struct {
	log zerolog.Logger
}

func newEventLogger(logger zerolog.Logger) *eventLogger {
	return &eventLogger{log: logger.With().Str("component", "room").Logger()}
}

func (s *eventLogger) HandleEvent(ev domain.Event) {
	switch ev := ev.(type) {
	case domain.Chat:
		s.log.Info().Uint64("user_id", ev.UserID).Str("user", ev.Nickname).Str("text", ev.Content).Msg("chat")
	case domain.Gift:
		s.log.Info().Str("user", ev.Nickname).Str("gift", ev.GiftName).Uint64("combo", ev.ComboCount).Msg("gift")
	case domain.Like:
		s.log.Info().Str("user", ev.Nickname).Uint64("count", ev.Count).Msg("like")
	case domain.MemberEnter:
		s.log.Info().Uint64("user_id", ev.UserID).Str("user", ev.Nickname).Str("gender", genderLabel(ev.Gender)).Msg("enter")
	case domain.Follow:
		s.log.Info().Uint64("user_id", ev.UserID).Str("user", ev.Nickname).Msg("follow")
	case domain.ViewerStats:
		s.log.Info().Int64("watching", ev.Current).Str("total", ev.TotalPV).Msg("viewer stats")
	case domain.FansClub:
		s.log.Info().Str("content", ev.Content).Msg("fans club")
	case domain.Control:
		s.log.Info().Int32("status", ev.Status).Msg("control")
	case domain.EmojiChat:
		s.log.Info().Int64("emoji_id", ev.EmojiID).Str("user", ev.Nickname).Str("text", ev.DefaultContent).Msg("emoji")
	case domain.RoomInfo:
		s.log.Info().Uint64("room_id", ev.RoomID).Msg("room info")
	case domain.RoomStats:
		s.log.Info().Str("display", ev.Display).Msg("room stats")
	case domain.RankUpdate:
		s.log.Info().Int("entries", len(ev.Ranks)).Msg("rank update")
	case domain.StreamAdaptation:
		s.log.Info().Int32("type", ev.AdaptationType).Msg("stream adaptation")
	default:
		s.log.Info().Str("kind", ev.Kind()).Msg("event")
	}
}

func genderLabel(g uint32) string {
	switch g {
	case 0:
		return "female"
	case 1:
		return "male"
	default:
		return "unknown"
	}
}
