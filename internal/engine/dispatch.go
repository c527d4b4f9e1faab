package engine

import (
	"github.com/dymon-dev/dymon/internal/domain"
	"github.com/dymon-dev/dymon/internal/protocol"
)

// Known webcast method tags.
const (
	methodChat             = "WebcastChatMessage"
	methodGift             = "WebcastGiftMessage"
	methodLike             = "WebcastLikeMessage"
	methodMember           = "WebcastMemberMessage"
	methodSocial           = "WebcastSocialMessage"
	methodRoomUserSeq      = "WebcastRoomUserSeqMessage"
	methodFansclub         = "WebcastFansclubMessage"
	methodControl          = "WebcastControlMessage"
	methodEmojiChat        = "WebcastEmojiChatMessage"
	methodRoomStats        = "WebcastRoomStatsMessage"
	methodRoom             = "WebcastRoomMessage"
	methodRoomRank         = "WebcastRoomRankMessage"
	methodStreamAdaptation = "WebcastRoomStreamAdaptationMessage"
)

// dispatch decodes one sub-message and forwards the projected event to the
// sink. Unknown method tags are ignored. A control message with the
// broadcast-ended status stops the engine after the event is delivered.
func (e *Engine) dispatch(msg protocol.SubMessage) error {
	switch msg.Method {
	case methodChat:
		m, err := protocol.DecodeChat(msg.Payload)
		if err != nil {
			return err
		}
		e.sink.HandleEvent(domain.Chat{UserID: m.User.ID, Nickname: m.User.Nickname, Content: m.Content})

	case methodGift:
		m, err := protocol.DecodeGift(msg.Payload)
		if err != nil {
			return err
		}
		e.sink.HandleEvent(domain.Gift{Nickname: m.User.Nickname, GiftName: m.GiftName, ComboCount: m.ComboCount})

	case methodLike:
		m, err := protocol.DecodeLike(msg.Payload)
		if err != nil {
			return err
		}
		e.sink.HandleEvent(domain.Like{Nickname: m.User.Nickname, Count: m.Count})

	case methodMember:
		m, err := protocol.DecodeMember(msg.Payload)
		if err != nil {
			return err
		}
		e.sink.HandleEvent(domain.MemberEnter{UserID: m.User.ID, Nickname: m.User.Nickname, Gender: m.User.Gender})

	case methodSocial:
		m, err := protocol.DecodeSocial(msg.Payload)
		if err != nil {
			return err
		}
		e.sink.HandleEvent(domain.Follow{UserID: m.User.ID, Nickname: m.User.Nickname})

	case methodRoomUserSeq:
		m, err := protocol.DecodeRoomUserSeq(msg.Payload)
		if err != nil {
			return err
		}
		e.sink.HandleEvent(domain.ViewerStats{Current: m.Total, TotalPV: m.TotalPVForAnchor})

	case methodFansclub:
		m, err := protocol.DecodeFansclub(msg.Payload)
		if err != nil {
			return err
		}
		e.sink.HandleEvent(domain.FansClub{Content: m.Content})

	case methodControl:
		m, err := protocol.DecodeControl(msg.Payload)
		if err != nil {
			return err
		}
		e.sink.HandleEvent(domain.Control{Status: m.Status})
		if m.Status == protocol.ControlStatusEnded {
			e.log.Info().Msg("broadcast ended")
			e.Stop()
		}

	case methodEmojiChat:
		m, err := protocol.DecodeEmojiChat(msg.Payload)
		if err != nil {
			return err
		}
		e.sink.HandleEvent(domain.EmojiChat{
			EmojiID:        m.EmojiID,
			UserID:         m.User.ID,
			Nickname:       m.User.Nickname,
			DefaultContent: m.DefaultContent,
		})

	case methodRoom:
		m, err := protocol.DecodeRoom(msg.Payload)
		if err != nil {
			return err
		}
		e.sink.HandleEvent(domain.RoomInfo{RoomID: m.Common.RoomID})

	case methodRoomStats:
		m, err := protocol.DecodeRoomStats(msg.Payload)
		if err != nil {
			return err
		}
		e.sink.HandleEvent(domain.RoomStats{Display: m.DisplayLong})

	case methodRoomRank:
		m, err := protocol.DecodeRoomRank(msg.Payload)
		if err != nil {
			return err
		}
		ranks := make([]domain.RoomRank, 0, len(m.Ranks))
		for _, item := range m.Ranks {
			ranks = append(ranks, domain.RoomRank{Nickname: item.User.Nickname, Score: item.Score})
		}
		e.sink.HandleEvent(domain.RankUpdate{Ranks: ranks})

	case methodStreamAdaptation:
		m, err := protocol.DecodeStreamAdaptation(msg.Payload)
		if err != nil {
			return err
		}
		e.sink.HandleEvent(domain.StreamAdaptation{AdaptationType: m.AdaptationType})

	default:
		// The platform emits many methods this client does not model.
	}
	return nil
}
