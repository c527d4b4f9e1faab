package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// User is the sender header shared by chat-like messages.
// Fields: 1 id, 3 nick_name, 4 gender.
type User struct {
	ID       uint64
	Nickname string
	Gender   uint32
}

func decodeUser(data []byte) (User, error) {
	var u User
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch {
		case num == 1 && typ == protowire.VarintType:
			u.ID = d.varint()
		case num == 3 && typ == protowire.BytesType:
			u.Nickname = string(d.bytes())
		case num == 4 && typ == protowire.VarintType:
			u.Gender = uint32(d.varint())
		default:
			d.skip(num, typ)
		}
	}
	return u, d.err
}

// Common is the header shared by webcast messages.
// Fields: 1 method, 2 msg_id, 3 room_id.
type Common struct {
	Method string
	MsgID  uint64
	RoomID uint64
}

func decodeCommon(data []byte) (Common, error) {
	var c Common
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch {
		case num == 1 && typ == protowire.BytesType:
			c.Method = string(d.bytes())
		case num == 2 && typ == protowire.VarintType:
			c.MsgID = d.varint()
		case num == 3 && typ == protowire.VarintType:
			c.RoomID = d.varint()
		default:
			d.skip(num, typ)
		}
	}
	return c, d.err
}

// ChatMessage fields: 2 user, 3 content.
type ChatMessage struct {
	User    User
	Content string
}

// DecodeChat decodes a chat payload.
func DecodeChat(data []byte) (ChatMessage, error) {
	var m ChatMessage
	var err error
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch {
		case num == 2 && typ == protowire.BytesType:
			if m.User, err = decodeUser(d.bytes()); err != nil {
				return ChatMessage{}, fmt.Errorf("decode chat user: %w", err)
			}
		case num == 3 && typ == protowire.BytesType:
			m.Content = string(d.bytes())
		default:
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return ChatMessage{}, fmt.Errorf("decode chat: %w", d.err)
	}
	return m, nil
}

// GiftMessage fields: 6 combo_count, 7 user, 15 gift (name at 16).
type GiftMessage struct {
	ComboCount uint64
	User       User
	GiftName   string
}

// DecodeGift decodes a gift payload.
func DecodeGift(data []byte) (GiftMessage, error) {
	var m GiftMessage
	var err error
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch {
		case num == 6 && typ == protowire.VarintType:
			m.ComboCount = d.varint()
		case num == 7 && typ == protowire.BytesType:
			if m.User, err = decodeUser(d.bytes()); err != nil {
				return GiftMessage{}, fmt.Errorf("decode gift user: %w", err)
			}
		case num == 15 && typ == protowire.BytesType:
			if m.GiftName, err = decodeGiftName(d.bytes()); err != nil {
				return GiftMessage{}, fmt.Errorf("decode gift struct: %w", err)
			}
		default:
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return GiftMessage{}, fmt.Errorf("decode gift: %w", d.err)
	}
	return m, nil
}

func decodeGiftName(data []byte) (string, error) {
	var name string
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 16 && typ == protowire.BytesType {
			name = string(d.bytes())
		} else {
			d.skip(num, typ)
		}
	}
	return name, d.err
}

// LikeMessage fields: 2 count, 5 user.
type LikeMessage struct {
	Count uint64
	User  User
}

// DecodeLike decodes a like payload.
func DecodeLike(data []byte) (LikeMessage, error) {
	var m LikeMessage
	var err error
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch {
		case num == 2 && typ == protowire.VarintType:
			m.Count = d.varint()
		case num == 5 && typ == protowire.BytesType:
			if m.User, err = decodeUser(d.bytes()); err != nil {
				return LikeMessage{}, fmt.Errorf("decode like user: %w", err)
			}
		default:
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return LikeMessage{}, fmt.Errorf("decode like: %w", d.err)
	}
	return m, nil
}

// MemberMessage fields: 2 user.
type MemberMessage struct {
	User User
}

// DecodeMember decodes a member-enter payload.
func DecodeMember(data []byte) (MemberMessage, error) {
	var m MemberMessage
	var err error
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 2 && typ == protowire.BytesType {
			if m.User, err = decodeUser(d.bytes()); err != nil {
				return MemberMessage{}, fmt.Errorf("decode member user: %w", err)
			}
		} else {
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return MemberMessage{}, fmt.Errorf("decode member: %w", d.err)
	}
	return m, nil
}

// SocialMessage fields: 2 user.
type SocialMessage struct {
	User User
}

// DecodeSocial decodes a follow payload.
func DecodeSocial(data []byte) (SocialMessage, error) {
	var m SocialMessage
	var err error
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 2 && typ == protowire.BytesType {
			if m.User, err = decodeUser(d.bytes()); err != nil {
				return SocialMessage{}, fmt.Errorf("decode social user: %w", err)
			}
		} else {
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return SocialMessage{}, fmt.Errorf("decode social: %w", d.err)
	}
	return m, nil
}

// RoomUserSeqMessage fields: 3 total, 11 total_pv_for_anchor.
type RoomUserSeqMessage struct {
	Total            int64
	TotalPVForAnchor string
}

// DecodeRoomUserSeq decodes a viewer statistics payload.
func DecodeRoomUserSeq(data []byte) (RoomUserSeqMessage, error) {
	var m RoomUserSeqMessage
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch {
		case num == 3 && typ == protowire.VarintType:
			m.Total = int64(d.varint())
		case num == 11 && typ == protowire.BytesType:
			m.TotalPVForAnchor = string(d.bytes())
		default:
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return RoomUserSeqMessage{}, fmt.Errorf("decode room user seq: %w", d.err)
	}
	return m, nil
}

// FansclubMessage fields: 3 content.
type FansclubMessage struct {
	Content string
}

// DecodeFansclub decodes a fan-club notice payload.
func DecodeFansclub(data []byte) (FansclubMessage, error) {
	var m FansclubMessage
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 3 && typ == protowire.BytesType {
			m.Content = string(d.bytes())
		} else {
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return FansclubMessage{}, fmt.Errorf("decode fansclub: %w", d.err)
	}
	return m, nil
}

// ControlStatusEnded is the control status signaling the broadcast ended.
const ControlStatusEnded = 3

// ControlMessage fields: 2 status.
type ControlMessage struct {
	Status int32
}

// DecodeControl decodes a room control payload.
func DecodeControl(data []byte) (ControlMessage, error) {
	var m ControlMessage
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 2 && typ == protowire.VarintType {
			m.Status = int32(d.varint())
		} else {
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return ControlMessage{}, fmt.Errorf("decode control: %w", d.err)
	}
	return m, nil
}

// EmojiChatMessage fields: 2 user, 3 emoji_id, 5 default_content.
type EmojiChatMessage struct {
	User           User
	EmojiID        int64
	DefaultContent string
}

// DecodeEmojiChat decodes a sticker chat payload.
func DecodeEmojiChat(data []byte) (EmojiChatMessage, error) {
	var m EmojiChatMessage
	var err error
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch {
		case num == 2 && typ == protowire.BytesType:
			if m.User, err = decodeUser(d.bytes()); err != nil {
				return EmojiChatMessage{}, fmt.Errorf("decode emoji user: %w", err)
			}
		case num == 3 && typ == protowire.VarintType:
			m.EmojiID = int64(d.varint())
		case num == 5 && typ == protowire.BytesType:
			m.DefaultContent = string(d.bytes())
		default:
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return EmojiChatMessage{}, fmt.Errorf("decode emoji chat: %w", d.err)
	}
	return m, nil
}

// RoomMessage fields: 1 common.
type RoomMessage struct {
	Common Common
}

// DecodeRoom decodes a room info payload.
func DecodeRoom(data []byte) (RoomMessage, error) {
	var m RoomMessage
	var err error
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 1 && typ == protowire.BytesType {
			if m.Common, err = decodeCommon(d.bytes()); err != nil {
				return RoomMessage{}, fmt.Errorf("decode room common: %w", err)
			}
		} else {
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return RoomMessage{}, fmt.Errorf("decode room: %w", d.err)
	}
	return m, nil
}

// RoomStatsMessage fields: 4 display_long.
type RoomStatsMessage struct {
	DisplayLong string
}

// DecodeRoomStats decodes a room statistics payload.
func DecodeRoomStats(data []byte) (RoomStatsMessage, error) {
	var m RoomStatsMessage
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 4 && typ == protowire.BytesType {
			m.DisplayLong = string(d.bytes())
		} else {
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return RoomStatsMessage{}, fmt.Errorf("decode room stats: %w", d.err)
	}
	return m, nil
}

// RoomRankMessage fields: 2 ranks (repeated; user at 1, score_str at 2).
type RoomRankMessage struct {
	Ranks []RoomRankItem
}

// RoomRankItem is one row of an in-stream rank snapshot.
type RoomRankItem struct {
	User  User
	Score string
}

// DecodeRoomRank decodes a rank snapshot payload. Rank order is the wire
// order.
func DecodeRoomRank(data []byte) (RoomRankMessage, error) {
	var m RoomRankMessage
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 2 && typ == protowire.BytesType {
			item, err := decodeRoomRankItem(d.bytes())
			if err != nil {
				return RoomRankMessage{}, err
			}
			m.Ranks = append(m.Ranks, item)
		} else {
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return RoomRankMessage{}, fmt.Errorf("decode room rank: %w", d.err)
	}
	return m, nil
}

func decodeRoomRankItem(data []byte) (RoomRankItem, error) {
	var item RoomRankItem
	var err error
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch {
		case num == 1 && typ == protowire.BytesType:
			if item.User, err = decodeUser(d.bytes()); err != nil {
				return RoomRankItem{}, fmt.Errorf("decode rank user: %w", err)
			}
		case num == 2 && typ == protowire.BytesType:
			item.Score = string(d.bytes())
		default:
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return RoomRankItem{}, fmt.Errorf("decode rank item: %w", d.err)
	}
	return item, nil
}

// RoomStreamAdaptationMessage fields: 2 adaptation_type.
type RoomStreamAdaptationMessage struct {
	AdaptationType int32
}

// DecodeStreamAdaptation decodes a stream configuration payload.
func DecodeStreamAdaptation(data []byte) (RoomStreamAdaptationMessage, error) {
	var m RoomStreamAdaptationMessage
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 2 && typ == protowire.VarintType {
			m.AdaptationType = int32(d.varint())
		} else {
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return RoomStreamAdaptationMessage{}, fmt.Errorf("decode stream adaptation: %w", d.err)
	}
	return m, nil
}
