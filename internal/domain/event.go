package domain

// Event is one decoded live-room occurrence. Kind identifies the variant
// for sinks that render or route events generically.
type Event interface {
	Kind() string
}

// Chat is a chat line posted in the room.
type Chat struct {
	UserID   uint64
	Nickname string
	Content  string
}

func (Chat) Kind() string { return "chat" }

// Gift is a gift sent to the anchor.
type Gift struct {
	Nickname   string
	GiftName   string
	ComboCount uint64
}

func (Gift) Kind() string { return "gift" }

// Like is a batch of likes from one viewer.
type Like struct {
	Nickname string
	Count    uint64
}

func (Like) Kind() string { return "like" }

// MemberEnter is a viewer entering the room. Gender is the platform's
// raw flag (0 female, 1 male).
type MemberEnter struct {
	UserID   uint64
	Nickname string
	Gender   uint32
}

func (MemberEnter) Kind() string { return "member_enter" }

// Follow is a viewer following the anchor.
type Follow struct {
	UserID   uint64
	Nickname string
}

func (Follow) Kind() string { return "follow" }

// ViewerStats carries the room's viewer counters. TotalPV is the
// cumulative viewer figure, reported by the platform as a display string.
type ViewerStats struct {
	Current int64
	TotalPV string
}

func (ViewerStats) Kind() string { return "viewer_stats" }

// FansClub is a fan-club notice.
type FansClub struct {
	Content string
}

func (FansClub) Kind() string { return "fans_club" }

// Control is a room control signal. Status 3 means the broadcast ended.
type Control struct {
	Status int32
}

func (Control) Kind() string { return "control" }

// EmojiChat is a sticker posted in chat.
type EmojiChat struct {
	EmojiID        int64
	UserID         uint64
	Nickname       string
	DefaultContent string
}

func (EmojiChat) Kind() string { return "emoji_chat" }

// RoomInfo identifies the room an envelope belongs to.
type RoomInfo struct {
	RoomID uint64
}

func (RoomInfo) Kind() string { return "room_info" }

// RoomStats is the room's statistics display string.
type RoomStats struct {
	Display string
}

func (RoomStats) Kind() string { return "room_stats" }

// RankUpdate is an in-stream snapshot of the room's contributor ranking.
type RankUpdate struct {
	Ranks []RoomRank
}

func (RankUpdate) Kind() string { return "rank_update" }

// RoomRank is one row of an in-stream rank snapshot.
type RoomRank struct {
	Nickname string
	Score    string
}

// StreamAdaptation is the room's stream configuration signal.
type StreamAdaptation struct {
	AdaptationType int32
}

func (StreamAdaptation) Kind() string { return "stream_adaptation" }
