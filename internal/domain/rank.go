package domain

// RankEntry is one row of the audience leaderboard, fetched over HTTP
// independently of the streaming connection.
type RankEntry struct {
	ID        string
	Nickname  string
	DisplayID string
}
