// Package ranking fetches the audience leaderboard for a room/anchor pair.
// It is independent of the streaming connection.
package ranking

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dymon-dev/dymon/internal/domain"
)

const (
	rankURL = "https://live.douyin.com/webcast/ranklist/audience/"

	rankType = "30"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/138.0.0.0 Safari/537.36 Edg/138.0.0.0"
)

// Client fetches audience rankings. The regular and VIP routes are built
// from the same template; the two-tier fallback is intentional even though
// the URLs currently come out identical.
type Client struct {
	routeURL    string
	vipRouteURL string
	userAgent   string
	http        *http.Client
	log         zerolog.Logger
}

// NewClient creates a ranking client.
func NewClient(logger zerolog.Logger) *Client {
	return &Client{
		routeURL:    rankURL,
		vipRouteURL: rankURL,
		userAgent:   userAgent,
		http:        &http.Client{Timeout: 10 * time.Second},
		log:         logger.With().Str("component", "ranking").Logger(),
	}
}

type rankItem struct {
	Rank int `json:"rank"`
	User *struct {
		ID        json.Number `json:"id"`
		Nickname  string      `json:"nickname"`
		DisplayID string      `json:"display_id"`
	} `json:"user"`
}

// AudienceRank fetches the leaderboard for a room/anchor pair. If the
// regular route's response lacks a data.ranks list, the VIP route is tried
// once before giving up. It never returns an error; failures degrade to an
// empty list with a logged cause.
func (c *Client) AudienceRank(roomID, anchorID string) []domain.RankEntry {
	c.log.Info().Str("room_id", roomID).Str("anchor_id", anchorID).Msg("fetching audience ranking")

	ranks, ok, err := c.fetchRanks(c.requestURL(c.routeURL, roomID, anchorID))
	if err != nil {
		c.log.Error().Err(err).Msg("fetch audience ranking")
		return nil
	}
	if !ok {
		c.log.Info().Msg("regular route returned no rank data, trying vip route")
		ranks, ok, err = c.fetchRanks(c.requestURL(c.vipRouteURL, roomID, anchorID))
		if err != nil {
			c.log.Error().Err(err).Msg("fetch audience ranking via vip route")
			return nil
		}
		if !ok {
			c.log.Error().Msg("no rank data on either route, check room and anchor ids")
			return nil
		}
	}

	entries := make([]domain.RankEntry, 0, len(ranks))
	for _, item := range ranks {
		if item.User == nil || item.User.ID == "" {
			c.log.Warn().Int("rank", item.Rank).Msg("rank entry missing user data")
			continue
		}
		entries = append(entries, domain.RankEntry{
			ID:        item.User.ID.String(),
			Nickname:  item.User.Nickname,
			DisplayID: item.User.DisplayID,
		})
	}

	c.log.Info().Int("count", len(entries)).Msg("audience ranking fetched")
	return entries
}

func (c *Client) requestURL(base, roomID, anchorID string) string {
	return fmt.Sprintf("%s?aid=6383&app_name=douyin_web&webcast_sdk_version=2450&room_id=%s&anchor_id=%s&rank_type=%s&a_bogus=",
		base, roomID, anchorID, rankType)
}

// fetchRanks returns ok=false when the response parses but lacks a
// data.ranks list, which is what triggers the route fallback.
func (c *Client) fetchRanks(url string) ([]rankItem, bool, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build ranking request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("ranking request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read ranking response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("ranking request: http %d", resp.StatusCode)
	}

	var outer struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &outer); err != nil {
		return nil, false, fmt.Errorf("decode ranking response: %w", err)
	}

	raw, present := outer.Data["ranks"]
	if !present {
		return nil, false, nil
	}

	var ranks []rankItem
	if err := json.Unmarshal(raw, &ranks); err != nil {
		return nil, false, fmt.Errorf("decode ranks list: %w", err)
	}
	return ranks, true, nil
}
