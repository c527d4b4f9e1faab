// Package identity acquires the platform identity for a live room: the
// session cookie, the numeric room id behind the public room handle, and
// the room's live/ended status.
package identity

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	liveURL = "https://live.douyin.com/"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	// acNonce is the fixed anti-crawl nonce the room page accepts.
	acNonce = "0123407cc00a9e438deb4"

	msTokenLength   = 107
	msTokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789=_"
)

// roomIDPattern matches the numeric room id embedded in the room page HTML.
var roomIDPattern = regexp.MustCompile(`roomId\\":\\"(\d+)`)

// Resolver memoizes one room identity: the ttwid session cookie and the
// numeric room id are fetched once and never re-resolved. Use a new
// Resolver for a new identity.
type Resolver struct {
	baseURL   string
	userAgent string
	http      *http.Client
	rng       *rand.Rand
	log       zerolog.Logger

	mu     sync.Mutex
	ttwid  string
	roomID string
}

// NewResolver creates a resolver. An empty userAgent selects the default
// browser fingerprint.
func NewResolver(userAgent string, logger zerolog.Logger) *Resolver {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Resolver{
		baseURL:   liveURL,
		userAgent: userAgent,
		http:      &http.Client{Timeout: 10 * time.Second},
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		log:       logger.With().Str("component", "identity").Logger(),
	}
}

// UserAgent returns the browser fingerprint this identity presents.
func (r *Resolver) UserAgent() string { return r.userAgent }

// SessionToken returns the ttwid session cookie, fetching it from the
// landing page on first use. On failure it logs and returns ""; callers
// must treat absence as a hard stop, not retry.
func (r *Resolver) SessionToken() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionTokenLocked()
}

func (r *Resolver) sessionTokenLocked() string {
	if r.ttwid != "" {
		return r.ttwid
	}

	req, err := http.NewRequest(http.MethodGet, r.baseURL, nil)
	if err != nil {
		r.log.Error().Err(err).Msg("build landing page request")
		return ""
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.http.Do(req)
	if err != nil {
		r.log.Error().Err(err).Msg("request landing page")
		return ""
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		r.log.Error().Int("status", resp.StatusCode).Msg("landing page request failed")
		return ""
	}

	for _, c := range resp.Cookies() {
		if c.Name == "ttwid" {
			r.ttwid = c.Value
			break
		}
	}
	if r.ttwid == "" {
		r.log.Error().Msg("no ttwid cookie in landing page response")
	}
	return r.ttwid
}

// MsToken generates the per-call msToken cookie value: msTokenLength
// characters drawn from the alphanumeric alphabet plus '=' and '_'. The
// randomness source is injected per resolver, so tests can seed it.
func (r *Resolver) MsToken() string {
	return r.msToken(msTokenLength)
}

func (r *Resolver) msToken(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = msTokenAlphabet[r.rng.Intn(len(msTokenAlphabet))]
	}
	return string(b)
}

// RoomID resolves the numeric room id behind a room handle by scraping the
// room page. The result is cached for the resolver's lifetime. On failure
// it logs and returns "" without retrying.
func (r *Resolver) RoomID(handle string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.roomID != "" {
		return r.roomID
	}

	ttwid := r.sessionTokenLocked()
	if ttwid == "" {
		r.log.Error().Str("handle", handle).Msg("no session token, cannot resolve room id")
		return ""
	}

	req, err := http.NewRequest(http.MethodGet, r.baseURL+handle, nil)
	if err != nil {
		r.log.Error().Err(err).Msg("build room page request")
		return ""
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Cookie", fmt.Sprintf("ttwid=%s&msToken=%s; __ac_nonce=%s",
		ttwid, r.msToken(msTokenLength), acNonce))

	resp, err := r.http.Do(req)
	if err != nil {
		r.log.Error().Err(err).Str("handle", handle).Msg("request room page")
		return ""
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.log.Error().Err(err).Msg("read room page")
		return ""
	}

	m := roomIDPattern.FindSubmatch(body)
	if m == nil {
		r.log.Error().Str("handle", handle).Msg("room id not found in page")
		return ""
	}

	r.roomID = string(m[1])
	return r.roomID
}

type roomStatusResponse struct {
	Data *struct {
		RoomStatus int `json:"room_status"`
		User       struct {
			IDStr    string `json:"id_str"`
			Nickname string `json:"nickname"`
		} `json:"user"`
	} `json:"data"`
}

// RoomStatus fetches the room's live/ended status. It never returns an
// error: every failure path degrades to ok=false with a logged cause and
// placeholder values.
func (r *Resolver) RoomStatus(handle string) (ok bool, status, nickname, userID string) {
	roomID := r.RoomID(handle)
	if roomID == "" {
		return false, "error", "unknown", "unknown"
	}

	url := r.baseURL + "webcast/room/web/enter/?aid=6383" +
		"&app_name=douyin_web&live_id=1&device_platform=web&language=zh-CN&enter_from=web_live" +
		"&cookie_enabled=true&screen_width=1536&screen_height=864&browser_language=zh-CN&browser_platform=Win32" +
		"&browser_name=Edge&browser_version=133.0.0.0" +
		"&web_rid=" + handle +
		"&room_id_str=" + roomID +
		"&enter_source=&is_need_double_stream=false&insert_task_id=&live_reason=" +
		"&msToken=&a_bogus="

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		r.log.Error().Err(err).Msg("build room status request")
		return false, "error", "unknown", "unknown"
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Cookie", "ttwid="+r.SessionToken()+";")

	resp, err := r.http.Do(req)
	if err != nil {
		r.log.Error().Err(err).Msg("request room status")
		return false, "error", "unknown", "unknown"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.Error().Int("status", resp.StatusCode).Msg("room status request failed")
		return false, "error", "unknown", "unknown"
	}

	var parsed roomStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		r.log.Error().Err(err).Msg("decode room status response")
		return false, "error", "unknown", "unknown"
	}
	if parsed.Data == nil {
		r.log.Error().Msg("room status response has no data")
		return false, "unknown", "unknown", "unknown"
	}

	switch parsed.Data.RoomStatus {
	case 0:
		status = "live"
	case 2:
		status = "ended"
	default:
		r.log.Error().Int("room_status", parsed.Data.RoomStatus).Msg("unexpected room status value")
		return false, "unknown", "unknown", "unknown"
	}

	nickname = parsed.Data.User.Nickname
	userID = parsed.Data.User.IDStr
	r.log.Info().
		Str("nickname", nickname).
		Str("user_id", userID).
		Str("status", status).
		Msg("room status")
	return true, status, nickname, userID
}
