// Package engine owns one streaming connection to a live room: it signs
// and dials the push endpoint, decodes inbound frames, answers ack
// requests, keeps the connection alive with heartbeats, and forwards
// decoded sub-messages to the event sink.
package engine

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dymon-dev/dymon/internal/domain"
	"github.com/dymon-dev/dymon/internal/protocol"
	"github.com/dymon-dev/dymon/internal/sign"
)

// ErrNotResolved is returned by Start when the room handle cannot be
// resolved to a numeric room id; no connection is attempted.
var ErrNotResolved = errors.New("room id not resolved")

var errClosed = errors.New("connection closed")

const (
	defaultHeartbeatInterval = 5 * time.Second
	writeDeadline            = 5 * time.Second
	heartbeatJoinTimeout     = time.Second
)

// wsConn is the subset of *websocket.Conn the engine uses. Tests
// substitute a fake.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Engine drives one live room session. Start blocks until the connection
// closes; reconnection is an explicit new Start call, never automatic.
type Engine struct {
	identity domain.Identity
	signer   domain.Signer
	sink     domain.EventSink
	log      zerolog.Logger

	heartbeatInterval time.Duration
	dial              func(urlStr string, header http.Header) (wsConn, error)

	mu     sync.Mutex // guards conn writes and close state
	conn   wsConn
	closed chan struct{}
	hbDone chan struct{}
}

// New creates an engine.
func New(identity domain.Identity, signer domain.Signer, sink domain.EventSink, logger zerolog.Logger) *Engine {
	return &Engine{
		identity: identity,
		signer:   signer,
		sink:     sink,
		log:      logger.With().Str("component", "engine").Logger(),

		heartbeatInterval: defaultHeartbeatInterval,
		dial: func(urlStr string, header http.Header) (wsConn, error) {
			c, _, err := websocket.DefaultDialer.Dial(urlStr, header)
			if err != nil {
				return nil, err
			}
			return c, nil
		},

		closed: make(chan struct{}),
	}
}

// Start resolves the room, opens the signed streaming connection, starts
// the heartbeat task and runs the receive loop. It blocks until the
// connection closes (remote close, Stop, or a broadcast-ended control
// message) and returns nil for a session that opened successfully.
func (e *Engine) Start(handle string) error {
	roomID := e.identity.RoomID(handle)
	if roomID == "" {
		e.log.Error().Str("handle", handle).Msg("cannot connect without room id")
		return ErrNotResolved
	}

	signed, err := sign.SignURL(connectionURL(roomID), e.signer)
	if err != nil {
		// Never connect unsigned.
		e.log.Error().Err(err).Msg("abort connect")
		return err
	}

	header := http.Header{}
	header.Set("Cookie", "ttwid="+e.identity.SessionToken())
	header.Set("User-Agent", e.identity.UserAgent())

	conn, err := e.dial(signed, header)
	if err != nil {
		e.log.Error().Err(err).Msg("websocket dial")
		return err
	}

	e.mu.Lock()
	select {
	case <-e.closed:
		// Previous session was stopped; this is an explicit restart.
		e.closed = make(chan struct{})
	default:
	}
	e.conn = conn
	hbDone := make(chan struct{})
	e.hbDone = hbDone
	e.mu.Unlock()

	e.log.Info().Str("room_id", roomID).Msg("websocket connected")

	go func() {
		defer close(hbDone)
		e.heartbeatLoop()
	}()

	e.readLoop()
	return nil
}

// Stop closes the connection and joins the heartbeat task with a bounded
// wait. Safe to call more than once and from any goroutine, including the
// dispatch path.
func (e *Engine) Stop() {
	e.mu.Lock()
	select {
	case <-e.closed:
		e.mu.Unlock()
		return
	default:
		close(e.closed)
	}
	conn := e.conn
	hbDone := e.hbDone
	e.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if hbDone != nil {
		select {
		case <-hbDone:
		case <-time.After(heartbeatJoinTimeout):
			e.log.Warn().Msg("heartbeat task did not stop in time")
		}
	}
	e.log.Info().Msg("connection closed")
}

// readLoop drives inbound frame processing. Inbound frames are handled
// one at a time; nothing here runs concurrently with itself.
func (e *Engine) readLoop() {
	defer e.Stop()

	for {
		_, data, err := e.conn.ReadMessage()
		if err != nil {
			select {
			case <-e.closed:
			default:
				e.log.Error().Err(err).Msg("read frame")
			}
			return
		}
		e.handleFrame(data)
	}
}

func (e *Engine) handleFrame(data []byte) {
	frame, err := protocol.UnmarshalFrame(data)
	if err != nil {
		e.log.Error().Err(err).Msg("decode push frame")
		return
	}
	if frame.Type != protocol.PayloadData {
		return
	}

	env, err := protocol.DecodeEnvelope(frame.Payload)
	if err != nil {
		e.log.Error().Err(err).Uint64("log_id", frame.LogID).Msg("decode envelope")
		return
	}

	if env.NeedAck {
		// An ack failure is logged but does not close the connection.
		if err := e.write(websocket.BinaryMessage, protocol.AckFrame(frame.LogID, env.InternalExt)); err != nil {
			e.log.Error().Err(err).Uint64("log_id", frame.LogID).Msg("send ack")
		}
	}

	for _, msg := range env.Messages {
		// A failure on one sub-message must not affect the rest.
		if err := e.dispatch(msg); err != nil {
			e.log.Error().Err(err).Str("method", msg.Method).Msg("handle message")
		}
	}
}

// write serializes all outbound sends against each other and against Stop.
func (e *Engine) write(messageType int, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	select {
	case <-e.closed:
		return errClosed
	default:
	}
	return e.conn.WriteMessage(messageType, data)
}

// heartbeatLoop sends a liveness ping every heartbeat interval. It ends
// when the engine stops or a send fails; it never restarts itself.
func (e *Engine) heartbeatLoop() {
	ticker := time.NewTicker(e.heartbeatInterval)
	defer ticker.Stop()

	hb := protocol.HeartbeatFrame()
	for {
		select {
		case <-e.closed:
			return
		case <-ticker.C:
			e.mu.Lock()
			var err error
			select {
			case <-e.closed:
				err = errClosed
			default:
				err = e.conn.WriteControl(websocket.PingMessage, hb, time.Now().Add(writeDeadline))
			}
			e.mu.Unlock()

			if err != nil {
				e.log.Warn().Err(err).Msg("stopping heartbeat")
				return
			}
			e.log.Debug().Msg("heartbeat sent")
		}
	}
}
