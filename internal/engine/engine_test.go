package engine

import (
	"bytes"
	"compress/gzip"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dymon-dev/dymon/internal/domain"
	"github.com/dymon-dev/dymon/internal/protocol"
	"github.com/dymon-dev/dymon/internal/sign"
)

// fakeConn is an in-memory wsConn. Inbound frames are pushed on in;
// Close unblocks any pending read.
type fakeConn struct {
	in   chan []byte
	done chan struct{}

	mu        sync.Mutex
	binary    [][]byte
	pings     [][]byte
	closeOnce sync.Once
}

func newFakeConn(frames ...[]byte) *fakeConn {
	c := &fakeConn{
		in:   make(chan []byte, len(frames)+1),
		done: make(chan struct{}),
	}
	for _, f := range frames {
		c.in <- f
	}
	return c
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-c.in:
		return websocket.BinaryMessage, data, nil
	case <-c.done:
		return 0, nil, errors.New("use of closed connection")
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if messageType == websocket.BinaryMessage {
		c.binary = append(c.binary, append([]byte(nil), data...))
	}
	return nil
}

func (c *fakeConn) WriteControl(messageType int, data []byte, _ time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if messageType == websocket.PingMessage {
		c.pings = append(c.pings, append([]byte(nil), data...))
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *fakeConn) binaryWrites() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.binary...)
}

func (c *fakeConn) pingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pings)
}

// recordingSink collects events in delivery order.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) HandleEvent(ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) all() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Event(nil), s.events...)
}

// mockIdentity is a pre-resolved identity.
type mockIdentity struct {
	roomID string
	ttwid  string
}

func (m *mockIdentity) SessionToken() string        { return m.ttwid }
func (m *mockIdentity) RoomID(handle string) string { return m.roomID }
func (m *mockIdentity) UserAgent() string           { return "test-agent" }

func okSigner() domain.Signer {
	return sign.SignerFunc(func(string) (string, error) { return "SIG", nil })
}

func testEngine(conn *fakeConn, sink domain.EventSink) *Engine {
	e := New(&mockIdentity{roomID: "42", ttwid: "tok"}, okSigner(), sink, zerolog.Nop())
	e.conn = conn
	return e
}

func encodeChat(nickname, content string) []byte {
	var user []byte
	user = protowire.AppendTag(user, 1, protowire.VarintType)
	user = protowire.AppendVarint(user, 9)
	user = protowire.AppendTag(user, 3, protowire.BytesType)
	user = protowire.AppendString(user, nickname)

	var b []byte
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, user)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendString(b, content)
	return b
}

func encodeControl(status uint64) []byte {
	var b []byte
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, status)
	return b
}

// gzipEnvelope encodes an envelope the way the server does: protobuf
// (1 messages, 5 internal_ext, 9 need_ack; sub-message 1 method,
// 2 payload) wrapped in gzip.
func gzipEnvelope(t *testing.T, env protocol.Envelope) []byte {
	t.Helper()
	var raw []byte
	for _, m := range env.Messages {
		var msg []byte
		msg = protowire.AppendTag(msg, 1, protowire.BytesType)
		msg = protowire.AppendString(msg, m.Method)
		msg = protowire.AppendTag(msg, 2, protowire.BytesType)
		msg = protowire.AppendBytes(msg, m.Payload)
		raw = protowire.AppendTag(raw, 1, protowire.BytesType)
		raw = protowire.AppendBytes(raw, msg)
	}
	if env.InternalExt != "" {
		raw = protowire.AppendTag(raw, 5, protowire.BytesType)
		raw = protowire.AppendString(raw, env.InternalExt)
	}
	if env.NeedAck {
		raw = protowire.AppendTag(raw, 9, protowire.VarintType)
		raw = protowire.AppendVarint(raw, 1)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func dataFrame(t *testing.T, logID uint64, env protocol.Envelope) []byte {
	t.Helper()
	return protocol.MarshalFrame(protocol.Frame{
		LogID:   logID,
		Type:    protocol.PayloadData,
		Payload: gzipEnvelope(t, env),
	})
}

func TestHandleFrame_AckEmitted(t *testing.T) {
	conn := newFakeConn()
	sink := &recordingSink{}
	e := testEngine(conn, sink)

	e.handleFrame(dataFrame(t, 555, protocol.Envelope{
		NeedAck:     true,
		InternalExt: "ext-1",
		Messages:    []protocol.SubMessage{{Method: "WebcastChatMessage", Payload: encodeChat("a", "hi")}},
	}))

	writes := conn.binaryWrites()
	if len(writes) != 1 {
		t.Fatalf("got %d outbound frames, want exactly 1 ack", len(writes))
	}
	ack, err := protocol.UnmarshalFrame(writes[0])
	if err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack.LogID != 555 || ack.Type != protocol.PayloadAck || string(ack.Payload) != "ext-1" {
		t.Errorf("ack = %+v", ack)
	}
}

func TestHandleFrame_NoAckWhenNotRequested(t *testing.T) {
	conn := newFakeConn()
	e := testEngine(conn, &recordingSink{})

	e.handleFrame(dataFrame(t, 556, protocol.Envelope{
		Messages: []protocol.SubMessage{{Method: "WebcastChatMessage", Payload: encodeChat("a", "hi")}},
	}))

	if got := len(conn.binaryWrites()); got != 0 {
		t.Errorf("got %d outbound frames, want 0", got)
	}
}

func TestHandleFrame_DispatchOrderPreserved(t *testing.T) {
	sink := &recordingSink{}
	e := testEngine(newFakeConn(), sink)

	e.handleFrame(dataFrame(t, 1, protocol.Envelope{
		Messages: []protocol.SubMessage{
			{Method: "WebcastChatMessage", Payload: encodeChat("a", "first")},
			{Method: "WebcastChatMessage", Payload: encodeChat("b", "second")},
			{Method: "WebcastChatMessage", Payload: encodeChat("c", "third")},
		},
	}))

	events := sink.all()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	want := []string{"first", "second", "third"}
	for i, ev := range events {
		chat, ok := ev.(domain.Chat)
		if !ok || chat.Content != want[i] {
			t.Errorf("event %d = %#v, want chat %q", i, ev, want[i])
		}
	}
}

func TestHandleFrame_UnknownMethodIgnored(t *testing.T) {
	sink := &recordingSink{}
	e := testEngine(newFakeConn(), sink)

	e.handleFrame(dataFrame(t, 1, protocol.Envelope{
		Messages: []protocol.SubMessage{{Method: "WebcastNobodyKnowsMessage", Payload: []byte{0x08, 0x01}}},
	}))

	if got := sink.all(); len(got) != 0 {
		t.Errorf("unknown method produced events: %#v", got)
	}
}

func TestHandleFrame_BadSubMessageIsolated(t *testing.T) {
	sink := &recordingSink{}
	e := testEngine(newFakeConn(), sink)

	e.handleFrame(dataFrame(t, 1, protocol.Envelope{
		Messages: []protocol.SubMessage{
			{Method: "WebcastChatMessage", Payload: []byte{0xff}}, // malformed
			{Method: "WebcastChatMessage", Payload: encodeChat("a", "still here")},
		},
	}))

	events := sink.all()
	if len(events) != 1 {
		t.Fatalf("got %d events, want the malformed message skipped", len(events))
	}
	if chat := events[0].(domain.Chat); chat.Content != "still here" {
		t.Errorf("event = %#v", events[0])
	}
}

func TestDispatch_ControlEndedStopsEngine(t *testing.T) {
	conn := newFakeConn()
	sink := &recordingSink{}
	e := testEngine(conn, sink)

	e.handleFrame(dataFrame(t, 1, protocol.Envelope{
		Messages: []protocol.SubMessage{{Method: "WebcastControlMessage", Payload: encodeControl(3)}},
	}))

	select {
	case <-e.closed:
	default:
		t.Error("control status 3 must close the engine")
	}

	events := sink.all()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 control event", len(events))
	}
	if ctl := events[0].(domain.Control); ctl.Status != 3 {
		t.Errorf("control status = %d", ctl.Status)
	}
}

func TestDispatch_ControlOtherStatusKeepsRunning(t *testing.T) {
	e := testEngine(newFakeConn(), &recordingSink{})

	e.handleFrame(dataFrame(t, 1, protocol.Envelope{
		Messages: []protocol.SubMessage{{Method: "WebcastControlMessage", Payload: encodeControl(1)}},
	}))

	select {
	case <-e.closed:
		t.Error("control status 1 must not close the engine")
	default:
	}
}

func TestHeartbeat_CadenceAndShutdown(t *testing.T) {
	conn := newFakeConn()
	e := testEngine(conn, &recordingSink{})
	e.heartbeatInterval = 20 * time.Millisecond
	e.hbDone = make(chan struct{})

	go func() {
		defer close(e.hbDone)
		e.heartbeatLoop()
	}()

	time.Sleep(70 * time.Millisecond)
	e.Stop()

	sent := conn.pingCount()
	if sent < 2 || sent > 5 {
		t.Errorf("sent %d heartbeats in ~70ms at 20ms cadence", sent)
	}

	// No further heartbeats after stop.
	time.Sleep(50 * time.Millisecond)
	if got := conn.pingCount(); got != sent {
		t.Errorf("heartbeats kept flowing after stop: %d -> %d", sent, got)
	}
}

func TestStop_Idempotent(t *testing.T) {
	e := testEngine(newFakeConn(), &recordingSink{})
	e.Stop()
	e.Stop() // must not panic or block
}

func TestStart_UnresolvedRoomAbortsBeforeDial(t *testing.T) {
	var dialed bool
	e := New(&mockIdentity{roomID: ""}, okSigner(), &recordingSink{}, zerolog.Nop())
	e.dial = func(string, http.Header) (wsConn, error) {
		dialed = true
		return newFakeConn(), nil
	}

	if err := e.Start("someroom"); !errors.Is(err, ErrNotResolved) {
		t.Errorf("Start = %v, want ErrNotResolved", err)
	}
	if dialed {
		t.Error("must not dial without a room id")
	}
}

func TestStart_SignerFailureAbortsBeforeDial(t *testing.T) {
	var dialed bool
	signer := sign.SignerFunc(func(string) (string, error) { return "", errors.New("backend down") })
	e := New(&mockIdentity{roomID: "42", ttwid: "tok"}, signer, &recordingSink{}, zerolog.Nop())
	e.dial = func(string, http.Header) (wsConn, error) {
		dialed = true
		return newFakeConn(), nil
	}

	if err := e.Start("someroom"); err == nil {
		t.Error("expected error from failing signer")
	}
	if dialed {
		t.Error("must never connect unsigned")
	}
}

func TestStart_FullSession(t *testing.T) {
	// Session: one chat envelope, then a broadcast-ended control message.
	sink := &recordingSink{}

	var dialURL string
	var dialHeader http.Header
	e := New(&mockIdentity{roomID: "42", ttwid: "tok"}, okSigner(), sink, zerolog.Nop())
	e.heartbeatInterval = time.Hour
	e.dial = func(urlStr string, header http.Header) (wsConn, error) {
		dialURL = urlStr
		dialHeader = header
		return newFakeConn(
			dataFrame(t, 1, protocol.Envelope{
				NeedAck:     true,
				InternalExt: "ext",
				Messages:    []protocol.SubMessage{{Method: "WebcastChatMessage", Payload: encodeChat("a", "hi")}},
			}),
			dataFrame(t, 2, protocol.Envelope{
				Messages: []protocol.SubMessage{{Method: "WebcastControlMessage", Payload: encodeControl(3)}},
			}),
		), nil
	}

	if err := e.Start("someroom"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if !strings.Contains(dialURL, "room_id=42") {
		t.Errorf("dial URL missing room id: %s", dialURL)
	}
	if !strings.HasSuffix(dialURL, "&signature=SIG") {
		t.Errorf("dial URL not signed: %s", dialURL)
	}
	if got := dialHeader.Get("Cookie"); got != "ttwid=tok" {
		t.Errorf("dial Cookie = %q", got)
	}

	events := sink.all()
	if len(events) != 2 {
		t.Fatalf("got %d events, want chat + control", len(events))
	}
	if _, ok := events[0].(domain.Chat); !ok {
		t.Errorf("first event = %#v", events[0])
	}
	if _, ok := events[1].(domain.Control); !ok {
		t.Errorf("second event = %#v", events[1])
	}
}
