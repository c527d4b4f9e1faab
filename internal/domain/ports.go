package domain

// Signer produces the platform signature for a connection request.
// The input is the lowercase hex digest of the canonical parameter string;
// the output is appended verbatim to the connection URL. Implementations
// wrap whatever backend the vendor signing routine runs on (an embedded
// script engine, a subprocess, a native port).
type Signer interface {
	Sign(hexDigest string) (string, error)
}

// Identity resolves the platform identity for a live room: the session
// cookie, the numeric room id behind a public room handle, and the browser
// fingerprint requests are issued under. A resolved identity is immutable;
// re-resolution requires a new instance.
type Identity interface {
	SessionToken() string
	RoomID(handle string) string
	UserAgent() string
}

// EventSink receives decoded live-room events in arrival order.
type EventSink interface {
	HandleEvent(ev Event)
}
