package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// PayloadType tags what an outer frame carries. The wire value is the
// platform's string tag.
type PayloadType string

const (
	// PayloadData frames carry a gzip-compressed envelope.
	PayloadData PayloadType = "msg"
	// PayloadHeartbeat frames are empty liveness pings.
	PayloadHeartbeat PayloadType = "hb"
	// PayloadAck frames answer a need-ack envelope.
	PayloadAck PayloadType = "ack"
)

// Push frame field numbers.
const (
	frameLogID       = 2
	framePayloadType = 7
	framePayload     = 8
)

// Frame is the outer envelope for every message exchanged on the
// streaming connection.
type Frame struct {
	LogID   uint64
	Type    PayloadType
	Payload []byte
}

// MarshalFrame encodes a frame for the wire.
func MarshalFrame(f Frame) []byte {
	var b []byte
	if f.LogID != 0 {
		b = protowire.AppendTag(b, frameLogID, protowire.VarintType)
		b = protowire.AppendVarint(b, f.LogID)
	}
	if f.Type != "" {
		b = protowire.AppendTag(b, framePayloadType, protowire.BytesType)
		b = protowire.AppendString(b, string(f.Type))
	}
	if len(f.Payload) > 0 {
		b = protowire.AppendTag(b, framePayload, protowire.BytesType)
		b = protowire.AppendBytes(b, f.Payload)
	}
	return b
}

// UnmarshalFrame decodes a frame, skipping unknown fields.
func UnmarshalFrame(data []byte) (Frame, error) {
	var f Frame
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch {
		case num == frameLogID && typ == protowire.VarintType:
			f.LogID = d.varint()
		case num == framePayloadType && typ == protowire.BytesType:
			f.Type = PayloadType(d.bytes())
		case num == framePayload && typ == protowire.BytesType:
			f.Payload = append([]byte(nil), d.bytes()...)
		default:
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return Frame{}, fmt.Errorf("decode push frame: %w", d.err)
	}
	return f, nil
}

// AckFrame builds the acknowledgment for a need-ack envelope: same log id,
// payload set to the envelope's internal extension bytes.
func AckFrame(logID uint64, internalExt string) []byte {
	return MarshalFrame(Frame{
		LogID:   logID,
		Type:    PayloadAck,
		Payload: []byte(internalExt),
	})
}

// HeartbeatFrame builds an empty liveness ping.
func HeartbeatFrame() []byte {
	return MarshalFrame(Frame{Type: PayloadHeartbeat})
}
