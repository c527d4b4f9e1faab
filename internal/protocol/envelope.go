package protocol

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// Envelope field numbers.
const (
	envMessages    = 1
	envInternalExt = 5
	envNeedAck     = 9
)

// Sub-message field numbers.
const (
	msgMethod  = 1
	msgPayload = 2
)

// Envelope is the decompressed body of a data frame: an ordered batch of
// sub-messages plus the server's ack request.
type Envelope struct {
	NeedAck     bool
	InternalExt string
	Messages    []SubMessage
}

// SubMessage is one method-tagged unit of room data. Method selects the
// payload decoder; payload bytes are protobuf.
type SubMessage struct {
	Method  string
	Payload []byte
}

// DecodeEnvelope gunzips a data frame payload and decodes the envelope.
// Message order is the wire order.
func DecodeEnvelope(compressed []byte) (Envelope, error) {
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return Envelope{}, fmt.Errorf("open gzip payload: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return Envelope{}, fmt.Errorf("decompress payload: %w", err)
	}
	return unmarshalEnvelope(raw)
}

func unmarshalEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch {
		case num == envMessages && typ == protowire.BytesType:
			msg, err := unmarshalSubMessage(d.bytes())
			if err != nil {
				return Envelope{}, err
			}
			env.Messages = append(env.Messages, msg)
		case num == envInternalExt && typ == protowire.BytesType:
			env.InternalExt = string(d.bytes())
		case num == envNeedAck && typ == protowire.VarintType:
			env.NeedAck = d.varint() != 0
		default:
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", d.err)
	}
	return env, nil
}

func unmarshalSubMessage(data []byte) (SubMessage, error) {
	var msg SubMessage
	d := &decoder{buf: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch {
		case num == msgMethod && typ == protowire.BytesType:
			msg.Method = string(d.bytes())
		case num == msgPayload && typ == protowire.BytesType:
			msg.Payload = append([]byte(nil), d.bytes()...)
		default:
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return SubMessage{}, fmt.Errorf("decode sub-message: %w", d.err)
	}
	return msg, nil
}
