// Package protocol implements the live room wire protocol: the outer push
// frame exchanged on the websocket, the gzip-compressed inner envelope of a
// data frame, and the method-tagged sub-message payloads. The schema is
// reverse-engineered; decoders read only the contracted fields and skip
// everything else.
package protocol

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// decoder walks a protobuf wire message field by field. The first wire
// error is latched in err and stops the walk.
type decoder struct {
	buf []byte
	err error
}

func (d *decoder) next() (protowire.Number, protowire.Type, bool) {
	if d.err != nil || len(d.buf) == 0 {
		return 0, 0, false
	}
	num, typ, n := protowire.ConsumeTag(d.buf)
	if n < 0 {
		d.err = protowire.ParseError(n)
		return 0, 0, false
	}
	d.buf = d.buf[n:]
	return num, typ, true
}

func (d *decoder) varint() uint64 {
	v, n := protowire.ConsumeVarint(d.buf)
	if n < 0 {
		d.err = protowire.ParseError(n)
		return 0
	}
	d.buf = d.buf[n:]
	return v
}

// bytes returns a view into the input buffer; callers that retain the
// value past the walk must copy it.
func (d *decoder) bytes() []byte {
	v, n := protowire.ConsumeBytes(d.buf)
	if n < 0 {
		d.err = protowire.ParseError(n)
		return nil
	}
	d.buf = d.buf[n:]
	return v
}

func (d *decoder) skip(num protowire.Number, typ protowire.Type) {
	n := protowire.ConsumeFieldValue(num, typ, d.buf)
	if n < 0 {
		d.err = protowire.ParseError(n)
		return
	}
	d.buf = d.buf[n:]
}
