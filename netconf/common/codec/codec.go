// Package codec combines RFC 6242 transport framing with XML encoding to
// produce the wire codec used by a NETCONF session: Encode/Decode a
// message, upgrading both halves to chunked framing once base:1.1 is
// negotiated.
package codec

import (
	"encoding/xml"
	"io"

	"github.com/netconflib/netconf/netconf/common/codec/rfc6242"
)

// Decoder wraps the standard xml.Decoder (for XML decoding) and an
// RFC6242 Decoder (for netconf message framing).
type Decoder struct {
	*xml.Decoder
	ncDecoder *rfc6242.Decoder
}

// Encoder wraps the standard xml.Encoder (for XML encoding) and an
// RFC6242 Encoder (for netconf message framing).
type Encoder struct {
	xmlEncoder *xml.Encoder
	ncEncoder  *rfc6242.Encoder
}

// Encode encodes a netconf message, prepending an XML declaration and
// terminating the transport frame.
func (e *Encoder) Encode(msg interface{}) error {
	if _, err := e.ncEncoder.Write([]byte(xml.Header)); err != nil {
		return err
	}
	if err := e.xmlEncoder.Encode(msg); err != nil {
		return err
	}
	return e.ncEncoder.EndOfMessage()
}

// NewDecoder returns a Decoder reading framed messages from t.
func NewDecoder(t io.Reader) *Decoder {
	ncDecoder := rfc6242.NewDecoder(t)
	return &Decoder{Decoder: xml.NewDecoder(ncDecoder), ncDecoder: ncDecoder}
}

// NewEncoder returns an Encoder writing framed messages to t.
func NewEncoder(t io.Writer) *Encoder {
	ncEncoder := rfc6242.NewEncoder(t)
	return &Encoder{xmlEncoder: xml.NewEncoder(ncEncoder), ncEncoder: ncEncoder}
}

// EnableChunkedFraming switches both halves of a session's codec to
// base:1.1 chunked framing, after a hello exchange has negotiated it.
func EnableChunkedFraming(d *Decoder, e *Encoder) {
	rfc6242.SetChunkedFraming(d.ncDecoder, e.ncEncoder)
}
