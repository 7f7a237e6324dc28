// Copyright 2018 Andrew Fort
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package rfc6242

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/netconflib/netconf/netconf/ncerrors"
)

// Decoder strips RFC 6242 transport framing from a NETCONF peer's byte
// stream, handing the unframed XML content to an io.Reader consumer (an
// xml.Decoder, typically). It starts in end-of-message framing and
// switches to chunked framing on SetChunkedFraming, per base:1.1
// negotiation.
type Decoder struct {
	r *bufio.Reader

	chunked bool

	// pending holds decoded bytes not yet delivered to a caller.
	pending []byte

	// chunkLeft is the number of payload bytes left in the chunk currently
	// being read, valid only when chunked is true.
	chunkLeft uint64

	maxMessageSize int

	seenAny bool // whether any byte of the current message has been delivered
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithScannerBufferSize bounds how many bytes a Decoder will accumulate
// while searching for a marker or chunk header before it gives up with a
// malformed-framing error. Zero keeps the default.
func WithScannerBufferSize(bytes int) DecoderOption {
	return func(d *Decoder) {
		if bytes > 0 {
			d.maxMessageSize = bytes
		}
	}
}

// NewDecoder returns a Decoder reading framed NETCONF content from input.
func NewDecoder(input io.Reader, options ...DecoderOption) *Decoder {
	d := &Decoder{r: bufio.NewReader(input), maxMessageSize: defaultMaxMessageSize}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// SetChunkedFraming switches the decoder to base:1.1 chunked framing. It
// must be called between messages, after a hello exchange has negotiated
// base:1.1, and before the next Read.
func (d *Decoder) SetChunkedFraming() {
	d.chunked = true
}

// Read implements io.Reader, delivering unframed message content. Read
// returns io.EOF only at a clean message boundary when the underlying
// transport has closed; a transport close mid-message is reported as
// io.ErrUnexpectedEOF.
func (d *Decoder) Read(b []byte) (int, error) {
	for len(d.pending) == 0 {
		if err := d.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(b, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *Decoder) fill() error {
	if d.chunked {
		return d.fillChunk()
	}
	return d.fillEOM()
}

// fillEOM buffers up to and including the next end-of-message marker,
// stripping the marker and stashing the preceding bytes in d.pending.
func (d *Decoder) fillEOM() error {
	var acc []byte
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				if len(acc) == 0 && !d.seenAny {
					return io.EOF
				}
				return io.ErrUnexpectedEOF
			}
			return ncerrors.Wrap(ncerrors.TransportError, "rfc6242.decode", err, "reading eom-framed message")
		}
		acc = append(acc, b)
		d.seenAny = true
		if len(acc) > d.maxMessageSize {
			return ncerrors.New(ncerrors.MalformedFraming, "rfc6242.decode", "message exceeds %d bytes without end-of-message marker", d.maxMessageSize)
		}
		if idx := bytes.Index(acc, []byte(tokenEOM)); idx >= 0 {
			d.pending = acc[:idx]
			d.seenAny = false
			if len(d.pending) == 0 {
				// A bare marker with nothing preceding it just closed a
				// message with no remaining content; keep scanning into
				// whatever follows rather than returning an empty read.
				return d.fillEOM()
			}
			return nil
		}
	}
}

// fillChunk reads one RFC 6242 chunk header and its payload, or detects
// the "\n##\n" terminator that ends a message.
func (d *Decoder) fillChunk() error {
	if d.chunkLeft > 0 {
		n := d.chunkLeft
		if n > 4096 {
			n = 4096
		}
		buf := make([]byte, n)
		read, err := io.ReadFull(d.r, buf)
		if err != nil {
			return ncerrors.Wrap(ncerrors.TransportError, "rfc6242.decode", err, "reading chunk payload")
		}
		d.chunkLeft -= uint64(read)
		d.pending = buf[:read]
		d.seenAny = true
		return nil
	}

	size, err := d.readChunkHeader()
	if err != nil {
		return err
	}
	if size == 0 {
		// end of message
		d.seenAny = false
		return d.fillChunk()
	}
	d.chunkLeft = size
	return d.fillChunk()
}

// readChunkHeader reads one "\n#<digits>\n" header or the "\n##\n"
// terminator, returning the chunk size (0 for the terminator). It
// returns io.EOF when the transport closes at a message boundary.
func (d *Decoder) readChunkHeader() (uint64, error) {
	first, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF && !d.seenAny {
			return 0, io.EOF
		}
		return 0, d.eofOrTransport(err, "reading chunk header")
	}
	if first != '\n' {
		return 0, ncerrors.New(ncerrors.MalformedFraming, "rfc6242.decode", "invalid chunk header: expected %q, got %q", byte('\n'), first)
	}
	if err := d.expect('#'); err != nil {
		return 0, err
	}

	c, err := d.r.ReadByte()
	if err != nil {
		return 0, d.eofOrTransport(err, "reading chunk header")
	}
	if c == '#' {
		if err := d.expect('\n'); err != nil {
			return 0, err
		}
		if len(d.pending) != 0 {
			return 0, ncerrors.New(ncerrors.MalformedFraming, "rfc6242.decode", "invalid chunk header: end-of-chunks terminator with undelivered data pending")
		}
		return 0, nil
	}
	if c < '1' || c > '9' {
		return 0, ncerrors.New(ncerrors.MalformedFraming, "rfc6242.decode", "invalid chunk header: chunk-size must start with a nonzero digit")
	}

	digits := []byte{c}
	for {
		c, err := d.r.ReadByte()
		if err != nil {
			return 0, d.eofOrTransport(err, "reading chunk size")
		}
		if c == '\n' {
			break
		}
		if c < '0' || c > '9' {
			return 0, ncerrors.New(ncerrors.MalformedFraming, "rfc6242.decode", "invalid chunk header: non-digit %q in chunk-size", c)
		}
		digits = append(digits, c)
		if len(digits) > 10 {
			return 0, ncerrors.New(ncerrors.MalformedFraming, "rfc6242.decode", "no valid chunk-size detected: more than 10 digits")
		}
	}

	size, err := strconv.ParseUint(string(digits), 10, 64)
	if err != nil {
		return 0, ncerrors.Wrap(ncerrors.MalformedFraming, "rfc6242.decode", err, "no valid chunk-size detected")
	}
	if size > maxChunkSize {
		return 0, ncerrors.New(ncerrors.MalformedFraming, "rfc6242.decode", "chunk size %d larger than maximum %d", size, maxChunkSize)
	}
	return size, nil
}

func (d *Decoder) expect(want byte) error {
	got, err := d.r.ReadByte()
	if err != nil {
		return d.eofOrTransport(err, "reading chunk header")
	}
	if got != want {
		return ncerrors.New(ncerrors.MalformedFraming, "rfc6242.decode", "invalid chunk header: expected %q, got %q", want, got)
	}
	return nil
}

func (d *Decoder) eofOrTransport(err error, op string) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return errors.Wrapf(err, "rfc6242: %s", op)
}
