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
	"fmt"
	"io"

	"github.com/netconflib/netconf/netconf/ncerrors"
)

// defaultMaxChunkSize is the chunk size an Encoder uses when none is
// configured; it is well under the RFC 6242 maximum and matches what the
// reference NETCONF implementations emit.
const defaultMaxChunkSize = 1024 * 1024

// Encoder applies RFC 6242 transport framing to NETCONF messages written
// to it. It starts in end-of-message framing; SetChunkedFraming
// moves it to base:1.1 chunked framing for all subsequent writes.
type Encoder struct {
	w io.Writer

	chunked      bool
	maxChunkSize uint32
}

// flusher is implemented by writers (e.g. *bufio.Writer) that buffer
// internally; EndOfMessage flushes through one if the underlying writer
// supports it.
type flusher interface {
	Flush() error
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithMaximumChunkSize bounds the size of chunks emitted once chunked
// framing is active.
func WithMaximumChunkSize(size uint32) EncoderOption {
	return func(e *Encoder) {
		if size > 0 {
			e.maxChunkSize = size
		}
	}
}

// NewEncoder returns an Encoder writing framed NETCONF content to w.
func NewEncoder(w io.Writer, options ...EncoderOption) *Encoder {
	e := &Encoder{w: w, maxChunkSize: defaultMaxChunkSize}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// SetChunkedFraming switches the encoder to base:1.1 chunked framing for
// every subsequent Write and EndOfMessage, so it is called between
// messages.
func (e *Encoder) SetChunkedFraming() {
	e.chunked = true
}

// Write implements io.Writer. In chunked mode it splits b into one or
// more RFC 6242 chunks bounded by the encoder's maximum chunk size
// (see WithMaximumChunkSize); otherwise it writes b
// unframed, relying on EndOfMessage to terminate the message.
func (e *Encoder) Write(b []byte) (int, error) {
	if !e.chunked {
		return e.w.Write(b)
	}
	return e.writeChunked(b)
}

func (e *Encoder) writeChunked(b []byte) (int, error) {
	total := 0
	for len(b) > 0 {
		n := len(b)
		if uint32(n) > e.maxChunkSize {
			n = int(e.maxChunkSize)
		}
		if _, err := fmt.Fprintf(e.w, "\n#%d\n", n); err != nil {
			return total, ncerrors.Wrap(ncerrors.TransportError, "rfc6242.encode", err, "writing chunk header")
		}
		written, err := e.w.Write(b[:n])
		total += written
		if err != nil {
			return total, ncerrors.Wrap(ncerrors.TransportError, "rfc6242.encode", err, "writing chunk payload")
		}
		b = b[n:]
	}
	return total, nil
}

// EndOfMessage terminates the current message: the EOM marker in
// end-of-message framing, or the "\n##\n" terminator in chunked framing.
func (e *Encoder) EndOfMessage() error {
	var err error
	if e.chunked {
		_, err = io.WriteString(e.w, chunkTerminator)
	} else {
		_, err = io.WriteString(e.w, tokenEOM)
	}
	if err != nil {
		return ncerrors.Wrap(ncerrors.TransportError, "rfc6242.encode", err, "writing message terminator")
	}
	if f, ok := e.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
