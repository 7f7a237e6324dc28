// Package transport defines the Transport Adapter abstraction a NETCONF
// session is built on: a byte-oriented, full-duplex, ordered,
// reliable, authenticated channel between two peers. Concrete
// implementations live in the tlstransport and fd subpackages, and the
// SSH one is client.NewSSHTransport; none of them know anything about NETCONF message
// framing or content, which is layered on top by
// netconf/common/codec.
package transport

import "io"

// Transport is a full-duplex, ordered, reliable byte stream between two
// NETCONF peers. Close releases any underlying connection or process
// resources; after Close returns, Read and Write must fail.
type Transport interface {
	io.ReadWriteCloser
}
