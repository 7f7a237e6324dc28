package tls

import (
	"context"
	"crypto/tls"
	"log"
	"net"

	"github.com/imdario/mergo"
)

// unique type to prevent assignment.
type tlsEventContextKey struct{}

// ContextTLSTrace returns the Trace associated with the provided
// context. If none, it returns the no-op hooks.
func ContextTLSTrace(ctx context.Context) *Trace {
	trace, _ := ctx.Value(tlsEventContextKey{}).(*Trace)
	if trace == nil {
		trace = NoOpLoggingHooks
	} else {
		_ = mergo.Merge(trace, NoOpLoggingHooks) // nolint: gosec, errcheck
	}
	return trace
}

// WithTLSTrace returns a new context based on the provided parent ctx.
// Servers built with the returned context use the supplied trace hooks.
func WithTLSTrace(ctx context.Context, trace *Trace) context.Context {
	return context.WithValue(ctx, tlsEventContextKey{}, trace)
}

// Trace defines a structure for handling trace events raised by a TLS
// endpoint, mirroring the shape of the SSH endpoint's Trace.
type Trace struct {
	// Listened is called when a Listen() call completes.
	Listened func(address string, err error)

	// StartAccepting is called when starting to accept connections.
	StartAccepting func()

	// Accepted is called when an Accept() call completes.
	Accepted func(conn net.Conn, err error)

	// Handshaked is called when the TLS handshake on an accepted
	// connection completes.
	Handshaked func(conn *tls.Conn, err error)

	// CertToName is called after cert-to-name mapping runs against the
	// peer's leaf certificate.
	CertToName func(conn *tls.Conn, name string, err error)
}

// DefaultLoggingHooks provides default logging hooks to report errors.
var DefaultLoggingHooks = &Trace{
	Listened: func(address string, e error) {
		if e != nil {
			log.Printf("Listen address:%s status:%v\n", address, e)
		}
	},
	StartAccepting: func() { log.Printf("Start Accepting\n") },
	Accepted: func(conn net.Conn, e error) {
		if e != nil {
			log.Printf("Accept status:%v\n", e)
		}
	},
	Handshaked: func(conn *tls.Conn, e error) {
		if e != nil {
			log.Printf("Handshake status:%v\n", e)
		}
	},
	CertToName: func(conn *tls.Conn, name string, e error) {
		if e != nil {
			log.Printf("CertToName status:%v\n", e)
		}
	},
}

// NoOpLoggingHooks provides a set of hooks that do nothing.
var NoOpLoggingHooks = &Trace{
	Listened:       func(address string, e error) {},
	StartAccepting: func() {},
	Accepted:       func(conn net.Conn, e error) {},
	Handshaked:     func(conn *tls.Conn, e error) {},
	CertToName:     func(conn *tls.Conn, name string, e error) {},
}
