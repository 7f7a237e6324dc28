// Package tlstransport implements the TLS variant of the NETCONF
// transport adapter (RFC 7589): a mutually-authenticated TLS channel
// carrying framed NETCONF content, used by both the client connector and
// call-home.
package tlstransport

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/netconflib/netconf/netconf/ncerrors"
	"github.com/netconflib/netconf/netconf/transport"
)

// Dial opens a TLS connection to target and returns it as a Transport.
// cfg must be configured for mutual authentication (client certificate
// plus a RootCAs pool or InsecureSkipVerify only for testing); NETCONF
// over TLS has no separate username/password exchange, so whatever
// identity the certificate asserts is what server-side CTN mapping will
// see.
func Dial(ctx context.Context, cfg *tls.Config, target string) (transport.Transport, error) {
	dialer := &tls.Dialer{Config: cfg}

	conn, err := dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		return nil, ncerrors.Wrap(ncerrors.TransportError, "tlstransport.dial", err, "dialing %s", target)
	}

	return &clientTransport{Conn: conn.(*tls.Conn), target: target}, nil
}

// clientTransport adapts a *tls.Conn, which already satisfies
// transport.Transport, adding the Target() accessor used for trace and
// error messages.
type clientTransport struct {
	*tls.Conn
	target string
}

// Target returns the address this transport connected to.
func (c *clientTransport) Target() string { return c.target }

// NewFromConn wraps an already-established *tls.Conn as a Transport,
// for callers that obtained the connection some way other than Dial
// (e.g. Call-Home, where the far end is the one that dialed).
func NewFromConn(conn *tls.Conn, target string) transport.Transport {
	return &clientTransport{Conn: conn, target: target}
}

// HandshakeTimeout performs the TLS handshake with a deadline, returning
// a descriptive error on timeout or certificate rejection rather than
// letting the first Read/Write surface an opaque one.
func HandshakeTimeout(conn *tls.Conn, timeout time.Duration) error {
	_ = conn.SetDeadline(time.Now().Add(timeout))
	defer func() { _ = conn.SetDeadline(time.Time{}) }()

	if err := conn.Handshake(); err != nil {
		return ncerrors.Wrap(ncerrors.AuthFailed, "tlstransport.handshake", err, "TLS handshake failed")
	}
	return nil
}
