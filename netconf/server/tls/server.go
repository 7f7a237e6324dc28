// Package tls implements the TLS variant of the NETCONF Endpoint &
// Acceptor: a net.Listener wrapped in a tls.Config, with cert-to-name
// (CTN) mapping applied to each accepted connection's peer certificate
// per RFC 7589's NETCONF-over-TLS peer authentication rules, following
// the accept-loop/HandlerFactory shape of the sibling ssh package.
package tls

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	"github.com/netconflib/netconf/netconf/ncerrors"
)

// Server represents a TLS NETCONF endpoint.
type Server struct {
	listener net.Listener
	rules    []CTNRule
	trace    *Trace
}

// Handler is the interface implemented to handle a NETCONF-over-TLS
// connection once the peer certificate has been mapped to a username.
type Handler interface {
	Handle(conn *tls.Conn, peerName string)
}

// HandlerFactory delivers a Handler for a newly-accepted, handshaked
// connection and its cert-to-name mapped peer username.
type HandlerFactory func(conn *tls.Conn, peerName string) Handler

// NewServer delivers a new TLS Server, listening on address:port and
// applying rules to map each peer's client certificate to a NETCONF
// username. cfg should set ClientAuth to tls.RequireAndVerifyClientCert
// (or tls.RequireAnyClientCert, with rules resolving an otherwise
// untrusted identity) for CTN mapping to have a verified certificate to
// work from.
func NewServer(ctx context.Context, address string, port int, cfg *tls.Config, rules []CTNRule, factory HandlerFactory) (server *Server, err error) {
	server = &Server{trace: ContextTLSTrace(ctx), rules: rules}

	listenAddress := fmt.Sprintf("%s:%d", address, port)
	inner, err := net.Listen("tcp", listenAddress)
	server.trace.Listened(listenAddress, err)
	if err != nil {
		return nil, err
	}
	server.listener = tls.NewListener(inner, cfg)

	go server.acceptConnections(factory)

	return server, nil
}

// Port delivers the tcp port number on which the server is listening.
func (s *Server) Port() int {
	// tls.NewListener wraps the net.Listener passed to it without
	// changing its Addr, so the underlying *net.TCPAddr is still
	// reachable through the wrapped listener's Addr().
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Close closes any resources used by the server.
func (s *Server) Close() {
	_ = s.listener.Close()
}

func (s *Server) acceptConnections(factory HandlerFactory) {
	s.trace.StartAccepting()
	for {
		conn, err := s.listener.Accept()
		s.trace.Accepted(conn, err)
		if err != nil {
			return
		}

		go s.handleConnection(conn.(*tls.Conn), factory)
	}
}

func (s *Server) handleConnection(conn *tls.Conn, factory HandlerFactory) {
	defer conn.Close() // nolint: errcheck

	if err := conn.Handshake(); err != nil {
		s.trace.Handshaked(conn, err)
		return
	}
	s.trace.Handshaked(conn, nil)

	peerName, err := s.peerName(conn)
	s.trace.CertToName(conn, peerName, err)
	if err != nil {
		return
	}

	factory(conn, peerName).Handle(conn, peerName)
}

func (s *Server) peerName(conn *tls.Conn) (string, error) {
	return PeerName(conn, s.rules)
}

// PeerName resolves a handshaked connection's peer certificate to a
// NETCONF username via rules. It is exported so callers that handshake
// a *tls.Conn outside of a Server's accept loop (e.g. the device side
// of TLS Call-Home, which dials out but still acts as TLS server) can
// apply the same cert-to-name mapping.
func PeerName(conn *tls.Conn, rules []CTNRule) (string, error) {
	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return "", ncerrors.New(ncerrors.AuthFailed, "tls.peerName", "no peer certificate presented")
	}
	name, err := MapCertToName(certs[0], rules)
	if err != nil {
		return "", ncerrors.Wrap(ncerrors.AuthFailed, "tls.peerName", err, "mapping peer certificate to a NETCONF identity")
	}
	return name, nil
}
