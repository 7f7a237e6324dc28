// Package callhome implements NETCONF Call-Home (RFC 8071): the device
// initiates the TCP connection instead of the manager, inverting which
// peer is the TCP client, but the NETCONF roles stay the same — the
// manager still authenticates and drives the session as a NETCONF
// client, the device still serves it.
//
// Acceptor is the manager-side half: it listens for inbound
// connections and, once a device dials in, upgrades the connection to
// a NETCONF client.Session over whichever secure transport that device
// is configured for. DialOutSSH/DialOutTLS (dialout.go) are the
// device-side half.
package callhome

import (
	"context"
	"fmt"
	"net"

	"github.com/netconflib/netconf/netconf/client"
	"github.com/netconflib/netconf/netconf/ncerrors"
)

// Upgrader turns an already-connected net.Conn into a NETCONF client
// Session, performing whatever secure-transport handshake the device
// requires (SSH subsystem request, TLS handshake).
type Upgrader interface {
	Upgrade(ctx context.Context, conn net.Conn, cfg *client.Config) (client.Session, error)
}

// DeviceConfig pairs a Call-Home peer's expected address with the
// Upgrader that should handle its connections and the client Config to
// establish the session with.
type DeviceConfig struct {
	Address    string // the device's IP address without a port, matched against the connection's remote IP (the form reported in Accepted.Addr)
	Upgrader   Upgrader
	SessionCfg *client.Config // defaults to client.DefaultConfig if nil
}

// Accepted reports a successfully upgraded inbound Call-Home connection.
type Accepted struct {
	Addr    string
	Session client.Session
}

// Failure reports a connection that could not be upgraded into a session.
type Failure struct {
	Addr string
	Err  error
}

// Acceptor listens for inbound Call-Home connections and upgrades each
// one using the DeviceConfig registered for its source address.
type Acceptor struct {
	listener net.Listener
	devices  map[string]DeviceConfig
	accepted chan Accepted
	failed   chan Failure
}

// NewAcceptor starts listening on network/address (as accepted by
// net.Listen) for Call-Home connections from the given devices, keyed
// by the address each is expected to dial from.
func NewAcceptor(network, address string, devices []DeviceConfig) (*Acceptor, error) {
	ln, err := net.Listen(network, address)
	if err != nil {
		return nil, ncerrors.Wrap(ncerrors.TransportError, "callhome.NewAcceptor", err, "listening on %s/%s", network, address)
	}

	a := &Acceptor{
		listener: ln,
		devices:  make(map[string]DeviceConfig, len(devices)),
		accepted: make(chan Accepted),
		failed:   make(chan Failure),
	}
	for _, d := range devices {
		a.devices[d.Address] = d
	}

	go a.acceptConnections()
	return a, nil
}

// Accepted delivers successfully upgraded sessions.
func (a *Acceptor) Accepted() <-chan Accepted { return a.accepted }

// Failed delivers connections that failed to upgrade.
func (a *Acceptor) Failed() <-chan Failure { return a.failed }

// Close stops accepting new connections.
func (a *Acceptor) Close() error {
	return a.listener.Close()
}

func (a *Acceptor) acceptConnections() {
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			return
		}
		go a.handleConnection(conn)
	}
}

func (a *Acceptor) handleConnection(conn net.Conn) {
	addr := peerAddress(conn)

	dev, ok := a.devices[addr]
	if !ok {
		_ = conn.Close()
		a.failed <- Failure{Addr: addr, Err: fmt.Errorf("callhome: no device configured for %s", addr)}
		return
	}

	cfg := dev.SessionCfg
	if cfg == nil {
		cfg = client.DefaultConfig
	}

	session, err := dev.Upgrader.Upgrade(context.Background(), conn, cfg)
	if err != nil {
		_ = conn.Close()
		a.failed <- Failure{Addr: addr, Err: err}
		return
	}

	a.accepted <- Accepted{Addr: addr, Session: session}
}

func peerAddress(conn net.Conn) string {
	if tcp, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	return conn.RemoteAddr().String()
}
