package callhome

import (
	"context"
	"crypto/tls"
	"net"

	xssh "golang.org/x/crypto/ssh"

	"github.com/netconflib/netconf/netconf/client"
	"github.com/netconflib/netconf/netconf/ncerrors"
	"github.com/netconflib/netconf/netconf/transport/tlstransport"
)

// SSHUpgrader upgrades an inbound Call-Home connection by running the
// SSH *client* handshake over it — per RFC 8071, Call-Home inverts
// which peer dials the TCP connection, not which peer plays which
// NETCONF/SSH role, so the device that dialed in still acts as SSH
// server and the accepting manager still authenticates as SSH client.
type SSHUpgrader struct {
	ClientConfig *xssh.ClientConfig
}

// Upgrade implements Upgrader.
func (u SSHUpgrader) Upgrade(ctx context.Context, conn net.Conn, cfg *client.Config) (client.Session, error) {
	addr := conn.RemoteAddr().String()

	sshConn, chans, reqs, err := xssh.NewClientConn(conn, addr, u.ClientConfig)
	if err != nil {
		return nil, ncerrors.Wrap(ncerrors.AuthFailed, "callhome.SSHUpgrader", err, "SSH client handshake with %s", addr)
	}

	sshClient := xssh.NewClient(sshConn, chans, reqs)

	return client.NewRPCSessionFromSSHClientWithConfig(ctx, sshClient, cfg)
}

// TLSUpgrader upgrades an inbound Call-Home connection by running the
// TLS *client* handshake over it: the device that dialed in keeps
// acting as the TLS server presenting its device certificate (and, on
// its side, CTN-mapping the manager's client certificate exactly as
// server/tls does for directly-accepted peers — see DialOutTLS), so the
// accepting manager's role here is the ordinary TLS client, validating
// the device's certificate against TLSConfig's RootCAs.
type TLSUpgrader struct {
	TLSConfig *tls.Config
}

// Upgrade implements Upgrader.
func (u TLSUpgrader) Upgrade(ctx context.Context, conn net.Conn, cfg *client.Config) (client.Session, error) {
	tlsConn := tls.Client(conn, u.TLSConfig)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, ncerrors.Wrap(ncerrors.AuthFailed, "callhome.TLSUpgrader", err, "TLS handshake with %s", conn.RemoteAddr())
	}

	t := tlstransport.NewFromConn(tlsConn, conn.RemoteAddr().String())
	return client.NewSession(ctx, t, cfg)
}
