package callhome

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/netconflib/netconf/netconf/ncerrors"
	"github.com/netconflib/netconf/netconf/server/ssh"
	servertls "github.com/netconflib/netconf/netconf/server/tls"

	xssh "golang.org/x/crypto/ssh"
)

// DialConfig controls the dial-out retry/backoff loop a device runs
// while it cannot reach its configured manager(s).
type DialConfig struct {
	// Network/Address identify the manager to dial, e.g. "tcp" / "nms.example.com:4334".
	Network string
	Address string

	// MaxAttempts bounds how many consecutive dial failures are
	// tolerated before dial gives up and returns an error. The zero
	// value retries forever, since a device with no other way to reach
	// its manager generally should keep trying rather than give up.
	MaxAttempts int

	// Backoff computes the delay before the next dial attempt, given
	// the number of attempts made so far (1-based). Defaults to a fixed
	// 10 second delay if nil.
	Backoff func(attempt int) time.Duration
}

func (c DialConfig) backoff(attempt int) time.Duration {
	if c.Backoff != nil {
		return c.Backoff(attempt)
	}
	return 10 * time.Second
}

// dial repeatedly attempts to connect to cfg.Address until it succeeds,
// ctx is cancelled, or MaxAttempts consecutive failures have occurred.
func dial(ctx context.Context, cfg DialConfig) (net.Conn, error) {
	var d net.Dialer
	attempt := 0
	for {
		attempt++
		conn, err := d.DialContext(ctx, cfg.Network, cfg.Address)
		if err == nil {
			return conn, nil
		}
		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			return nil, ncerrors.Wrap(ncerrors.TransportError, "callhome.dial", err, "dialing %s after %d attempts", cfg.Address, attempt)
		}

		select {
		case <-ctx.Done():
			return nil, ncerrors.Wrap(ncerrors.TransportError, "callhome.dial", ctx.Err(), "dialing %s", cfg.Address)
		case <-time.After(cfg.backoff(attempt)):
		}
	}
}

// DialOutSSH implements the device side of SSH Call-Home: it dials the
// manager with retry/backoff, then upgrades the resulting connection
// exactly as an accepted inbound connection would be — via
// server/ssh.HandleConnection — so the device continues to act as the
// SSH server, and each subsystem channel the manager opens is
// dispatched to factory. It blocks until the connection is closed or
// ctx is cancelled, so callers normally invoke it in its own goroutine.
func DialOutSSH(ctx context.Context, cfg DialConfig, sshCfg *xssh.ServerConfig, factory ssh.HandlerFactory, trace *ssh.Trace) error {
	conn, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	ssh.HandleConnection(conn, sshCfg, factory, trace)
	return nil
}

// DialOutTLS implements the device side of TLS Call-Home: it dials the
// manager with retry/backoff, then runs the TLS *server* handshake
// over the dialed connection — the device keeps presenting its server
// certificate and CTN-mapping the manager's client certificate exactly
// as server/tls.Server does for directly-accepted peers — before
// handing the handshaked connection to factory.
func DialOutTLS(ctx context.Context, cfg DialConfig, tlsCfg *tls.Config, rules []servertls.CTNRule, factory servertls.HandlerFactory) error {
	conn, err := dial(ctx, cfg)
	if err != nil {
		return err
	}

	tlsConn := tls.Server(conn, tlsCfg)
	defer tlsConn.Close() // nolint: errcheck

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return ncerrors.Wrap(ncerrors.AuthFailed, "callhome.DialOutTLS", err, "TLS handshake with %s", cfg.Address)
	}

	peerName, err := servertls.PeerName(tlsConn, rules)
	if err != nil {
		return err
	}

	factory(tlsConn, peerName).Handle(tlsConn, peerName)
	return nil
}
