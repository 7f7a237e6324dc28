package client

import (
	"context"
	"crypto/tls"

	"github.com/netconflib/netconf/netconf/transport/tlstransport"
)

// NewRPCSessionOverTLS dials target with a mutually-authenticated TLS
// connection and establishes a netconf session with default
// configuration. See RFC 7589; tlsConfig must present a client
// certificate and validate the server's, since NETCONF over TLS has no
// secondary authentication step.
func NewRPCSessionOverTLS(ctx context.Context, tlsConfig *tls.Config, target string) (Session, error) {
	return NewRPCSessionOverTLSWithConfig(ctx, tlsConfig, target, DefaultConfig)
}

// NewRPCSessionOverTLSWithConfig is NewRPCSessionOverTLS with an explicit
// client Config.
func NewRPCSessionOverTLSWithConfig(ctx context.Context, tlsConfig *tls.Config, target string, cfg *Config) (s Session, err error) {
	t, err := tlstransport.Dial(ctx, tlsConfig, target)
	if err != nil {
		return nil, err
	}

	if s, err = NewSession(ctx, t, cfg); err != nil {
		_ = t.Close()
	}
	return
}
