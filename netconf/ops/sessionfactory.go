package ops

import (
	"context"
	"crypto/tls"
	"io"

	"github.com/netconflib/netconf/netconf/client"

	"golang.org/x/crypto/ssh"
)

// Defines factory methods for instantiating netconf sessions over each
// of the client connector module's transport variants.

// NewSession connects to the  target using the ssh configuration, and establishes
// a netconf session with default configuration.
func NewSession(ctx context.Context, sshcfg *ssh.ClientConfig, target string) (s OpSession, err error) {

	return NewSessionWithConfig(ctx, sshcfg, target, client.DefaultConfig)
}

// NewSessionWithConfig connects to the  target using the ssh configuration, and establishes
// a netconf session with the client configuration.
func NewSessionWithConfig(ctx context.Context, sshcfg *ssh.ClientConfig, target string, cfg *client.Config) (s OpSession, err error) {

	var cs client.Session
	if cs, err = client.NewRPCSessionWithConfig(ctx, sshcfg, target, cfg); err != nil {
		return
	}

	s = &sImpl{Session: cs}
	return
}

// NewSessionOverTLS connects to target with a mutually-authenticated TLS
// connection and establishes a netconf session with default configuration.
func NewSessionOverTLS(ctx context.Context, tlsConfig *tls.Config, target string) (s OpSession, err error) {
	return NewSessionOverTLSWithConfig(ctx, tlsConfig, target, client.DefaultConfig)
}

// NewSessionOverTLSWithConfig is NewSessionOverTLS with an explicit client Config.
func NewSessionOverTLSWithConfig(ctx context.Context, tlsConfig *tls.Config, target string, cfg *client.Config) (s OpSession, err error) {
	var cs client.Session
	if cs, err = client.NewRPCSessionOverTLSWithConfig(ctx, tlsConfig, target, cfg); err != nil {
		return
	}
	s = &sImpl{Session: cs}
	return
}

// NewSessionOverFD establishes a netconf session over an already-open
// io.ReadWriteCloser with default configuration.
func NewSessionOverFD(ctx context.Context, rwc io.ReadWriteCloser, name string) (s OpSession, err error) {
	return NewSessionOverFDWithConfig(ctx, rwc, name, client.DefaultConfig)
}

// NewSessionOverFDWithConfig is NewSessionOverFD with an explicit client Config.
func NewSessionOverFDWithConfig(ctx context.Context, rwc io.ReadWriteCloser, name string, cfg *client.Config) (s OpSession, err error) {
	var cs client.Session
	if cs, err = client.NewRPCSessionOverFDWithConfig(ctx, rwc, name, cfg); err != nil {
		return
	}
	s = &sImpl{Session: cs}
	return
}

func createTransport(ctx context.Context, clientConfig *ssh.ClientConfig, target string) (t client.Transport, err error) {
	return client.NewSSHTransport(ctx, client.NewDialer(target, clientConfig), target)
}
