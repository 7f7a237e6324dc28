package client

import (
	"context"
	"io"

	"github.com/netconflib/netconf/netconf/transport/fd"
)

// NewRPCSessionOverFD establishes a netconf session over an already-open
// io.ReadWriteCloser (a subprocess's stdio, a unix socket, a descriptor
// handed in by a supervisor) with default configuration. This is the
// connect_fd variant of the client connector module: no connection
// setup of its own, used for local subprocess NETCONF servers and for
// tests.
func NewRPCSessionOverFD(ctx context.Context, rwc io.ReadWriteCloser, name string) (Session, error) {
	return NewRPCSessionOverFDWithConfig(ctx, rwc, name, DefaultConfig)
}

// NewRPCSessionOverFDWithConfig is NewRPCSessionOverFD with an explicit
// client Config.
func NewRPCSessionOverFDWithConfig(ctx context.Context, rwc io.ReadWriteCloser, name string, cfg *Config) (s Session, err error) {
	t := fd.New(rwc, name)
	if s, err = NewSession(ctx, t, cfg); err != nil {
		_ = t.Close()
	}
	return
}
