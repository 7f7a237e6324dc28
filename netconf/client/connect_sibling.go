package client

import (
	"context"

	"github.com/imdario/mergo"

	"github.com/netconflib/netconf/netconf/client/sshconn"
)

// NewRPCSessionOverConnection establishes an additional NETCONF session
// multiplexed as a new SSH channel over conn — the shared connection
// one or more sibling sessions are opened over (see package sshconn for
// the refcounted "arena" that replaces the original intrusive SSH
// sibling ring). Each call acquires a reference on conn; closing the
// returned Session releases it, and the underlying SSH connection is
// closed only once every sibling sharing it has been closed.
func NewRPCSessionOverConnection(ctx context.Context, conn *sshconn.Connection, target string) (s Session, err error) {
	return NewRPCSessionOverConnectionWithConfig(ctx, conn, target, DefaultConfig)
}

// NewRPCSessionOverConnectionWithConfig is NewRPCSessionOverConnection
// with an explicit client Config.
func NewRPCSessionOverConnectionWithConfig(ctx context.Context, conn *sshconn.Connection, target string, cfg *Config) (s Session, err error) {
	resolvedConfig := *cfg
	_ = mergo.Merge(&resolvedConfig, DefaultConfig)

	var t Transport
	if t, err = conn.NewSiblingTransport(target); err != nil {
		return
	}

	if s, err = NewSession(ctx, t, &resolvedConfig); err != nil {
		_ = t.Close()
	}
	return
}
