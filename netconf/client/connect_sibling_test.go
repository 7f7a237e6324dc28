package client

import (
	"context"
	"fmt"
	"testing"

	"github.com/netconflib/netconf/netconf/client/sshconn"
	"github.com/netconflib/netconf/netconf/testserver"

	assert "github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestSiblingSessionsOverOneConnection(t *testing.T) {
	ts := testserver.NewTestNetconfServer(t)
	defer ts.Close()

	sshConfig := &ssh.ClientConfig{
		User:            testserver.TestUserName,
		Auth:            []ssh.AuthMethod{ssh.Password(testserver.TestPassword)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint: gosec
	}

	target := fmt.Sprintf("localhost:%d", ts.Port())
	conn, err := sshconn.Dial(context.Background(), sshConfig, target)
	assert.NoError(t, err)

	s1, err := NewRPCSessionOverConnection(context.Background(), conn, target)
	assert.NoError(t, err, "first sibling session should establish")
	assert.EqualValues(t, 1, conn.RefCount())

	s2, err := NewRPCSessionOverConnection(context.Background(), conn, target)
	assert.NoError(t, err, "second sibling session should establish over the same SSH connection")
	assert.EqualValues(t, 2, conn.RefCount())

	assert.NotEqual(t, s1.ID(), s2.ID(), "sibling sessions still get distinct NETCONF session-ids")

	s1.Close()
	assert.EqualValues(t, 1, conn.RefCount(), "closing one sibling leaves the shared connection open")

	s2.Close()
	assert.EqualValues(t, 0, conn.RefCount(), "closing the last sibling releases the shared connection")
}
