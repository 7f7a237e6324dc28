package client

import (
	"context"
	"strings"

	"golang.org/x/crypto/ssh"
)

// preferredHostKeyAlgos is tried first: modern algorithms in the order
// most servers prefer to negotiate.
var preferredHostKeyAlgos = []string{
	ssh.KeyAlgoED25519,
	ssh.KeyAlgoECDSA256, ssh.KeyAlgoECDSA384, ssh.KeyAlgoECDSA521,
	ssh.KeyAlgoRSASHA256, ssh.KeyAlgoRSASHA512, ssh.KeyAlgoRSA,
}

// legacyHostKeyAlgos is retried, once, when the preferred list fails
// key exchange: older devices that only speak DSA/plain RSA.
var legacyHostKeyAlgos = []string{
	ssh.KeyAlgoRSA, ssh.KeyAlgoDSA,
}

// DialWithHostKeyFallback dials target with cfg's preferred host key
// algorithms; if the handshake fails specifically because the server
// has no key the client is willing to use, it retries once with an
// older, narrower algorithm list. This mirrors the retry a NETCONF CLI
// client does against devices that never grew past RSA/DSA host keys.
func DialWithHostKeyFallback(ctx context.Context, cfg *ssh.ClientConfig, target string) (*ssh.Client, error) {
	first := *cfg
	if len(first.HostKeyAlgorithms) == 0 {
		first.HostKeyAlgorithms = preferredHostKeyAlgos
	}

	cli, err := dialContext(ctx, target, &first)
	if err == nil {
		return cli, nil
	}
	if !isHostKeyNegotiationFailure(err) {
		return nil, err
	}

	second := *cfg
	second.HostKeyAlgorithms = legacyHostKeyAlgos
	return dialContext(ctx, target, &second)
}

func dialContext(ctx context.Context, target string, cfg *ssh.ClientConfig) (*ssh.Client, error) {
	type result struct {
		cli *ssh.Client
		err error
	}
	ch := make(chan result, 1)
	go func() {
		cli, err := ssh.Dial("tcp", target, cfg)
		ch <- result{cli, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.cli, r.err
	}
}

// isHostKeyNegotiationFailure reports whether err looks like the
// handshake failed to agree on a host key / key exchange algorithm,
// rather than e.g. a rejected signature or a network error.
// golang.org/x/crypto/ssh does not export a distinct type for this
// failure, so the only stable signal is its message text.
func isHostKeyNegotiationFailure(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no common algorithm") || strings.Contains(msg, "unable to negotiate")
}
