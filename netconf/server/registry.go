// Package server provides the Endpoint & Acceptor registry: a
// name-keyed collection of SSH and TLS NETCONF endpoints that can be
// started, looked up, and torn down as a group, so a process hosting
// several listeners (e.g. one SSH endpoint per advertised capability
// set, plus a TLS endpoint for cert-authenticated peers) doesn't need to
// track each *ssh.Server/*tls.Server by hand.
package server

import (
	"fmt"
	"sync"

	"github.com/netconflib/netconf/netconf/server/ssh"
	"github.com/netconflib/netconf/netconf/server/tls"
)

// Registry holds named SSH and TLS endpoints. Each kind is guarded by
// its own lock, so registering a TLS endpoint never contends with
// concurrent SSH registration/lookup. The zero value is ready to use.
type Registry struct {
	sshMu  sync.Mutex
	sshEPs map[string]*ssh.Server

	tlsMu  sync.Mutex
	tlsEPs map[string]*tls.Server
}

// AddSSH registers srv under name. It returns an error if name is
// already registered, rather than silently replacing an active listener.
func (r *Registry) AddSSH(name string, srv *ssh.Server) error {
	r.sshMu.Lock()
	defer r.sshMu.Unlock()

	if r.sshEPs == nil {
		r.sshEPs = map[string]*ssh.Server{}
	}
	if _, exists := r.sshEPs[name]; exists {
		return fmt.Errorf("server: SSH endpoint %q already registered", name)
	}
	r.sshEPs[name] = srv
	return nil
}

// AddTLS registers srv under name, under the same exists-check as AddSSH.
func (r *Registry) AddTLS(name string, srv *tls.Server) error {
	r.tlsMu.Lock()
	defer r.tlsMu.Unlock()

	if r.tlsEPs == nil {
		r.tlsEPs = map[string]*tls.Server{}
	}
	if _, exists := r.tlsEPs[name]; exists {
		return fmt.Errorf("server: TLS endpoint %q already registered", name)
	}
	r.tlsEPs[name] = srv
	return nil
}

// SSH looks up a registered SSH endpoint by name.
func (r *Registry) SSH(name string) (*ssh.Server, bool) {
	r.sshMu.Lock()
	defer r.sshMu.Unlock()
	s, ok := r.sshEPs[name]
	return s, ok
}

// TLS looks up a registered TLS endpoint by name.
func (r *Registry) TLS(name string) (*tls.Server, bool) {
	r.tlsMu.Lock()
	defer r.tlsMu.Unlock()
	s, ok := r.tlsEPs[name]
	return s, ok
}

// RemoveSSH closes and deregisters the named SSH endpoint, if present.
func (r *Registry) RemoveSSH(name string) {
	r.sshMu.Lock()
	defer r.sshMu.Unlock()
	if s, ok := r.sshEPs[name]; ok {
		s.Close()
		delete(r.sshEPs, name)
	}
}

// RemoveTLS closes and deregisters the named TLS endpoint, if present.
func (r *Registry) RemoveTLS(name string) {
	r.tlsMu.Lock()
	defer r.tlsMu.Unlock()
	if s, ok := r.tlsEPs[name]; ok {
		s.Close()
		delete(r.tlsEPs, name)
	}
}

// CloseAll closes every registered endpoint of both kinds.
func (r *Registry) CloseAll() {
	r.sshMu.Lock()
	for name, s := range r.sshEPs {
		s.Close()
		delete(r.sshEPs, name)
	}
	r.sshMu.Unlock()

	r.tlsMu.Lock()
	for name, s := range r.tlsEPs {
		s.Close()
		delete(r.tlsEPs, name)
	}
	r.tlsMu.Unlock()
}
