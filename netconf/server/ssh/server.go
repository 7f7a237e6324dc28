package ssh

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/crypto/ssh"
)

// Server represents a test SSH Server
type Server struct {
	listener net.Listener
	trace    *Trace
}

// Handler is the interface that is implemented to handle an SSH channel.
type Handler interface {
	// Handler is a function that handles i/o to/from an SSH channel
	Handle(ch ssh.Channel)
}

// HandlerFactory is a function that will deliver an Handler.
type HandlerFactory func(conn *ssh.ServerConn) Handler

// NewServer deflivers a new test SSH Server, with a custom channel handler.
// The server authenticates clients as cfg configures (see PasswordConfig).
func NewServer(ctx context.Context, address string, port int, cfg *ssh.ServerConfig, factory HandlerFactory) (server *Server, err error) {
	server = &Server{trace: ContextSshTrace(ctx)}

	listenAddress := fmt.Sprintf("%s:%d", address, port)
	server.listener, err = net.Listen("tcp", listenAddress)
	server.trace.Listened(address, err)
	if err != nil {
		return nil, err
	}

	go server.acceptConnections(cfg, factory)

	return server, nil
}

// Port delivers the tcp port number on which the server is listening.
func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Close closes any resources used by the server.
func (s *Server) Close() {
	_ = s.listener.Close()
}

func (s *Server) acceptConnections(config *ssh.ServerConfig, factory HandlerFactory) {
	s.trace.StartAccepting()
	for {
		nConn, err := s.listener.Accept()
		s.trace.Accepted(nConn, err)
		if err != nil {
			return
		}

		go HandleConnection(nConn, config, factory, s.trace)
	}
}

// HandleConnection upgrades an already-established net.Conn (accepted
// locally, or dialed out as in a Call-Home reverse connection) into an
// SSH server connection, and dispatches each subsystem channel it
// receives to factory. It blocks until the connection's channels are
// exhausted, so callers normally invoke it in its own goroutine.
func HandleConnection(nConn net.Conn, config *ssh.ServerConfig, factory HandlerFactory, trace *Trace) {
	if trace == nil {
		trace = NoOpLoggingHooks
	}

	svrconn, chch, reqch, err := ssh.NewServerConn(nConn, config)
	trace.NewServerConn(nConn, err)
	if err != nil {
		return
	}

	go ssh.DiscardRequests(reqch)

	// Service the incoming Channel channel.
	for newChannel := range chch {
		dataChan, requests, err := newChannel.Accept()
		trace.SSHChannelAccept(nConn, err)
		if err != nil {
			continue
		}

		// Handle the "subsystem" request.
		go func(in <-chan *ssh.Request) {
			for req := range in {
				err = req.Reply(req.Type == "subsystem", nil)
				trace.SubsystemRequestReply(err)
			}
		}(requests)

		go func() {
			defer dataChan.Close()
			factory(svrconn).Handle(dataChan)
		}()
	}
}
