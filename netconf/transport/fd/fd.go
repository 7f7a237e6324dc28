// Package fd implements the simplest NETCONF transport adapter variant:
// wrapping an already-open io.ReadWriteCloser (a subprocess's stdio
// pipes, a unix socket, an already-authenticated file descriptor handed
// in by a supervisor process) as a Transport with no connection setup
// of its own. The same shape fits an in-memory pipe handed to a
// session.
package fd

import (
	"io"

	"github.com/netconflib/netconf/netconf/transport"
)

// New wraps rwc as a Transport. name is used only for trace/error
// messages; it need not be a real file descriptor path.
func New(rwc io.ReadWriteCloser, name string) transport.Transport {
	return &fdTransport{ReadWriteCloser: rwc, name: name}
}

// FromPipes combines a separate reader and writer (a subprocess's
// stdout/stdin pipes, typically) into a single Transport.
func FromPipes(r io.Reader, w io.WriteCloser, name string) transport.Transport {
	return &pipeTransport{r: r, w: w, name: name}
}

type fdTransport struct {
	io.ReadWriteCloser
	name string
}

// Target returns the descriptor's name, for trace/error messages.
func (f *fdTransport) Target() string { return f.name }

type pipeTransport struct {
	r    io.Reader
	w    io.WriteCloser
	name string
}

func (p *pipeTransport) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipeTransport) Write(b []byte) (int, error) { return p.w.Write(b) }

// Close closes the write side; if the reader is also closeable (it
// usually is not, for an exec.Cmd's stdout pipe, which is closed by
// Cmd.Wait), it is closed too.
func (p *pipeTransport) Close() error {
	err := p.w.Close()
	if rc, ok := p.r.(io.Closer); ok {
		if cerr := rc.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Target returns the descriptor's name, for trace/error messages.
func (p *pipeTransport) Target() string { return p.name }
