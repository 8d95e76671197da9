package server

import (
	"context"
	"errors"
	"net"

	"github.com/google/uuid"
)

// Server listens on a TCP address and runs one connection state machine
// per accepted socket against a shared Core.
type Server struct {
	addr string
	core *Core
}

// New returns a Server bound to addr (not yet listening) with a fresh Core
// built from opts. addr follows net.Listen's "tcp" address syntax, e.g.
// "0.0.0.0:8080".
func New(addr string, opts ...Option) *Server {
	return &Server{addr: addr, core: NewCore(opts...)}
}

// Core exposes the server's shared state, mainly for tests that want to
// assert on it directly (e.g. metrics after driving a scenario through a
// real listener).
func (s *Server) Core() *Core { return s.core }

// ListenAndServe accepts connections until ctx is cancelled or the listener
// errors. It blocks the calling goroutine; each accepted connection runs in
// its own goroutine and is not waited on before ListenAndServe returns.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.core.Log.Info("listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				if errors.Is(err, net.ErrClosed) {
					return nil
				}
				return err
			}
		}

		s.core.Metrics.IncrementConnectionsAccepted()
		id := uuid.New().String()
		go newConnection(id, conn, s.core).run()
	}
}
