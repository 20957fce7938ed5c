// Package server wraps the connection handler in an accept loop with
// graceful shutdown: it serves an already-bound listener, hands each accepted
// connection to the connection handler on its own goroutine, and waits
// for every in-flight connection to notice cancellation before returning.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mickamy/respkv/internal/command"
	"github.com/mickamy/respkv/internal/connection"
)

// Server accepts connections on a net.Listener and hands each one to the
// connection handler on its own goroutine.
type Server struct {
	lis  net.Listener
	disp *command.Dispatcher
}

// New wraps lis, dispatching every accepted connection through disp.
func New(lis net.Listener, disp *command.Dispatcher) *Server {
	return &Server{lis: lis, disp: disp}
}

// ListenAndServe accepts connections until ctx is cancelled or Accept
// fails, running every connection's handler under a shared errgroup so
// shutdown can wait for in-flight connections to notice ctx is done.
// It returns nil on a clean, context-driven shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return s.lis.Close()
	})

	g.Go(func() error {
		for {
			conn, err := s.lis.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil // shutting down: listener closed deliberately
				}
				return fmt.Errorf("server: accept: %w", err)
			}

			connID := uuid.NewString()
			log.Printf("conn %s: accepted from %s", connID, conn.RemoteAddr())

			g.Go(func() error {
				defer conn.Close()
				// Closing the connection on shutdown unblocks Handle's pending read.
				stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
				defer stop()
				if err := connection.Handle(conn, s.disp); err != nil {
					log.Printf("conn %s: closed: %v", connID, err)
				} else {
					log.Printf("conn %s: closed", connID)
				}
				return nil // a single connection's error never aborts the server
			})
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
