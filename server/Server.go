package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/google/uuid"

	"github.com/samuelfneumann/rlinterface/environment"
)

// DefaultAddress is the endpoint a Server binds when none is configured
const DefaultAddress = "tcp://*:5555"

// DefaultLinger is how long a Server keeps its socket open after
// replying to a close request when no linger is configured
const DefaultLinger = 250 * time.Millisecond

// Config configures a Server
type Config struct {
	// Address is the ZeroMQ endpoint to bind, e.g. tcp://*:5555
	Address string

	// Linger is how long the socket stays open after the reply to a
	// close request is queued. Replies are written to the peer
	// asynchronously, so closing at once would drop the reply.
	Linger time.Duration
}

// Server serves a single environment over a ZeroMQ REP socket. Requests
// are handled one at a time, in the order they are received.
type Server struct {
	config  Config
	handler *Handler
	logger  *slog.Logger
	session string
}

// New returns a new Server over env. If logger is nil, slog.Default()
// is used.
func New(env environment.Untyped, config Config, logger *slog.Logger) (*Server,
	error) {
	if config.Address == "" {
		config.Address = DefaultAddress
	}
	if config.Linger <= 0 {
		config.Linger = DefaultLinger
	}
	if logger == nil {
		logger = slog.Default()
	}

	session := uuid.NewString()
	logger = logger.With("session", session)

	handler, err := NewHandler(env, logger)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &Server{
		config:  config,
		handler: handler,
		logger:  logger,
		session: session,
	}, nil
}

// Session returns the id which tags this Server's log records
func (s *Server) Session() string {
	return s.session
}

// Address returns the endpoint the Server binds
func (s *Server) Address() string {
	return s.config.Address
}

// Serve binds the configured endpoint and answers requests until ctx is
// cancelled or a close request is handled, in which case nil is
// returned. The socket is closed before Serve returns.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sock := zmq4.NewRep(ctx)
	defer sock.Close()

	if err := sock.Listen(s.config.Address); err != nil {
		return fmt.Errorf("serve: could not listen on %v: %w",
			s.config.Address, err)
	}
	s.logger.Info("serving environment", "address", s.config.Address)

	for {
		msg, err := sock.Recv()
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("stopped serving", "reason", ctx.Err())
				return nil
			}
			return fmt.Errorf("serve: could not receive request: %w", err)
		}

		rep := s.handler.Handle(msg.Bytes())
		out, err := rep.Encode()
		if err != nil {
			return fmt.Errorf("serve: could not encode reply: %w", err)
		}

		if err := sock.Send(zmq4.NewMsg(out)); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("serve: could not send reply: %w", err)
		}

		if s.handler.Closed() {
			s.linger(ctx)
			s.logger.Info("stopped serving", "reason", "close requested")
			return nil
		}
	}
}

// linger waits for the configured linger period or until ctx is done
func (s *Server) linger(ctx context.Context) {
	t := time.NewTimer(s.config.Linger)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
