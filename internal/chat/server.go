package chat

import (
	"log/slog"
	"net"
)

// Options configures a Server. Zero buffer sizes fall back to defaults.
type Options struct {
	Addr          string
	Name          string
	EventBuffer   int
	SessionBuffer int
}

type Server struct {
	addr     string
	outBuf   int
	logger   *slog.Logger
	reg      *Registry
	listener net.Listener
}

func NewServer(opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SessionBuffer <= 0 {
		opts.SessionBuffer = 32
	}
	return &Server{
		addr:   opts.Addr,
		outBuf: opts.SessionBuffer,
		logger: logger,
		reg:    NewRegistry(opts.Name, opts.EventBuffer, logger),
	}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln

	go s.reg.Run()
	go s.acceptLoop(ln)

	s.logger.Info("server started", "addr", ln.Addr().String(), "name", s.reg.name)
	return nil
}

// Addr reports the bound listen address, useful when Options.Addr was ":0".
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Stop() {
	s.logger.Info("shutting down")

	if s.listener != nil {
		s.listener.Close()
	}

	s.reg.Stop()
	s.reg.Wait()

	s.logger.Info("shutdown complete")
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Closed listener lands here on shutdown.
			return
		}

		s.logger.Info("client connected", "addr", conn.RemoteAddr().String())

		sess := &Session{
			Conn: conn,
			Out:  make(chan string, s.outBuf),
		}
		StartOutboundWriter(conn, sess.Out)
		if !s.reg.post(Event{Type: EventConnect, Session: sess}) {
			close(sess.Out)
			return
		}
		go HandleSession(sess, s.reg)
	}
}
