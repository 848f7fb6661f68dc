package httpd

// server.go only deals with starting and stopping the server: it accepts
// connections and hands each one to the worker pool.

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"minihttpd/workerpool"
)

const (
	DefaultAddr    = "127.0.0.1:4221"
	DefaultWorkers = 4
)

// Server needs an address and a directory to serve files from. Workers fixes
// how many connections are handled at the same time; further connections
// wait in the pool's queue.
type Server struct {
	Addr    string
	Dir     string
	Workers int
	Logger  logrus.FieldLogger

	mu       sync.Mutex
	listener net.Listener
	pool     *workerpool.Pool
	closed   bool
}

func (s *Server) logger() logrus.FieldLogger {
	if s.Logger != nil {
		return s.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (s *Server) ListenAndServe() error {
	addr := s.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve accepts connections on l until Close is called. Every accepted
// connection becomes one task in the worker pool; the accept loop itself
// never waits for a handler.
func (s *Server) Serve(l net.Listener) error {
	workers := s.Workers
	if workers == 0 {
		workers = DefaultWorkers
	}
	pool, err := workerpool.New(workers, s.logger())
	if err != nil {
		l.Close()
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		l.Close()
		pool.Close()
		return ErrServerClosed
	}
	s.listener = l
	s.pool = pool
	s.mu.Unlock()

	log := s.logger()
	log.WithFields(logrus.Fields{
		"addr":      l.Addr().String(),
		"directory": s.Dir,
		"workers":   workers,
	}).Info("listening")

	var tempDelay time.Duration // how long to sleep on accept failure
	for {
		rwc, err := l.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				// closed underneath us, not through Close
				pool.Close()
				return err
			}
			tempDelay = acceptBackoff(tempDelay)
			log.WithError(err).WithField("retry_in", tempDelay).Warn("accept failed")
			time.Sleep(tempDelay)
			continue // other connections still need serving
		}
		tempDelay = 0

		c := newConn(rwc, s)
		if err := pool.Submit(c.serve); err != nil {
			c.log.WithError(err).Warn("dropping connection")
			c.close()
		}
	}
}

const maxAcceptDelay = time.Second

// acceptBackoff doubles the previous delay, starting at 5ms and capped at
// maxAcceptDelay, so errors like EMFILE do not spin the accept loop.
func acceptBackoff(prev time.Duration) time.Duration {
	if prev == 0 {
		return 5 * time.Millisecond
	}
	if prev *= 2; prev > maxAcceptDelay {
		return maxAcceptDelay
	}
	return prev
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops accepting connections, then waits until every connection
// already accepted, running or queued, has been handled.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	l, pool := s.listener, s.pool
	s.mu.Unlock()

	var err error
	if l != nil {
		err = l.Close()
	}
	if pool != nil {
		pool.Close()
	}
	return err
}
