package httpd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime"

	"github.com/sirupsen/logrus"
)

// stream wraps one bidirectional byte stream for the lifetime of a single
// request.
//
// Reads go through bufr, which sits on an io.LimitedReader: a peer that
// sends an endless header block runs into io.EOF after 1 MiB instead of
// exhausting memory. readRequest lifts the limit once the header block is
// complete so the body can be any size.
//
// Writes go through bufw so a response leaves in as few syscalls as
// possible. The response is flushed exactly once, at the end.
type stream struct {
	lr   *io.LimitedReader
	bufr *bufio.Reader
	bufw *bufio.Writer
}

const maxHeaderBytes = 1 << 20

func newStream(rw io.ReadWriter) *stream {
	lr := &io.LimitedReader{R: rw, N: maxHeaderBytes}
	return &stream{
		lr:   lr,
		bufr: bufio.NewReaderSize(lr, 4<<10),
		bufw: bufio.NewWriterSize(rw, 4<<10),
	}
}

// outcome describes what happened on a stream, for logging.
type outcome struct {
	req    *Request
	route  string
	status int
}

// serve parses one request, routes it and writes one response. The only
// error it returns is a failure to write to the peer.
func (s *stream) serve(dir string) (outcome, error) {
	req, err := readRequest(s)
	if err != nil {
		o := outcome{route: "parse-error", status: StatusBadRequest}
		if werr := newResponse(StatusBadRequest).writeTo(s.bufw); werr != nil {
			return o, fmt.Errorf("write response: %w", werr)
		}
		return o, err
	}

	rt, arg := match(req.Method, req.Path)
	w := rt.handle(&exchange{
		req:  req,
		arg:  arg,
		dir:  dir,
		body: func() ([]byte, error) { return readBody(s, req) },
	})

	o := outcome{req: req, route: rt.name, status: w.status}
	if err = w.writeTo(s.bufw); err != nil {
		return o, fmt.Errorf("write response: %w", err)
	}
	return o, nil
}

// Handle reads one request from rw and writes exactly one response to it.
// Malformed requests are answered with 400 and are not reported as errors;
// a non-nil error means the response could not be written.
func Handle(rw io.ReadWriter, dir string) error {
	_, err := newStream(rw).serve(dir)
	if isParseError(err) {
		return nil
	}
	return err
}

// conn is one accepted connection. It is handled by a single worker and
// closed afterwards; there is no keep-alive.
type conn struct {
	svr *Server
	rwc net.Conn
	log logrus.FieldLogger
}

func newConn(rwc net.Conn, svr *Server) *conn {
	return &conn{
		svr: svr,
		rwc: rwc,
		log: svr.logger().WithField("remote", rwc.RemoteAddr().String()),
	}
}

func (c *conn) serve() {
	defer func() {
		if err := recover(); err != nil {
			var trace [4096]byte
			n := runtime.Stack(trace[:], false)
			c.log.WithField("panic", err).Errorf("connection handler panicked:\n%s", trace[:n])
		}
		c.close()
	}()

	c.log.Debug("accepted new connection")

	o, err := newStream(c.rwc).serve(c.svr.Dir)
	c.handleOutcome(o, err)
}

func (c *conn) handleOutcome(o outcome, err error) {
	log := c.log.WithFields(logrus.Fields{
		"route":  o.route,
		"status": o.status,
	})
	if o.req != nil {
		log = log.WithFields(logrus.Fields{
			"method": o.req.Method,
			"path":   o.req.Path,
		})
	}

	switch {
	case err == nil:
		log.Info("request served")
	case isParseError(err):
		log.WithError(err).Warn("bad request")
	case errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrClosedPipe):
		log.WithError(err).Debug("peer went away")
	default:
		log.WithError(err).Error("abandoning connection")
	}
}

func (c *conn) close() {
	if err := c.rwc.Close(); err != nil {
		c.log.WithError(err).Debug("close connection")
	}
}
