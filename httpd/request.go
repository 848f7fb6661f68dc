package httpd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Request is what readRequest extracts from the byte stream. A request on
// the wire looks like
//
//	POST /files/notes.txt HTTP/1.1\r\n     request line
//	Host: 127.0.0.1:4221\r\n               header fields, one per line
//	User-Agent: curl/8.4.0\r\n
//	Content-Length: 5\r\n
//	\r\n                                   blank line ends the header block
//	hello                                  body, exactly Content-Length bytes
//
// The body is not read by readRequest; handlers that need it call readBody.
type Request struct {
	Method string
	Path   string
	Proto  string // kept but not validated

	// rawHeader holds the header lines joined with "\n", names lower-cased.
	rawHeader string
	header    Header
	parsed    bool
}

// Header parses the raw header block on first use.
func (r *Request) Header() Header {
	if !r.parsed {
		r.header = parseHeader(r.rawHeader)
		r.parsed = true
	}
	return r.header
}

func readRequest(s *stream) (*Request, error) {
	r := new(Request)

	line, err := readLine(s.bufr)
	if err != nil && len(line) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequestLine, err)
	}

	parts := strings.Fields(string(line))
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRequestLine, line)
	}
	r.Method, r.Path, r.Proto = parts[0], parts[1], parts[2]

	if r.rawHeader, err = readHeaderBlock(s.bufr); err != nil {
		return nil, err
	}

	// the header limit only protects the header block
	s.lr.N = noLimit
	return r, nil
}

const noLimit = (1 << 63) - 1

// readLine returns one line without its trailing "\r\n" or "\n". Lines
// longer than the bufio buffer come back from ReadLine in pieces (isPrefix),
// which are glued together here.
func readLine(bufr *bufio.Reader) ([]byte, error) {
	p, isPrefix, err := bufr.ReadLine()
	if err != nil {
		return p, err
	}

	var l []byte
	for isPrefix {
		l, isPrefix, err = bufr.ReadLine()
		if err != nil {
			break
		}
		p = append(p, l...)
	}

	return p, err
}

// readHeaderBlock reads header lines up to the blank line that ends the
// block. Reaching the end of the stream first is an error.
func readHeaderBlock(bufr *bufio.Reader) (string, error) {
	var b strings.Builder

	for {
		line, err := readLine(bufr)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrIncompleteHeaders, err)
		}
		if len(line) == 0 {
			break
		}

		lineStr := string(line)
		// names are case-insensitive, values are not: only the name is lowered
		if index := strings.IndexByte(lineStr, ':'); index > 0 {
			lineStr = strings.ToLower(lineStr[:index]) + lineStr[index:]
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(lineStr)
	}

	return b.String(), nil
}

// contentLength is 0 when the header is missing or not a non-negative
// integer.
func contentLength(h Header) int64 {
	n, err := strconv.ParseInt(h.Get("content-length"), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// readBody reads exactly Content-Length bytes following the header block.
func readBody(s *stream, r *Request) ([]byte, error) {
	n := contentLength(r.Header())
	if n == 0 {
		return []byte{}, nil
	}

	// the buffer grows with what actually arrives, not with the declared
	// length
	var body bytes.Buffer
	if _, err := body.ReadFrom(io.LimitReader(s.bufr, n)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedBody, err)
	}
	if int64(body.Len()) != n {
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrTruncatedBody, body.Len(), n)
	}
	return body.Bytes(), nil
}
