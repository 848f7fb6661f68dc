package httpd

import (
	"bufio"
	"strconv"
)

const (
	StatusOK                  = 200
	StatusCreated             = 201
	StatusBadRequest          = 400
	StatusNotFound            = 404
	StatusInternalServerError = 500
)

var statusText = map[int]string{
	StatusOK:                  "OK",
	StatusCreated:             "Created",
	StatusBadRequest:          "Bad Request",
	StatusNotFound:            "Not Found",
	StatusInternalServerError: "Internal Server Error",
}

func StatusText(code int) string {
	return statusText[code]
}

// response is one complete reply. It is assembled by a handler and then
// serialized in a single pass:
//
//	HTTP/1.1 200 OK\r\n
//	Content-Encoding: gzip\r\n          only when negotiated
//	Content-Type: text/plain\r\n
//	Content-Length: 23\r\n              always present when there is a body
//	\r\n
//	<body>
type response struct {
	status          int
	contentEncoding string
	contentType     string
	body            []byte
	hasBody         bool
}

func newResponse(status int) *response {
	return &response{status: status}
}

// setBody attaches body, which may be empty but still counts as present and
// gets a Content-Length: 0.
func (w *response) setBody(contentType string, body []byte) *response {
	w.contentType = contentType
	w.body = body
	w.hasBody = true
	return w
}

func (w *response) writeTo(bufw *bufio.Writer) error {
	bufw.WriteString("HTTP/1.1 ")
	bufw.WriteString(strconv.Itoa(w.status))
	bufw.WriteByte(' ')
	bufw.WriteString(StatusText(w.status))
	bufw.WriteString("\r\n")

	if w.contentEncoding != "" {
		writeField(bufw, "Content-Encoding", w.contentEncoding)
	}
	if w.contentType != "" {
		writeField(bufw, "Content-Type", w.contentType)
	}
	if w.hasBody {
		writeField(bufw, "Content-Length", strconv.Itoa(len(w.body)))
	}
	bufw.WriteString("\r\n")

	if w.hasBody {
		bufw.Write(w.body)
	}
	// bufio.Writer keeps the first error; Flush reports it.
	return bufw.Flush()
}

func writeField(bufw *bufio.Writer, name, value string) {
	bufw.WriteString(name)
	bufw.WriteString(": ")
	bufw.WriteString(value)
	bufw.WriteString("\r\n")
}
