package httpd

import (
	"os"
	"path/filepath"
)

func handleRoot(*exchange) *response {
	return newResponse(StatusOK)
}

func handleNotFound(*exchange) *response {
	return newResponse(StatusNotFound)
}

func handleEcho(x *exchange) *response {
	body := []byte(x.arg)

	coding := negotiateEncoding(x.req.Header().Tokens("accept-encoding"))
	if coding == "" {
		return newResponse(StatusOK).setBody("text/plain", body)
	}

	encoded, err := encoders[coding](body)
	if err != nil {
		return newResponse(StatusInternalServerError)
	}
	w := newResponse(StatusOK).setBody("text/plain", encoded)
	w.contentEncoding = coding
	return w
}

func handleUserAgent(x *exchange) *response {
	ua, ok := x.req.Header().Lookup("user-agent")
	if !ok {
		return newResponse(StatusBadRequest)
	}
	return newResponse(StatusOK).setBody("text/plain", []byte(ua))
}

// filePath joins name onto the serving directory. Names are not checked for
// ".." segments, so a request can reach outside dir.
// TODO: reject names that resolve outside dir once a confinement policy is
// agreed on.
func filePath(dir, name string) string {
	return filepath.Join(dir, name)
}

func handleFileRead(x *exchange) *response {
	data, err := os.ReadFile(filePath(x.dir, x.arg))
	if err != nil {
		return newResponse(StatusNotFound)
	}
	return newResponse(StatusOK).setBody("application/octet-stream", data)
}

func handleFileWrite(x *exchange) *response {
	f, err := os.Create(filePath(x.dir, x.arg))
	if err != nil {
		return newResponse(StatusInternalServerError)
	}
	defer f.Close()

	body, err := x.body()
	if err != nil {
		return newResponse(StatusBadRequest)
	}

	if _, err = f.Write(body); err != nil {
		return newResponse(StatusInternalServerError)
	}
	if err = f.Close(); err != nil {
		return newResponse(StatusInternalServerError)
	}
	return newResponse(StatusCreated)
}
