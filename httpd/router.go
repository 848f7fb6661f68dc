package httpd

import "strings"

// exchange carries what a route handler may look at. body reads the request
// body on demand, so only handlers that need it touch the stream.
type exchange struct {
	req  *Request
	arg  string // part of the path captured by the route, e.g. "abc" in /echo/abc
	dir  string
	body func() ([]byte, error)
}

type handlerFunc func(x *exchange) *response

type route struct {
	name   string
	method string
	match  func(path string) (string, bool)
	handle handlerFunc
}

func exact(want string) func(string) (string, bool) {
	return func(path string) (string, bool) {
		return "", path == want
	}
}

func prefix(p string) func(string) (string, bool) {
	return func(path string) (string, bool) {
		if !strings.HasPrefix(path, p) {
			return "", false
		}
		return path[len(p):], true
	}
}

// routes is evaluated top to bottom and the first match wins.
var routes = []route{
	{name: "root", method: "GET", match: exact("/"), handle: handleRoot},
	{name: "echo", method: "GET", match: prefix("/echo/"), handle: handleEcho},
	{name: "user-agent", method: "GET", match: prefix("/user-agent"), handle: handleUserAgent},
	{name: "file-read", method: "GET", match: prefix("/files/"), handle: handleFileRead},
	{name: "file-write", method: "POST", match: prefix("/files/"), handle: handleFileWrite},
}

var notFoundRoute = route{name: "not-found", handle: handleNotFound}

// match returns the route for method and path along with the captured path
// remainder. Unknown requests get notFoundRoute.
func match(method, path string) (*route, string) {
	for i := range routes {
		rt := &routes[i]
		if rt.method != method {
			continue
		}
		if arg, ok := rt.match(path); ok {
			return rt, arg
		}
	}
	return &notFoundRoute, ""
}
