package httpd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	testCases := []struct {
		method        string
		path          string
		expectedRoute string
		expectedArg   string
	}{
		{"GET", "/", "root", ""},
		{"GET", "/echo/abc", "echo", "abc"},
		{"GET", "/echo/a/b/c", "echo", "a/b/c"},
		{"GET", "/echo/", "echo", ""},
		{"GET", "/echo", "not-found", ""},
		{"GET", "/user-agent", "user-agent", ""},
		{"GET", "/user-agent/x", "user-agent", "/x"},
		{"GET", "/user-agent?x=1", "user-agent", "?x=1"},
		{"GET", "/files/foo.txt", "file-read", "foo.txt"},
		{"POST", "/files/foo.txt", "file-write", "foo.txt"},
		{"POST", "/", "not-found", ""},
		{"POST", "/echo/abc", "not-found", ""},
		{"PUT", "/files/foo.txt", "not-found", ""},
		{"get", "/", "not-found", ""},
		{"GET", "/nope", "not-found", ""},
		{"GET", "", "not-found", ""},
	}

	for _, tc := range testCases {
		rt, arg := match(tc.method, tc.path)
		assert.Equal(t, tc.expectedRoute, rt.name, "%s %s", tc.method, tc.path)
		assert.Equal(t, tc.expectedArg, arg, "%s %s", tc.method, tc.path)
	}
}
