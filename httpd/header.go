package httpd

import "strings"

type headerField struct {
	name  string // lower-cased
	value string
}

// Header is a case-insensitive, ordered view over a request's header block.
// Lookups return the first matching field.
type Header []headerField

// parseHeader builds a Header from a raw block of "name: value" lines
// separated by "\n". Lines without a colon are ignored.
func parseHeader(raw string) Header {
	if raw == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	h := make(Header, 0, len(lines))
	for _, line := range lines {
		index := strings.IndexByte(line, ':')
		if index <= 0 {
			continue
		}
		h = append(h, headerField{
			name:  strings.ToLower(strings.TrimSpace(line[:index])),
			value: strings.TrimSpace(line[index+1:]),
		})
	}
	return h
}

func (h Header) Lookup(key string) (string, bool) {
	key = strings.ToLower(key)
	for _, f := range h {
		if f.name == key {
			return f.value, true
		}
	}
	return "", false
}

func (h Header) Get(key string) string {
	val, _ := h.Lookup(key)
	return val
}

// Tokens splits the value of key on commas, e.g.
// "Accept-Encoding: gzip, deflate, br" yields [gzip deflate br].
func (h Header) Tokens(key string) []string {
	val, ok := h.Lookup(key)
	if !ok {
		return nil
	}
	var tokens []string
	for _, t := range strings.Split(val, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func (h Header) Len() int { return len(h) }
