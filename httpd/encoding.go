package httpd

import (
	"bytes"
	"compress/gzip"
	"strings"
)

type encoder func([]byte) ([]byte, error)

// encoders lists the content codings the server can produce.
var encoders = map[string]encoder{
	"gzip": gzipEncode,
}

// negotiateEncoding picks the first offered token, left to right, that names
// a supported coding. It returns "" when none matches.
func negotiateEncoding(offered []string) string {
	for _, token := range offered {
		token = strings.ToLower(token)
		if _, ok := encoders[token]; ok {
			return token
		}
	}
	return ""
}

func gzipEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
