package wire

import (
	"bytes"

	"github.com/mhttpgo/mhttp/message"
)

// Encode renders req as an HTTP/1.1 request. The request-target is
// written verbatim (an empty target becomes "/"); Encode does not
// convert an absolute URI to origin-form. The pool rewrites every
// target to origin-form before the request reaches the client.
func Encode(req message.Request) []byte {
	var buf bytes.Buffer

	target := req.Target
	if target == "" {
		target = "/"
	}

	buf.WriteString(req.Method)
	buf.WriteByte(' ')
	buf.WriteString(target)
	buf.WriteString(" HTTP/1.1\r\n")

	for _, p := range req.Header {
		buf.WriteString(p.Name)
		buf.WriteString(": ")
		buf.WriteString(p.Value)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(req.Body)

	return buf.Bytes()
}
