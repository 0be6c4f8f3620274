package wsupgrade

import "io"

// prefixedReader yields buffered bytes first, then falls through to r.
// Used to seed the WebSocket endpoint's reader with the tail bytes
// the HTTP parser had already read past the 101 response's headers.
type prefixedReader struct {
	prefix []byte
	r      io.Reader
}

func newPrefixedReader(prefix []byte, r io.Reader) io.Reader {
	return &prefixedReader{prefix: prefix, r: r}
}

func (p *prefixedReader) Read(buf []byte) (int, error) {
	if len(p.prefix) > 0 {
		n := copy(buf, p.prefix)
		p.prefix = p.prefix[n:]
		return n, nil
	}
	return p.r.Read(buf)
}
