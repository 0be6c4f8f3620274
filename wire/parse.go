package wire

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/mhttpgo/mhttp/header"
	"github.com/mhttpgo/mhttp/message"
)

// Sentinel errors surfaced by Parser.Feed as InvalidData causes.
var (
	ErrMalformedStatusLine = errors.New("wire: malformed status line")
	ErrMalformedHeaderLine = errors.New("wire: malformed header line")
	ErrMalformedChunkSize  = errors.New("wire: malformed chunk size")
)

// Parser incrementally parses one HTTP/1.1 response from a byte
// stream fed in arbitrary-sized chunks.
type Parser struct {
	buf []byte
}

// NewParser returns a Parser ready to receive the start of a response.
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends chunk to the parser's internal buffer and attempts to
// complete a response.
//
//   - (nil, nil, nil) means More: feed additional bytes.
//   - (resp, tail, nil) means Done: resp is complete and tail holds
//     any bytes read past the message boundary.
//   - (nil, nil, err) means the stream is not valid HTTP/1.1.
func (p *Parser) Feed(chunk []byte) (*message.Response, []byte, error) {
	p.buf = append(p.buf, chunk...)

	headerEnd := bytes.Index(p.buf, []byte("\r\n\r\n"))
	if headerEnd < 0 {
		return nil, nil, nil
	}

	statusAndHeaders := p.buf[:headerEnd]
	rest := p.buf[headerEnd+4:]

	resp, err := parseStatusAndHeaders(statusAndHeaders)
	if err != nil {
		return nil, nil, err
	}

	framing, contentLength, err := resp.Header.BodyFraming()
	if err != nil {
		return nil, nil, err
	}

	switch framing {
	case header.FramingNone:
		resp.Body = nil
		p.buf = nil
		return resp, rest, nil

	case header.FramingFixed:
		if int64(len(rest)) < contentLength {
			return nil, nil, nil
		}
		resp.Body = append([]byte(nil), rest[:contentLength]...)
		tail := rest[contentLength:]
		p.buf = nil
		return resp, tail, nil

	case header.FramingChunked:
		body, tail, complete, err := decodeChunked(rest)
		if err != nil {
			return nil, nil, err
		}
		if !complete {
			return nil, nil, nil
		}
		resp.Body = body
		p.buf = nil
		return resp, tail, nil
	}

	return nil, nil, nil
}

func parseStatusAndHeaders(buf []byte) (*message.Response, error) {
	lines := strings.Split(string(buf), "\r\n")
	if len(lines) == 0 {
		return nil, ErrMalformedStatusLine
	}

	statusFields := strings.SplitN(lines[0], " ", 3)
	if len(statusFields) < 2 {
		return nil, ErrMalformedStatusLine
	}
	code, err := strconv.Atoi(statusFields[1])
	if err != nil {
		return nil, ErrMalformedStatusLine
	}
	reason := ""
	if len(statusFields) == 3 {
		reason = statusFields[2]
	}

	resp := &message.Response{
		Version: statusFields[0],
		Status:  code,
		Reason:  reason,
	}

	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, ErrMalformedHeaderLine
		}
		resp.Header = resp.Header.Append(strings.TrimSpace(name), strings.Trim(value, " \t"))
	}

	return resp, nil
}

// decodeChunked decodes RFC 7230 §4.1 chunked encoding starting at
// the first chunk-size line. It returns the decoded body, the bytes
// remaining after the terminating CRLF (any trailer fields are
// consumed and discarded), and whether the chunked body is fully
// present in buf.
func decodeChunked(buf []byte) (body []byte, tail []byte, complete bool, err error) {
	rest := buf
	var decoded []byte

	for {
		lineEnd := bytes.Index(rest, []byte("\r\n"))
		if lineEnd < 0 {
			return nil, nil, false, nil
		}
		sizeLine := rest[:lineEnd]
		if idx := bytes.IndexByte(sizeLine, ';'); idx >= 0 {
			sizeLine = sizeLine[:idx]
		}
		size, err := strconv.ParseInt(strings.TrimSpace(string(sizeLine)), 16, 64)
		if err != nil || size < 0 {
			return nil, nil, false, ErrMalformedChunkSize
		}
		rest = rest[lineEnd+2:]

		if size == 0 {
			// Trailer section: zero or more header lines terminated
			// by an empty line. A bare CRLF means no trailers.
			if bytes.HasPrefix(rest, []byte("\r\n")) {
				return decoded, rest[2:], true, nil
			}
			trailerEnd := bytes.Index(rest, []byte("\r\n\r\n"))
			if trailerEnd < 0 {
				return nil, nil, false, nil
			}
			return decoded, rest[trailerEnd+4:], true, nil
		}

		if int64(len(rest)) < size+2 {
			return nil, nil, false, nil
		}
		decoded = append(decoded, rest[:size]...)
		if !bytes.HasPrefix(rest[size:], []byte("\r\n")) {
			return nil, nil, false, ErrMalformedChunkSize
		}
		rest = rest[size+2:]
	}
}
