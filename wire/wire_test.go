package wire_test

import (
	"testing"

	"github.com/mhttpgo/mhttp/header"
	"github.com/mhttpgo/mhttp/message"
	"github.com/mhttpgo/mhttp/wire"
)

func TestEncode_OriginForm(t *testing.T) {
	req := message.Request{
		Method: "GET",
		Target: "/a/b?x=1",
		Header: header.Set{}.Append("Host", "example.invalid"),
	}

	got := string(wire.Encode(req))
	want := "GET /a/b?x=1 HTTP/1.1\r\nHost: example.invalid\r\n\r\n"
	if got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}

func TestEncode_DefaultsEmptyTargetToSlash(t *testing.T) {
	req := message.Request{Method: "GET"}
	got := string(wire.Encode(req))
	if got != "GET / HTTP/1.1\r\n\r\n" {
		t.Fatalf("Encode = %q", got)
	}
}

func TestParser_FixedLength(t *testing.T) {
	p := wire.NewParser()
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\nConnection: close\r\n\r\nhello"

	resp, tail, err := p.Feed([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp == nil {
		t.Fatal("expected Done, got More")
	}
	if resp.Status != 200 || string(resp.Body) != "hello" {
		t.Fatalf("resp = %+v", resp)
	}
	if len(tail) != 0 {
		t.Fatalf("tail = %q, want empty", tail)
	}
}

func TestParser_FeedIncrementally(t *testing.T) {
	p := wire.NewParser()

	resp, _, err := p.Feed([]byte("HTTP/1.1 200 OK\r\nContent-Le"))
	if err != nil || resp != nil {
		t.Fatalf("expected More, got resp=%v err=%v", resp, err)
	}

	resp, _, err = p.Feed([]byte("ngth: 3\r\n\r\nhe"))
	if err != nil || resp != nil {
		t.Fatalf("expected More (body incomplete), got resp=%v err=%v", resp, err)
	}

	resp, tail, err := p.Feed([]byte("y"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp == nil || string(resp.Body) != "hey" {
		t.Fatalf("resp = %+v", resp)
	}
	if len(tail) != 0 {
		t.Fatalf("tail = %q", tail)
	}
}

func TestParser_Chunked(t *testing.T) {
	p := wire.NewParser()
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n"

	resp, _, err := p.Feed([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp == nil || string(resp.Body) != "hello" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestParser_ChunkedBodySizeIsDecodedSize(t *testing.T) {
	p := wire.NewParser()
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n"

	resp, _, err := p.Feed([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := resp.BodySize(); got != 5 {
		t.Fatalf("BodySize() = %d, want 5 (decoded length, not wire-framed length)", got)
	}
}

func TestParser_ChunkedEmptyBodySize(t *testing.T) {
	p := wire.NewParser()
	raw := "HTTP/1.1 204 No Content\r\nTransfer-Encoding: chunked\r\n\r\n0\r\n\r\n"

	resp, _, err := p.Feed([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := resp.BodySize(); got != 0 {
		t.Fatalf("BodySize() = %d, want 0", got)
	}
}

func TestParser_SwitchingProtocolsWithTail(t *testing.T) {
	p := wire.NewParser()
	raw := "HTTP/1.1 101 Switching Protocols\r\nUpgrade: websocket\r\n\r\nEXTRA-BYTES"

	resp, tail, err := p.Feed([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp == nil || resp.Status != 101 {
		t.Fatalf("resp = %+v", resp)
	}
	if string(tail) != "EXTRA-BYTES" {
		t.Fatalf("tail = %q, want EXTRA-BYTES", tail)
	}
}

func TestParser_InvalidIntermediaryChunked(t *testing.T) {
	p := wire.NewParser()
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: gzip, chunked, identity\r\n\r\n"

	_, _, err := p.Feed([]byte(raw))
	if err != header.ErrInvalidIntermediaryChunked {
		t.Fatalf("err = %v, want ErrInvalidIntermediaryChunked", err)
	}
}

func TestParser_DuplicateContentLength(t *testing.T) {
	p := wire.NewParser()
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\nContent-Length: 6\r\n\r\nhello"

	_, _, err := p.Feed([]byte(raw))
	if err != header.ErrContentLengthMultiple {
		t.Fatalf("err = %v, want ErrContentLengthMultiple", err)
	}
}
