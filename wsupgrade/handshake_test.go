package wsupgrade_test

import (
	"crypto/sha1"
	"encoding/base64"
	"net"
	"testing"

	"github.com/mhttpgo/mhttp/message"
	"github.com/mhttpgo/mhttp/wsupgrade"
)

func TestProtocol_PrepareRequest(t *testing.T) {
	p, err := wsupgrade.New(wsupgrade.Options{Subprotocols: []string{"chat", "superchat"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := message.Request{Method: "GET", Target: "/chat"}
	out := p.PrepareRequest(req)

	if out.Method != "GET" {
		t.Fatalf("Method = %q", out.Method)
	}
	if v, _ := out.Header.Find("Connection"); v != "Upgrade" {
		t.Fatalf("Connection = %q", v)
	}
	if v, _ := out.Header.Find("Upgrade"); v != "websocket" {
		t.Fatalf("Upgrade = %q", v)
	}
	if v, _ := out.Header.Find("Sec-WebSocket-Version"); v != "13" {
		t.Fatalf("Sec-WebSocket-Version = %q", v)
	}
	if v, _ := out.Header.Find("Sec-WebSocket-Protocol"); v != "chat superchat" {
		t.Fatalf("Sec-WebSocket-Protocol = %q", v)
	}
	if _, ok := out.Header.Find("Sec-WebSocket-Key"); !ok {
		t.Fatal("expected Sec-WebSocket-Key to be set")
	}
}

func TestProtocol_ValidateSuccess(t *testing.T) {
	p, err := wsupgrade.New(wsupgrade.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	req := p.PrepareRequest(message.Request{Method: "GET"})
	key, _ := req.Header.Find("Sec-WebSocket-Key")

	sum := sha1.Sum([]byte(key + "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"))
	accept := base64.StdEncoding.EncodeToString(sum[:])

	resp := message.Response{Status: 101}
	resp.Header = resp.Header.Append("Sec-WebSocket-Accept", accept)

	if !p.Detect(resp) {
		t.Fatal("expected Detect true for 101 response")
	}
	if err := p.Validate(resp); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestProtocol_ValidateMissingAccept(t *testing.T) {
	p, err := wsupgrade.New(wsupgrade.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp := message.Response{Status: 101}
	if err := p.Validate(resp); err != wsupgrade.ErrMissingAccept {
		t.Fatalf("err = %v, want ErrMissingAccept", err)
	}
}

func TestProtocol_ValidateMismatch(t *testing.T) {
	p, err := wsupgrade.New(wsupgrade.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp := message.Response{Status: 101}
	resp.Header = resp.Header.Append("Sec-WebSocket-Accept", "wrong-value")
	if err := p.Validate(resp); err != wsupgrade.ErrAcceptMismatch {
		t.Fatalf("err = %v, want ErrAcceptMismatch", err)
	}
}

func TestEndpoint_WriteReadRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	clientEP := wsupgrade.NewEndpoint(client, nil)
	serverEP := wsupgrade.NewEndpoint(server, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		op, payload, err := serverEP.ReadMessage()
		if err != nil {
			t.Errorf("ReadMessage: %v", err)
			return
		}
		if op != wsupgrade.OpText || string(payload) != "hello" {
			t.Errorf("op=%v payload=%q", op, payload)
		}
	}()

	if err := clientEP.WriteMessage(wsupgrade.OpText, []byte("hello")); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	<-done
}

func TestEndpoint_TailBytesDeliveredFirst(t *testing.T) {
	// First capture a real masked frame for "hi" over one pipe pair.
	c1, c2 := net.Pipe()
	writerEP := wsupgrade.NewEndpoint(c1, nil)
	captured := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 64)
		n, _ := c2.Read(buf)
		captured <- buf[:n]
	}()
	if err := writerEP.WriteMessage(wsupgrade.OpText, []byte("hi")); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	frame := <-captured
	c1.Close()
	c2.Close()

	if len(frame) < 4 {
		t.Fatalf("captured frame too short: %d bytes", len(frame))
	}
	tail := frame[:3]
	rest := frame[3:]

	// Now feed it to a fresh Endpoint as tail bytes plus a live
	// connection carrying the remainder, as the HTTP client would
	// after a 101 response.
	server, remote := net.Pipe()
	serverEP := wsupgrade.NewEndpoint(server, tail)

	go func() {
		remote.Write(rest)
	}()

	op, payload, err := serverEP.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if op != wsupgrade.OpText || string(payload) != "hi" {
		t.Fatalf("op=%v payload=%q", op, payload)
	}
}
