package mhttp_test

import (
	"bufio"
	"context"
	"errors"
	"net"
	"testing"

	"github.com/mhttpgo/mhttp"
)

func stubServer(t *testing.T, handle func(conn net.Conn)) (addr string, closeFn func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		handle(conn)
	}()
	return ln.Addr().String(), func() { ln.Close() }
}

func TestRegistry_StartSendStop(t *testing.T) {
	addr, closeFn := stubServer(t, func(conn net.Conn) {
		defer conn.Close()
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil || line == "\r\n" {
				break
			}
		}
		conn.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\nConnection: close\r\n\r\nhello"))
	})
	defer closeFn()

	const id = mhttp.PoolID("registry-test-basic")
	if err := mhttp.StartPool(id, mhttp.PoolOptions{MaxConnectionsPerKey: 1}); err != nil {
		t.Fatalf("StartPool: %v", err)
	}
	defer mhttp.StopPool(id)

	outcome, err := mhttp.SendRequest(context.Background(), mhttp.Request{
		Method: "GET",
		Target: "http://" + addr + "/",
	}, mhttp.RequestOptions{Pool: id})
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if outcome.Response.Status != 200 || string(outcome.Response.Body) != "hello" {
		t.Fatalf("outcome = %+v", outcome)
	}

	if err := mhttp.StopPool(id); err != nil {
		t.Fatalf("StopPool: %v", err)
	}

	_, err = mhttp.SendRequest(context.Background(), mhttp.Request{
		Method: "GET",
		Target: "http://" + addr + "/",
	}, mhttp.RequestOptions{Pool: id})
	if !errors.Is(err, mhttp.ErrPoolNotFound) {
		t.Fatalf("err = %v, want ErrPoolNotFound", err)
	}
}

func TestRegistry_StartPoolTwiceFails(t *testing.T) {
	const id = mhttp.PoolID("registry-test-dup")
	if err := mhttp.StartPool(id, mhttp.PoolOptions{}); err != nil {
		t.Fatalf("StartPool: %v", err)
	}
	defer mhttp.StopPool(id)

	if err := mhttp.StartPool(id, mhttp.PoolOptions{}); !errors.Is(err, mhttp.ErrPoolAlreadyStarted) {
		t.Fatalf("err = %v, want ErrPoolAlreadyStarted", err)
	}
}

func TestRegistry_SendRequestDefaultsToDefaultPool(t *testing.T) {
	addr, closeFn := stubServer(t, func(conn net.Conn) {
		defer conn.Close()
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil || line == "\r\n" {
				break
			}
		}
		conn.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\nConnection: close\r\n\r\nok"))
	})
	defer closeFn()

	if err := mhttp.StartPool("", mhttp.PoolOptions{}); err != nil {
		t.Fatalf("StartPool: %v", err)
	}
	defer mhttp.StopPool("")

	outcome, err := mhttp.SendRequest(context.Background(), mhttp.Request{
		Method: "GET",
		Target: "http://" + addr + "/",
	}, mhttp.RequestOptions{})
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if string(outcome.Response.Body) != "ok" {
		t.Fatalf("body = %q", outcome.Response.Body)
	}
}
