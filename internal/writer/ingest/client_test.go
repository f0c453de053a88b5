// internal/writer/ingest/client_test.go
package ingest

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// serveOnce accepts one connection, captures the packet and answers with resp.
func serveOnce(t *testing.T, payloadLen int, resp byte) (addr string, got <-chan []byte) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	ch := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, headerLen+payloadLen)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		ch <- buf
		_, _ = conn.Write([]byte{resp})
	}()

	return ln.Addr().String(), ch
}

func TestWriteRegisters_PacketLayout(t *testing.T) {
	addr, got := serveOnce(t, 4, respOK)

	c, err := NewEndpointClient(Config{Endpoint: addr, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewEndpointClient err=%v", err)
	}

	if err := c.WriteRegisters(3, 7, 0x0102, []uint16{81, 0x0A0B}); err != nil {
		t.Fatalf("WriteRegisters err=%v", err)
	}

	want := []byte{
		'R', 'I', 0x01, 3,
		0x00, 0x07,
		0x01, 0x02,
		0x00, 0x02,
		0x00, 81, 0x0A, 0x0B,
	}
	if diff := cmp.Diff(want, <-got); diff != "" {
		t.Fatalf("packet mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteRegisters_Rejected(t *testing.T) {
	addr, _ := serveOnce(t, 2, respRejected)

	c, err := NewEndpointClient(Config{Endpoint: addr, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewEndpointClient err=%v", err)
	}

	err = c.WriteRegisters(3, 1, 0, []uint16{1})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestWriteRegisters_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c, err := NewEndpointClient(Config{Endpoint: addr, Timeout: 200 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewEndpointClient err=%v", err)
	}

	if err := c.WriteRegisters(3, 1, 0, []uint16{1}); err == nil {
		t.Fatalf("expected dial error, got nil")
	}
}
