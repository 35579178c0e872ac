package logging

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogstashWriterRequiresAddress(t *testing.T) {
	if _, err := NewLogstashWriter("  "); err == nil {
		t.Fatalf("expected error for empty address")
	}
}

func TestLogstashWriterForwardsZapEntries(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	lines := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		lines <- line
	}()

	writer, err := NewLogstashWriter(ln.Addr().String())
	if err != nil {
		t.Fatalf("NewLogstashWriter: %v", err)
	}
	defer writer.Close()

	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), writer, zapcore.InfoLevel)
	zap.New(core).Info("review created", zap.Int64("review_id", 7))

	select {
	case line := <-lines:
		if !strings.Contains(line, `"msg":"review created"`) || !strings.Contains(line, `"review_id":7`) {
			t.Fatalf("unexpected line %q", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for log line")
	}
}

func TestLogstashWriterDropsWhileUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	writer, err := NewLogstashWriter(addr, WithDialTimeout(100*time.Millisecond), WithRetryInterval(time.Minute))
	if err != nil {
		t.Fatalf("NewLogstashWriter: %v", err)
	}
	defer writer.Close()

	for i := 0; i < 3; i++ {
		n, err := writer.Write([]byte("entry"))
		if err != nil || n != len("entry") {
			t.Fatalf("expected write to succeed silently, got n=%d err=%v", n, err)
		}
	}
	if writer.Dropped() != 3 {
		t.Fatalf("expected 3 dropped entries, got %d", writer.Dropped())
	}
}

func TestLogstashWriterClosed(t *testing.T) {
	writer, err := NewLogstashWriter("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewLogstashWriter: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := writer.Write([]byte("late")); err == nil {
		t.Fatalf("expected error after close")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	logger, cleanup, err := New(Config{Level: "debug", Format: "console", Service: "cityscore"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cleanup()
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be enabled")
	}
}
