package discovery_test

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/robgonnella/fleetprobe/internal/discovery"
	"github.com/stretchr/testify/assert"
)

func listen(t *testing.T) (net.Listener, int) {
	l, err := net.Listen("tcp", "127.0.0.1:0")

	if err != nil {
		t.Logf("failed to create test listener: %s", err.Error())
		t.FailNow()
	}

	_, portStr, _ := net.SplitHostPort(l.Addr().String())
	port, _ := strconv.Atoi(portStr)

	return l, port
}

func TestConnectProber(t *testing.T) {
	prober := discovery.NewConnectProber(time.Second)

	t.Run("reports open port", func(st *testing.T) {
		l, port := listen(st)
		defer l.Close()

		go func() {
			conn, err := l.Accept()
			if err == nil {
				conn.Close()
			}
		}()

		open, reason := prober.Probe(context.Background(), "127.0.0.1", port)

		assert.True(st, open)
		assert.Empty(st, reason)
	})

	t.Run("reports refused port as closed with reason", func(st *testing.T) {
		l, port := listen(st)
		l.Close()

		open, reason := prober.Probe(context.Background(), "127.0.0.1", port)

		assert.False(st, open)
		assert.Equal(st, "connection refused", reason)
	})

	t.Run("never errors on malformed address", func(st *testing.T) {
		open, reason := prober.Probe(context.Background(), "not an address", 80)

		assert.False(st, open)
		assert.NotEmpty(st, reason)
	})

	t.Run("reports cancelled context as timeout", func(st *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()

		time.Sleep(time.Millisecond)

		open, reason := prober.Probe(ctx, "127.0.0.1", 9)

		assert.False(st, open)
		assert.Equal(st, "timeout", reason)
	})
}
