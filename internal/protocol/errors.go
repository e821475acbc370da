package protocol

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/robgonnella/fleetprobe/internal/exception"
)

// wrapNetError wraps a transport error with ErrTimeout or ErrConnection
func wrapNetError(err error) error {
	if err == nil {
		return nil
	}

	if isTimeout(err) {
		return fmt.Errorf("%w: %w", exception.ErrTimeout, err)
	}

	return fmt.Errorf("%w: %w", exception.ErrConnection, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error

	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return strings.Contains(err.Error(), "i/o timeout")
}

func isNetError(err error) bool {
	var netErr net.Error

	if errors.As(err, &netErr) {
		return true
	}

	msg := err.Error()

	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no route to host") ||
		strings.Contains(msg, "network is unreachable") ||
		strings.Contains(msg, "EOF")
}

func protocolError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", exception.ErrProtocol, fmt.Sprintf(format, args...))
}

func authError(err error) error {
	return fmt.Errorf("%w: %w", exception.ErrAuth, err)
}
