//go:build windows

package health

import (
	"errors"
	"syscall"
)

// WSAECONNREFUSED
const errConnRefused = syscall.Errno(10061)

func isRefused(err error) bool {
	return errors.Is(err, errConnRefused) || errors.Is(err, syscall.ECONNREFUSED)
}
