//go:build windows

package discovery

import (
	"fmt"

	"github.com/robgonnella/fleetprobe/internal/exception"
)

// canOpenRawSocket always reports false, syn scanning is unsupported on windows
func canOpenRawSocket() (bool, error) {
	return false, fmt.Errorf("%w: raw sockets unsupported on windows", exception.ErrPrivilege)
}
