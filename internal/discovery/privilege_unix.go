//go:build !windows

package discovery

import "os"

// canOpenRawSocket returns true when the process may send raw syn segments
func canOpenRawSocket() (bool, error) {
	return os.Geteuid() == 0, nil
}
