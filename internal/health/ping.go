package health

import (
	"context"
	"net"
	"os/exec"
	"runtime"
	"strconv"
	"time"
)

// SystemPinger implements the Pinger interface using the platform ping
// binary
type SystemPinger struct {
	command string
}

// NewSystemPinger returns a new instance of SystemPinger
func NewSystemPinger() *SystemPinger {
	return &SystemPinger{command: "ping"}
}

// Ping sends a single echo request, any failure is reported as false
func (p *SystemPinger) Ping(ctx context.Context, address string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout+time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.command, pingArgs(runtime.GOOS, address, timeout)...)

	return cmd.Run() == nil
}

func pingArgs(goos, address string, timeout time.Duration) []string {
	switch goos {
	case "windows":
		return []string{"-n", "1", "-w", strconv.FormatInt(timeout.Milliseconds(), 10), address}
	case "darwin":
		return []string{"-c", "1", "-W", strconv.FormatInt(timeout.Milliseconds(), 10), address}
	default:
		seconds := int(timeout.Seconds())

		if seconds < 1 {
			seconds = 1
		}

		return []string{"-c", "1", "-W", strconv.Itoa(seconds), address}
	}
}

// ConnectPinger implements the Pinger interface with a tcp connection to
// a fixed port, used where icmp is unavailable
type ConnectPinger struct {
	port int
}

// NewConnectPinger returns a new instance of ConnectPinger
func NewConnectPinger(port int) *ConnectPinger {
	return &ConnectPinger{port: port}
}

// Ping reports whether the address accepts or actively refuses a tcp
// connection, both prove the host is up
func (p *ConnectPinger) Ping(ctx context.Context, address string, timeout time.Duration) bool {
	d := net.Dialer{Timeout: timeout}

	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(p.port)))

	if err != nil {
		return isRefused(err)
	}

	conn.Close()

	return true
}
