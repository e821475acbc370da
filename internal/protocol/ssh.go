package protocol

import (
	"context"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

type dialFunc func(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error)

// SSHConnector implements the Connector interface for ssh using password auth
type SSHConnector struct {
	dial dialFunc
}

// NewSSHConnector returns a new instance of SSHConnector
func NewSSHConnector() *SSHConnector {
	return &SSHConnector{dial: dialTCP}
}

// Connect completes the ssh handshake and authentication
func (c *SSHConnector) Connect(ctx context.Context, req Request) (Session, error) {
	timeout := req.timeout()
	addr := req.HostPort()

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := c.dial(dialCtx, addr, timeout)

	if err != nil {
		return nil, wrapNetError(err)
	}

	conn.SetDeadline(deadline(ctx, timeout))

	config := &ssh.ClientConfig{
		User: req.Principal,
		Auth: []ssh.AuthMethod{
			ssh.Password(req.Credential),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // nolint:gosec
		Timeout:         timeout,
	}

	cConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)

	if err != nil {
		conn.Close()
		return nil, classifySSHError(err)
	}

	return &sshSession{
		client:  ssh.NewClient(cConn, chans, reqs),
		conn:    conn,
		timeout: timeout,
	}, nil
}

type sshSession struct {
	client  *ssh.Client
	conn    net.Conn
	timeout time.Duration
}

// HealthCheck sends a keepalive global request, any reply means the
// server is processing requests
func (s *sshSession) HealthCheck(ctx context.Context) error {
	s.conn.SetDeadline(deadline(ctx, s.timeout))

	if _, _, err := s.client.SendRequest("keepalive@openssh.com", true, nil); err != nil {
		return classifySSHError(err)
	}

	return nil
}

func (s *sshSession) Close() error {
	return s.client.Close()
}

func classifySSHError(err error) error {
	msg := err.Error()

	if strings.Contains(msg, "unable to authenticate") {
		return authError(err)
	}

	if isTimeout(err) || isNetError(err) {
		return wrapNetError(err)
	}

	return protocolError("%s", msg)
}

// deadline returns the earlier of the context deadline and now + timeout
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)

	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}

	return d
}

func dialTCP(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout}
	return d.DialContext(ctx, "tcp", addr)
}
