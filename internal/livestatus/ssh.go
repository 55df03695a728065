package livestatus

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/pkg/sshutil"
)

// SSHConn queries a unix socket on a remote monitoring server by piping the
// request through unixcat over SSH. The SSH connection is opened on first
// use and kept until Close.
type SSHConn struct {
	Host    string
	Socket  string
	Timeout time.Duration

	// dial is replaced in tests.
	dial func(ctx context.Context, host string, timeout time.Duration) (sshutil.Runner, func() error, error)

	mu     sync.Mutex
	runner sshutil.Runner
	close  func() error
}

// NewSSHConn returns a connection to socket on host.
func NewSSHConn(host, socket string, timeout time.Duration) *SSHConn {
	return &SSHConn{
		Host:    host,
		Socket:  socket,
		Timeout: timeout,
		dial: func(ctx context.Context, host string, timeout time.Duration) (sshutil.Runner, func() error, error) {
			client, err := sshutil.Dial(ctx, host, timeout)
			if err != nil {
				return nil, nil, err
			}
			return client, client.Close, nil
		},
	}
}

func (c *SSHConn) connect(ctx context.Context) (sshutil.Runner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runner != nil {
		return c.runner, nil
	}
	runner, closeFn, err := c.dial(ctx, c.Host, c.Timeout)
	if err != nil {
		return nil, err
	}
	c.runner, c.close = runner, closeFn
	return runner, nil
}

// Query pipes text to unixcat and decodes the response.
func (c *SSHConn) Query(ctx context.Context, text string) ([][]any, error) {
	runner, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req := strings.TrimRight(text, "\n") + "\n" + protocolHeaders + "\n"
	out, err := runner.Run(ctx, "unixcat "+shellQuote(c.Socket), strings.NewReader(req))
	if err != nil {
		c.reset()
		return nil, err
	}

	body, err := readFramed(out)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrBackend,
			fmt.Sprintf("Livestatus query via %s failed", c.Host), "")
	}
	return ParseRows(body)
}

func (c *SSHConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.close != nil {
		_ = c.close()
	}
	c.runner, c.close = nil, nil
}

// Close drops the SSH connection.
func (c *SSHConn) Close() error {
	c.reset()
	return nil
}

// readFramed splits a complete fixed16 framed response.
func readFramed(out []byte) ([]byte, error) {
	if len(out) < headerLen {
		return nil, fmt.Errorf("short response (%d bytes)", len(out))
	}
	status, length, err := parseResponseHeader(out[:headerLen])
	if err != nil {
		return nil, err
	}
	body := out[headerLen:]
	if len(body) < length {
		return nil, fmt.Errorf("truncated response: want %d bytes, got %d", length, len(body))
	}
	body = body[:length]
	if status != 200 {
		return nil, fmt.Errorf("status %d: %s", status, bytes.TrimSpace(body))
	}
	return body, nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
