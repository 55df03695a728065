package livestatus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/rileyhilliard/lsview/internal/errors"
)

// protocolHeaders are appended to every request sent over a socket.
const protocolHeaders = "OutputFormat: json\nResponseHeader: fixed16\n"

// SocketConn queries a Livestatus socket over TCP or a unix domain socket.
// Every query opens a fresh connection.
type SocketConn struct {
	Network string
	Address string
	Timeout time.Duration
}

// NewSocketConn returns a connection for network "tcp" or "unix".
func NewSocketConn(network, address string, timeout time.Duration) *SocketConn {
	return &SocketConn{Network: network, Address: address, Timeout: timeout}
}

// Query sends text and decodes the response.
func (c *SocketConn) Query(ctx context.Context, text string) ([][]any, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, c.Network, c.Address)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrBackend,
			fmt.Sprintf("Can't connect to Livestatus at %s:%s", c.Network, c.Address),
			"Check that Livestatus listens on the configured socket")
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	body, err := exchange(conn, text)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrBackend,
			fmt.Sprintf("Livestatus query to %s failed", c.Address), "")
	}
	return ParseRows(body)
}

// Close is a no-op; connections are per query.
func (c *SocketConn) Close() error { return nil }

type halfCloser interface {
	CloseWrite() error
}

// exchange writes one request to rw and reads the fixed16 framed response.
func exchange(rw io.ReadWriter, text string) ([]byte, error) {
	req := strings.TrimRight(text, "\n") + "\n" + protocolHeaders + "\n"
	if _, err := io.WriteString(rw, req); err != nil {
		return nil, fmt.Errorf("send query: %w", err)
	}
	if hc, ok := rw.(halfCloser); ok {
		_ = hc.CloseWrite()
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(rw, header); err != nil {
		return nil, fmt.Errorf("read response header: %w", err)
	}
	status, length, err := parseResponseHeader(header)
	if err != nil {
		return nil, err
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(rw, body); err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("status %d: %s", status, bytes.TrimSpace(body))
	}
	return body, nil
}
