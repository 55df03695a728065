package sshutil

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/rileyhilliard/lsview/internal/errors"
)

// Runner runs a command remotely, feeding it stdin and returning stdout.
type Runner interface {
	Run(ctx context.Context, cmd string, stdin io.Reader) ([]byte, error)
}

// Run executes cmd in a new session. A non-zero exit status is an error that
// carries the command's stderr. Cancelling ctx closes the session.
func (c *Client) Run(ctx context.Context, cmd string, stdin io.Reader) ([]byte, error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdin = stdin
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(cmd) }()

	select {
	case <-ctx.Done():
		session.Close()
		return nil, ctx.Err()
	case err = <-done:
	}

	if err != nil {
		var exitErr *ssh.ExitError
		if stderrors.As(err, &exitErr) {
			return nil, errors.WrapWithCode(
				fmt.Errorf("exit status %d: %s", exitErr.ExitStatus(), strings.TrimSpace(stderr.String())),
				errors.ErrBackend,
				fmt.Sprintf("Remote command failed on '%s': %s", c.Host, cmd),
				"Check that the command exists on the monitoring server")
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Failed to execute command on '%s'", c.Host),
			"Connection may have been closed. Try reconnecting.")
	}
	return stdout.Bytes(), nil
}
