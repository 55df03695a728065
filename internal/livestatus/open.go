package livestatus

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/lsview/internal/errors"
)

// Open builds a connection from a socket spec:
//
//	tcp:HOST:PORT
//	unix:/PATH
//	ssh:HOST:/PATH      (HOST may be an ~/.ssh/config alias)
//	fixture:/PATH.yaml
func Open(spec string, timeout time.Duration) (Conn, error) {
	kind, rest, ok := strings.Cut(spec, ":")
	if !ok || rest == "" {
		return nil, invalidSocket(spec)
	}

	switch kind {
	case "tcp":
		return NewSocketConn("tcp", rest, timeout), nil
	case "unix":
		return NewSocketConn("unix", rest, timeout), nil
	case "ssh":
		host, path, ok := strings.Cut(rest, ":")
		if !ok || host == "" || path == "" {
			return nil, invalidSocket(spec)
		}
		return NewSSHConn(host, path, timeout), nil
	case "fixture":
		return LoadFixture(rest)
	default:
		return nil, invalidSocket(spec)
	}
}

func invalidSocket(spec string) error {
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Invalid socket '%s'", spec),
		"Use tcp:HOST:PORT, unix:/PATH, ssh:HOST:/PATH or fixture:/PATH.yaml")
}
