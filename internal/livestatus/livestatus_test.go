package livestatus

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lserrors "github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/pkg/sshutil"
)

func TestQueryString(t *testing.T) {
	q := Query{
		Table:   "services",
		Columns: []string{"host_name", "service_description"},
		Headers: []string{"Filter: service_state > 0\n", "", "Filter: host_name = web01"},
	}
	assert.Equal(t,
		"GET services\nColumns: host_name service_description\nFilter: service_state > 0\nFilter: host_name = web01\n",
		q.String())
}

func TestFilterEq(t *testing.T) {
	assert.Equal(t, "Filter: service_description = CPU load", FilterEq("service_description", "CPU load"))
	assert.Equal(t, "Filter: host_name = ab", FilterEq("host_name", "a\nb"))
}

func TestParseResponseHeader(t *testing.T) {
	status, length, err := parseResponseHeader([]byte("200          42\n"))
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, 42, length)

	_, _, err = parseResponseHeader([]byte("200 42\n"))
	assert.Error(t, err)
	_, _, err = parseResponseHeader([]byte("abc          42\n"))
	assert.Error(t, err)
}

func TestParseRows(t *testing.T) {
	rows, err := ParseRows([]byte(`[["web01",0,1.5,["a","b"],{"TAGS":"prod"},null,true],["db01",2,3,[],{},null,false]]`))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []any{"web01", int64(0), 1.5, []any{"a", "b"}, map[string]any{"TAGS": "prod"}, nil, true}, rows[0])
	assert.Equal(t, int64(3), rows[1][2])
	assert.Equal(t, []any{}, rows[1][3])

	_, err = ParseRows([]byte(`{"not":"rows"}`))
	assert.Error(t, err)
	_, err = ParseRows([]byte(`[1,2]`))
	assert.Error(t, err)
	_, err = ParseRows([]byte(`[[`))
	assert.Error(t, err)
}

func frame(status int, body string) string {
	return fmt.Sprintf("%03d %11d\n%s", status, len(body), body)
}

// serveOnce answers a single Livestatus request on a local TCP listener and
// hands the received request text to got.
func serveOnce(t *testing.T, response string, got chan<- string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		var req strings.Builder
		for {
			line, err := r.ReadString('\n')
			req.WriteString(line)
			if err != nil || line == "\n" {
				break
			}
		}
		got <- req.String()
		_, _ = io.WriteString(conn, response)
	}()
	return ln.Addr().String()
}

func TestSocketConn(t *testing.T) {
	got := make(chan string, 1)
	addr := serveOnce(t, frame(200, `[["web01",0]]`), got)

	conn := NewSocketConn("tcp", addr, 5*time.Second)
	rows, err := conn.Query(context.Background(), "GET hosts\nColumns: host_name host_state\n")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"web01", int64(0)}}, rows)

	req := <-got
	assert.Contains(t, req, "GET hosts\nColumns: host_name host_state\n")
	assert.Contains(t, req, "OutputFormat: json\n")
	assert.Contains(t, req, "ResponseHeader: fixed16\n")
	assert.True(t, strings.HasSuffix(req, "\n\n"))
}

func TestSocketConn_ErrorStatus(t *testing.T) {
	got := make(chan string, 1)
	addr := serveOnce(t, frame(404, "Invalid GET request, no such table 'hostz'\n"), got)

	_, err := NewSocketConn("tcp", addr, 5*time.Second).Query(context.Background(), "GET hostz\n")
	require.Error(t, err)
	assert.True(t, lserrors.IsCode(err, lserrors.ErrBackend))
	assert.Contains(t, err.Error(), "no such table")
}

func TestSocketConn_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = NewSocketConn("tcp", addr, time.Second).Query(context.Background(), "GET hosts\n")
	require.Error(t, err)
	assert.True(t, lserrors.IsCode(err, lserrors.ErrBackend))
}

type fakeRunner struct {
	cmd   string
	stdin string
	out   []byte
	err   error
}

func (f *fakeRunner) Run(_ context.Context, cmd string, stdin io.Reader) ([]byte, error) {
	f.cmd = cmd
	b, _ := io.ReadAll(stdin)
	f.stdin = string(b)
	return f.out, f.err
}

func TestSSHConn(t *testing.T) {
	runner := &fakeRunner{out: []byte(frame(200, `[["web01"]]`))}
	dials := 0
	conn := NewSSHConn("mon", "/omd/sites/prod/tmp/run/live", time.Second)
	conn.dial = func(context.Context, string, time.Duration) (sshutil.Runner, func() error, error) {
		dials++
		return runner, func() error { return nil }, nil
	}

	for i := 0; i < 2; i++ {
		rows, err := conn.Query(context.Background(), "GET hosts\nColumns: host_name\n")
		require.NoError(t, err)
		assert.Equal(t, [][]any{{"web01"}}, rows)
	}
	assert.Equal(t, 1, dials)
	assert.Equal(t, "unixcat '/omd/sites/prod/tmp/run/live'", runner.cmd)
	assert.True(t, strings.HasPrefix(runner.stdin, "GET hosts\nColumns: host_name\nOutputFormat: json\n"))

	require.NoError(t, conn.Close())
	_, err := conn.Query(context.Background(), "GET hosts\n")
	require.NoError(t, err)
	assert.Equal(t, 2, dials)
}

func TestSSHConn_Truncated(t *testing.T) {
	runner := &fakeRunner{out: []byte("200          99\n[]")}
	conn := NewSSHConn("mon", "/live", time.Second)
	conn.dial = func(context.Context, string, time.Duration) (sshutil.Runner, func() error, error) {
		return runner, nil, nil
	}
	_, err := conn.Query(context.Background(), "GET hosts\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, `'/a b'`, shellQuote("/a b"))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}

func TestOpen(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
		check   func(t *testing.T, c Conn)
	}{
		{spec: "tcp:mon:6557", check: func(t *testing.T, c Conn) {
			sc := c.(*SocketConn)
			assert.Equal(t, "tcp", sc.Network)
			assert.Equal(t, "mon:6557", sc.Address)
		}},
		{spec: "unix:/omd/sites/prod/tmp/run/live", check: func(t *testing.T, c Conn) {
			assert.Equal(t, "unix", c.(*SocketConn).Network)
		}},
		{spec: "ssh:mon:/omd/sites/prod/tmp/run/live", check: func(t *testing.T, c Conn) {
			sc := c.(*SSHConn)
			assert.Equal(t, "mon", sc.Host)
			assert.Equal(t, "/omd/sites/prod/tmp/run/live", sc.Socket)
		}},
		{spec: "ssh:mon", wantErr: true},
		{spec: "carrier-pigeon:x", wantErr: true},
		{spec: "tcp:", wantErr: true},
		{spec: "fixture:/does/not/exist.yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			c, err := Open(tt.spec, time.Second)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, lserrors.IsCode(err, lserrors.ErrConfig))
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}
