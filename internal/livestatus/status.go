package livestatus

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// statusColumns are read from the status table of every site.
var statusColumns = []string{"program_version", "num_hosts", "num_services"}

// SiteStatus is the answer of one site to a status query.
type SiteStatus struct {
	Site     Site
	Version  string
	Hosts    int64
	Services int64
	Latency  time.Duration
	Err      error
}

// Up reports whether the site answered.
func (s SiteStatus) Up() bool { return s.Err == nil }

// Status asks every site for its program version and object counts. Unlike
// Query it never fails as a whole; each site carries its own error.
func (m *MultiSite) Status(ctx context.Context) []SiteStatus {
	text := Query{Table: "status", Columns: statusColumns}.String()
	out := make([]SiteStatus, len(m.sites))

	p := pool.New().WithMaxGoroutines(m.parallelism)
	for i, site := range m.sites {
		p.Go(func() {
			start := time.Now()
			rows, err := site.Conn.Query(ctx, text)
			st := SiteStatus{Site: site, Latency: time.Since(start), Err: err}
			if err == nil {
				st.Err = st.parse(rows)
			}
			if st.Err != nil {
				m.log.Warn("site %s did not answer the status query: %v", site.ID, firstLine(st.Err))
			}
			out[i] = st
		})
	}
	p.Wait()
	return out
}

func (s *SiteStatus) parse(rows [][]any) error {
	if len(rows) != 1 || len(rows[0]) != len(statusColumns) {
		return fmt.Errorf("unexpected status answer: %d rows", len(rows))
	}
	row := rows[0]
	s.Version = fmt.Sprint(row[0])
	s.Hosts = toInt(row[1])
	s.Services = toInt(row[2])
	return nil
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
