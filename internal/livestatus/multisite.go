package livestatus

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/logger"
)

// DefaultParallelism bounds the number of sites queried at once.
const DefaultParallelism = 8

// Site is one configured Livestatus endpoint.
type Site struct {
	ID    string
	Alias string
	Conn  Conn
}

// Options tune a single multi-site query.
type Options struct {
	// OnlySites restricts the query to these site ids. Empty means all.
	OnlySites []string
	// Limit caps the total number of rows. Zero means no limit.
	Limit int
	// AuthUser restricts the result to objects the user is a contact for.
	AuthUser string
}

// Result holds the rows of all answering sites, each prefixed with its site
// id, and the errors of sites that did not answer.
type Result struct {
	Rows [][]any
	Dead map[string]error
}

// MultiSite queries several sites in parallel.
type MultiSite struct {
	sites       []Site
	log         logger.Logger
	parallelism int
	debug       bool
}

// NewMultiSite returns a client for sites. Sites are queried in id order.
func NewMultiSite(sites []Site, log logger.Logger) *MultiSite {
	sorted := append([]Site(nil), sites...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &MultiSite{
		sites:       sorted,
		log:         logger.OrDefault(log),
		parallelism: DefaultParallelism,
	}
}

// SetDebugQueries logs every query text at debug level.
func (m *MultiSite) SetDebugQueries(on bool) {
	m.debug = on
}

// Sites returns the configured sites in id order.
func (m *MultiSite) Sites() []Site {
	return m.sites
}

type siteResult struct {
	index int
	site  string
	rows  [][]any
	err   error
}

// Query sends q to every selected site. A site that fails is reported in
// Result.Dead and logged; the query only fails when no site answers.
func (m *MultiSite) Query(ctx context.Context, q Query, opts Options) (*Result, error) {
	selected := m.selectSites(opts.OnlySites)
	if len(selected) == 0 {
		return &Result{Dead: map[string]error{}}, nil
	}

	text := m.render(q, opts)
	if m.debug {
		m.log.Debug("livestatus query:\n%s", text)
	}

	p := pool.New().WithMaxGoroutines(m.parallelism)
	results := make(chan siteResult, len(selected))
	for i, site := range selected {
		p.Go(func() {
			rows, err := site.Conn.Query(ctx, text)
			results <- siteResult{index: i, site: site.ID, rows: rows, err: err}
		})
	}
	p.Wait()
	close(results)

	ordered := make([]siteResult, len(selected))
	for r := range results {
		ordered[r.index] = r
	}

	res := &Result{Dead: map[string]error{}}
	for _, r := range ordered {
		if r.err != nil {
			res.Dead[r.site] = r.err
			m.log.Warn("site %s did not answer: %v", r.site, firstLine(r.err))
			continue
		}
		for _, row := range r.rows {
			res.Rows = append(res.Rows, append([]any{r.site}, row...))
		}
	}

	if len(res.Dead) == len(selected) {
		return nil, errors.WrapWithCode(ordered[0].err, errors.ErrBackend,
			fmt.Sprintf("No site answered the query for table '%s'", q.Table),
			"Run 'lsview sites' to check connectivity")
	}

	if opts.Limit > 0 && len(res.Rows) > opts.Limit {
		res.Rows = res.Rows[:opts.Limit]
	}
	return res, nil
}

func (m *MultiSite) selectSites(only []string) []Site {
	if len(only) == 0 {
		return m.sites
	}
	want := make(map[string]bool, len(only))
	for _, id := range only {
		want[id] = true
	}
	var out []Site
	for _, s := range m.sites {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	return out
}

func (m *MultiSite) render(q Query, opts Options) string {
	headers := append([]string(nil), q.Headers...)
	if opts.Limit > 0 {
		headers = append(headers, fmt.Sprintf("Limit: %d", opts.Limit))
	}
	if opts.AuthUser != "" {
		headers = append(headers, "AuthUser: "+Encode(opts.AuthUser))
	}
	q.Headers = headers
	return q.String()
}

// Close closes every site connection.
func (m *MultiSite) Close() error {
	var first error
	for _, s := range m.sites {
		if err := s.Conn.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func firstLine(err error) string {
	msg := strings.TrimSpace(strings.TrimPrefix(err.Error(), "✗ "))
	line, _, _ := strings.Cut(msg, "\n")
	return line
}
