// Package output turns executed views into text, CSV, HTML, JSON and
// printable plain text.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/view"
)

// Output format names.
const (
	FormatText = "text"
	FormatCSV  = "csv"
	FormatHTML = "html"
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

// Renderer writes an executed view in one format.
type Renderer interface {
	// Name returns the format identifier.
	Name() string

	// Render writes the view's rows, grouped and in order, to w.
	Render(w io.Writer, out *view.Output) error
}

// Options tune the renderers of a registry.
type Options struct {
	// Styled enables ANSI colors in text output.
	Styled bool
	// Width limits text tables, 0 for unlimited.
	Width int
	// LinkBase prefixes the sort links of HTML headers.
	LinkBase string
}

// Registry holds the available renderers by name.
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry creates a registry with all built-in renderers.
func NewRegistry(opts Options) *Registry {
	r := &Registry{renderers: make(map[string]Renderer)}
	r.Register(NewTextRenderer(opts.Styled, opts.Width))
	r.Register(NewCSVRenderer())
	r.Register(NewHTMLRenderer(opts.LinkBase))
	r.Register(NewJSONRenderer())
	r.Register(NewPDFRenderer())
	return r
}

// Register adds a renderer, replacing one with the same name.
func (r *Registry) Register(rd Renderer) {
	r.renderers[rd.Name()] = rd
}

// Get returns the renderer of a format.
func (r *Registry) Get(name string) (Renderer, error) {
	if rd, ok := r.renderers[name]; ok {
		return rd, nil
	}
	return nil, errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown output format '%s'", name),
		fmt.Sprintf("Use one of: %s", strings.Join(r.Names(), ", ")))
}

// Names returns the registered format names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Notices lists what the reader of a view must know beyond its rows: sites
// that did not answer and truncation.
func Notices(out *view.Output) []string {
	var notices []string
	sites := make([]string, 0, len(out.Dead))
	for site := range out.Dead {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	for _, site := range sites {
		notices = append(notices, fmt.Sprintf("Site %s did not answer: %v", site, out.Dead[site]))
	}
	if out.Truncated {
		notices = append(notices, fmt.Sprintf("Showing only the first %d rows, more are available", len(out.Rows)))
	}
	return notices
}
