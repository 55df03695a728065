// Package registry holds the plugin catalogue views are built from: painters,
// sorters, data sources, filters, painter options, layouts and view
// definitions. A Registry is assembled once by a Builder and is read-only
// afterwards, so it can be shared by every request without locking.
package registry

import (
	"fmt"
	"sort"

	lserrors "github.com/rileyhilliard/lsview/internal/errors"
)

// Row is one result row: fully qualified column names mapped to values, plus
// the synthetic "site" column and, for joined data, a "JOIN" entry holding a
// map[string]Row keyed by join service.
type Row map[string]any

// JoinRows returns the joined sub-rows of r, or nil.
func (r Row) JoinRows() map[string]Row {
	joined, _ := r["JOIN"].(map[string]Row)
	return joined
}

// CellInfo is what a render function may learn about the cell it paints.
type CellInfo interface {
	PainterID() string
	// Parameters returns the painter parameters of the cell, or nil when the
	// painter takes none.
	Parameters() map[string]any
	// JoinService returns the join service of a joined cell.
	JoinService() (string, bool)
	// Option returns the effective value of a painter option.
	Option(name string) any
}

// RenderFunc paints a row. args are the painter's fixed extra arguments.
// A painter that has nothing to show returns empty class and content.
type RenderFunc func(row Row, cell CellInfo, args ...any) (class, content string, err error)

// GroupFunc computes the group value of a row for painters whose columns do
// not identify a group by themselves.
type GroupFunc func(row Row, args ...any) any

// Printable tells PDF output how to treat a painter.
type Printable int

const (
	// Printed painters are rendered as plain text.
	Printed Printable = iota
	// NotPrinted painters are left out of PDF output.
	NotPrinted
	// PrintedAsTime painters are rendered as absolute timestamps.
	PrintedAsTime
)

// ParamSpec declares one painter parameter.
type ParamSpec struct {
	Name    string
	Title   string
	Default any
}

// Painter is a named rule that renders one or more row columns into a cell.
type Painter struct {
	ID        string
	Title     string
	TitleFunc func(params map[string]any) string
	Short     string
	ShortFunc func(params map[string]any) string

	Columns     []string
	ColumnsFunc func(params map[string]any) []string

	Render RenderFunc
	// Args are appended to every Render and GroupBy call.
	Args []any
	// Params is the parameter schema. Nil means the painter takes no
	// parameters.
	Params []ParamSpec
	// Options lists the painter options the painter reads.
	Options []string
	// Sorter overrides the sorter bound to the painter.
	Sorter    string
	Printable Printable
	GroupBy   GroupFunc
}

// TitleFor returns the long title for the given parameters.
func (p *Painter) TitleFor(params map[string]any) string {
	if p.TitleFunc != nil {
		return p.TitleFunc(params)
	}
	return p.Title
}

// ShortFor returns the short title, falling back to the long title.
func (p *Painter) ShortFor(params map[string]any) string {
	if p.ShortFunc != nil {
		return p.ShortFunc(params)
	}
	if p.Short != "" {
		return p.Short
	}
	return p.TitleFor(params)
}

// ColumnsFor returns the columns the painter needs.
func (p *Painter) ColumnsFor(params map[string]any) []string {
	if p.ColumnsFunc != nil {
		return p.ColumnsFunc(params)
	}
	return p.Columns
}

// DefaultParams returns the schema defaults, or nil when the painter takes
// no parameters.
func (p *Painter) DefaultParams() map[string]any {
	if p.Params == nil {
		return nil
	}
	out := make(map[string]any, len(p.Params))
	for _, ps := range p.Params {
		out[ps.Name] = ps.Default
	}
	return out
}

// Sorter is a named comparison rule over rows.
type Sorter struct {
	ID      string
	Title   string
	Columns []string
	// Cmp returns a negative number when a sorts before b, zero when they
	// are equal and a positive number otherwise.
	Cmp func(a, b Row) int
}

// JoinSpec describes how a data source pulls in joined sub-rows: rows of
// DataSource are attached to the parent row by the parent's Key column and
// selected by the joined source's JoinKey column.
type JoinSpec struct {
	DataSource string
	Key        string
}

// DataSource declares which Livestatus table a view draws from.
type DataSource struct {
	ID    string
	Title string
	Table string
	// Infos are the object kinds a row describes ("host", "service", ...).
	Infos []string
	Keys  []string
	// IDKeys identify a row across requests.
	IDKeys []string
	// MergeBy names the column rows from different sites are merged by.
	MergeBy string
	// AddColumns are columns the backend adds on its own.
	AddColumns []string
	AddHeaders string
	// AuthDomain defaults to "read".
	AuthDomain  string
	PostProcess func(rows []Row) []Row
	Join        *JoinSpec
	// JoinKey is the column of this source that selects joined rows.
	JoinKey     string
	LinkFilters map[string]string
}

// HasInfo reports whether rows of the source describe the given kind.
func (d *DataSource) HasInfo(info string) bool {
	for _, i := range d.Infos {
		if i == info {
			return true
		}
	}
	return false
}

// Domain returns the auth domain of the source.
func (d *DataSource) Domain() string {
	if d.AuthDomain == "" {
		return "read"
	}
	return d.AuthDomain
}

// URLVar is one query parameter of a view link.
type URLVar struct {
	Name  string
	Value string
}

// Filter selects rows of a view. Only its linking side is modelled here:
// the columns a link needs and the URL variables it derives from a row.
type Filter struct {
	ID    string
	Title string
	Info  string
	// Single filters select exactly one object of their info.
	Single      bool
	LinkColumns []string
	Vars        func(row Row) []URLVar
}

// Choice is one allowed value of an option.
type Choice struct {
	Value any
	Title string
}

// OptionSpec declares a painter option.
type OptionSpec struct {
	ID      string
	Title   string
	Default any
	Choices []Choice
}

// Allows reports whether value is acceptable for the option.
func (o *OptionSpec) Allows(value any) bool {
	if len(o.Choices) == 0 {
		return true
	}
	for _, c := range o.Choices {
		if CompareValues(c.Value, value) == 0 {
			return true
		}
	}
	return false
}

// Layout is a way of arranging rows. Layouts may read painter options.
type Layout struct {
	ID        string
	Title     string
	Options   []string
	CSVExport bool
}

// PermissionFunc decides whether user may see a view.
type PermissionFunc func(user string, view *ViewDefinition) bool

// Registry is the immutable plugin catalogue.
type Registry struct {
	painters    map[string]*Painter
	sorters     map[string]*Sorter
	datasources map[string]*DataSource
	filters     map[string]*Filter
	options     map[string]*OptionSpec
	layouts     map[string]*Layout
	views       map[string]*ViewDefinition
	permitted   PermissionFunc
}

// Painter looks up a painter.
func (r *Registry) Painter(id string) (*Painter, bool) {
	p, ok := r.painters[id]
	return p, ok
}

// Sorter looks up a sorter.
func (r *Registry) Sorter(id string) (*Sorter, bool) {
	s, ok := r.sorters[id]
	return s, ok
}

// DataSource looks up a data source.
func (r *Registry) DataSource(id string) (*DataSource, bool) {
	d, ok := r.datasources[id]
	return d, ok
}

// Filter looks up a filter.
func (r *Registry) Filter(id string) (*Filter, bool) {
	f, ok := r.filters[id]
	return f, ok
}

// Option looks up a painter option.
func (r *Registry) Option(id string) (*OptionSpec, bool) {
	o, ok := r.options[id]
	return o, ok
}

// OptionIDs returns all registered painter option ids, sorted.
func (r *Registry) OptionIDs() []string {
	return sortedKeys(r.options)
}

// Layout looks up a layout.
func (r *Registry) Layout(id string) (*Layout, bool) {
	l, ok := r.layouts[id]
	return l, ok
}

// View returns the named view if it exists and user may see it.
func (r *Registry) View(name, user string) (*ViewDefinition, bool) {
	v, ok := r.views[name]
	if !ok {
		return nil, false
	}
	if r.permitted != nil && !r.permitted(user, v) {
		return nil, false
	}
	return v, true
}

// Views returns the views user may see, sorted by name.
func (r *Registry) Views(user string) []*ViewDefinition {
	var out []*ViewDefinition
	for _, name := range sortedKeys(r.views) {
		if v, ok := r.View(name, user); ok {
			out = append(out, v)
		}
	}
	return out
}

// SorterOfPainter returns the sorter bound to a painter: its explicit sorter,
// else a sorter with the painter's id. ok is false when there is none.
func (r *Registry) SorterOfPainter(painterID string) (string, bool) {
	p, ok := r.painters[painterID]
	if !ok {
		return "", false
	}
	if p.Sorter != "" {
		return p.Sorter, true
	}
	if _, ok := r.sorters[painterID]; ok {
		return painterID, true
	}
	return "", false
}

// SingleInfoFilters returns the single-object filters of the given infos in
// registration-independent order.
func (r *Registry) SingleInfoFilters(infos []string) []*Filter {
	var out []*Filter
	for _, info := range infos {
		for _, id := range sortedKeys(r.filters) {
			f := r.filters[id]
			if f.Single && f.Info == info {
				out = append(out, f)
			}
		}
	}
	return out
}

// Builder collects plugins and produces a Registry.
type Builder struct {
	reg  *Registry
	errs []error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{reg: &Registry{
		painters:    map[string]*Painter{},
		sorters:     map[string]*Sorter{},
		datasources: map[string]*DataSource{},
		filters:     map[string]*Filter{},
		options:     map[string]*OptionSpec{},
		layouts:     map[string]*Layout{},
		views:       map[string]*ViewDefinition{},
	}}
}

func (b *Builder) dup(kind, id string) {
	b.errs = append(b.errs, lserrors.New(lserrors.ErrConfig,
		fmt.Sprintf("Duplicate %s '%s'", kind, id),
		"Each plugin id may only be registered once"))
}

// AddPainter registers painters.
func (b *Builder) AddPainter(painters ...*Painter) *Builder {
	for _, p := range painters {
		if _, ok := b.reg.painters[p.ID]; ok {
			b.dup("painter", p.ID)
			continue
		}
		b.reg.painters[p.ID] = p
	}
	return b
}

// AddSorter registers sorters.
func (b *Builder) AddSorter(sorters ...*Sorter) *Builder {
	for _, s := range sorters {
		if _, ok := b.reg.sorters[s.ID]; ok {
			b.dup("sorter", s.ID)
			continue
		}
		b.reg.sorters[s.ID] = s
	}
	return b
}

// AddDataSource registers data sources.
func (b *Builder) AddDataSource(sources ...*DataSource) *Builder {
	for _, d := range sources {
		if _, ok := b.reg.datasources[d.ID]; ok {
			b.dup("data source", d.ID)
			continue
		}
		b.reg.datasources[d.ID] = d
	}
	return b
}

// AddFilter registers filters.
func (b *Builder) AddFilter(filters ...*Filter) *Builder {
	for _, f := range filters {
		if _, ok := b.reg.filters[f.ID]; ok {
			b.dup("filter", f.ID)
			continue
		}
		b.reg.filters[f.ID] = f
	}
	return b
}

// AddOption registers painter options.
func (b *Builder) AddOption(options ...*OptionSpec) *Builder {
	for _, o := range options {
		if _, ok := b.reg.options[o.ID]; ok {
			b.dup("painter option", o.ID)
			continue
		}
		b.reg.options[o.ID] = o
	}
	return b
}

// AddLayout registers layouts.
func (b *Builder) AddLayout(layouts ...*Layout) *Builder {
	for _, l := range layouts {
		if _, ok := b.reg.layouts[l.ID]; ok {
			b.dup("layout", l.ID)
			continue
		}
		b.reg.layouts[l.ID] = l
	}
	return b
}

// AddView registers views. A view with the name of an already registered
// view replaces it, so user-defined views can override built-in ones.
func (b *Builder) AddView(views ...*ViewDefinition) *Builder {
	for _, v := range views {
		b.reg.views[v.Name] = v
	}
	return b
}

// WithPermission installs the view permission check. Without one every
// view is visible to every user.
func (b *Builder) WithPermission(fn PermissionFunc) *Builder {
	b.reg.permitted = fn
	return b
}

// Build validates cross references and returns the registry. Unknown
// painters in views are tolerated; unknown data sources, sorters and
// layouts are not.
func (b *Builder) Build() (*Registry, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	r := b.reg

	for _, id := range sortedKeys(r.painters) {
		p := r.painters[id]
		if p.Render == nil {
			return nil, lserrors.New(lserrors.ErrConfig,
				fmt.Sprintf("Painter '%s' has no render function", id), "")
		}
		if p.Sorter != "" {
			if _, ok := r.sorters[p.Sorter]; !ok {
				return nil, lserrors.UnknownID("sorter", p.Sorter)
			}
		}
		for _, opt := range p.Options {
			if _, ok := r.options[opt]; !ok {
				return nil, lserrors.UnknownID("painter option", opt)
			}
		}
	}

	for _, id := range sortedKeys(r.datasources) {
		d := r.datasources[id]
		if d.Join != nil {
			if _, ok := r.datasources[d.Join.DataSource]; !ok {
				return nil, lserrors.UnknownID("data source", d.Join.DataSource)
			}
		}
	}

	for _, name := range sortedKeys(r.views) {
		if err := r.validateView(r.views[name]); err != nil {
			return nil, err
		}
	}

	b.reg = nil
	return r, nil
}

func (r *Registry) validateView(v *ViewDefinition) error {
	if v.Name == "" {
		return lserrors.New(lserrors.ErrConfig, "View without a name",
			"Every view definition needs a name")
	}
	if _, ok := r.datasources[v.DataSource]; !ok {
		err := lserrors.UnknownID("data source", v.DataSource)
		err.Message = fmt.Sprintf("View '%s' uses unknown data source '%s'", v.Name, v.DataSource)
		return err
	}
	for _, s := range v.Sorters {
		if _, ok := r.sorters[s.Sorter]; !ok {
			err := lserrors.UnknownID("sorter", s.Sorter)
			err.Message = fmt.Sprintf("View '%s' sorts by unknown sorter '%s'", v.Name, s.Sorter)
			return err
		}
	}
	if v.Layout != "" {
		if _, ok := r.layouts[v.Layout]; !ok {
			return lserrors.UnknownID("layout", v.Layout)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
