// Package options manages painter options: per user and view display
// settings such as the timestamp format, backed by a persisted store.
//
// Values set during a request apply immediately but are only persisted by
// SaveToConfig, Apply or Reset. Views without a name never load or persist
// options.
package options

import (
	"context"
	"fmt"
	"sort"

	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/logger"
	"github.com/rileyhilliard/lsview/internal/registry"
	"github.com/rileyhilliard/lsview/internal/store"
)

// StoreKey is the store document holding all views' options of a user.
const StoreKey = "viewoptions"

// PainterOptions are the painter options of one user and view.
type PainterOptions struct {
	store store.Store
	reg   *registry.Registry
	user  string
	view  string
	log   logger.Logger

	// Permit decides whether the user may change options. Nil permits.
	Permit func(user string) bool

	loaded  bool
	options map[string]any
}

// New returns the options of user for the named view. They are loaded on
// first use.
func New(st store.Store, reg *registry.Registry, user, viewName string, log logger.Logger) *PainterOptions {
	return &PainterOptions{
		store:   st,
		reg:     reg,
		user:    user,
		view:    viewName,
		log:     logger.OrDefault(log),
		options: map[string]any{},
	}
}

func (o *PainterOptions) anonymous() bool {
	return o.view == ""
}

// Load reads the persisted options. Only the first call reads the store.
func (o *PainterOptions) Load(ctx context.Context) error {
	if o.loaded {
		return nil
	}
	o.loaded = true
	if o.anonymous() || o.store == nil {
		return nil
	}

	doc, err := o.store.Load(ctx, o.user, StoreKey)
	if err != nil {
		return err
	}
	saved, _ := doc[o.view].(map[string]any)
	for name, value := range saved {
		// Values set before loading win over persisted ones.
		if _, ok := o.options[name]; !ok {
			o.options[name] = value
		}
	}
	return nil
}

func (o *PainterOptions) ensureLoaded() {
	if err := o.Load(context.Background()); err != nil {
		o.log.Warn("can't load painter options of %s for view %s: %v", o.user, o.view, err)
	}
}

// Get returns the effective value of an option: the explicit value, else
// the option's registered default, else nil.
func (o *PainterOptions) Get(name string) any {
	return o.GetOr(name, nil)
}

// GetOr is Get with a caller default that takes precedence over the
// registered default. A nil dflt means no caller default.
func (o *PainterOptions) GetOr(name string, dflt any) any {
	o.ensureLoaded()
	if v, ok := o.options[name]; ok {
		return v
	}
	if dflt != nil {
		return dflt
	}
	if spec, ok := o.reg.Option(name); ok {
		return spec.Default
	}
	return nil
}

// GetWithoutDefault returns the explicit value of an option, or nil.
func (o *PainterOptions) GetWithoutDefault(name string) any {
	o.ensureLoaded()
	return o.options[name]
}

// IsSet reports whether the option has an explicit value.
func (o *PainterOptions) IsSet(name string) bool {
	o.ensureLoaded()
	_, ok := o.options[name]
	return ok
}

// Set changes an option for the rest of the request. The value must be one
// of the option's choices.
func (o *PainterOptions) Set(name string, value any) error {
	spec, ok := o.reg.Option(name)
	if !ok {
		return errors.UnknownID("painter option", name)
	}
	value = registry.Normalize(value)
	if !spec.Allows(value) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid value '%v' for painter option '%s'", value, name),
			fmt.Sprintf("Allowed values: %s", choiceList(spec)))
	}
	o.ensureLoaded()
	o.options[name] = value
	return nil
}

// Unset removes the explicit value of an option.
func (o *PainterOptions) Unset(name string) {
	o.ensureLoaded()
	delete(o.options, name)
}

// All returns a copy of the explicit values.
func (o *PainterOptions) All() map[string]any {
	o.ensureLoaded()
	out := make(map[string]any, len(o.options))
	for k, v := range o.options {
		out[k] = v
	}
	return out
}

// SaveToConfig persists the explicit values of this view. Other views'
// options of the user are left alone.
func (o *PainterOptions) SaveToConfig(ctx context.Context) error {
	if o.anonymous() || o.store == nil {
		return nil
	}
	if err := o.Load(ctx); err != nil {
		return err
	}
	values := o.All()
	return o.store.Update(ctx, o.user, StoreKey, func(doc map[string]any) (map[string]any, error) {
		if len(values) == 0 {
			delete(doc, o.view)
		} else {
			doc[o.view] = values
		}
		return doc, nil
	})
}

// Permitted reports whether the user may change options.
func (o *PainterOptions) Permitted() bool {
	return o.Permit == nil || o.Permit(o.user)
}

// OptionUser is anything declaring the painter options it reads, such as
// cells.
type OptionUser interface {
	PainterOptions() []string
}

// UsedOptions returns the registered options read by the cells and the
// layout, sorted.
func UsedOptions[C OptionUser](reg *registry.Registry, cells []C, layout *registry.Layout) []string {
	seen := map[string]bool{}
	add := func(names []string) {
		for _, n := range names {
			if _, ok := reg.Option(n); ok {
				seen[n] = true
			}
		}
	}
	for _, c := range cells {
		add(c.PainterOptions())
	}
	if layout != nil {
		add(layout.Options)
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Apply sets the submitted values of the used options and persists them
// when anything changed. It reports whether something changed.
func (o *PainterOptions) Apply(ctx context.Context, used []string, values map[string]any) (bool, error) {
	if !o.Permitted() {
		return false, errors.New(errors.ErrConfig,
			fmt.Sprintf("User '%s' may not change painter options", o.user), "")
	}
	if err := o.Load(ctx); err != nil {
		return false, err
	}

	modified := false
	for _, name := range used {
		value, ok := values[name]
		if !ok {
			continue
		}
		value = registry.Normalize(value)
		if o.IsSet(name) && registry.CompareValues(o.options[name], value) == 0 {
			continue
		}
		if err := o.Set(name, value); err != nil {
			return false, err
		}
		modified = true
	}

	if !modified {
		return false, nil
	}
	return true, o.SaveToConfig(ctx)
}

// Reset drops the explicit values of all registered options and persists
// when anything was dropped.
func (o *PainterOptions) Reset(ctx context.Context) error {
	if !o.Permitted() {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("User '%s' may not change painter options", o.user), "")
	}
	if err := o.Load(ctx); err != nil {
		return err
	}

	modified := false
	for _, name := range o.reg.OptionIDs() {
		if _, ok := o.options[name]; ok {
			delete(o.options, name)
			modified = true
		}
	}
	if !modified {
		return nil
	}
	return o.SaveToConfig(ctx)
}

func choiceList(spec *registry.OptionSpec) string {
	var s string
	for i, c := range spec.Choices {
		if i > 0 {
			s += ", "
		}
		s += registry.ToString(c.Value)
	}
	return s
}
