package view

import (
	"github.com/rileyhilliard/lsview/internal/logger"
	"github.com/rileyhilliard/lsview/internal/registry"
)

// DefaultLinkBase is the page view links point to.
const DefaultLinkBase = "view.py"

// Options gives cells access to the effective painter options.
type Options interface {
	Get(name string) any
}

// Env is the per-request context cells are rendered in.
type Env struct {
	Registry *registry.Registry
	User     string
	// Options may be nil; option lookups then fall back to the registered
	// defaults.
	Options Options
	// LinkBase prefixes view links. Defaults to DefaultLinkBase.
	LinkBase string
	// NoLinks disables links to other views.
	NoLinks bool
	Log     logger.Logger
}

func (e *Env) log() logger.Logger {
	return logger.OrDefault(e.Log)
}

func (e *Env) option(name string) any {
	if e.Options != nil {
		return e.Options.Get(name)
	}
	if spec, ok := e.Registry.Option(name); ok {
		return spec.Default
	}
	return nil
}

func (e *Env) linkBase() string {
	if e.LinkBase == "" {
		return DefaultLinkBase
	}
	return e.LinkBase
}
