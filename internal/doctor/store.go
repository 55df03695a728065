package doctor

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/lsview/internal/options"
	"github.com/rileyhilliard/lsview/internal/store"
)

// OptionStoreCheck verifies that the painter option store opens and the
// user's options can be read.
type OptionStoreCheck struct {
	Backend string
	Dir     string
	User    string
}

func (c *OptionStoreCheck) Name() string     { return "option_store" }
func (c *OptionStoreCheck) Category() string { return CategoryStore }

func (c *OptionStoreCheck) Run(ctx context.Context) CheckResult {
	st, err := store.Open(c.Backend, c.Dir)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't open %s store in %s: %v", c.Backend, c.Dir, err),
			Suggestion: "Check options.dir is writable",
		}
	}
	defer st.Close()

	doc, err := st.Load(ctx, c.User, options.StoreKey)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't read painter options of %s: %v", c.User, err),
			Suggestion: "Reset them with: lsview options reset <view>",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s store, saved options for %d view%s", c.Backend, len(doc), pluralize(len(doc))),
	}
}
