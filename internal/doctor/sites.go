package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rileyhilliard/lsview/internal/config"
	"github.com/rileyhilliard/lsview/internal/livestatus"
	"github.com/rileyhilliard/lsview/internal/logger"
)

// SiteCheck verifies that a site answers a status query.
type SiteCheck struct {
	SiteID string
	Site   config.Site
	Status livestatus.SiteStatus // Populated after Run()
}

func (c *SiteCheck) Name() string     { return "site_" + c.SiteID }
func (c *SiteCheck) Category() string { return CategorySites }

func (c *SiteCheck) Run(ctx context.Context) CheckResult {
	conn, err := livestatus.Open(c.Site.Socket, c.Site.SiteTimeout())
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s: %v", c.SiteID, err),
			Suggestion: "Use tcp:HOST:PORT, unix:/PATH, ssh:HOST:/PATH or fixture:/PATH",
		}
	}
	ms := livestatus.NewMultiSite([]livestatus.Site{{ID: c.SiteID, Alias: c.Site.Alias, Conn: conn}}, logger.Noop())
	defer ms.Close()

	c.Status = ms.Status(ctx)[0]
	if !c.Status.Up() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s: %v", c.SiteID, c.Status.Err),
			Suggestion: socketSuggestion(c.Site.Socket),
		}
	}

	return CheckResult{
		Name:   c.Name(),
		Status: StatusPass,
		Message: fmt.Sprintf("%s: version %s, %d hosts, %d services (%dms)",
			c.SiteID, c.Status.Version, c.Status.Hosts, c.Status.Services, c.Status.Latency.Milliseconds()),
	}
}

func socketSuggestion(socket string) string {
	kind, _, _ := strings.Cut(socket, ":")
	switch kind {
	case "tcp":
		return "Check the site's Livestatus TCP port is enabled and reachable"
	case "unix":
		return "Check the socket exists and you may read it (are you in the site's group?)"
	case "ssh":
		return "Check 'ssh <host> unixcat <socket>' works and your key is loaded: ssh-add -l"
	case "fixture":
		return "Check the fixture file has a 'status' table"
	}
	return ""
}

// NewSiteChecks returns a check per enabled site.
func NewSiteChecks(cfg *config.Config) []Check {
	var checks []Check
	for _, id := range cfg.SiteIDs() {
		checks = append(checks, &SiteCheck{SiteID: id, Site: cfg.Sites[id]})
	}
	return checks
}
