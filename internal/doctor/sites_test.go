package doctor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/lsview/internal/config"
)

func TestSiteChecks(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, ""))
	require.NoError(t, err)

	checks := NewSiteChecks(cfg)
	require.Len(t, checks, 2)
	assert.Equal(t, "site_broken", checks[0].Name())
	assert.Equal(t, "site_prod", checks[1].Name())

	results := RunAllParallel(context.Background(), checks)

	assert.Equal(t, StatusFail, results[0].Status)
	assert.Contains(t, results[0].Suggestion, "status")

	assert.Equal(t, StatusPass, results[1].Status, results[1].Message)
	assert.Contains(t, results[1].Message, "prod: version 2.3.0p1, 12 hosts, 80 services")
	assert.Equal(t, int64(12), checks[1].(*SiteCheck).Status.Hosts)
}

func TestSiteCheck_InvalidSocket(t *testing.T) {
	check := &SiteCheck{SiteID: "x", Site: config.Site{Socket: "carrier-pigeon:coop"}}
	result := check.Run(context.Background())
	assert.Equal(t, StatusFail, result.Status)
	assert.Contains(t, result.Suggestion, "tcp:HOST:PORT")
}
