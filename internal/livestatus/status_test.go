package livestatus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/lsview/internal/logger"
)

func TestMultiSite_Status(t *testing.T) {
	prod := NewFixture(map[string][]map[string]any{
		"status": {{"program_version": "2.3.0p1", "num_hosts": int64(12), "num_services": 340.0}},
	})
	lab := &recordingConn{err: errors.New("connection refused")}
	empty := &recordingConn{}

	ms := NewMultiSite([]Site{{ID: "prod", Conn: prod}, {ID: "lab", Conn: lab}, {ID: "new", Conn: empty}}, logger.Noop())
	statuses := ms.Status(context.Background())
	require.Len(t, statuses, 3)

	assert.Equal(t, "lab", statuses[0].Site.ID)
	assert.False(t, statuses[0].Up())
	assert.EqualError(t, statuses[0].Err, "connection refused")
	assert.Equal(t, []string{"GET status\nColumns: program_version num_hosts num_services\n"}, lab.texts)

	assert.Equal(t, "new", statuses[1].Site.ID)
	assert.Error(t, statuses[1].Err)

	assert.Equal(t, "prod", statuses[2].Site.ID)
	require.True(t, statuses[2].Up())
	assert.Equal(t, "2.3.0p1", statuses[2].Version)
	assert.Equal(t, int64(12), statuses[2].Hosts)
	assert.Equal(t, int64(340), statuses[2].Services)
}
