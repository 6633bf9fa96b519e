package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aktietipset/backend/internal/external/memory"
	"github.com/wonny/aktietipset/backend/pkg/config"
	"github.com/wonny/aktietipset/backend/pkg/logger"
)

func TestServeAPI_ReleasesProviderOnSetupError(t *testing.T) {
	cfg := &config.Config{
		StrategyFile: filepath.Join(t.TempDir(), "missing.yaml"),
	}
	p := memory.New()

	err := serveAPI(cfg, p, logger.Nop())
	require.Error(t, err)
	assert.True(t, p.Released())
	assert.Equal(t, 1, p.Calls(memory.MethodRelease))
}
