package profiling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/triage/internal/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/profiling"
)

func TestStart_DisabledReturnsNil(t *testing.T) {
	p, err := profiling.Start(profiling.Config{}, "triage", "test", logger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, p.Stop())
}

func TestStartPprof_DisabledIsNoOp(t *testing.T) {
	profiling.StartPprof(profiling.Config{}, nil)
}

func TestConfig_SetDefaults(t *testing.T) {
	var cfg profiling.Config
	cfg.SetDefaults()

	assert.Equal(t, "http://pyroscope:4040", cfg.ServerURL)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 6060, cfg.PprofPort)
	assert.False(t, cfg.Enabled)
}
