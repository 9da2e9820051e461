package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/parameter"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, parameter.DefaultTargetFPS, c.TargetFPS)
	assert.Equal(t, catalog.DefaultID, c.Vehicle)
	assert.Equal(t, parameter.DefaultKeyHoldWindow, c.KeyHoldWindow)
	assert.Equal(t, "info", c.Log.Level)
	assert.False(t, c.Log.Enabled)
	assert.Equal(t, "chase", c.Camera.Mode)
	assert.True(t, c.Camera.Damping)
	assert.Equal(t, "sqlite", c.Telemetry.Store.Driver)
	assert.False(t, c.Telemetry.Enabled)
	assert.False(t, c.Metrics.Enabled)
	assert.Equal(t, parameter.MetricsExportInterval, c.Metrics.Interval)
	assert.Equal(t, "localhost:12201", c.Graylog.Address)
	assert.Equal(t, Default(), c)
}

func TestLoad_TOMLFile(t *testing.T) {
	path := writeFile(t, "vi-drive.toml", `
targetFPS = 120
vehicle = "bmw_f82"
keyHoldWindow = "250ms"

[log]
enabled = true
level = "debug"

[bindings]
accelerate = ["arrowup", "w"]

[telemetry]
enabled = true
sampleHz = 20.0

[telemetry.store]
driver = "postgres"
dsn = "host=db user=vidrive"
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 120, c.TargetFPS)
	assert.Equal(t, catalog.BMWF82, c.Vehicle)
	assert.Equal(t, 250*time.Millisecond, c.KeyHoldWindow)
	assert.True(t, c.Log.Enabled)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, []string{"arrowup", "w"}, c.Bindings["accelerate"])
	assert.True(t, c.Telemetry.Enabled)
	assert.Equal(t, 20.0, c.Telemetry.SampleHz)
	assert.Equal(t, "postgres", c.Telemetry.Store.Driver)
	assert.Equal(t, "host=db user=vidrive", c.Telemetry.Store.DSN)
	// Untouched keys keep defaults
	assert.Equal(t, "chase", c.Camera.Mode)
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "vi-drive.json", `{"camera": {"mode": "translate", "damping": false}}`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "translate", c.Camera.Mode)
	assert.False(t, c.Camera.Damping)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "vi-drive.yaml", "vehicle: classic\ntargetFPS: 60\n")
	t.Setenv("VIDRIVE_VEHICLE", "mercedes_g63")
	t.Setenv("VIDRIVE_TELEMETRY_STREAM_ENABLED", "true")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, catalog.MercedesG63, c.Vehicle)
	assert.Equal(t, 60, c.TargetFPS)
	assert.True(t, c.Telemetry.Stream.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	tests := []struct {
		name string
		body string
	}{
		{"zero fps", "targetFPS = 0"},
		{"bad driver", "[telemetry.store]\ndriver = \"mongo\""},
		{"negative hold", "keyHoldWindow = \"-1s\""},
		{"negative volume", "[audio]\nvolume = -0.5"},
		{"zero metrics interval", "[metrics]\nenabled = true\ninterval = \"0s\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.toml", tt.body))
			assert.True(t, errors.Is(err, ErrInvalidConfig), "err = %v", err)
		})
	}
}
