package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
app:
  name: dealdesk
  port: 8080
  env: development

notifier:
  enabled: true
  webhook_url: https://hooks.internal/notify
  client_id: client-1
  client_secret: secret
  timeout_seconds: 30

tracking:
  viewer_session_ttl_hours: 48

logging:
  level: debug
`

func TestNewConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testYAML), 0o644))
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "dealdesk", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.True(t, cfg.IsDevelopment())

	// timeouts are declared in whole seconds and decode as plain ints
	assert.Equal(t, 30, cfg.Notifier.TimeoutSeconds)
	assert.Equal(t, 48, cfg.Tracking.ViewerSessionTTLHours)

	// sections left out of the file fall back to defaults
	assert.Equal(t, 10, cfg.Coordinator.TimeoutSeconds)
}
