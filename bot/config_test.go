package bot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const baseConfigYAML = `
telegram:
  token: "123:abc"
  run_mode: longpoll
logging:
  level: info
  format: kv
database:
  host: localhost
  port: "5432"
  user: lfg
  password: secret
  name: lfg
channels:
  listings: -1001
  moderation: -1002
admin_ids: [10, 20]
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, baseConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Core.Telegram.Token)
	assert.Equal(t, int64(-1001), cfg.Channels.Listings)
	assert.Equal(t, int64(-1002), cfg.Channels.Moderation)
	assert.Equal(t, []int64{10, 20}, cfg.AdminIDs)
	assert.Equal(t, "manual", cfg.Moderation.Default)
	assert.Equal(t, "@hourly", cfg.Expiry.Schedule)
	require.NotNil(t, cfg.CoreConfig())
	assert.Equal(t, cfg.Core.Telegram.Token, cfg.CoreConfig().Telegram.Token)
}

func TestLoadConfigRequiresChannels(t *testing.T) {
	body := `
telegram:
  token: "123:abc"
channels:
  listings: -1001
`
	_, err := LoadConfig(writeConfig(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channels.moderation")
}

func TestLoadConfigRejectsUnknownModerationMode(t *testing.T) {
	body := baseConfigYAML + `
moderation:
  default: strict
`
	_, err := LoadConfig(writeConfig(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moderation.default")
}
