package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.Listen)
	assert.Equal(t, DefaultSlots, cfg.Slots)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "reservation.events", cfg.Broker.Queue)
	assert.Equal(t, "@every 1m", cfg.Refresh.Schedule)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	content := []byte("listen: \":9000\"\ndb:\n  host: db.internal\n  port: 6543\nslots:\n  - \"09:00\"\n  - \"10:00\"\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("DESK_DB_USER", "staff")
	t.Setenv("DESK_TIMEZONE", "Asia/Seoul")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "staff", cfg.Database.User)
	assert.Equal(t, []string{"09:00", "10:00"}, cfg.Slots)
	assert.Equal(t, "Asia/Seoul", cfg.Location().String())
}

func TestApplication_Location(t *testing.T) {
	assert.Equal(t, time.Local, Application{}.Location())
	assert.Equal(t, time.Local, Application{Timezone: "Local"}.Location())
	assert.Equal(t, time.Local, Application{Timezone: "Not/AZone"}.Location())
}
