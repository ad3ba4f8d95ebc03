package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson_OverlaysAndKeepsUnsetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	body := `{
		"listen_addr": ":7070",
		"request_timeout": "2s",
		"accept_threshold": 0.6,
		"sync_interval": "1m"
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"cmd", "-c", path}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":7070", c.ListenAddr)
	assert.Equal(t, 2*time.Second, c.RequestTimeout)
	assert.Equal(t, 0.6, c.AcceptThreshold)
	assert.Equal(t, time.Minute, c.SyncInterval)
	// fields absent from the file keep their defaults
	assert.Equal(t, "http://127.0.0.1:3001", c.RosterAPIBaseURL)
	assert.Equal(t, "roster.db", c.DatabasePath)
}

func TestParseJson_NoFileFlagIsNoop(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"cmd"}

	var c Config
	c.LoadDefaults()
	require.NotPanics(t, func() { parseJson(&c) })
	assert.Equal(t, ":8080", c.ListenAddr)
}

func TestParseJson_BadFilePanics(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"cmd", "-c", "does-not-exist.json"}

	var c Config
	c.LoadDefaults()
	require.Panics(t, func() { parseJson(&c) })
}
