package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LouYuanbo1/attendancecrawler/internal/config"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerWritesFile(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"
	cfg.Log.File = filepath.Join(t.TempDir(), "service.log")
	cfg.Log.MaxSizeMB = 1

	l, err := InitLogger(cfg)
	require.NoError(t, err)
	l.Info("hello")
	_ = l.Sync()

	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"hello"`)
}

func TestInitLoggerRejectsBadConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "loud"
	_, err := InitLogger(cfg)
	require.Error(t, err)

	cfg.Log.Level = "info"
	cfg.Log.Format = "xml"
	_, err = InitLogger(cfg)
	require.Error(t, err)
}
