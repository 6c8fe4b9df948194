package chrome

import (
	"testing"
	"time"

	"github.com/LouYuanbo1/attendancecrawler/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Browser.Headless = true
	cfg.Browser.NoSandbox = true
	cfg.Browser.Bin = "/opt/chrome/chrome"
	cfg.Browser.DriverPath = "ws://127.0.0.1:9222"
	cfg.Browser.PageLoadTimeout = 15 * time.Second

	opts := OptionsFromConfig(cfg)
	assert.True(t, opts.Headless)
	assert.False(t, opts.DisableGpu)
	assert.True(t, opts.NoSandbox)
	assert.Equal(t, "/opt/chrome/chrome", opts.Bin)
	assert.Equal(t, "ws://127.0.0.1:9222", opts.DriverPath)
	assert.Equal(t, 15*time.Second, opts.PageLoadTimeout)
}

func TestFlagsOrderAndExtras(t *testing.T) {
	opts := Options{
		Headless:   true,
		DisableGpu: true,
		NoSandbox:  false,
		UserAgent:  "probe/1.0",
		ExtraFlags: []string{"--disable-extensions", " lang=en-US ", "", "--"},
	}

	flags := opts.Flags()
	require.Len(t, flags, 9)

	names := make([]string, 0, len(flags))
	for _, f := range flags {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"headless",
		"disable-gpu",
		"no-sandbox",
		"disable-dev-shm-usage",
		"ignore-certificate-errors",
		"log-level",
		"user-agent",
		"disable-extensions",
		"lang",
	}, names)

	assert.Equal(t, Flag{Name: "no-sandbox", Value: false}, flags[2])
	assert.Equal(t, Flag{Name: "log-level", Value: "3"}, flags[5])
	assert.Equal(t, Flag{Name: "user-agent", Value: "probe/1.0"}, flags[6])
	assert.Equal(t, Flag{Name: "disable-extensions", Value: true}, flags[7])
	assert.Equal(t, Flag{Name: "lang", Value: "en-US"}, flags[8])
}

func TestFlagsWithoutUserAgent(t *testing.T) {
	flags := Options{}.Flags()
	require.Len(t, flags, 6)
	for _, f := range flags {
		assert.NotEqual(t, "user-agent", f.Name)
	}
}
