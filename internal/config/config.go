package config

import (
	"time"

	"github.com/LouYuanbo1/attendancecrawler/param"
)

type Config struct {
	Server struct {
		Host            string        `mapstructure:"host"`
		Port            int           `mapstructure:"port"`
		RequestTimeout  time.Duration `mapstructure:"request_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
		Mode            string        `mapstructure:"mode"`
	} `mapstructure:"server"`

	Browser struct {
		// Driver 可选 chromedp 或 rod
		Driver          string        `mapstructure:"driver"`
		Headless        bool          `mapstructure:"headless"`
		DisableGpu      bool          `mapstructure:"disable_gpu"`
		NoSandbox       bool          `mapstructure:"no_sandbox"`
		Bin             string        `mapstructure:"bin"`
		DriverPath      string        `mapstructure:"driver_path"`
		ExtraFlags      []string      `mapstructure:"extra_flags"`
		UserAgent       string        `mapstructure:"user_agent"`
		AllowDownload   bool          `mapstructure:"allow_download"`
		Leakless        bool          `mapstructure:"leakless"`
		PageLoadTimeout time.Duration `mapstructure:"page_load_timeout"`
		StartupRetries  int           `mapstructure:"startup_retries"`
	} `mapstructure:"browser"`

	Portal param.Portal `mapstructure:"portal"`

	Pool struct {
		Size int `mapstructure:"size"`
	} `mapstructure:"pool"`

	Log struct {
		Level      string `mapstructure:"level"`
		Format     string `mapstructure:"format"`
		File       string `mapstructure:"file"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAgeDays int    `mapstructure:"max_age_days"`
	} `mapstructure:"log"`

	RateLimit struct {
		PerMinute int `mapstructure:"per_minute"`
		Burst     int `mapstructure:"burst"`
	} `mapstructure:"rate_limit"`

	Cors struct {
		AllowOrigins []string `mapstructure:"allow_origins"`
	} `mapstructure:"cors"`

	Elasticsearch struct {
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		Address  string `mapstructure:"address"`
		Index    string `mapstructure:"index"`
	} `mapstructure:"elasticsearch"`

	Probe struct {
		Timeout   time.Duration `mapstructure:"timeout"`
		UserAgent string        `mapstructure:"user_agent"`
	} `mapstructure:"probe"`
}
