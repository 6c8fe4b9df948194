package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/LouYuanbo1/attendancecrawler/param"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const envPrefix = "ATTENDANCE"

// legacyEnv 部署平台上沿用的环境变量名, 优先级低于 ATTENDANCE_* 前缀的变量
var legacyEnv = map[string][]string{
	"browser.bin":            {"CHROME_BIN", "CHROME_BINARY_PATH"},
	"browser.driver_path":    {"CHROME_DRIVER_PATH"},
	"server.port":            {"PORT"},
	"server.request_timeout": {"REQUEST_TIMEOUT"},
	"pool.size":              {"WORKER_POOL_SIZE"},
}

// ParseConfig 依次读取默认值、可选的 yaml 配置文件、.env 文件和环境变量.
// configFile 为空时只使用默认值和环境变量.
func ParseConfig(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("读取 .env 失败: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		envNames := append([]string{envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(append([]string{key}, envNames...)...); err != nil {
			return nil, fmt.Errorf("绑定环境变量 %s 失败: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", configFile, err)
		}
	}

	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Browser.Driver {
	case "chromedp", "rod":
	default:
		return fmt.Errorf("未知的浏览器驱动: %q", c.Browser.Driver)
	}
	if c.Pool.Size < 1 {
		return fmt.Errorf("pool.size 必须大于 0, 当前为 %d", c.Pool.Size)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout 必须大于 0")
	}
	if c.Browser.StartupRetries < 0 {
		return errors.New("browser.startup_retries 不能为负数")
	}
	if !c.Portal.IsValid() {
		return errors.New("portal 配置不完整")
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.mode", "release")

	v.SetDefault("browser.driver", "chromedp")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.no_sandbox", true)
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.driver_path", "")
	v.SetDefault("browser.extra_flags", []string{})
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.allow_download", false)
	v.SetDefault("browser.leakless", true)
	v.SetDefault("browser.page_load_timeout", 30*time.Second)
	v.SetDefault("browser.startup_retries", 0)

	portal := param.DefaultPortal()
	v.SetDefault("portal.url", portal.URL)
	v.SetDefault("portal.student_link", portal.StudentLink)
	v.SetDefault("portal.user_id_input", portal.UserIDInput)
	v.SetDefault("portal.password_input", portal.PasswordInput)
	v.SetDefault("portal.submit_button", portal.SubmitButton)
	v.SetDefault("portal.course_names", portal.CourseNames)
	v.SetDefault("portal.attendance_rate", portal.AttendanceRate)
	v.SetDefault("portal.step_timeout", portal.StepTimeout)
	v.SetDefault("portal.settle_delay", portal.SettleDelay)

	v.SetDefault("pool.size", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)

	v.SetDefault("rate_limit.per_minute", 10)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("cors.allow_origins", []string{"*"})

	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.address", "")
	v.SetDefault("elasticsearch.index", "attendance_scrape_runs")

	v.SetDefault("probe.timeout", 10*time.Second)
	v.SetDefault("probe.user_agent", "")
}

// secondsToDurationHook 允许 REQUEST_TIMEOUT=60 这种不带单位的写法, 按秒处理
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		s := strings.TrimSpace(data.(string))
		seconds, err := strconv.Atoi(s)
		if err != nil {
			return data, nil
		}
		return time.Duration(seconds) * time.Second, nil
	}
}
