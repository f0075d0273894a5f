package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/linkcheck/internal/batch"
	"github.com/hamed0406/linkcheck/internal/probe"
)

type Config struct {
	Addr     string `yaml:"addr"`      // API bind address, e.g., "127.0.0.1:8080" (Windows) or ":8080" (Docker)
	LogDir   string `yaml:"log_dir"`   // logs directory
	LogLevel string `yaml:"log_level"` // debug | info | warn | error

	Strategy     probe.Kind    `yaml:"strategy"`      // relay | permissive | strict
	Workers      int           `yaml:"workers"`       // batch pool width
	CheckTimeout time.Duration `yaml:"check_timeout"` // 0 means the strategy default
	RelayBaseURL string        `yaml:"relay_base_url"`

	// InsecureSkipVerify disables TLS certificate checks on outbound probes.
	// Defaults to true for the permissive strategy only.
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	OutboundProxy      string `yaml:"outbound_proxy"` // socks5://host:port

	AllowedOrigins []string `yaml:"allowed_origins"` // empty means allow all
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	CheckRPM       int      `yaml:"check_rpm"` // per client IP, 0 disables
	CheckBurst     int      `yaml:"check_burst"`
}

func Default() Config {
	return Config{
		Addr:           "127.0.0.1:8080",
		LogDir:         "logs",
		LogLevel:       "info",
		Strategy:       probe.KindRelay,
		Workers:        batch.DefaultWorkers,
		RelayBaseURL:   probe.DefaultRelayBaseURL,
		MaxUploadBytes: 10 << 20,
		CheckRPM:       30,
		CheckBurst:     10,
	}
}

// Load builds the config from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (Config, error) {
	cfg := Default()
	insecureSet := false
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		cfg, insecureSet, err = overlayFile(cfg, path)
		if err != nil {
			return Config{}, err
		}
	}
	cfg = applyEnv(cfg, insecureSet)
	return cfg, nil
}

func overlayFile(cfg Config, path string) (Config, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, false, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, false, fmt.Errorf("parse config file %s: %w", path, err)
	}
	var probeKeys map[string]any
	_ = yaml.Unmarshal(raw, &probeKeys)
	_, insecureSet := probeKeys["insecure_skip_verify"]
	return cfg, insecureSet, nil
}

func applyEnv(cfg Config, insecureSet bool) Config {
	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("CHECK_STRATEGY"); v != "" {
		cfg.Strategy = probe.Kind(strings.ToLower(strings.TrimSpace(v)))
	}
	if v := os.Getenv("CHECK_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("CHECK_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			cfg.CheckTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("RELAY_BASE_URL"); v != "" {
		cfg.RelayBaseURL = v
	}
	if v := os.Getenv("INSECURE_SKIP_VERIFY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.InsecureSkipVerify = b
			insecureSet = true
		}
	}
	if !insecureSet {
		cfg.InsecureSkipVerify = cfg.Strategy == probe.KindPermissive
	}
	if v := os.Getenv("OUTBOUND_PROXY"); v != "" {
		cfg.OutboundProxy = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("CHECK_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CheckRPM = n
		}
	}
	if v := os.Getenv("CHECK_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CheckBurst = n
		}
	}
	return cfg
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every problem in cfg at once.
func (c Config) Validate() error {
	var err error
	switch c.Strategy {
	case probe.KindRelay, probe.KindPermissive, probe.KindStrict:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown strategy %q (want relay, permissive or strict)", c.Strategy))
	}
	if c.Workers < 1 {
		err = multierr.Append(err, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if c.Addr == "" {
		err = multierr.Append(err, errors.New("addr is empty"))
	}
	if c.Strategy == probe.KindRelay && c.RelayBaseURL == "" {
		err = multierr.Append(err, errors.New("relay strategy needs relay_base_url"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	return err
}

// ProbeOptions maps the config onto strategy options.
func (c Config) ProbeOptions() probe.Options {
	return probe.Options{
		Timeout:            c.CheckTimeout,
		InsecureSkipVerify: c.InsecureSkipVerify,
		RelayBaseURL:       c.RelayBaseURL,
		OutboundProxy:      c.OutboundProxy,
	}
}
