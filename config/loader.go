package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/theoremus-urban-solutions/transit-fusion/errs"
)

// DefaultPaths are searched by Load when no path is given.
var DefaultPaths = []string{"config.yml", "./config/config.yml"}

const (
	defaultLogLevel          = "info"
	defaultRealtimeTimeoutMS = 10000
	defaultDownloadTimeoutMS = 120000
	defaultMaxAttempts       = 3
	defaultInitialIntervalMS = 500
	defaultRefreshSchedule   = "0 4 * * *"
)

// Load reads the first existing file among paths (DefaultPaths when empty),
// then parses, validates and defaults it.
func Load(paths ...string) (*AppConfig, error) {
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrFileNotFound, err, "config")
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML bytes into a validated AppConfig with defaults applied.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errs.Wrap(errs.ErrInvalidConfig, err, "decode config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func Validate(cfg *AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return errs.Wrap(errs.ErrInvalidConfig, err, "validate config")
	}
	seen := map[string]bool{}
	for _, a := range cfg.Agencies {
		if seen[a.Code] {
			return errs.Wrap(errs.ErrInvalidConfig, nil, "agency %q listed twice", a.Code)
		}
		seen[a.Code] = true
	}
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
	if cfg.Realtime.TimeoutMS == 0 {
		cfg.Realtime.TimeoutMS = defaultRealtimeTimeoutMS
	}
	if cfg.Download.TimeoutMS == 0 {
		cfg.Download.TimeoutMS = defaultDownloadTimeoutMS
	}
	if cfg.Download.MaxAttempts == 0 {
		cfg.Download.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Download.InitialIntervalMS == 0 {
		cfg.Download.InitialIntervalMS = defaultInitialIntervalMS
	}
	if cfg.Refresh.Schedule == "" {
		cfg.Refresh.Schedule = defaultRefreshSchedule
	}
	if cfg.Realtime.Credentials == nil {
		cfg.Realtime.Credentials = map[string]string{}
	}
}

// Credential returns the real-time API key configured for an agency, if any.
func (c *AppConfig) Credential(code string) string {
	return c.Realtime.Credentials[code]
}

// SelectAgency returns code, or DefaultAgency when code is empty. The result may
// name a built-in agency that is not listed under Agencies.
func (c *AppConfig) SelectAgency(code string) string {
	if code == "" {
		return c.DefaultAgency
	}
	return code
}
