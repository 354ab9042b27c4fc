// Package config loads reliefctl settings from YAML with RELIEFCORE_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"reliefcore/internal/blob"
	"reliefcore/internal/logging"
	"reliefcore/pkg/domain"
)

// FileName is the config file searched for when no path is given.
const FileName = "reliefcore.yaml"

// StorageConfig selects the entity store backend.
type StorageConfig struct {
	Driver      string `yaml:"driver" validate:"oneof=memory sqlite postgres"`
	SQLitePath  string `yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
	PostgresDSN string `yaml:"postgres_dsn" validate:"required_if=Driver postgres"`
}

// SchedulerConfig holds six-field cron specs (seconds first) for background jobs.
type SchedulerConfig struct {
	CampaignSweep string `yaml:"campaign_sweep" validate:"required"`
	SummaryExport string `yaml:"summary_export" validate:"required"`
}

// AllocationConfig tunes allocation behaviour.
type AllocationConfig struct {
	LimitedThreshold int `yaml:"limited_threshold" validate:"min=1"`
}

// Config represents the application configuration.
type Config struct {
	Env        string           `yaml:"env" validate:"required"`
	Storage    StorageConfig    `yaml:"storage"`
	Archive    blob.Options     `yaml:"archive"`
	Log        logging.Options  `yaml:"log"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Allocation AllocationConfig `yaml:"allocation"`
}

var (
	validate   = validator.New()
	cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path, or searches for FileName in the working and home
// directories when path is empty. With no file found the defaults are used.
// Environment overrides and validation always apply.
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := findConfigFile()
		if err != nil {
			return nil, err
		}
		if found == "" {
			return finish(Default())
		}
		path = found
	}
	return LoadFromPath(path)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.overrideWithEnv()
	cfg.applyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags and cron spec syntax.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	specs := []struct{ name, spec string }{
		{"scheduler.campaign_sweep", cfg.Scheduler.CampaignSweep},
		{"scheduler.summary_export", cfg.Scheduler.SummaryExport},
	}
	for _, s := range specs {
		if _, err := cronParser.Parse(s.spec); err != nil {
			return fmt.Errorf("invalid cron spec in %s: %w", s.name, err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = "dev"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Driver == "sqlite" && c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "reliefcore.db"
	}
	if c.Archive.Driver == "" {
		c.Archive.Driver = blob.DriverFilesystem
	}
	if c.Log.Env == "" {
		c.Log.Env = c.Env
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Scheduler.CampaignSweep == "" {
		c.Scheduler.CampaignSweep = "0 */15 * * * *" // every 15 minutes
	}
	if c.Scheduler.SummaryExport == "" {
		c.Scheduler.SummaryExport = "0 0 * * * *" // hourly
	}
	if c.Allocation.LimitedThreshold == 0 {
		c.Allocation.LimitedThreshold = domain.DefaultLimitedThreshold
	}
}

// overrideWithEnv overrides config values with RELIEFCORE_* environment variables.
func (c *Config) overrideWithEnv() {
	overrides := map[string]*string{
		"RELIEFCORE_ENV":                   &c.Env,
		"RELIEFCORE_STORAGE_DRIVER":        &c.Storage.Driver,
		"RELIEFCORE_SQLITE_PATH":           &c.Storage.SQLitePath,
		"RELIEFCORE_POSTGRES_DSN":          &c.Storage.PostgresDSN,
		"RELIEFCORE_ARCHIVE_FS_ROOT":       &c.Archive.FSRoot,
		"RELIEFCORE_ARCHIVE_S3_BUCKET":     &c.Archive.S3.Bucket,
		"RELIEFCORE_ARCHIVE_S3_REGION":     &c.Archive.S3.Region,
		"RELIEFCORE_ARCHIVE_S3_ENDPOINT":   &c.Archive.S3.Endpoint,
		"RELIEFCORE_ARCHIVE_S3_ACCESS_KEY": &c.Archive.S3.AccessKeyID,
		"RELIEFCORE_ARCHIVE_S3_SECRET_KEY": &c.Archive.S3.SecretAccessKey,
		"RELIEFCORE_LOG_LEVEL":             &c.Log.Level,
		"RELIEFCORE_LOG_DIR":               &c.Log.Dir,
		"RELIEFCORE_SCHEDULE_SWEEP":        &c.Scheduler.CampaignSweep,
		"RELIEFCORE_SCHEDULE_EXPORT":       &c.Scheduler.SummaryExport,
	}
	for key, dst := range overrides {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}
	if val := os.Getenv("RELIEFCORE_ARCHIVE_DRIVER"); val != "" {
		c.Archive.Driver = blob.Driver(val)
	}
	if val := os.Getenv("RELIEFCORE_ARCHIVE_S3_PATH_STYLE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Archive.S3.PathStyle = b
		}
	}
	if val := os.Getenv("RELIEFCORE_LIMITED_THRESHOLD"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Allocation.LimitedThreshold = n
		}
	}
}

// findConfigFile searches the current and home directories. An empty result
// with a nil error means no file exists.
func findConfigFile() (string, error) {
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	homeConfigPath := filepath.Join(homeDir, FileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat %s: %w", homeConfigPath, err)
	}
	return "", nil
}
