package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	// DefaultBranch is tracked when a repository entry names no branch.
	DefaultBranch = "master"
	// DefaultIntervalSeconds is the poll period applied when an entry
	// names no interval.
	DefaultIntervalSeconds = 300
	// DefaultLogLevel is used when the config file sets no log_level.
	DefaultLogLevel = "info"
)

// RepositorySpec describes one watched checkout. It is immutable once
// loaded and shared read-only with the supervisor that owns it.
type RepositorySpec struct {
	// Path is the filesystem location of an existing git working copy
	// with a remote named "origin".
	Path string `mapstructure:"path" validate:"required"`
	// Branch is the remote branch tracked on origin.
	Branch string `mapstructure:"branch"`
	// Interval is the poll period in seconds, measured from the end of
	// one sync cycle to the start of the next.
	Interval int `mapstructure:"interval" validate:"gt=0"`
	// OnChange is an optional shell command executed after a
	// fast-forward, with the checkout path as working directory.
	OnChange string `mapstructure:"on_change"`
}

// PollInterval returns the poll period as a duration.
func (s RepositorySpec) PollInterval() time.Duration {
	return time.Duration(s.Interval) * time.Second
}

// Config is the validated daemon configuration.
type Config struct {
	LogLevel string           `mapstructure:"log_level"`
	Repos    []RepositorySpec `mapstructure:"repos" validate:"required,min=1,dive"`
}

// Loader interface
type Loader interface {
	LoadAndValidate() (*Config, error)
}

type loader struct {
	validator      *validator.Validate
	configFilePath string
}

// NewLoader creates a Loader for the given config file path.
func NewLoader(completeFilePath string) Loader {
	return &loader{
		validator:      validator.New(),
		configFilePath: completeFilePath,
	}
}

// LoadAndValidate reads the TOML config file, applies defaults and
// validates the result. Any error here is fatal to the daemon; nothing
// is watched until the whole file is known to be good.
func (l *loader) LoadAndValidate() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(l.configFilePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	if err := l.validator.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}
	for i := range config.Repos {
		if config.Repos[i].Branch == "" {
			config.Repos[i].Branch = DefaultBranch
		}
		if config.Repos[i].Interval == 0 {
			config.Repos[i].Interval = DefaultIntervalSeconds
		}
	}
}
