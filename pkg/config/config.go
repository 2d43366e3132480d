// Package config loads the settings shared by every kpet command from a
// configuration file, the environment, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kpet-go/kpet/pkg/logging"
	"github.com/spf13/viper"
)

const (
	// Name is the base name of the configuration file, and of its directory
	// under the user's configuration directory.
	Name = "kpet"
	// EnvPrefix prefixes the environment variables overriding settings, as
	// in KPET_DB.
	EnvPrefix = "KPET"
)

// Keys of the settings, also the names of the flags bound to them.
const (
	KeyDB              = "db"
	KeyVerbose         = "verbose"
	KeyLogFormat       = "log-format"
	KeyMetricsTextfile = "metrics-textfile"
)

// Config holds the settings.
type Config struct {
	// DB is the path to the database directory.
	DB        string `mapstructure:"db"`
	Verbose   int    `mapstructure:"verbose"`
	LogFormat string `mapstructure:"log-format"`
	// MetricsTextfile is where run metrics are written, if not empty.
	MetricsTextfile string `mapstructure:"metrics-textfile"`
}

// New returns a viper instance with kpet's defaults and environment
// variable lookup set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDB, ".")
	v.SetDefault(KeyVerbose, 0)
	v.SetDefault(KeyLogFormat, string(logging.Console))
	v.SetDefault(KeyMetricsTextfile, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// SearchPaths returns the directories the configuration file is looked up
// in when not given explicitly.
func SearchPaths() []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, Name))
	}
	return append(paths, ".")
}

// Load reads the configuration file into v and returns the resulting
// settings. An explicitly named file must exist, otherwise a missing file in
// the search paths is not an error.
func Load(v *viper.Viper, file string, searchPaths ...string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch logging.Format(c.LogFormat) {
	case logging.JSON, logging.Console:
	default:
		return fmt.Errorf("invalid %s %q, expecting %q or %q", KeyLogFormat, c.LogFormat, logging.JSON, logging.Console)
	}
	if c.Verbose < 0 {
		return fmt.Errorf("invalid %s %d, expecting a non-negative level", KeyVerbose, c.Verbose)
	}
	if c.DB == "" {
		return fmt.Errorf("%s must not be empty", KeyDB)
	}
	return nil
}
