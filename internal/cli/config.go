package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/folio/internal/paths"
	"github.com/mesh-intelligence/folio/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// envPrefix prefixes environment overrides, e.g. FOLIO_REMOTE_BASE_URL.
	envPrefix = "FOLIO"

	cfgKeyBackend         = "backend"
	cfgKeyDataDir         = "data_dir"
	cfgKeyRemoteBaseURL   = "remote.base_url"
	cfgKeyRemoteTimeout   = "remote.timeout"
	cfgKeyRemoteRateLimit = "remote.rate_limit"
	cfgKeyFreshness       = "session.freshness"
	cfgKeySettle          = "edit.settle"
	cfgKeyLogMode         = "log.mode"
	cfgKeyMetricsFile     = "metrics_file"
)

// configFile holds the structure written to config.yaml. Durations are
// written as strings so the file stays readable.
type configFile struct {
	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir,omitempty"`
	Remote  struct {
		BaseURL   string  `yaml:"base_url"`
		Timeout   string  `yaml:"timeout"`
		RateLimit float64 `yaml:"rate_limit"`
	} `yaml:"remote"`
	Session struct {
		Freshness string `yaml:"freshness"`
	} `yaml:"session"`
	Edit struct {
		Settle string `yaml:"settle"`
	} `yaml:"edit"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

func defaultConfigFile() configFile {
	var cfg configFile
	cfg.Backend = types.BackendSQLite
	cfg.Remote.Timeout = types.DefaultRemoteTimeout.String()
	cfg.Remote.RateLimit = types.DefaultRateLimit
	cfg.Session.Freshness = types.DefaultFreshness.String()
	cfg.Edit.Settle = types.DefaultSettle.String()
	cfg.Log.Mode = types.DefaultLogMode
	return cfg
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run. Environment variables
// prefixed with FOLIO_ override file values.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir)); err != nil {
		return nil, fmt.Errorf("write config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyRemoteBaseURL, "")
	v.SetDefault(cfgKeyRemoteTimeout, types.DefaultRemoteTimeout)
	v.SetDefault(cfgKeyRemoteRateLimit, types.DefaultRateLimit)
	v.SetDefault(cfgKeyFreshness, types.DefaultFreshness)
	v.SetDefault(cfgKeySettle, types.DefaultSettle)
	v.SetDefault(cfgKeyLogMode, types.DefaultLogMode)
	v.SetDefault(cfgKeyMetricsFile, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// decodeConfig unmarshals the merged settings into a types.Config.
func decodeConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil.
func writeConfigIfMissing(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(defaultConfigFile())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# folio configuration\n# Environment variables prefixed with FOLIO_ override these values.\n\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
