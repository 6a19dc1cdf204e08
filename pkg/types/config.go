package types

import (
	"errors"
	"net/url"
	"time"
)

// Config holds backend selection, storage location and the settings of the
// boundary collaborators (remote service, session, edit debouncing).
type Config struct {
	Backend     string        `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir     string        `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Remote      RemoteConfig  `json:"remote" yaml:"remote" mapstructure:"remote"`
	Session     SessionConfig `json:"session" yaml:"session" mapstructure:"session"`
	Edit        EditConfig    `json:"edit" yaml:"edit" mapstructure:"edit"`
	Log         LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	MetricsFile string        `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`
}

// RemoteConfig locates the remote holding service. An empty BaseURL disables
// every remote operation.
type RemoteConfig struct {
	BaseURL   string        `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	RateLimit float64       `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SessionConfig controls token renewal.
type SessionConfig struct {
	Freshness time.Duration `json:"freshness" yaml:"freshness" mapstructure:"freshness"`
}

// EditConfig controls the debounced edit controller.
type EditConfig struct {
	Settle time.Duration `json:"settle" yaml:"settle" mapstructure:"settle"`
}

// LogConfig selects the logger mode ("development" or "production").
type LogConfig struct {
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Defaults applied by the CLI when a key is absent from config.yaml.
const (
	DefaultFreshness     = 2 * time.Minute
	DefaultSettle        = 500 * time.Millisecond
	DefaultRemoteTimeout = 30 * time.Second
	DefaultRateLimit     = 5.0
	DefaultLogMode       = "production"
)

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrBaseURLInvalid   = errors.New("remote base_url must be an absolute http(s) URL")
	ErrTimeoutInvalid   = errors.New("remote timeout must not be negative")
	ErrRateLimitInvalid = errors.New("remote rate_limit must not be negative")
	ErrFreshnessInvalid = errors.New("session freshness must not be negative")
	ErrSettleInvalid    = errors.New("edit settle must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure. Zero durations and rates mean "use the
// default".
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Remote.BaseURL != "" {
		u, err := url.Parse(c.Remote.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrBaseURLInvalid
		}
	}
	if c.Remote.Timeout < 0 {
		return ErrTimeoutInvalid
	}
	if c.Remote.RateLimit < 0 {
		return ErrRateLimitInvalid
	}
	if c.Session.Freshness < 0 {
		return ErrFreshnessInvalid
	}
	if c.Edit.Settle < 0 {
		return ErrSettleInvalid
	}
	return nil
}

// RemoteEnabled reports whether a remote holding service is configured.
func (c Config) RemoteEnabled() bool {
	return c.Remote.BaseURL != ""
}
