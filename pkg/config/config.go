package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

var (
	ErrBadConfiguration   = errors.New("bad configuration")
	ErrBadDuration        = fmt.Errorf("%w: duration must be positive", ErrBadConfiguration)
	ErrBadEndpoint        = fmt.Errorf("%w: endpoint must be an absolute http(s) URL", ErrBadConfiguration)
	ErrBadTransientBudget = fmt.Errorf("%w: poll.max_transient_errors cannot be negative", ErrBadConfiguration)
)

// Logging configures pkg/logging.
type Logging struct {
	Format        string  `mapstructure:"format"`
	Level         string  `mapstructure:"level"`
	Output        Strings `mapstructure:"output"`
	FileMaxSizeMB int     `mapstructure:"file_max_size_mb"`
	FilesKeep     int     `mapstructure:"files_keep"`
}

// HTTP configures the transport shared by every login stage.
type HTTP struct {
	ConnectTimeout      time.Duration `mapstructure:"connect_timeout"`
	Timeout             time.Duration `mapstructure:"timeout"`
	UserAgent           string        `mapstructure:"user_agent"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
}

// Endpoints are the provider URLs, one per login step.
type Endpoints struct {
	Session    string `mapstructure:"session"`
	Generate   string `mapstructure:"generate"`
	Query      string `mapstructure:"query"`
	TokenLogin string `mapstructure:"token_login"`
	WebToken   string `mapstructure:"web_token"`
}

type Poll struct {
	Interval           time.Duration `mapstructure:"interval"`
	Timeout            time.Duration `mapstructure:"timeout"`
	MaxTransientErrors int           `mapstructure:"max_transient_errors"`
}

type Login struct {
	LoginType string     `mapstructure:"login_type"`
	DeviceID  OnlyString `mapstructure:"device_id"`
}

type Metrics struct {
	ListenAddress string `mapstructure:"listen_address"`
}

type Config struct {
	Logging   Logging   `mapstructure:"logging"`
	HTTP      HTTP      `mapstructure:"http"`
	Endpoints Endpoints `mapstructure:"endpoints"`
	Poll      Poll      `mapstructure:"poll"`
	Login     Login     `mapstructure:"login"`
	Metrics   Metrics   `mapstructure:"metrics"`
}

// NewConfig builds a Config from the global viper instance: defaults, then any config file
// already read, then the environment.
func NewConfig() (*Config, error) {
	c := &Config{}

	// Inform viper of all expected fields.  Otherwise, it fails to deserialize from the
	// environment.
	keys := GetStructKeys(reflect.TypeOf(c), "mapstructure", "squash")
	for _, key := range keys {
		viper.SetDefault(key, nil)
	}
	setDefaults()

	err := viper.UnmarshalExact(c, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			DecodeStrings,
			DecodeOnlyString,
			mapstructure.StringToTimeDurationHookFunc())))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values that would otherwise fail only once a login is under way.
func (c *Config) Validate() error {
	durations := map[string]time.Duration{
		HTTPConnectTimeoutKey: c.HTTP.ConnectTimeout,
		HTTPTimeoutKey:        c.HTTP.Timeout,
		PollIntervalKey:       c.Poll.Interval,
		PollTimeoutKey:        c.Poll.Timeout,
	}
	for key, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s=%s: %w", key, d, ErrBadDuration)
		}
	}
	if c.Poll.MaxTransientErrors < 0 {
		return ErrBadTransientBudget
	}

	endpoints := map[string]string{
		EndpointsSessionKey:    c.Endpoints.Session,
		EndpointsGenerateKey:   c.Endpoints.Generate,
		EndpointsQueryKey:      c.Endpoints.Query,
		EndpointsTokenLoginKey: c.Endpoints.TokenLogin,
		EndpointsWebTokenKey:   c.Endpoints.WebToken,
	}
	for key, endpoint := range endpoints {
		u, err := url.Parse(endpoint)
		if err != nil {
			return fmt.Errorf("%s: %w: %s", key, ErrBadEndpoint, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s=%q: %w", key, endpoint, ErrBadEndpoint)
		}
	}
	return nil
}
