package ops

import (
	"os"
	"time"

	"github.com/spf13/viper"
	"github.com/yanun0323/errors"
)

// Config is the resolved client configuration.
type Config struct {
	// ServerBaseURL is the http(s) origin of the platform.
	ServerBaseURL string `mapstructure:"server_base_url"`

	HeartbeatIntervalSec int `mapstructure:"heartbeat_interval_sec"`
	ReconnectIntervalSec int `mapstructure:"reconnect_interval_sec"`
	MaxReconnectAttempts int `mapstructure:"max_reconnect_attempts"`

	ToastDurationSec   int `mapstructure:"toast_duration_sec"`
	NotificationLogCap int `mapstructure:"notification_log_cap"`

	Profiling       bool   `mapstructure:"profiling"`
	ProfilingServer string `mapstructure:"profiling_server"`
}

func (c Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalSec) * time.Second
}

func (c Config) ReconnectInterval() time.Duration {
	return time.Duration(c.ReconnectIntervalSec) * time.Second
}

func (c Config) ToastDuration() time.Duration {
	return time.Duration(c.ToastDurationSec) * time.Second
}

// Load resolves configuration from an optional YAML file plus RECIPE_*
// environment overrides (e.g. RECIPE_SERVER_BASE_URL).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RECIPE")
	v.AutomaticEnv()

	v.SetDefault("server_base_url", "http://localhost:8080")
	v.SetDefault("heartbeat_interval_sec", 30)
	v.SetDefault("reconnect_interval_sec", 3)
	v.SetDefault("max_reconnect_attempts", 5)
	v.SetDefault("toast_duration_sec", 5)
	v.SetDefault("notification_log_cap", 100)
	v.SetDefault("profiling", false)
	v.SetDefault("profiling_server", "http://localhost:4040")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(*os.PathError); !ok {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					return nil, errors.Wrapf(err, "read config %s", path)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return &cfg, nil
}
