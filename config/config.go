package config

import (
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
	Endpoint    string `mapstructure:"endpoint"`
}

type BalancerConfig struct {
	Instances           int    `mapstructure:"instances"`
	BasePort            int    `mapstructure:"base_port"`
	HealthCheckInterval string `mapstructure:"health_check_interval"`
}

type InstanceConfig struct {
	MaxConcurrentRequests int    `mapstructure:"max_concurrent_requests"`
	PoolSize              int    `mapstructure:"pool_size"`
	PoolSweepInterval     string `mapstructure:"pool_sweep_interval"`
	ProbeVenue            string `mapstructure:"probe_venue"`
}

type UpstreamConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	RequestTimeout string `mapstructure:"request_timeout"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Balancer BalancerConfig `mapstructure:"balancer"`
	Instance InstanceConfig `mapstructure:"instance"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

func Load() (*Config, error) {
	viper.SetDefault("server.environment", EnvDev)
	viper.SetDefault("server.address", ":8000")
	viper.SetDefault("server.endpoint", "/api/v1/delivery-order-price")
	viper.SetDefault("balancer.instances", 4)
	viper.SetDefault("balancer.base_port", 8001)
	viper.SetDefault("balancer.health_check_interval", "5s")
	viper.SetDefault("instance.max_concurrent_requests", 100)
	viper.SetDefault("instance.pool_size", 5)
	viper.SetDefault("instance.pool_sweep_interval", "30s")
	viper.SetDefault("instance.probe_venue", "home-assignment-venue-helsinki")
	viper.SetDefault("upstream.base_url", "https://consumer-api.development.dev.woltapi.com/home-assignment-api/v1")
	viper.SetDefault("upstream.request_timeout", "30s")
	viper.SetDefault("logging.level", LogLevelInfo)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
					validation.Field(&sc.Endpoint,
						validation.Required,
						validation.By(validateEndpointPath),
					),
				)
			}),
		),
		validation.Field(&c.Balancer,
			validation.Required,
			validation.By(func(value interface{}) error {
				bc, ok := value.(BalancerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a BalancerConfig")
				}
				return validation.ValidateStruct(&bc,
					validation.Field(&bc.Instances,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&bc.BasePort,
						validation.Required,
						validation.Min(1),
						validation.Max(65535),
					),
					validation.Field(&bc.HealthCheckInterval,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.Instance,
			validation.Required,
			validation.By(func(value interface{}) error {
				ic, ok := value.(InstanceConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be an InstanceConfig")
				}
				return validation.ValidateStruct(&ic,
					validation.Field(&ic.MaxConcurrentRequests,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&ic.PoolSize,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&ic.PoolSweepInterval,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&ic.ProbeVenue,
						validation.Required,
					),
				)
			}),
		),
		validation.Field(&c.Upstream,
			validation.Required,
			validation.By(func(value interface{}) error {
				uc, ok := value.(UpstreamConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be an UpstreamConfig")
				}
				return validation.ValidateStruct(&uc,
					validation.Field(&uc.BaseURL,
						validation.Required,
						validation.By(validateBaseURL),
					),
					validation.Field(&uc.RequestTimeout,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
	)
}

// HealthCheckIntervalDuration returns the parsed balancer health check
// interval. Validate guarantees the string parses.
func (c *Config) HealthCheckIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.Balancer.HealthCheckInterval)
	return d
}

// PoolSweepIntervalDuration returns the parsed connection pool sweep interval.
func (c *Config) PoolSweepIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.Instance.PoolSweepInterval)
	return d
}

// RequestTimeoutDuration returns the parsed upstream request timeout.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Upstream.RequestTimeout)
	return d
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := time.ParseDuration(durationStr); err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	return nil
}

func validateEndpointPath(value interface{}) error {
	path, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if !strings.HasPrefix(path, "/") {
		return validation.NewError("validation_invalid_path", "endpoint path must start with /")
	}

	return nil
}

func validateBaseURL(value interface{}) error {
	baseURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if baseURL == "" {
		return validation.NewError("validation_empty_url", "base URL cannot be empty")
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
