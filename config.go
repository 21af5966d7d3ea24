package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile    = "./config.yml"
	DefaultConfigEnvFile = "./config.env"
	ConfigEnvPrefix      = "BKS"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit               string        `yaml:"git_commit" envconfig:"BKS_GIT_COMMIT"`
	GitTag                  string        `yaml:"git_tag" envconfig:"BKS_GIT_TAG"`
	BuildTime               string        `yaml:"build_time" envconfig:"BKS_BUILD_TIME"`
	IsProduction            bool          `yaml:"is_production" envconfig:"BKS_IS_PRODUCTION"`
	LogLevel                zapcore.Level `yaml:"log_level" envconfig:"BKS_LOG_LEVEL"`
	LogFolder               string        `yaml:"log_folder" envconfig:"BKS_LOG_FOLDER"`
	LogMaxSize              int           `yaml:"log_max_size" envconfig:"BKS_LOG_MAX_SIZE"` // in megabytes
	OpsEndpointsEnable      bool          `yaml:"ops_endpoints_enable" envconfig:"BKS_OPS_ENDPOINTS_ENABLE"`
	ProfilerEndpointsEnable bool          `yaml:"profiler_endpoints_enable" envconfig:"BKS_PROFILER_ENDPOINTS_ENABLE"`
	Server                  ServerConfig  `yaml:"server"`
	Limiter                 LimiterConfig `yaml:"limiter"`
	Events                  EventsConfig  `yaml:"events"`
	Redis                   RedisConfig   `yaml:"redis"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"BKS_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"BKS_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"BKS_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"BKS_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"BKS_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"BKS_SERVER_SHUTDOWN_TIMEOUT"`
}

// LimiterConfig holds the per client ip rate limiting settings.
type LimiterConfig struct {
	Enable bool          `yaml:"enable" envconfig:"BKS_LIMITER_ENABLE"`
	RPS    float64       `yaml:"rps" envconfig:"BKS_LIMITER_RPS"`
	Burst  int           `yaml:"burst" envconfig:"BKS_LIMITER_BURST"`
	TTL    time.Duration `yaml:"ttl" envconfig:"BKS_LIMITER_TTL"` // idle time before a client limiter is dropped
}

// EventsConfig toggles the publication of book changes to redis queues.
type EventsConfig struct {
	Enable bool `yaml:"enable" envconfig:"BKS_EVENTS_ENABLE"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"BKS_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"BKS_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"BKS_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"BKS_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"BKS_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"BKS_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"BKS_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"BKS_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"BKS_REDIS_PASSWORD" json:"-"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"BKS_REDIS_DATABASE_INDEX"`
}

// DefaultConfig provides the settings used when no configuration
// source overrides them. The server listens on 127.0.0.1:8080.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:   zapcore.InfoLevel,
		LogFolder:  "./logs",
		LogMaxSize: 10,
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Limiter: LimiterConfig{
			Enable: false,
			RPS:    10,
			Burst:  20,
			TTL:    3 * time.Minute,
		},
		Redis: RedisConfig{
			Host:        "localhost",
			Port:        "6379",
			DialTimeout: 5 * time.Second,
			PoolSize:    10,
		},
	}
}

// LoadConfigFile decodes the yaml file content on top of the provided config.
// A missing file is not an error, the config is then left untouched.
func LoadConfigFile(configFile string, config *Config) error {
	file, err := os.Open(configFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	yd := yaml.NewDecoder(file)
	if err = yd.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadConfigEnvFile sets environment variables defined into the env file if it exists.
func LoadConfigEnvFile(envFile string) error {
	if _, err := os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(envFile)
}

// LoadConfigEnvs reads the environments variables and overrides the config accordingly.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig configures build tags values to be used if
// provided and ensures required parameters are set.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration")
	}

	if config.Events.Enable && (len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0) {
		return errors.New("make sure to set valid redis address and port when events are enabled")
	}

	if config.Limiter.Enable && (config.Limiter.RPS <= 0 || config.Limiter.Burst <= 0) {
		return errors.New("make sure to set positive limiter rps and burst when limiter is enabled")
	}

	if config.LogMaxSize <= 0 {
		return errors.New("make sure to set a positive log max size")
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(configFile, envFile, gitCommit, gitTag, buildTime string) (*Config, error) {
	config := DefaultConfig()

	err := LoadConfigFile(configFile, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configurations from file: %w", err)
	}

	err = LoadConfigEnvFile(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to set environment configurations: %w", err)
	}

	// Use environment variables with prefix `BKS`.
	err = LoadConfigEnvs(ConfigEnvPrefix, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configurations from environment: %w", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize configurations: %w", err)
	}
	return config, nil
}
