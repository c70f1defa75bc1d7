package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"roombook/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	RoomsFile string

	AutoSaveFile            string
	AutoSaveInterval        time.Duration
	AutoSaveShutdownTimeout time.Duration

	Host string
	Port string

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	EventsPublishTimeout time.Duration
	KafkaTopic           string

	Log *logger.Logger
}

// Load reads the configuration from the environment. A .env file in the working
// directory, when present, seeds variables that are not already set.
func Load(serviceName string) *Config {
	envErr := godotenv.Load()

	cfg := FromEnv()
	cfg.Log = logger.New(logger.Config{
		Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		cfg.Log.Warn("Failed to read .env file", "error", envErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv builds a Config from environment variables and defaults without a logger.
func FromEnv() *Config {
	return &Config{
		RoomsFile: getEnvStr(EnvRoomsFile, DefaultRoomsFile),

		AutoSaveFile:            getEnvStr(EnvAutoSaveFile, DefaultAutoSaveFile),
		AutoSaveInterval:        getEnvDuration(EnvAutoSaveInterval, DefaultAutoSaveInterval),
		AutoSaveShutdownTimeout: getEnvDuration(EnvAutoSaveShutdownTimeout, DefaultAutoSaveShutdownTimeout),

		Host: getEnvStr(EnvHost, DefaultHost),
		Port: getEnvStr(EnvPort, DefaultPort),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		EventsPublishTimeout: getEnvDuration(EnvEventsPublishTimeout, DefaultEventsPublishTimeout),
		KafkaTopic:           getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),
	}
}

func (cfg *Config) Addr() string {
	return net.JoinHostPort(cfg.Host, cfg.Port)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.RoomsFile == "" {
		errors = append(errors, "RoomsFile cannot be empty")
	}
	if cfg.AutoSaveFile == "" {
		errors = append(errors, "AutoSaveFile cannot be empty")
	}
	if cfg.AutoSaveInterval < MinAutoSaveInterval {
		errors = append(errors, fmt.Sprintf("AutoSaveInterval must be at least %s, got: %s", MinAutoSaveInterval, cfg.AutoSaveInterval))
	}
	if cfg.AutoSaveShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("AutoSaveShutdownTimeout must be positive, got: %s", cfg.AutoSaveShutdownTimeout))
	}

	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.EventsPublishTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("EventsPublishTimeout must be positive, got: %s", cfg.EventsPublishTimeout))
	}
	if cfg.KafkaTopic == "" {
		errors = append(errors, "KafkaTopic cannot be empty")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"rooms_file", cfg.RoomsFile,
		"autosave_file", cfg.AutoSaveFile,
		"autosave_interval", cfg.AutoSaveInterval,
		"autosave_shutdown_timeout", cfg.AutoSaveShutdownTimeout,
		"addr", cfg.Addr(),
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"events_publish_timeout", cfg.EventsPublishTimeout,
		"kafka_topic", cfg.KafkaTopic,
	)
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
