// Package config loads service settings from configs/config.yml and AUTHSVC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "AUTHSVC"

// ErrMissingSecret is returned when no signing secret was supplied.
var ErrMissingSecret = errors.New("jwt.secret is required (set " + envPrefix + "_JWT_SECRET)")

type Config struct {
	Port   string
	DBPath string
	Log    LogConfig
	Server ServerConfig
	JWT    JWTConfig
	Auth   AuthConfig
}

type LogConfig struct {
	Level  string
	Format string // console | json
}

type ServerConfig struct {
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration // 0 disables the exp claim
}

type AuthConfig struct {
	RequireBearerScheme bool
	Argon2              Argon2Config
}

type Argon2Config struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "auth.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.token_ttl", 24*time.Hour)
	v.SetDefault("auth.require_bearer_scheme", false)
	v.SetDefault("auth.argon2.time", 1)
	v.SetDefault("auth.argon2.memory_kib", 64*1024)
	v.SetDefault("auth.argon2.threads", 4)
	v.SetDefault("auth.argon2.key_len", 32)
}

// Load reads the config file at path, or configs/config.yml when path is empty.
// A missing default file is tolerated so the service can run from environment alone.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	threads := v.GetUint("auth.argon2.threads")
	if threads > math.MaxUint8 {
		return nil, fmt.Errorf("auth.argon2.threads must be at most %d, got %d", math.MaxUint8, threads)
	}

	return &Config{
		Port:   v.GetString("port"),
		DBPath: v.GetString("db.path"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Server: ServerConfig{
			ReadHeaderTimeout: v.GetDuration("server.read_header_timeout"),
			WriteTimeout:      v.GetDuration("server.write_timeout"),
			IdleTimeout:       v.GetDuration("server.idle_timeout"),
		},
		JWT: JWTConfig{
			Secret:   v.GetString("jwt.secret"),
			Issuer:   v.GetString("jwt.issuer"),
			TokenTTL: v.GetDuration("jwt.token_ttl"),
		},
		Auth: AuthConfig{
			RequireBearerScheme: v.GetBool("auth.require_bearer_scheme"),
			Argon2: Argon2Config{
				Time:      v.GetUint32("auth.argon2.time"),
				MemoryKiB: v.GetUint32("auth.argon2.memory_kib"),
				Threads:   uint8(threads),
				KeyLen:    v.GetUint32("auth.argon2.key_len"),
			},
		},
	}, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingSecret
	}
	if c.JWT.TokenTTL < 0 {
		return fmt.Errorf("jwt.token_ttl must not be negative, got %s", c.JWT.TokenTTL)
	}
	a := c.Auth.Argon2
	if a.Time == 0 || a.Threads == 0 || a.KeyLen == 0 {
		return errors.New("auth.argon2 time, threads and key_len must be positive")
	}
	if a.MemoryKiB < 8*uint32(a.Threads) {
		return fmt.Errorf("auth.argon2.memory_kib must be at least 8*threads (%d)", 8*uint32(a.Threads))
	}
	return nil
}
