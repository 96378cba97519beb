package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	API struct {
		BaseURL        string        `mapstructure:"base_url"`
		Timeout        time.Duration `mapstructure:"timeout"`
		RefreshTimeout time.Duration `mapstructure:"refresh_timeout"`
	} `mapstructure:"api"`
	Session struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"session"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Export struct {
		Bucket    string `mapstructure:"bucket"`
		KeyPrefix string `mapstructure:"key_prefix"`
		Region    string `mapstructure:"region"`
		Endpoint  string `mapstructure:"endpoint"`
	} `mapstructure:"export"`
	AWS struct {
		Profile string `mapstructure:"profile"`
	} `mapstructure:"aws"`
	Sandbox struct {
		Addr          string        `mapstructure:"addr"`
		DatabasePath  string        `mapstructure:"database_path"`
		JWTSecret     string        `mapstructure:"jwt_secret"`
		AccessTTL     time.Duration `mapstructure:"access_ttl"`
		RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
		AdminEmail    string        `mapstructure:"admin_email"`
		AdminPassword string        `mapstructure:"admin_password"`
		AdminName     string        `mapstructure:"admin_name"`
		Seed          bool          `mapstructure:"seed"`
	} `mapstructure:"sandbox"`
}

// Load reads configuration from environment variables and an optional config
// file. An explicit configFile must exist; otherwise config.{yaml,json,toml}
// is looked up in the working directory and in ~/.adminctl.
func Load(configFile string) (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("ADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	home, _ := os.UserHomeDir()
	stateDir := filepath.Join(home, ".adminctl")

	v.SetDefault("api.base_url", "http://localhost:4000/api")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.refresh_timeout", 15*time.Second)
	v.SetDefault("session.path", filepath.Join(stateDir, "session.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("export.bucket", "")
	v.SetDefault("export.key_prefix", "admin-exports")
	v.SetDefault("export.region", "us-east-1")
	v.SetDefault("export.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("sandbox.addr", "127.0.0.1:4000")
	v.SetDefault("sandbox.database_path", "data/sandbox.db")
	v.SetDefault("sandbox.jwt_secret", "")
	v.SetDefault("sandbox.access_ttl", 15*time.Minute)
	v.SetDefault("sandbox.refresh_ttl", 7*24*time.Hour)
	v.SetDefault("sandbox.admin_email", "admin@example.com")
	v.SetDefault("sandbox.admin_password", "")
	v.SetDefault("sandbox.admin_name", "Sandbox Admin")
	v.SetDefault("sandbox.seed", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if home != "" {
			v.AddConfigPath(stateDir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	if cfg.API.BaseURL == "" {
		return Config{}, fmt.Errorf("api base url is required")
	}

	return cfg, nil
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
