package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultConfigFile = "config.yaml"

type Config struct {
	Port          string        `koanf:"port"`
	DBDSN         string        `koanf:"db_dsn"`
	LogFile       string        `koanf:"log_file"`
	LogLevel      string        `koanf:"log_level"`
	APIURL        string        `koanf:"api_url"`
	RemoteTimeout time.Duration `koanf:"remote_timeout"`
	RemoteWait    time.Duration `koanf:"remote_wait"`
	StoreLatency  time.Duration `koanf:"store_latency"`
	SeedSource    string        `koanf:"seed_source"`
	BodyLimit     int           `koanf:"body_limit"`
}

const (
	SeedBuiltin = "builtin"
	SeedRemote  = "remote"
)

func Defaults() Config {
	return Config{
		Port:          "8081",
		DBDSN:         "zonagamer.db",
		LogFile:       "./zonagamer.log",
		LogLevel:      "info",
		APIURL:        "http://localhost:8080/api",
		RemoteTimeout: 10 * time.Second,
		RemoteWait:    2 * time.Second,
		SeedSource:    SeedBuiltin,
		BodyLimit:     1 << 20,
	}
}

// Load layers defaults, an optional yaml file (CONFIG_FILE, else
// ./config.yaml when present) and environment variables, in that order.
func Load() (Config, error) {
	k := koanf.New(".")

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, errors.Wrapf(err, "read config file %s", path)
		}
	}

	known := knownKeys()
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, v string) (string, any) {
			key = strings.ToLower(key)
			if !known[key] {
				return "", nil
			}
			return key, v
		},
	}), nil); err != nil {
		return Config{}, errors.Wrap(err, "load env variables")
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func knownKeys() map[string]bool {
	return map[string]bool{
		"port": true, "db_dsn": true, "log_file": true, "log_level": true, "api_url": true,
		"remote_timeout": true, "remote_wait": true, "store_latency": true, "seed_source": true, "body_limit": true,
	}
}

func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("api_url %q is not an http(s) url", c.APIURL)
	}
	if c.SeedSource != SeedBuiltin && c.SeedSource != SeedRemote {
		return errors.Errorf("seed_source must be %s or %s, got %q", SeedBuiltin, SeedRemote, c.SeedSource)
	}
	if c.RemoteTimeout <= 0 {
		return errors.New("remote_timeout must be positive")
	}
	if c.RemoteWait < 0 || c.StoreLatency < 0 {
		return errors.New("remote_wait and store_latency cannot be negative")
	}
	if c.BodyLimit <= 0 {
		return errors.New("body_limit must be positive")
	}
	return nil
}
