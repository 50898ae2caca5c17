package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "NUTRILOG"

// Config is read from config.yaml, then overridden by NUTRILOG_* variables
// (dots become underscores, e.g. NUTRILOG_LLM_API_KEY).
type Config struct {
	DBPath   string `mapstructure:"db_path"`
	Timezone string `mapstructure:"timezone"`

	LLM struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Model   string `mapstructure:"model"`
	} `mapstructure:"llm"`

	Barcode struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"barcode"`

	Cache struct {
		RedisURL string `mapstructure:"redis_url"`
	} `mapstructure:"cache"`

	Backup struct {
		S3Bucket string `mapstructure:"s3_bucket"`
		S3Region string `mapstructure:"s3_region"`
		S3Prefix string `mapstructure:"s3_prefix"`
	} `mapstructure:"backup"`

	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
}

var defaults = map[string]any{
	"db_path":          "",
	"timezone":         "",
	"llm.base_url":     "https://api.openai.com/v1",
	"llm.api_key":      "",
	"llm.model":        "gpt-4o-mini",
	"barcode.base_url": "",
	"cache.redis_url":  "",
	"backup.s3_bucket": "",
	"backup.s3_region": "",
	"backup.s3_prefix": "nutrilog/",
	"server.addr":      "127.0.0.1:8787",
}

// ConfigKeys lists every supported key in stable order.
func ConfigKeys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func readInto(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
	}
	return nil
}

// LoadConfig reads path, or the default config location when path is empty.
// A missing file is not an error. A .env file in the working directory is
// loaded into the environment first.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	v := newViper(path)
	if err := readInto(v); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// SetConfigValue persists one key to the config file at path.
func SetConfigValue(path, key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(ConfigKeys(), ", "))
	}
	if err := EnsureDBDir(path); err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := readInto(v); err != nil {
		return err
	}
	v.Set(key, strings.TrimSpace(value))
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Redacted returns the effective settings with secrets masked.
func (c *Config) Redacted() map[string]string {
	key := ""
	if c.LLM.APIKey != "" {
		key = "****"
		if len(c.LLM.APIKey) > 8 {
			key = c.LLM.APIKey[:4] + "****"
		}
	}
	return map[string]string{
		"db_path":          c.DBPath,
		"timezone":         c.Timezone,
		"llm.base_url":     c.LLM.BaseURL,
		"llm.api_key":      key,
		"llm.model":        c.LLM.Model,
		"barcode.base_url": c.Barcode.BaseURL,
		"cache.redis_url":  redactURL(c.Cache.RedisURL),
		"backup.s3_bucket": c.Backup.S3Bucket,
		"backup.s3_region": c.Backup.S3Region,
		"backup.s3_prefix": c.Backup.S3Prefix,
		"server.addr":      c.Server.Addr,
	}
}

// redactURL hides the password in a connection URL. Unparseable values are
// hidden entirely.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "****"
	}
	return u.Redacted()
}
