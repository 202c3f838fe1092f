// Package config loads play-extract settings from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. PLAYEXTRACT_OUTPUT_DIR
const EnvPrefix = "PLAYEXTRACT"

// DefaultEnvFile is loaded when present
const DefaultEnvFile = ".env"

type SourcesConfig struct {
	URLs         []string `yaml:"urls"`
	File         string   `yaml:"file"`
	Feed         string   `yaml:"feed"`
	Sitemap      string   `yaml:"sitemap"`
	Max          int      `yaml:"max" validate:"gte=0"`
	SkipExisting bool     `yaml:"skip_existing" split_words:"true"`
}

type OutputConfig struct {
	Dir string `yaml:"dir" validate:"required"`
	Ext string `yaml:"ext"`
}

type HTTPConfig struct {
	Timeout         time.Duration `yaml:"timeout" validate:"gte=0"`
	ClientType      string        `yaml:"client_type" split_words:"true" validate:"oneof=default browser cloudflare"`
	FollowTextLinks bool          `yaml:"follow_text_links" split_words:"true"`
	MaxBytes        int64         `yaml:"max_bytes" split_words:"true" validate:"gte=0"`
}

// MarkersConfig overrides trimming markers. An empty list keeps the default set.
type MarkersConfig struct {
	Primary   []string `yaml:"primary"`
	Secondary []string `yaml:"secondary"`
	Tertiary  []string `yaml:"tertiary"`
	End       []string `yaml:"end"`
}

type ParseConfig struct {
	TitlePrefix            string        `yaml:"title_prefix" split_words:"true"`
	Markers                MarkersConfig `yaml:"markers"`
	InlinePattern          string        `yaml:"inline_pattern" split_words:"true"`
	BlockPattern           string        `yaml:"block_pattern" split_words:"true"`
	DropStructuralSpeakers bool          `yaml:"drop_structural_speakers" split_words:"true"`
	StructuralPrefixes     []string      `yaml:"structural_prefixes" split_words:"true"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" validate:"oneof=console json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" split_words:"true" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" split_words:"true" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" split_words:"true" validate:"gte=0"`
}

type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr" validate:"required_if=Enabled true"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0"`
	TTL      time.Duration `yaml:"ttl" validate:"gte=0"`
}

type SQLiteConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
}

type PostgresConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DSN          string `yaml:"dsn" validate:"required_if=Enabled true"`
	AutoMigrate  bool   `yaml:"auto_migrate" split_words:"true"`
	MaxOpenConns int    `yaml:"max_open_conns" split_words:"true" validate:"gte=0"`
}

type SupabaseConfig struct {
	Enabled          bool   `yaml:"enabled"`
	URL              string `yaml:"url"`
	Key              string `yaml:"key"`
	Password         string `yaml:"password"`
	ConnectionString string `yaml:"connection_string" split_words:"true"`
	AutoMigrate      bool   `yaml:"auto_migrate" split_words:"true"`
}

type MongoConfig struct {
	Enabled    bool   `yaml:"enabled"`
	URI        string `yaml:"uri" validate:"required_if=Enabled true"`
	Database   string `yaml:"database" validate:"required_if=Enabled true"`
	Collection string `yaml:"collection" validate:"required_if=Enabled true"`
}

type ObjectStoreConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint" validate:"required_if=Enabled true"`
	AccessKeyID     string `yaml:"access_key_id" split_words:"true"`
	SecretAccessKey string `yaml:"secret_access_key" split_words:"true"`
	UseSSL          bool   `yaml:"use_ssl" split_words:"true"`
	Bucket          string `yaml:"bucket" validate:"required_if=Enabled true"`
	Prefix          string `yaml:"prefix"`
}

// Config is the full application configuration.
type Config struct {
	Sources     SourcesConfig     `yaml:"sources"`
	Output      OutputConfig      `yaml:"output"`
	HTTP        HTTPConfig        `yaml:"http"`
	Parse       ParseConfig       `yaml:"parse"`
	Logging     LoggingConfig     `yaml:"logging"`
	Cache       CacheConfig       `yaml:"cache"`
	SQLite      SQLiteConfig      `yaml:"sqlite"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Supabase    SupabaseConfig    `yaml:"supabase"`
	Mongo       MongoConfig       `yaml:"mongo"`
	ObjectStore ObjectStoreConfig `yaml:"object_store" split_words:"true"`
}

// Defaults returns the application defaults.
func Defaults() Config {
	return Config{
		Output: OutputConfig{Dir: "plays", Ext: "json"},
		HTTP: HTTPConfig{
			Timeout:         30 * time.Second,
			ClientType:      "default",
			FollowTextLinks: true,
		},
		Parse: ParseConfig{
			TitlePrefix:            "TheProjectGutenbergeBookof",
			DropStructuralSpeakers: true,
		},
		Logging: LoggingConfig{Level: "info", Format: "console", MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28},
		Cache:   CacheConfig{Addr: "localhost:6379", TTL: 24 * time.Hour},
		SQLite:  SQLiteConfig{Path: "plays.db"},
		Postgres: PostgresConfig{
			AutoMigrate:  true,
			MaxOpenConns: 4,
		},
		Supabase:    SupabaseConfig{AutoMigrate: true},
		Mongo:       MongoConfig{Database: "playextract", Collection: "plays"},
		ObjectStore: ObjectStoreConfig{UseSSL: true, Bucket: "plays"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then .env and PLAYEXTRACT_* environment overrides. The
// result is validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Supabase.Enabled && c.Supabase.ConnectionString == "" && c.Supabase.URL == "" {
		return errors.New("invalid config: supabase needs connection_string or url")
	}
	return nil
}

// DatabaseSinksEnabled reports whether any database or object sink is on
func (c *Config) DatabaseSinksEnabled() bool {
	return c.SQLite.Enabled || c.Postgres.Enabled || c.Supabase.Enabled || c.Mongo.Enabled || c.ObjectStore.Enabled
}
