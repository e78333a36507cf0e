package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for every setting.
const envPrefix = "LIPINSKI"

var (
	// ErrConfigFileNotFound is returned when the config file does not exist.
	ErrConfigFileNotFound = stderrors.New("config: file not found")
	// ErrConfigParseError is returned when the config file is not valid YAML.
	ErrConfigParseError = stderrors.New("config: parse error")
	// ErrConfigInvalid is returned when a loaded config fails Validate.
	ErrConfigInvalid = stderrors.New("config: invalid")
)

// keys lists every setting so that environment variables are honoured even
// when the key is absent from the file. viper's AutomaticEnv only consults
// the environment for keys it already knows about.
var keys = []string{
	"server.host", "server.port", "server.read_timeout", "server.write_timeout",
	"server.shutdown_timeout", "server.max_upload_size", "server.cors_origins",
	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
	"analysis.concurrency", "analysis.max_rows", "analysis.preview_rows", "analysis.timeout",
	"database.enabled", "database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode", "database.max_open_conns", "database.max_idle_conns",
	"database.conn_max_lifetime", "database.conn_max_idle_time", "database.auto_migrate",
	"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.pool_size",
	"redis.min_idle_conns", "redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"redis.descriptor_ttl", "redis.key_prefix",
	"minio.enabled", "minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket",
	"minio.region", "minio.use_ssl", "minio.presign_expiry",
	"kafka.enabled", "kafka.brokers", "kafka.group_id", "kafka.requested_topic",
	"kafka.completed_topic", "kafka.batch_timeout", "kafka.max_retries", "kafka.start_offset",
	"metrics.enabled", "metrics.namespace", "metrics.path",
}

// newViper builds a Viper instance with YAML file type, the LIPINSKI_ env
// prefix and a "." → "_" key replacer, so "database.host" resolves to
// LIPINSKI_DATABASE_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	v.SetDefault("analysis.preview_rows", DefaultPreviewRows)
	return v
}

// Load reads the YAML file at configPath, merges LIPINSKI_* environment
// overrides, applies defaults and validates the result. An empty configPath
// is the same as LoadFromEnv.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)
	if err := readInConfig(v, configPath); err != nil {
		return nil, err
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from LIPINSKI_* environment variables and
// defaults alone.
//
//	LIPINSKI_<SECTION>_<FIELD>   e.g.  LIPINSKI_REDIS_ENABLED, LIPINSKI_KAFKA_BROKERS
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func readInConfig(v *viper.Viper, configPath string) error {
	if _, err := os.Stat(configPath); err != nil {
		return fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfigParseError, configPath, err)
	}
	return nil
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %v", ErrConfigParseError, err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return cfg, nil
}

// Watch re-reads configPath whenever it changes on disk and invokes onChange
// with the new Config. Changes that fail to parse or validate are passed to
// onError, when set, and otherwise dropped; the previous Config stays in
// effect. Watch returns after the initial read and watches in the background.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := readInConfig(v, configPath); err != nil {
		return err
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is Load that panics on error, for use in main.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
