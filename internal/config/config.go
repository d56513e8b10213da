package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/otpkeeper/internal/validation"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "OTP"

// DirName is the per-user directory holding the store and config file.
const DirName = ".otp"

// Config holds runtime settings for the otp CLI.
type Config struct {
	Storage Storage `mapstructure:"storage"`
	Crypto  Crypto  `mapstructure:"crypto"`
	Log     Log     `mapstructure:"log"`
	TOTP    TOTP    `mapstructure:"totp"`
}

// Storage selects and configures the persistence backend.
type Storage struct {
	Backend   string `mapstructure:"backend" validate:"oneof=file sqlite s3"`
	Path      string `mapstructure:"path"`
	SQLiteDSN string `mapstructure:"sqlite_dsn"`
	S3        S3     `mapstructure:"s3"`
}

// S3 configures the object storage backend. Empty credentials fall back to
// the default AWS credential chain.
type S3 struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint" validate:"omitempty,url"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// Crypto holds the key scheme applied when a PIN is set.
type Crypto struct {
	KDF string `mapstructure:"kdf" validate:"oneof=hkdf legacy"`
}

// Log configures the stderr logger.
type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// TOTP configures the time step.
type TOTP struct {
	Step uint64 `mapstructure:"step" validate:"min=1,max=300"`
}

// ErrS3BucketRequired is returned when the s3 backend has no bucket.
var ErrS3BucketRequired = errors.New("storage.s3.bucket is required for the s3 backend")

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	dir := DefaultDir()
	c.Storage = Storage{
		Backend:   "file",
		Path:      filepath.Join(dir, "store.json"),
		SQLiteDSN: filepath.Join(dir, "otp.db"),
		S3:        S3{Region: "us-east-1"},
	}
	c.Crypto = Crypto{KDF: "hkdf"}
	c.Log = Log{Level: "warn", Format: "text"}
	c.TOTP = TOTP{Step: 30}
}

// DefaultDir returns ~/.otp, or .otp when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// Load builds a Config from defaults, the config file, OTP_* environment
// variables and any flags already bound to v. configFile may be empty, in
// which case a missing default config file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	setDefaults(v, cfg)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(DefaultDir())
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Storage.SQLiteDSN = expandHome(cfg.Storage.SQLiteDSN)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values and cross-field rules.
func (c *Config) Validate() error {
	val, err := validation.New()
	if err != nil {
		return err
	}
	if err := val.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Storage.Backend == "s3" && c.Storage.S3.Bucket == "" {
		return ErrS3BucketRequired
	}
	return nil
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("storage.backend", c.Storage.Backend)
	v.SetDefault("storage.path", c.Storage.Path)
	v.SetDefault("storage.sqlite_dsn", c.Storage.SQLiteDSN)
	v.SetDefault("storage.s3.bucket", c.Storage.S3.Bucket)
	v.SetDefault("storage.s3.prefix", c.Storage.S3.Prefix)
	v.SetDefault("storage.s3.region", c.Storage.S3.Region)
	v.SetDefault("storage.s3.endpoint", c.Storage.S3.Endpoint)
	v.SetDefault("storage.s3.use_path_style", c.Storage.S3.UsePathStyle)
	v.SetDefault("storage.s3.access_key_id", c.Storage.S3.AccessKeyID)
	v.SetDefault("storage.s3.secret_access_key", c.Storage.S3.SecretAccessKey)
	v.SetDefault("crypto.kdf", c.Crypto.KDF)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
	v.SetDefault("totp.step", c.TOTP.Step)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
