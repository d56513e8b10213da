package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagBindings maps config keys to the persistent flags that override them.
var flagBindings = map[string]string{
	"storage.backend":     "backend",
	"storage.path":        "store",
	"storage.sqlite_dsn":  "sqlite-dsn",
	"storage.s3.bucket":   "s3-bucket",
	"storage.s3.prefix":   "s3-prefix",
	"storage.s3.region":   "s3-region",
	"storage.s3.endpoint": "s3-endpoint",
	"crypto.kdf":          "kdf",
	"log.level":           "log-level",
	"log.format":          "log-format",
}

// RegisterFlags adds the global flags to fs. Defaults are left empty so that
// an unset flag never masks the file or environment value.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("backend", "", "storage backend (file, sqlite, s3)")
	fs.String("store", "", "path of the store file for the file backend")
	fs.String("sqlite-dsn", "", "sqlite database path for the sqlite backend")
	fs.String("s3-bucket", "", "S3 bucket name")
	fs.String("s3-prefix", "", "S3 key prefix")
	fs.String("s3-region", "", "S3 region")
	fs.String("s3-endpoint", "", "S3 endpoint URL (MinIO and other compatible stores)")
	fs.String("kdf", "", "key scheme used when a PIN is set (hkdf, legacy)")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("log-format", "", "log format (text, json)")
}

// BindFlags binds every flag the user actually set on fs to its config key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range flagBindings {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("flag --%s is not registered", name)
		}
		if !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}
