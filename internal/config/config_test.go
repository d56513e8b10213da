package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/otpkeeper/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func defaultsFor(home string) Config {
	return Config{
		Storage: Storage{
			Backend:   "file",
			Path:      filepath.Join(home, ".otp", "store.json"),
			SQLiteDSN: filepath.Join(home, ".otp", "otp.db"),
			S3:        S3{Region: "us-east-1"},
		},
		Crypto: Crypto{KDF: "hkdf"},
		Log:    Log{Level: "warn", Format: "text"},
		TOTP:   TOTP{Step: 30},
	}
}

func TestLoadDefaults(t *testing.T) {
	home := withHome(t)

	var c Config
	c.LoadDefaults()

	if diff := cmp.Diff(defaultsFor(home), c); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	home := withHome(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	if diff := cmp.Diff(defaultsFor(home), *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_DefaultFileInOtpDir(t *testing.T) {
	home := withHome(t)
	dir := filepath.Join(home, ".otp")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: debug\n"), 0o600))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ExplicitFile(t *testing.T) {
	home := withHome(t)
	path := filepath.Join(t.TempDir(), "otp.yaml")
	yaml := `
storage:
  backend: s3
  s3:
    bucket: my-otp
    prefix: laptop/
    endpoint: http://127.0.0.1:9000
    use_path_style: true
crypto:
  kdf: legacy
totp:
  step: 60
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	want := defaultsFor(home)
	want.Storage.Backend = "s3"
	want.Storage.S3.Bucket = "my-otp"
	want.Storage.S3.Prefix = "laptop/"
	want.Storage.S3.Endpoint = "http://127.0.0.1:9000"
	want.Storage.S3.UsePathStyle = true
	want.Crypto.KDF = "legacy"
	want.TOTP.Step = 60

	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	withHome(t)
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	withHome(t)
	path := filepath.Join(t.TempDir(), "otp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: file\n"), 0o600))

	t.Setenv("OTP_STORAGE_BACKEND", "sqlite")
	t.Setenv("OTP_TOTP_STEP", "60")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, uint64(60), cfg.TOTP.Step)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	withHome(t)
	t.Setenv("OTP_STORAGE_BACKEND", "sqlite")

	fs := pflag.NewFlagSet("otp", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--backend", "s3", "--s3-bucket", "b", "--log-level", "info"}))

	v := viper.New()
	require.NoError(t, BindFlags(v, fs))

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "b", cfg.Storage.S3.Bucket)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_UnsetFlagsDoNotMask(t *testing.T) {
	withHome(t)
	t.Setenv("OTP_LOG_LEVEL", "error")

	fs := pflag.NewFlagSet("otp", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(nil))

	v := viper.New()
	require.NoError(t, BindFlags(v, fs))

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := withHome(t)
	t.Setenv("OTP_STORAGE_PATH", "~/vault/store.json")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "vault", "store.json"), cfg.Storage.Path)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		is   error
	}{
		{"bad backend", map[string]string{"OTP_STORAGE_BACKEND": "redis"}, common.ErrorValidation},
		{"bad kdf", map[string]string{"OTP_CRYPTO_KDF": "md5"}, common.ErrorValidation},
		{"bad level", map[string]string{"OTP_LOG_LEVEL": "loud"}, common.ErrorValidation},
		{"zero step", map[string]string{"OTP_TOTP_STEP": "0"}, common.ErrorValidation},
		{"s3 without bucket", map[string]string{"OTP_STORAGE_BACKEND": "s3"}, ErrS3BucketRequired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			withHome(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load(viper.New(), "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.is), err.Error())
		})
	}
}

func TestBindFlags_UnregisteredFlag(t *testing.T) {
	fs := pflag.NewFlagSet("otp", pflag.ContinueOnError)
	err := BindFlags(viper.New(), fs)
	require.Error(t, err)
}
