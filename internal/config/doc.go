// Package config loads runtime configuration for the otp CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file: --config, or config.{yaml,json,toml} in ~/.otp.
//  3. Environment variables prefixed with OTP_, dots replaced by underscores
//     (OTP_STORAGE_BACKEND, OTP_LOG_LEVEL, ...).
//  4. Command-line flags registered by BindFlags.
//
// # File schema
//
//	storage:
//	  backend: sqlite          # file | sqlite | s3
//	  path: ~/.otp/store.json  # file backend
//	  sqlite_dsn: ~/.otp/otp.db
//	  s3:
//	    bucket: my-otp
//	    prefix: laptop/
//	    region: eu-central-1
//	    endpoint: http://127.0.0.1:9000
//	    use_path_style: true
//	crypto:
//	  kdf: hkdf                # hkdf | legacy, applied when a PIN is set
//	log:
//	  level: warn
//	  format: text
//	totp:
//	  step: 30
package config
