// Package config reads engine configuration from the environment.
package config

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"readingcore/internal/infra/record/s3"
	"readingcore/internal/record"
)

// Config is the resolved runtime configuration.
type Config struct {
	Debug       bool
	Driver      record.Driver
	FSRoot      string
	SQLitePath  string
	PostgresDSN string
	S3          s3.Config
}

// FromEnv reads READINGCORE_* variables. Missing variables fall back to the
// driver defaults, so an empty environment yields a working filesystem setup.
func FromEnv() Config {
	return Config{
		Debug:       boolEnv("READINGCORE_DEBUG"),
		Driver:      record.Driver(os.Getenv("READINGCORE_STORAGE_DRIVER")),
		FSRoot:      os.Getenv("READINGCORE_FS_ROOT"),
		SQLitePath:  os.Getenv("READINGCORE_SQLITE_PATH"),
		PostgresDSN: os.Getenv("READINGCORE_POSTGRES_DSN"),
		S3: s3.Config{
			Bucket:          os.Getenv("READINGCORE_S3_BUCKET"),
			Region:          os.Getenv("READINGCORE_S3_REGION"),
			Endpoint:        os.Getenv("READINGCORE_S3_ENDPOINT"),
			Prefix:          os.Getenv("READINGCORE_S3_PREFIX"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			PathStyle:       boolEnv("READINGCORE_S3_PATH_STYLE"),
		},
	}
}

// Logger builds the diagnostic logger. Debug mode gets a development logger;
// otherwise diagnostics are discarded.
func (c Config) Logger() *zap.Logger {
	if !c.Debug {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// RecordOptions maps the configuration onto the record store factory.
func (c Config) RecordOptions() record.Options {
	return record.Options{
		Driver:      c.Driver,
		FSRoot:      c.FSRoot,
		SQLitePath:  c.SQLitePath,
		PostgresDSN: c.PostgresDSN,
		S3:          c.S3,
	}
}

func boolEnv(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return strings.EqualFold(v, "true") || v == "1"
}
