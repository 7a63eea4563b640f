package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pantryapp"
)

// Open builds the Collection selected by cfg.Driver. The returned close function
// releases backend resources and is always non-nil.
func Open(ctx context.Context, cfg pantryapp.StoreConfig) (Collection, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case "memory":
		slog.Info("STORE: Using in-memory collection", "collection", cfg.Collection)
		return NewMemoryCollection(), noop, nil

	case "file", "":
		slog.Info("STORE: Using file collection", "collection", cfg.Collection, "path", cfg.FilePath)
		return NewFileCollection(cfg.FilePath), noop, nil

	case "s3":
		if cfg.S3Bucket == "" {
			return nil, noop, fmt.Errorf("missing S3 config: PANTRY_S3_BUCKET must be set")
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return nil, noop, fmt.Errorf("failed to load AWS config: %w", err)
		}
		prefix := cfg.S3Prefix
		if prefix == "" {
			prefix = cfg.Collection
		}
		slog.Info("STORE: Using S3 collection", "bucket", cfg.S3Bucket, "prefix", prefix)
		return NewS3Collection(s3.NewFromConfig(awsCfg), cfg.S3Bucket, prefix), noop, nil

	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, noop, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{
			Logger:                 logger.Default.LogMode(logger.Silent),
			SkipDefaultTransaction: true,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		c, err := NewSQLCollection(db, cfg.Collection)
		if err != nil {
			return nil, noop, errors.Join(err, closeDB(db))
		}
		slog.Info("STORE: Using SQLite collection", "path", cfg.SQLitePath, "table", c.table)
		return c, c.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
