package db

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lostfound/backend/internal/models"
	"github.com/lostfound/backend/pkg/config"
	"github.com/lostfound/backend/pkg/logging"
	"github.com/lostfound/backend/pkg/telemetry"
)

const pingTimeout = 5 * time.Second

// zapWriter adapts zap.Logger to logger.Writer interface
type zapWriter struct {
	logger *zap.Logger
}

func (w *zapWriter) Printf(format string, args ...interface{}) {
	w.logger.Sugar().Infof(format, args...)
}

// DB wraps GORM database connection
type DB struct {
	*gorm.DB
}

// Open normalizes the configured URL and connects with exponential backoff.
// An error means the process cannot serve requests and should stop.
func Open(ctx context.Context, cfg *config.DatabaseConfig, logLevel string) (*DB, error) {
	log := logging.WithComponent("db")
	dsn := NormalizeURL(cfg.URL)

	attempts, err := telemetry.Meter().Int64Counter("db.connect.attempts",
		metric.WithDescription("Startup database connection attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create connect counter: %w", err)
	}

	policy := RetryPolicy{
		MaxAttempts: cfg.ConnectMaxAttempts,
		BaseDelay:   cfg.ConnectBaseDelay,
	}

	var database *DB
	err = Retry(ctx, policy, log, func(ctx context.Context, attempt int) error {
		attempts.Add(ctx, 1)
		d, err := connect(ctx, dsn, cfg, logLevel)
		if err != nil {
			return err
		}
		database = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Database connection established", zap.Bool("pooled", dsn.Pooled))
	return database, nil
}

func connect(ctx context.Context, dsn DSN, cfg *config.DatabaseConfig, logLevel string) (*DB, error) {
	gormLogger := logger.New(
		&zapWriter{logger: logging.GetLogger()},
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(logLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn.URL,
		PreferSimpleProtocol: dsn.Pooled,
	}), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if dsn.Pooled {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "DEBUG", "debug":
		return logger.Info
	case "INFO", "info":
		return logger.Warn
	case "WARN", "warn", "WARNING", "warning":
		return logger.Error
	case "ERROR", "error":
		return logger.Silent
	default:
		return logger.Warn
	}
}

// Migrate creates or updates the schema for every model
func (d *DB) Migrate(ctx context.Context) error {
	if err := d.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks database health
func (d *DB) Health(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
