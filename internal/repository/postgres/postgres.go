package postgres

import (
	"context"
	"fmt"
	"time"

	"go-studioadmin/internal/logging"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Config struct {
	DSN         string
	MaxOpen     int
	MaxIdle     int
	AutoMigrate bool
	LogLevel    string
	SlowQuery   time.Duration
}

// New opens the studio database. SQL logging goes through l under the "gorm" name.
func New(cfg Config, l *logging.Logger) (*gorm.DB, error) {
	if l == nil {
		l = logging.Nop()
	}
	if cfg.SlowQuery <= 0 {
		cfg.SlowQuery = 200 * time.Millisecond
	}
	gl := gormlogger.New(zapWriter{l.Named("gorm").Logger}, gormlogger.Config{
		SlowThreshold:             cfg.SlowQuery,
		LogLevel:                  logLevel(cfg.LogLevel),
		IgnoreRecordNotFoundError: true,
	})
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}
	sqlDB.SetConnMaxLifetime(2 * time.Hour)
	return db, nil
}

type zapWriter struct{ l *zap.Logger }

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.l.Info(fmt.Sprintf(format, args...))
}

func logLevel(s string) gormlogger.LogLevel {
	switch s {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// Migrate creates or alters the tables of models inside one bounded call.
func Migrate(ctx context.Context, db *gorm.DB, models ...interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	return db.WithContext(ctx).AutoMigrate(models...)
}

func Close(db *gorm.DB, l *logging.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil && l != nil {
		l.Warn("postgres_close_failed", zap.Error(err))
	}
}
