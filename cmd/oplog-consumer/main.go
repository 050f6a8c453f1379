// Command oplog-consumer stores operation-log records from Kafka in the
// admin_audit_log table read by GET /api/v1/admin/audit-log.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-studioadmin/internal/config"
	"go-studioadmin/internal/consumer/oplog"
	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/logging"
	"go-studioadmin/internal/mq/kafka"
	"go-studioadmin/internal/repository/postgres"
	"go-studioadmin/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.dev.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	lg, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	lg = lg.Named("oplog_consumer")
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.OpLogTopic == "" {
		lg.Fatal("kafka_not_configured")
	}

	db, err := postgres.New(postgres.Config{DSN: cfg.Postgres.DSN, MaxOpen: cfg.Postgres.MaxOpen, MaxIdle: cfg.Postgres.MaxIdle, LogLevel: cfg.Postgres.LogLevel}, lg)
	if err != nil {
		lg.Fatal("postgres_connect_failed", zap.Error(err))
	}
	defer postgres.Close(db, lg)
	if cfg.Postgres.AutoMigrate {
		if err := postgres.Migrate(context.Background(), db, &model.AuditEntry{}); err != nil {
			lg.Error("auto_migrate_failed", zap.Error(err))
		}
	}

	handler := oplog.NewHandler(service.NewLogService(db, nil), lg)
	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.OpLogGroup,
		Topics:  []string{cfg.Kafka.OpLogTopic},
	}, lg)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lg.Info("oplog_consumer_start", zap.String("topic", cfg.Kafka.OpLogTopic), zap.String("group", cfg.Kafka.OpLogGroup))
	if err := consumer.Start(ctx, handler.Handle); err != nil {
		lg.Error("oplog_consumer_stopped", zap.Error(err))
	}
	lg.Info("oplog_consumer_exit")
}
