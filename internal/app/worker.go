package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/xnk3-aplus/360-Base/internal/config"
	"github.com/xnk3-aplus/360-Base/internal/shared/connection"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunWorker executes one batch report run for the given period and exits.
// It is meant to be driven by cron; SIGINT/SIGTERM abort the run cleanly.
func RunWorker(year int, month time.Month, deliver bool) error {
	logger := zap.L().Named("app.worker")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, 3)
		if err != nil {
			logger.Warn("redis unavailable, directory cache runs in-process only", zap.Error(err))
			rdb = nil
		}
	}

	var kafkaWriter *kafka.Writer
	if cfg.KafkaBroker != "" {
		kafkaWriter, err = connection.ConnectKafkaWithRetry(cfg.KafkaBroker, 3)
		if err != nil {
			logger.Warn("kafka unavailable, lifecycle events disabled", zap.Error(err))
			kafkaWriter = nil
		}
	}
	if kafkaWriter != nil {
		defer kafkaWriter.Close()
	}

	service, err := buildReportService(cfg, rdb, kafkaWriter)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("batch run starting",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Bool("deliver", deliver),
	)

	result, err := service.RunBatch(ctx, year, month, deliver)
	if err != nil {
		return err
	}

	logger.Info("batch run finished",
		zap.String("run_id", result.RunID),
		zap.Int("generated", result.Generated),
		zap.Int("emailed", result.Emailed),
		zap.Int("failures", len(result.Failures)),
		zap.Duration("took", result.Took),
	)
	for _, f := range result.Failures {
		logger.Warn("batch entry failed",
			zap.String("employee", f.EmployeeName),
			zap.String("stage", f.Stage),
			zap.String("error", f.Error),
		)
	}

	return nil
}
