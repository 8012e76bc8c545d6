package app

import (
	"github.com/xnk3-aplus/360-Base/internal/config"
	"github.com/xnk3-aplus/360-Base/internal/middleware"
	"github.com/xnk3-aplus/360-Base/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// BuildApp wires configuration, infrastructure and the report module onto
// the router. Redis and Kafka are both optional: the service degrades to
// in-process caching and no lifecycle events when they are unreachable.
func BuildApp(router *gin.Engine) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	router.Use(middleware.RequestID())

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, 3)
		if err != nil {
			zap.L().Warn("redis unavailable, directory cache runs in-process only", zap.Error(err))
			rdb = nil
		}
	}

	var kafkaWriter *kafka.Writer
	if cfg.KafkaBroker != "" {
		kafkaWriter, err = connection.ConnectKafkaWithRetry(cfg.KafkaBroker, 3)
		if err != nil {
			zap.L().Warn("kafka unavailable, lifecycle events disabled", zap.Error(err))
			kafkaWriter = nil
		}
	}

	return registerModules(router, cfg, rdb, kafkaWriter)
}
