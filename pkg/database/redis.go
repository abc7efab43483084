package database

import (
	"context"
	"fmt"
	"time"

	"lingua_learn_backend/internal/config"
	"lingua_learn_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// InitRedis 建立仪表盘缓存用的 Redis 连接，启动时强制 Ping 探活
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Log.Info("Redis 连接成功", zap.String("addr", rdb.Options().Addr), zap.Int("db", cfg.DB))
	return rdb, nil
}
