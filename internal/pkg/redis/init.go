package redis

import (
	"context"

	"Clanhub/internal/api/config"
	"Clanhub/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

var Rdb *redis.Client

// InitRedis 初始化 Redis 客户端连接，本地存储模式下可不初始化
func InitRedis(cfg config.RedisConfig) error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	rdb.AddHook(logger.NewRedisLogger())

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return err
	}

	Rdb = rdb
	return nil
}

// Ready Redis 是否可用
func Ready() bool {
	return Rdb != nil
}
