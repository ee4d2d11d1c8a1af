package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"study-assistant-go/internal/config"
	"study-assistant-go/pkg/log"
)

// RDB 为 nil 表示未启用 Redis。
var RDB *redis.Client

// InitRedis 初始化 Redis 客户端连接。Addr 为空时跳过。
func InitRedis(cfg config.RedisConfig) {
	if cfg.Addr == "" {
		log.Info("Redis 未配置，聊天记录将保存在进程内存中")
		return
	}
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", err)
	}

	log.Info("Redis client connected successfully")
}
