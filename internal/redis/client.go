// Package redis 报警事件与状态快照的 Redis Streams 输出
//
// Redis 是可选的：未配置 REDIS_ADDR 时服务不会创建客户端。
package redis

import (
	"context"
	"fmt"

	"github.com/Lukey3332/fokusier/internal/config"

	"github.com/go-redis/redis/v8"
)

// Client 报警/状态发布器共用的客户端
type Client = redis.Client

// NewRedisClient 按 REDIS_ADDR/REDIS_PASSWORD/REDIS_DB 创建客户端（不建立连接）
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping 启动时检查 Redis 可用，失败由调用方按启动失败处理
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis at %s: %w", client.Options().Addr, err)
	}
	return nil
}

// Close 服务停止时关闭客户端
func Close(client *redis.Client) error {
	return client.Close()
}
