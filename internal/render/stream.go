package render

import (
	"context"
	"fmt"
	"time"

	"github.com/Lukey3332/fokusier/internal/models"
	rediscommon "github.com/Lukey3332/fokusier/internal/redis"

	"golang.org/x/time/rate"
)

// StreamPublisher 将状态快照写入 Redis Streams，按 interval 限频
type StreamPublisher struct {
	client  *rediscommon.Client
	stream  string
	maxLen  int64
	limiter *rate.Limiter
}

// NewStreamPublisher 创建状态快照发布器，interval 为 0 表示不限频
func NewStreamPublisher(client *rediscommon.Client, stream string, maxLen int64, interval time.Duration) *StreamPublisher {
	return &StreamPublisher{
		client:  client,
		stream:  stream,
		maxLen:  maxLen,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Render 以快照时间计算配额，配额不足时直接跳过
func (p *StreamPublisher) Render(ctx context.Context, snap models.StatusSnapshot) error {
	if !p.limiter.AllowN(snap.Time, 1) {
		return nil
	}

	if _, err := rediscommon.PublishJSONToStream(ctx, p.client, p.stream, p.maxLen, snap); err != nil {
		return fmt.Errorf("failed to publish status snapshot: %w", err)
	}
	return nil
}
