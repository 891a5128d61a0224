package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/Lukey3332/fokusier/internal/models"
	rediscommon "github.com/Lukey3332/fokusier/internal/redis"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeviceFunc 返回当前设备标识
type DeviceFunc func() string

// StreamPublisher 将报警事件写入 Redis Streams
type StreamPublisher struct {
	client *rediscommon.Client
	stream string
	maxLen int64
	device DeviceFunc
	now    func() time.Time
	logger *zap.Logger
}

// NewStreamPublisher 创建报警事件发布器
func NewStreamPublisher(client *rediscommon.Client, stream string, maxLen int64, device DeviceFunc, logger *zap.Logger) *StreamPublisher {
	if device == nil {
		device = func() string { return "" }
	}
	return &StreamPublisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
		device: device,
		now:    time.Now,
		logger: logger,
	}
}

// Alert 发布一条 AlertEvent
func (p *StreamPublisher) Alert(ctx context.Context, level models.AlertLevel, idle time.Duration) error {
	event := models.AlertEvent{
		EventID:     uuid.New().String(),
		Device:      p.device(),
		Level:       level,
		IdleSeconds: int64(idle / time.Second),
		TriggeredAt: p.now(),
	}

	id, err := rediscommon.PublishJSONToStream(ctx, p.client, p.stream, p.maxLen, event)
	if err != nil {
		return fmt.Errorf("failed to publish alert event: %w", err)
	}

	p.logger.Info("Alert event published",
		zap.String("event_id", event.EventID),
		zap.String("level", string(level)),
		zap.Int64("idle_seconds", event.IdleSeconds),
		zap.String("stream_id", id),
	)
	return nil
}
