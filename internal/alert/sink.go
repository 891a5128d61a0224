// Package alert 报警输出（本地声音播放、Redis Streams 事件）
package alert

import (
	"context"
	"errors"
	"time"

	"github.com/Lukey3332/fokusier/internal/models"
)

// Sink 报警输出
// Alert 可能阻塞（例如等待声音播放结束），调用方须在不持有共享锁的情况下调用
type Sink interface {
	Alert(ctx context.Context, level models.AlertLevel, idle time.Duration) error
}

// Fanout 按顺序调用多个 Sink，某个失败不影响后续调用
type Fanout []Sink

// Alert 依次分发报警，返回合并后的错误
func (f Fanout) Alert(ctx context.Context, level models.AlertLevel, idle time.Duration) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Alert(ctx, level, idle); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
