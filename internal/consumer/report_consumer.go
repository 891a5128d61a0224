package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Lukey3332/fokusier/internal/config"
	"github.com/Lukey3332/fokusier/internal/mailbox"
	"github.com/Lukey3332/fokusier/internal/models"
	mqttcommon "github.com/Lukey3332/fokusier/internal/mqtt"

	"go.uber.org/zap"
)

// ErrNoDevice 尚未收到任何设备报告，无法确定命令主题
var ErrNoDevice = errors.New("no device seen yet")

// Broker MQTT 客户端抽象（用于在单元测试中替换真实连接）
type Broker interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Unsubscribe(topics ...string) error
}

// ReportConsumer 设备报告消费者
// 订阅桥接进程发布的报告并合并到 Mailbox，同时负责下发报告模式命令
type ReportConsumer struct {
	config  *config.Config
	broker  Broker
	mailbox *mailbox.Mailbox
	logger  *zap.Logger

	modes chan models.ReportMode // 只保留最新请求的模式
	done  chan struct{}

	mu      sync.RWMutex
	device  string // 最近一次报告的设备标识
	started bool   // 发布协程是否已启动，未启动时 Stop 不等待 done
}

// NewReportConsumer 创建设备报告消费者
func NewReportConsumer(
	cfg *config.Config,
	broker Broker,
	mb *mailbox.Mailbox,
	logger *zap.Logger,
) *ReportConsumer {
	c := &ReportConsumer{
		config:  cfg,
		broker:  broker,
		mailbox: mb,
		logger:  logger,
		modes:   make(chan models.ReportMode, 1),
		done:    make(chan struct{}),
	}
	if cfg.Device.ID != "+" {
		c.device = cfg.Device.ID
	}
	return c
}

// ReportTopic 报告订阅主题
func (c *ReportConsumer) ReportTopic() string {
	return fmt.Sprintf("%s/%s/report", c.config.Device.TopicPrefix, c.config.Device.ID)
}

// CommandTopic 指定设备的命令主题
func (c *ReportConsumer) CommandTopic(device string) string {
	return fmt.Sprintf("%s/%s/command", c.config.Device.TopicPrefix, device)
}

// Start 订阅报告主题并启动命令发布协程
func (c *ReportConsumer) Start(ctx context.Context) error {
	if err := c.broker.Subscribe(c.ReportTopic(), c.config.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to report topic: %w", err)
	}

	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
	go c.publishLoop(ctx)

	c.SetReportMode(models.ReportStatus | models.ReportButton | models.ReportIR)

	c.logger.Info("Report consumer started",
		zap.String("topic", c.ReportTopic()),
	)
	return nil
}

// Stop 取消订阅并等待发布协程退出（ctx 需已取消）
func (c *ReportConsumer) Stop(ctx context.Context) error {
	if err := c.broker.Unsubscribe(c.ReportTopic()); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}

	c.mu.RLock()
	started := c.started
	c.mu.RUnlock()

	if started {
		select {
		case <-c.done:
		case <-ctx.Done():
		}
	}

	c.logger.Info("Report consumer stopped")
	return nil
}

// SetReportMode 请求切换报告模式，不阻塞；未发送的旧请求被新请求覆盖
func (c *ReportConsumer) SetReportMode(mode models.ReportMode) {
	for {
		select {
		case c.modes <- mode:
			return
		default:
		}
		select {
		case <-c.modes:
		default:
		}
	}
}

// Device 最近一次报告的设备标识
func (c *ReportConsumer) Device() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.device
}

func (c *ReportConsumer) publishLoop(ctx context.Context) {
	defer close(c.done)

	var last models.ReportMode
	sent := false

	for {
		select {
		case <-ctx.Done():
			return
		case mode := <-c.modes:
			if sent && mode == last {
				continue
			}
			if err := c.publishMode(mode); err != nil {
				if errors.Is(err, ErrNoDevice) {
					c.logger.Debug("Report mode not sent", zap.String("mode", mode.String()), zap.Error(err))
				} else {
					c.logger.Warn("Failed to publish report mode", zap.String("mode", mode.String()), zap.Error(err))
				}
				continue
			}
			last = mode
			sent = true
		}
	}
}

func (c *ReportConsumer) publishMode(mode models.ReportMode) error {
	device := c.Device()
	if device == "" {
		return ErrNoDevice
	}

	payload, err := json.Marshal(models.ReportModeCommand{Mode: mode.Names()})
	if err != nil {
		return fmt.Errorf("failed to marshal report mode: %w", err)
	}

	return c.broker.Publish(c.CommandTopic(device), 0, false, payload)
}

// handleMessage 处理报告消息（MQTT 回调上下文）
func (c *ReportConsumer) handleMessage(topic string, payload []byte) error {
	// 主题格式: {prefix}/{device}/report
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[len(parts)-1] != "report" {
		return fmt.Errorf("invalid topic format: %s", topic)
	}
	device := parts[len(parts)-2]

	var batch models.ReportBatch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return fmt.Errorf("failed to unmarshal report batch: %w", err)
	}

	c.mu.Lock()
	c.device = device
	c.mu.Unlock()

	c.mailbox.Fold(batch.Messages, c)

	c.logger.Debug("Folded device report",
		zap.String("device", device),
		zap.Int("messages", len(batch.Messages)),
	)
	return nil
}
