package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Lukey3332/fokusier/internal/alert"
	"github.com/Lukey3332/fokusier/internal/config"
	"github.com/Lukey3332/fokusier/internal/consumer"
	"github.com/Lukey3332/fokusier/internal/mailbox"
	"github.com/Lukey3332/fokusier/internal/monitor"
	mqttcommon "github.com/Lukey3332/fokusier/internal/mqtt"
	rediscommon "github.com/Lukey3332/fokusier/internal/redis"
	"github.com/Lukey3332/fokusier/internal/render"

	"go.uber.org/zap"
)

// SedentaryService 久坐监测服务
type SedentaryService struct {
	config     *config.Config
	logger     *zap.Logger
	redis      *rediscommon.Client
	mqttClient *mqttcommon.Client
	consumer   *consumer.ReportConsumer
	monitor    *monitor.Monitor
	wg         sync.WaitGroup
}

// NewSedentaryService 创建久坐监测服务
func NewSedentaryService(cfg *config.Config, logger *zap.Logger) (*SedentaryService, error) {
	// 初始化Redis（可选）
	var redisClient *rediscommon.Client
	if cfg.RedisEnabled() {
		redisClient = rediscommon.NewRedisClient(&cfg.Redis)
		if err := rediscommon.Ping(context.Background(), redisClient); err != nil {
			_ = rediscommon.Close(redisClient)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	// 初始化MQTT（设备不可用时直接失败）
	mqttClient, err := mqttcommon.NewClient(&cfg.MQTT, logger)
	if err != nil {
		if redisClient != nil {
			_ = rediscommon.Close(redisClient)
		}
		return nil, fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	s := newSedentaryService(cfg, mqttClient, redisClient, os.Stdout, logger)
	s.mqttClient = mqttClient
	return s, nil
}

func newSedentaryService(
	cfg *config.Config,
	broker consumer.Broker,
	redisClient *rediscommon.Client,
	out io.Writer,
	logger *zap.Logger,
) *SedentaryService {
	mb := mailbox.New()
	reportConsumer := consumer.NewReportConsumer(cfg, broker, mb, logger)

	sinks := alert.Fanout{
		alert.NewExecPlayer(cfg.Audio.Player, cfg.Audio.PlayerArgs, cfg.Audio.WarnSound, cfg.Audio.ErrorSound, logger),
	}
	renderers := render.Fanout{
		render.NewConsole(out, cfg.Sedentary.Calibrate),
	}
	if redisClient != nil {
		sinks = append(sinks, alert.NewStreamPublisher(redisClient, cfg.Stream.Alert, cfg.Stream.MaxLen, reportConsumer.Device, logger))
		renderers = append(renderers, render.NewStreamPublisher(redisClient, cfg.Stream.Status, cfg.Stream.MaxLen, cfg.Stream.StatusInterval))
	}

	return &SedentaryService{
		config:   cfg,
		logger:   logger,
		redis:    redisClient,
		consumer: reportConsumer,
		monitor:  monitor.NewMonitor(cfg, mb, reportConsumer, sinks, renderers, time.Now(), logger),
	}
}

// Start 启动服务，轮询循环在 ctx 取消后退出
func (s *SedentaryService) Start(ctx context.Context) error {
	s.logger.Info("Starting sedentary service components")

	// 启动报告消费者
	if err := s.consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start report consumer: %w", err)
	}

	// 启动轮询循环
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.monitor.Run(ctx); err != nil {
			s.logger.Error("Monitor exited with error", zap.Error(err))
		}
	}()

	s.logger.Info("Sedentary service started successfully",
		zap.String("report_topic", s.consumer.ReportTopic()),
		zap.Bool("mqtt_connected", s.MQTTConnected()),
		zap.Bool("redis_streams", s.redis != nil),
	)
	return nil
}

// MQTTConnected MQTT 连接状态（未使用真实客户端时为 false）
func (s *SedentaryService) MQTTConnected() bool {
	return s.mqttClient != nil && s.mqttClient.IsConnected()
}

// Stop 停止服务（调用前需取消 Start 的 ctx）
func (s *SedentaryService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping sedentary service")

	// 等待轮询循环退出
	s.wg.Wait()

	// 停止Consumer
	if err := s.consumer.Stop(ctx); err != nil {
		s.logger.Error("Error stopping consumer", zap.Error(err))
	}

	// 断开MQTT
	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}

	// 关闭Redis
	if s.redis != nil {
		if err := rediscommon.Close(s.redis); err != nil {
			s.logger.Error("Error closing redis", zap.Error(err))
		}
	}

	s.logger.Info("Sedentary service stopped")
	return nil
}
