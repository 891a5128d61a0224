package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lukey3332/fokusier/internal/config"
	"github.com/Lukey3332/fokusier/internal/logger"
	"github.com/Lukey3332/fokusier/internal/service"

	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化Logger（stdout 留给状态行）
	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, "fokusier")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting fokusier",
		zap.String("mqtt_broker", cfg.MQTT.Broker),
		zap.String("device", cfg.Device.ID),
		zap.Bool("calibrate", cfg.Sedentary.Calibrate),
	)

	// 创建服务
	sedentaryService, err := service.NewSedentaryService(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create sedentary service", zap.Error(err))
	}

	// 启动服务
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sedentaryService.Start(ctx); err != nil {
		zapLogger.Fatal("Failed to start sedentary service", zap.Error(err))
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	zapLogger.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	// 优雅关闭
	cancel()
	if err := sedentaryService.Stop(context.Background()); err != nil {
		zapLogger.Error("Error during shutdown", zap.Error(err))
	}

	// 结束状态行
	fmt.Fprintln(os.Stdout)
	zapLogger.Info("Service stopped")
}
