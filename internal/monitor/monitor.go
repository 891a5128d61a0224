// Package monitor 久坐监测轮询循环
//
// 每个采样周期短暂打开红外报告，随后在 Mailbox 锁内完成一次取样、
// 运动检测、按键覆盖与报警升级，释放锁后再播放报警并输出状态行。
package monitor

import (
	"context"
	"time"

	"github.com/Lukey3332/fokusier/internal/alert"
	"github.com/Lukey3332/fokusier/internal/config"
	"github.com/Lukey3332/fokusier/internal/escalation"
	"github.com/Lukey3332/fokusier/internal/mailbox"
	"github.com/Lukey3332/fokusier/internal/models"
	"github.com/Lukey3332/fokusier/internal/motion"
	"github.com/Lukey3332/fokusier/internal/render"

	"go.uber.org/zap"
)

const (
	modeListen = models.ReportStatus | models.ReportButton | models.ReportIR
	modeQuiet  = models.ReportStatus | models.ReportButton
)

// Monitor 轮询循环，Run 只能在一个 goroutine 中调用
type Monitor struct {
	config   *config.Config
	mailbox  *mailbox.Mailbox
	modes    mailbox.ReportModeSetter
	detector *motion.Detector
	machine  *escalation.Machine
	sink     alert.Sink
	renderer render.Renderer
	logger   *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	maxSize int // 校准显示：观察到的最大光点尺寸
}

// NewMonitor 创建轮询循环，start 作为初始的最后运动时间
func NewMonitor(
	cfg *config.Config,
	mb *mailbox.Mailbox,
	modes mailbox.ReportModeSetter,
	sink alert.Sink,
	renderer render.Renderer,
	start time.Time,
	logger *zap.Logger,
) *Monitor {
	s := cfg.Sedentary
	return &Monitor{
		config:  cfg,
		mailbox: mb,
		modes:   modes,
		detector: motion.NewDetector(motion.Config{
			ShortThreshold: s.ShortThreshold,
			LongThreshold:  s.LongThreshold,
			WindowSize:     cfg.WindowSize(),
		}),
		machine: escalation.NewMachine(escalation.Config{
			Warn:           s.Warn,
			Error:          s.Error,
			OverrideWindow: s.OverrideWindow,
		}, start, logger),
		sink:     sink,
		renderer: renderer,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Run 循环执行采样周期，直到 ctx 取消
func (m *Monitor) Run(ctx context.Context) error {
	s := m.config.Sedentary
	m.logger.Info("Sedentary monitor started",
		zap.Duration("sample_period", s.SamplePeriod),
		zap.Duration("listen", s.Listen),
		zap.Int("window_size", m.config.WindowSize()),
		zap.Duration("warn", s.Warn),
		zap.Duration("error", s.Error),
	)

	for {
		m.modes.SetReportMode(modeListen)
		if err := m.sleep(ctx, s.Listen); err != nil {
			break
		}
		m.modes.SetReportMode(modeQuiet)
		if err := m.sleep(ctx, s.SamplePeriod-s.Listen); err != nil {
			break
		}
		m.Tick(ctx, m.now())
	}

	m.logger.Info("Sedentary monitor stopped")
	return nil
}

// Tick 执行一个采样周期的评估与输出
// 报警分发与状态输出都在释放锁之后进行，设备回调不会被外部调用阻塞
func (m *Monitor) Tick(ctx context.Context, now time.Time) {
	m.mailbox.Lock()

	var pos *models.Position
	if p, ok := m.mailbox.Drain(); ok {
		pos = &p
		if p.Size > m.maxSize {
			m.maxSize = p.Size
		}
	}
	res := m.detector.Step(pos)

	if m.mailbox.TakeButtons(m.config.Sedentary.OverrideButton) {
		m.machine.Override(now)
	}
	alerts := m.machine.Step(now, res.Confirmed)

	snap := m.snapshot(now, res)

	for _, level := range alerts {
		idle := m.machine.IdleFor(now)
		m.logger.Info("Sedentary alert",
			zap.String("level", string(level)),
			zap.Duration("idle", idle),
		)

		// 播放期间释放锁，设备回调可以继续写入
		m.mailbox.Unlock()
		err := m.sink.Alert(ctx, level, idle)
		m.mailbox.Lock()
		if err != nil {
			m.logger.Warn("Failed to dispatch alert", zap.String("level", string(level)), zap.Error(err))
		}
	}

	m.mailbox.Unlock()

	if err := m.renderer.Render(ctx, snap); err != nil {
		m.logger.Debug("Failed to render status", zap.Error(err))
	}
}

// snapshot 调用方持有锁
func (m *Monitor) snapshot(now time.Time, res motion.Result) models.StatusSnapshot {
	state := m.mailbox.Peek()
	snap := models.StatusSnapshot{
		Time:           now,
		BatteryPercent: models.BatteryPercent(state.Battery),
		SourceCount:    state.SourceCount,
		Moving:         res.Confirmed,
		Label:          m.machine.Label(now),
	}
	if m.config.Sedentary.Calibrate {
		snap.Calibration = &models.Calibration{
			X:           state.Position.X,
			Y:           state.Position.Y,
			Distance:    res.Distance,
			MaxDistance: m.detector.MaxDistance(),
			Size:        state.Position.Size,
			MaxSize:     m.maxSize,
		}
	}
	return snap
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
