// Package escalation 久坐报警升级状态机
package escalation

import (
	"time"

	"github.com/Lukey3332/fokusier/internal/models"

	"go.uber.org/zap"
)

// State 报警状态
type State int

const (
	StateIdle   State = iota // 无报警
	StateWarned              // 已越过 warn 阈值
	StateError               // 已越过 error 阈值
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWarned:
		return "warned"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Config 升级阈值
type Config struct {
	Warn           time.Duration
	Error          time.Duration
	OverrideWindow time.Duration
}

// Machine 升级状态机，只在轮询循环中使用，非并发安全
type Machine struct {
	cfg    Config
	logger *zap.Logger

	lastMotion   time.Time
	lastOverride time.Time // 零值表示从未手动覆盖
	warned       bool
	state        State
}

// NewMachine 创建状态机，start 作为初始的最后运动时间
func NewMachine(cfg Config, start time.Time, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		cfg:        cfg,
		logger:     logger,
		lastMotion: start,
	}
}

// Override 手动覆盖（按键），不直接清除 warned
func (m *Machine) Override(now time.Time) {
	m.lastOverride = now
	m.logger.Info("Override activated",
		zap.Time("at", now),
		zap.Duration("window", m.cfg.OverrideWindow),
	)
}

// OverrideActive 覆盖窗口是否生效
func (m *Machine) OverrideActive(now time.Time) bool {
	if m.lastOverride.IsZero() {
		return false
	}
	return now.Sub(m.lastOverride) < m.cfg.OverrideWindow
}

// Step 每个周期评估一次，返回本周期触发的报警
// warn 只在进入时触发一次，error 在条件成立的每个周期都触发
func (m *Machine) Step(now time.Time, confirmed bool) []models.AlertLevel {
	var alerts []models.AlertLevel

	if confirmed || m.OverrideActive(now) {
		m.lastMotion = now
		m.warned = false
	}

	idle := now.Sub(m.lastMotion)
	if !m.warned && idle > m.cfg.Warn {
		m.warned = true
		alerts = append(alerts, models.AlertWarn)
	}
	if idle > m.cfg.Error {
		alerts = append(alerts, models.AlertError)
	}

	m.transition(m.State(now), idle)
	return alerts
}

func (m *Machine) transition(next State, idle time.Duration) {
	prev := m.state
	if prev == next {
		return
	}
	m.state = next
	m.logger.Debug("Escalation state transition",
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
		zap.Duration("idle", idle),
	)
}

// State 当前状态
func (m *Machine) State(now time.Time) State {
	if now.Sub(m.lastMotion) > m.cfg.Error {
		return StateError
	}
	if m.warned {
		return StateWarned
	}
	return StateIdle
}

// Label 状态行标签：override > error > warning
func (m *Machine) Label(now time.Time) models.StatusLabel {
	switch {
	case m.OverrideActive(now):
		return models.LabelOverride
	case now.Sub(m.lastMotion) > m.cfg.Error:
		return models.LabelError
	case m.warned:
		return models.LabelWarning
	default:
		return models.LabelNone
	}
}

// IdleFor 距上次确认运动的时长
func (m *Machine) IdleFor(now time.Time) time.Duration {
	return now.Sub(m.lastMotion)
}

// LastMotion 上次确认运动的时间
func (m *Machine) LastMotion() time.Time {
	return m.lastMotion
}

// Warned 是否已发出 warn
func (m *Machine) Warned() bool {
	return m.warned
}
