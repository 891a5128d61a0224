package models

import (
	"time"
)

// AlertLevel 报警级别
type AlertLevel string

const (
	AlertWarn  AlertLevel = "warn"
	AlertError AlertLevel = "error"
)

// StatusLabel 状态行标签
type StatusLabel string

const (
	LabelNone     StatusLabel = ""
	LabelOverride StatusLabel = "override"
	LabelWarning  StatusLabel = "warning"
	LabelError    StatusLabel = "error"
)

// AlertEvent 报警事件（发布到 Redis Streams）
type AlertEvent struct {
	EventID     string     `json:"event_id"`
	Device      string     `json:"device"`
	Level       AlertLevel `json:"level"`
	IdleSeconds int64      `json:"idle_seconds"` // 距上次确认运动的秒数
	TriggeredAt time.Time  `json:"triggered_at"`
}

// Calibration 校准模式下的附加显示数据
type Calibration struct {
	X           uint16  `json:"x"`
	Y           uint16  `json:"y"`
	Distance    float64 `json:"distance"`
	MaxDistance float64 `json:"max_distance"`
	Size        int     `json:"size"`
	MaxSize     int     `json:"max_size"`
}

// StatusSnapshot 每个采样周期交给渲染器的状态快照
type StatusSnapshot struct {
	Time           time.Time    `json:"time"`
	BatteryPercent int          `json:"battery_percent"`
	SourceCount    int          `json:"source_count"`
	Moving         bool         `json:"moving"`
	Label          StatusLabel  `json:"label"`
	Calibration    *Calibration `json:"calibration,omitempty"`
}

// BatteryPercent 原始电量值换算为百分比
func BatteryPercent(raw uint8) int {
	return int(100.0 * float64(raw) / float64(BatteryMax))
}
