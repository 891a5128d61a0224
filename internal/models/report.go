package models

import "strings"

// 红外摄像头参数（与 Wiimote IR 摄像头一致）
const (
	IRSourceCount = 4    // 单次红外报告最多的光点数
	BatteryMax    = 0xD0 // 电量满格原始值
	MaxBlobSize   = 3    // 参与跟踪的光点尺寸上限（更大的是漫射光源）
)

// 按键位掩码
const (
	ButtonTwo   uint16 = 0x0001
	ButtonOne   uint16 = 0x0002
	ButtonB     uint16 = 0x0004
	ButtonA     uint16 = 0x0008
	ButtonMinus uint16 = 0x0010
	ButtonHome  uint16 = 0x0080
	ButtonLeft  uint16 = 0x0100
	ButtonRight uint16 = 0x0200
	ButtonDown  uint16 = 0x0400
	ButtonUp    uint16 = 0x0800
	ButtonPlus  uint16 = 0x1000
)

// Blob 单个红外光点
type Blob struct {
	Valid bool   `json:"valid"`
	Size  int    `json:"size"` // 尺寸等级，越小越清晰
	X     uint16 `json:"x"`
	Y     uint16 `json:"y"`
}

// Qualifies 是否可作为跟踪点
func (b Blob) Qualifies() bool {
	return b.Valid && b.Size <= MaxBlobSize
}

// Position 本次选中的跟踪位置
type Position struct {
	X    uint16 `json:"x"`
	Y    uint16 `json:"y"`
	Size int    `json:"size"`
}

// 报告消息类型
const (
	MessageStatus = "status"
	MessageButton = "button"
	MessageIR     = "ir"
)

// ReportMessage 设备报告中的单条消息
type ReportMessage struct {
	Type    string `json:"type"`
	Battery uint8  `json:"battery,omitempty"` // status
	Buttons uint16 `json:"buttons,omitempty"` // button
	Sources []Blob `json:"sources,omitempty"` // ir
}

// ReportBatch 桥接进程发布的一批报告
// 主题格式: {prefix}/{device}/report
type ReportBatch struct {
	Device    string          `json:"device"`
	Timestamp int64           `json:"timestamp"`
	Messages  []ReportMessage `json:"messages"`
}

// ReportMode 报告模式（需要接收哪些报告类型）
type ReportMode uint8

const (
	ReportStatus ReportMode = 1 << iota
	ReportButton
	ReportIR
)

// Has 是否包含指定报告类型
func (m ReportMode) Has(flag ReportMode) bool {
	return m&flag != 0
}

// Names 报告模式对应的名称列表（用于命令消息）
func (m ReportMode) Names() []string {
	names := make([]string, 0, 3)
	if m.Has(ReportStatus) {
		names = append(names, MessageStatus)
	}
	if m.Has(ReportButton) {
		names = append(names, MessageButton)
	}
	if m.Has(ReportIR) {
		names = append(names, MessageIR)
	}
	return names
}

func (m ReportMode) String() string {
	if m == 0 {
		return "none"
	}
	return strings.Join(m.Names(), "|")
}

// ReportModeCommand 发往桥接进程的命令
// 主题格式: {prefix}/{device}/command
type ReportModeCommand struct {
	Mode []string `json:"mode"`
}
