// Package mailbox 设备回调与轮询循环之间的单槽交接区
//
// 回调方在锁内把一批报告合并进来；轮询方每个周期加锁取走一次。
// 两次取走之间到达的多个位置只保留最后一个。
package mailbox

import (
	"sync"

	"github.com/Lukey3332/fokusier/internal/ingest"
	"github.com/Lukey3332/fokusier/internal/models"
)

// ReportModeSetter 设备报告模式设置（由设备接入层实现，不得阻塞）
type ReportModeSetter interface {
	SetReportMode(mode models.ReportMode)
}

// SampleState 共享采样状态
type SampleState struct {
	Position    models.Position // 最近一次跟踪位置
	Recorded    bool            // 是否有未读取的位置
	Buttons     uint16          // 累积的按键位掩码
	Battery     uint8           // 最近的电量原始值
	SourceCount int             // 光点数量（仅在无未读位置时更新）
}

// Mailbox 带互斥锁的共享采样状态
type Mailbox struct {
	mu    sync.Mutex
	state SampleState
}

// New 创建 Mailbox
func New() *Mailbox {
	return &Mailbox{}
}

// Fold 将一批报告合并到共享状态（设备回调上下文调用）
func (m *Mailbox) Fold(messages []models.ReportMessage, modes ReportModeSetter) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range messages {
		switch msg.Type {
		case models.MessageStatus:
			m.state.Battery = msg.Battery
		case models.MessageButton:
			m.state.Buttons |= msg.Buttons
		case models.MessageIR:
			m.foldIR(msg.Sources, modes)
		}
	}
}

func (m *Mailbox) foldIR(sources []models.Blob, modes ReportModeSetter) {
	res := ingest.Select(sources, m.state.Position)

	// NOTE: 已有未读位置时不更新数量（保留原有行为）
	if !m.state.Recorded {
		m.state.SourceCount = res.Count
	}

	if !res.Found {
		return
	}
	m.state.Position = res.Position
	m.state.Recorded = true
	if modes != nil {
		modes.SetReportMode(models.ReportStatus | models.ReportButton)
	}
}

// Lock 轮询方加锁
func (m *Mailbox) Lock() {
	m.mu.Lock()
}

// Unlock 轮询方解锁
func (m *Mailbox) Unlock() {
	m.mu.Unlock()
}

// Drain 取走未读位置并清除标记，调用方必须持有锁
func (m *Mailbox) Drain() (models.Position, bool) {
	if !m.state.Recorded {
		return models.Position{}, false
	}
	m.state.Recorded = false
	return m.state.Position, true
}

// TakeButtons 若累积的按键包含 mask 则清空累积并返回 true，调用方必须持有锁
func (m *Mailbox) TakeButtons(mask uint16) bool {
	if m.state.Buttons&mask == 0 {
		return false
	}
	m.state.Buttons = 0
	return true
}

// Peek 返回当前状态副本，调用方必须持有锁
func (m *Mailbox) Peek() SampleState {
	return m.state
}

// Snapshot 加锁读取当前状态副本
func (m *Mailbox) Snapshot() SampleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
