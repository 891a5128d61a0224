// Package motion 双时间尺度运动检测
//
// 短尺度：相邻两次位置的距离超过 ShortThreshold 视为抖动式运动。
// 长尺度：固定采样数窗口的平均位置相对上一个窗口偏移超过 LongThreshold 视为持续漂移。
// 两者同时成立才算确认运动。
package motion

import (
	"github.com/Lukey3332/fokusier/internal/ingest"
	"github.com/Lukey3332/fokusier/internal/models"
)

// Config 检测参数
type Config struct {
	ShortThreshold float64
	LongThreshold  float64
	WindowSize     int // 长尺度窗口容量（采样周期数）
}

// Result 单个周期的检测结果
type Result struct {
	Moving      bool    // 短尺度运动（已考虑突变抑制）
	Drifting    bool    // 持续漂移标记
	Confirmed   bool    // Moving && Drifting
	RegimeShift bool    // 本周期是否发生突变
	Settled     bool    // 本周期长尺度窗口是否结算
	Distance    float64 // 最近一次计算的短尺度距离
}

// Detector 运动窗口状态，只在轮询循环中使用，非并发安全
type Detector struct {
	cfg Config

	lastShort    models.Position
	hasLastShort bool

	sumX, sumY uint64
	count      int
	settledX   uint64
	settledY   uint64
	drifting   bool

	distance    float64
	maxDistance float64
}

// NewDetector 创建检测器
func NewDetector(cfg Config) *Detector {
	if cfg.WindowSize < 1 {
		cfg.WindowSize = 1
	}
	return &Detector{cfg: cfg}
}

// Step 处理一个采样周期，pos 为 nil 表示本周期没有位置
func (d *Detector) Step(pos *models.Position) Result {
	var res Result

	if pos != nil {
		if d.hasLastShort {
			d.distance = ingest.Distance(pos.X, pos.Y, d.lastShort.X, d.lastShort.Y)
			if d.distance > d.maxDistance {
				d.maxDistance = d.distance
			}
			res.Moving = d.distance > d.cfg.ShortThreshold

			// 大幅跳变只视为开始移动，本周期不确认
			if !d.drifting && d.distance > d.cfg.LongThreshold {
				res.Moving = false
				res.RegimeShift = true
				d.drifting = true
				d.sumX, d.sumY = 0, 0
				d.count = 0
			}
		}

		d.sumX += uint64(pos.X)
		d.sumY += uint64(pos.Y)
		d.count++
		d.lastShort = *pos
		d.hasLastShort = true
	}

	// 按周期数结算，没有位置的周期也会推进
	if d.count >= d.cfg.WindowSize {
		avgX := d.sumX / uint64(d.count)
		avgY := d.sumY / uint64(d.count)
		d.drifting = ingest.Distance(uint16(avgX), uint16(avgY), uint16(d.settledX), uint16(d.settledY)) > d.cfg.LongThreshold
		d.settledX, d.settledY = avgX, avgY
		d.sumX, d.sumY = 0, 0
		d.count = 0
		res.Settled = true
	}

	res.Drifting = d.drifting
	res.Confirmed = res.Moving && d.drifting
	res.Distance = d.distance
	return res
}

// Pending 当前窗口累计（用于检查窗口不变量）
func (d *Detector) Pending() (sumX, sumY uint64, count int) {
	return d.sumX, d.sumY, d.count
}

// Settled 上一次结算的平均位置
func (d *Detector) Settled() (x, y uint64) {
	return d.settledX, d.settledY
}

// Drifting 持续漂移标记
func (d *Detector) Drifting() bool {
	return d.drifting
}

// MaxDistance 运行期间最大的短尺度距离（校准显示用）
func (d *Detector) MaxDistance() float64 {
	return d.maxDistance
}
