// Package render 状态行输出（终端、Redis Streams）
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Lukey3332/fokusier/internal/models"

	"github.com/charmbracelet/lipgloss"
)

// labelWidth 标签列宽，保证 \r 覆盖时不残留上一行的字符
const labelWidth = 17

// Renderer 状态输出
type Renderer interface {
	Render(ctx context.Context, snap models.StatusSnapshot) error
}

// Fanout 按顺序调用多个 Renderer
type Fanout []Renderer

// Render 依次输出，返回合并后的错误
func (f Fanout) Render(ctx context.Context, snap models.StatusSnapshot) error {
	var errs []error
	for _, r := range f {
		if err := r.Render(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Console 以回车覆盖的方式在终端输出单行状态
type Console struct {
	mu        sync.Mutex
	w         io.Writer
	calibrate bool

	override lipgloss.Style
	warning  lipgloss.Style
	alarm    lipgloss.Style
	moving   lipgloss.Style
}

// NewConsole 创建终端输出，颜色按 w 是否为终端自动选择
func NewConsole(w io.Writer, calibrate bool) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:         w,
		calibrate: calibrate,
		override:  r.NewStyle().Foreground(lipgloss.Color("39")),  // Blue
		warning:   r.NewStyle().Foreground(lipgloss.Color("214")), // Orange
		alarm:     r.NewStyle().Foreground(lipgloss.Color("196")), // Red
		moving:    r.NewStyle().Foreground(lipgloss.Color("78")),  // Green
	}
}

// Render 输出一行状态
func (c *Console) Render(ctx context.Context, snap models.StatusSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := fmt.Sprintf("\r[%02d:%02d] %3d%% %d ",
		snap.Time.Hour(), snap.Time.Minute(), snap.BatteryPercent, snap.SourceCount)

	if c.calibrate && snap.Calibration != nil {
		line += c.calibrationColumns(snap)
	} else {
		line += c.label(snap.Label)
	}

	if _, err := io.WriteString(c.w, line); err != nil {
		return fmt.Errorf("failed to write status line: %w", err)
	}
	return nil
}

func (c *Console) label(label models.StatusLabel) string {
	var text string
	var style lipgloss.Style
	switch label {
	case models.LabelOverride:
		text, style = "override", c.override
	case models.LabelError:
		text, style = "get back to work!", c.alarm
	case models.LabelWarning:
		text, style = "warning", c.warning
	default:
		return strings.Repeat(" ", labelWidth)
	}
	return style.Render(text) + strings.Repeat(" ", labelWidth-len(text))
}

func (c *Console) calibrationColumns(snap models.StatusSnapshot) string {
	cal := snap.Calibration
	marker := " "
	if snap.Moving {
		marker = c.moving.Render("M")
	}
	return fmt.Sprintf("%s X:%4d Y:%4d D:%3.0f MD:%3.0f S:%d MS:%d",
		marker, cal.X, cal.Y, cal.Distance, cal.MaxDistance, cal.Size, cal.MaxSize)
}
