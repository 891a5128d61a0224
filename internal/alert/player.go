package alert

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/Lukey3332/fokusier/internal/models"

	"go.uber.org/zap"
)

// CommandRunner 执行外部命令并等待结束
type CommandRunner func(ctx context.Context, name string, args ...string) error

// ExecPlayer 调用外部播放器播放报警声音
type ExecPlayer struct {
	player     string
	args       []string
	warnSound  string
	errorSound string
	run        CommandRunner
	logger     *zap.Logger
}

// NewExecPlayer 创建声音播放 Sink
func NewExecPlayer(player string, args []string, warnSound, errorSound string, logger *zap.Logger) *ExecPlayer {
	return &ExecPlayer{
		player:     player,
		args:       args,
		warnSound:  warnSound,
		errorSound: errorSound,
		run:        runCommand,
		logger:     logger,
	}
}

// WithRunner 替换命令执行方式（测试用）
func (p *ExecPlayer) WithRunner(run CommandRunner) *ExecPlayer {
	p.run = run
	return p
}

// Alert 播放与级别对应的声音，阻塞到播放器退出
// 播放失败只记录日志，不中断监测
func (p *ExecPlayer) Alert(ctx context.Context, level models.AlertLevel, idle time.Duration) error {
	sound := p.warnSound
	if level == models.AlertError {
		sound = p.errorSound
	}

	args := make([]string, 0, len(p.args)+1)
	args = append(args, p.args...)
	args = append(args, sound)

	if err := p.run(ctx, p.player, args...); err != nil {
		p.logger.Warn("Failed to play alert sound",
			zap.String("level", string(level)),
			zap.String("player", p.player),
			zap.String("sound", sound),
			zap.Error(err),
		)
		return nil
	}

	p.logger.Debug("Played alert sound",
		zap.String("level", string(level)),
		zap.Duration("idle", idle),
	)
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to run %s: %w (output: %s)", name, err, out)
	}
	return nil
}
