package escalation

import (
	"testing"
	"time"

	"github.com/Lukey3332/fokusier/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return t0.Add(time.Duration(sec) * time.Second)
}

func newTestMachine() *Machine {
	return NewMachine(Config{
		Warn:           60 * time.Second,
		Error:          120 * time.Second,
		OverrideWindow: 300 * time.Second,
	}, t0, zap.NewNop())
}

func TestMachine_WarnOnceErrorRepeats(t *testing.T) {
	m := newTestMachine()

	var warnAt []int
	errorTicks := 0
	for sec := 0; sec <= 200; sec++ {
		for _, level := range m.Step(at(sec), false) {
			switch level {
			case models.AlertWarn:
				warnAt = append(warnAt, sec)
			case models.AlertError:
				errorTicks++
				assert.GreaterOrEqual(t, sec, 121)
			}
		}
	}

	assert.Equal(t, []int{61}, warnAt)
	assert.Equal(t, 80, errorTicks) // 121..200
}

func TestMachine_StatesAndLabels(t *testing.T) {
	m := newTestMachine()

	m.Step(at(30), false)
	assert.Equal(t, StateIdle, m.State(at(30)))
	assert.Equal(t, models.LabelNone, m.Label(at(30)))

	m.Step(at(61), false)
	assert.Equal(t, StateWarned, m.State(at(61)))
	assert.Equal(t, models.LabelWarning, m.Label(at(61)))
	assert.True(t, m.Warned())

	m.Step(at(90), false)
	assert.Equal(t, StateWarned, m.State(at(90)))

	m.Step(at(121), false)
	assert.Equal(t, StateError, m.State(at(121)))
	assert.Equal(t, models.LabelError, m.Label(at(121)))
	assert.Equal(t, 121*time.Second, m.IdleFor(at(121)))
}

func TestMachine_ConfirmedMotionResets(t *testing.T) {
	m := newTestMachine()

	alerts := m.Step(at(130), false)
	// 一次长时间停顿后同一周期内 warn 和 error 都触发
	assert.Equal(t, []models.AlertLevel{models.AlertWarn, models.AlertError}, alerts)

	alerts = m.Step(at(131), true)
	assert.Empty(t, alerts)
	assert.False(t, m.Warned())
	assert.Equal(t, at(131), m.LastMotion())
	assert.Equal(t, StateIdle, m.State(at(131)))

	// 重新计时
	assert.Empty(t, m.Step(at(191), false))
	assert.Equal(t, []models.AlertLevel{models.AlertWarn}, m.Step(at(192), false))
}

func TestMachine_OverrideSuppression(t *testing.T) {
	m := newTestMachine()

	for sec := 0; sec < 50; sec++ {
		m.Step(at(sec), false)
	}
	m.Override(at(50))

	for sec := 50; sec < 350; sec++ {
		alerts := m.Step(at(sec), false)
		require.Empty(t, alerts, "sec %d", sec)
		assert.Equal(t, at(sec), m.LastMotion())
		assert.Equal(t, StateIdle, m.State(at(sec)))
		assert.Equal(t, models.LabelOverride, m.Label(at(sec)))
	}

	assert.False(t, m.OverrideActive(at(350)))
	m.Step(at(350), false)
	assert.Equal(t, at(349), m.LastMotion())
	assert.Equal(t, models.LabelNone, m.Label(at(350)))
}

func TestMachine_OverrideDoesNotClearWarnedByItself(t *testing.T) {
	m := newTestMachine()
	m.Step(at(61), false)
	require.True(t, m.Warned())

	m.Override(at(70))
	assert.True(t, m.Warned())

	m.Step(at(70), false)
	assert.False(t, m.Warned())
}

func TestMachine_NoOverrideByDefault(t *testing.T) {
	m := newTestMachine()
	assert.False(t, m.OverrideActive(t0))
	assert.False(t, m.OverrideActive(at(1)))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "warned", StateWarned.String())
	assert.Equal(t, "error", StateError.String())
	assert.Equal(t, "unknown", State(9).String())
}
