package mailbox

import (
	"sync"
	"testing"

	"github.com/Lukey3332/fokusier/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingModes struct {
	modes []models.ReportMode
}

func (r *recordingModes) SetReportMode(mode models.ReportMode) {
	r.modes = append(r.modes, mode)
}

func irMessage(blobs ...models.Blob) models.ReportMessage {
	return models.ReportMessage{Type: models.MessageIR, Sources: blobs}
}

func TestMailbox_SingleSlotKeepsLatest(t *testing.T) {
	mb := New()
	modes := &recordingModes{}

	mb.Fold([]models.ReportMessage{irMessage(models.Blob{Valid: true, Size: 1, X: 100, Y: 100})}, modes)
	mb.Fold([]models.ReportMessage{irMessage(models.Blob{Valid: true, Size: 2, X: 140, Y: 120})}, modes)

	mb.Lock()
	pos, ok := mb.Drain()
	state := mb.Peek()
	mb.Unlock()

	require.True(t, ok)
	assert.Equal(t, models.Position{X: 140, Y: 120, Size: 2}, pos)
	assert.False(t, state.Recorded)

	mb.Lock()
	_, ok = mb.Drain()
	mb.Unlock()
	assert.False(t, ok)

	// 每次捕获位置都要求关闭红外报告
	require.Len(t, modes.modes, 2)
	assert.Equal(t, models.ReportStatus|models.ReportButton, modes.modes[0])
}

func TestMailbox_StatusAndButtons(t *testing.T) {
	mb := New()

	mb.Fold([]models.ReportMessage{
		{Type: models.MessageStatus, Battery: 104},
		{Type: models.MessageButton, Buttons: models.ButtonB},
		{Type: "accel"},
	}, nil)
	mb.Fold([]models.ReportMessage{
		{Type: models.MessageButton, Buttons: models.ButtonA},
	}, nil)

	state := mb.Snapshot()
	assert.Equal(t, uint8(104), state.Battery)
	assert.Equal(t, models.ButtonA|models.ButtonB, state.Buttons)
	assert.False(t, state.Recorded)

	mb.Lock()
	assert.False(t, mb.TakeButtons(models.ButtonHome))
	assert.True(t, mb.TakeButtons(models.ButtonA))
	assert.Equal(t, uint16(0), mb.Peek().Buttons)
	mb.Unlock()
}

func TestMailbox_SourceCountFreezesWhileUnread(t *testing.T) {
	mb := New()

	mb.Fold([]models.ReportMessage{irMessage(
		models.Blob{Valid: true, Size: 1, X: 10, Y: 10},
		models.Blob{Valid: true, Size: 1, X: 500, Y: 500},
	)}, nil)
	assert.Equal(t, 2, mb.Snapshot().SourceCount)

	// 未读期间数量不更新
	mb.Fold([]models.ReportMessage{irMessage(
		models.Blob{Valid: true, Size: 1, X: 12, Y: 10},
		models.Blob{Valid: true, Size: 1, X: 500, Y: 500},
		models.Blob{Valid: true, Size: 1, X: 900, Y: 100},
	)}, nil)
	assert.Equal(t, 2, mb.Snapshot().SourceCount)

	mb.Lock()
	_, ok := mb.Drain()
	mb.Unlock()
	require.True(t, ok)

	// 读取后第一次报告即更新，即便没有符合条件的光点
	mb.Fold([]models.ReportMessage{irMessage()}, nil)
	assert.Equal(t, 0, mb.Snapshot().SourceCount)
}

func TestMailbox_NearestToStoredPosition(t *testing.T) {
	mb := New()
	mb.Fold([]models.ReportMessage{irMessage(models.Blob{Valid: true, Size: 1, X: 800, Y: 600})}, nil)

	// 未读取也以最新位置为参考
	mb.Fold([]models.ReportMessage{irMessage(
		models.Blob{Valid: true, Size: 1, X: 20, Y: 20},
		models.Blob{Valid: true, Size: 1, X: 790, Y: 610},
	)}, nil)

	mb.Lock()
	pos, ok := mb.Drain()
	mb.Unlock()
	require.True(t, ok)
	assert.Equal(t, uint16(790), pos.X)
}

func TestMailbox_ConcurrentFold(t *testing.T) {
	mb := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mb.Fold([]models.ReportMessage{
					{Type: models.MessageStatus, Battery: uint8(i)},
					irMessage(models.Blob{Valid: true, Size: 1, X: uint16(j), Y: 0}),
				}, nil)
			}
		}(i)
	}

	drained := 0
	for k := 0; k < 100; k++ {
		mb.Lock()
		if _, ok := mb.Drain(); ok {
			drained++
		}
		mb.Unlock()
	}
	wg.Wait()

	assert.LessOrEqual(t, drained, 100)

	// 最后一次写入来自某个协程的完整报告
	state := mb.Snapshot()
	assert.Less(t, state.Battery, uint8(8))
	assert.Equal(t, uint16(0), state.Position.Y)
	assert.Less(t, state.Position.X, uint16(100))
	assert.Equal(t, 1, state.Position.Size)
}
