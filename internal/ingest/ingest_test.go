package ingest

import (
	"testing"

	"github.com/Lukey3332/fokusier/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSelect_NoQualifyingSources(t *testing.T) {
	res := Select([]models.Blob{
		{Valid: false, Size: 1, X: 10, Y: 10},
		{Valid: true, Size: 4, X: 20, Y: 20},
	}, models.Position{})

	assert.False(t, res.Found)
	assert.Equal(t, 0, res.Count)
}

func TestSelect_Empty(t *testing.T) {
	res := Select(nil, models.Position{X: 5, Y: 5})
	assert.False(t, res.Found)
	assert.Equal(t, 0, res.Count)
}

func TestSelect_SingleSource(t *testing.T) {
	res := Select([]models.Blob{
		{Valid: true, Size: 6, X: 1, Y: 1},
		{Valid: true, Size: 2, X: 900, Y: 700},
	}, models.Position{X: 0, Y: 0})

	assert.True(t, res.Found)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, models.Position{X: 900, Y: 700, Size: 2}, res.Position)
}

func TestSelect_NearestNeighbor(t *testing.T) {
	last := models.Position{X: 500, Y: 400}
	res := Select([]models.Blob{
		{Valid: true, Size: 1, X: 100, Y: 100},
		{Valid: true, Size: 3, X: 510, Y: 395},
		{Valid: true, Size: 2, X: 800, Y: 400},
	}, last)

	assert.True(t, res.Found)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, uint16(510), res.Position.X)
	assert.Equal(t, uint16(395), res.Position.Y)
	assert.Equal(t, 3, res.Position.Size)
}

func TestSelect_TieBreaksOnFirstSeen(t *testing.T) {
	last := models.Position{X: 100, Y: 100}
	res := Select([]models.Blob{
		{Valid: true, Size: 1, X: 110, Y: 100},
		{Valid: true, Size: 1, X: 90, Y: 100},
	}, last)

	assert.True(t, res.Found)
	assert.Equal(t, uint16(110), res.Position.X)
}

func TestSelect_FiltersNeverWin(t *testing.T) {
	last := models.Position{X: 300, Y: 300}
	tests := []struct {
		name    string
		sources []models.Blob
		wantX   uint16
	}{
		{
			name: "oversized source on top of last position",
			sources: []models.Blob{
				{Valid: true, Size: 4, X: 300, Y: 300},
				{Valid: true, Size: 1, X: 0, Y: 0},
				{Valid: true, Size: 2, X: 1000, Y: 700},
			},
			wantX: 0,
		},
		{
			name: "invalid source on top of last position",
			sources: []models.Blob{
				{Valid: false, Size: 1, X: 300, Y: 300},
				{Valid: true, Size: 1, X: 1000, Y: 700},
				{Valid: true, Size: 1, X: 200, Y: 200},
			},
			wantX: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Select(tt.sources, last)
			assert.True(t, res.Found)
			assert.Equal(t, 2, res.Count)
			assert.Equal(t, tt.wantX, res.Position.X)
		})
	}
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(0, 0, 3, 4), 1e-9)
	assert.InDelta(t, 5.0, Distance(3, 4, 0, 0), 1e-9)
	assert.Equal(t, 0.0, Distance(7, 7, 7, 7))
}

func TestSelect_IgnoresSourcesBeyondCameraSlots(t *testing.T) {
	sources := []models.Blob{
		{Valid: true, Size: 1, X: 500, Y: 500},
		{Valid: false},
		{Valid: false},
		{Valid: true, Size: 2, X: 400, Y: 400},
		{Valid: true, Size: 1, X: 101, Y: 101},
	}

	res := Select(sources, models.Position{X: 100, Y: 100})
	assert.True(t, res.Found)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, models.Position{X: 400, Y: 400, Size: 2}, res.Position)
}
