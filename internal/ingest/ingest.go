// Package ingest 从一次红外报告中选出被跟踪的光点
package ingest

import (
	"math"

	"github.com/Lukey3332/fokusier/internal/models"
)

// Result 单次红外报告的选择结果
type Result struct {
	Position models.Position
	Found    bool
	Count    int // 符合条件的光点数量
}

// Select 选择跟踪光点
// 只有 valid 且 size <= 3 的光点参与；多个时取距离 last 最近的，距离相同取先出现的
// 超出 IRSourceCount 的光点不参与
func Select(sources []models.Blob, last models.Position) Result {
	if len(sources) > models.IRSourceCount {
		sources = sources[:models.IRSourceCount]
	}

	var res Result
	var chosen *models.Blob

	for i := range sources {
		if sources[i].Qualifies() {
			res.Count++
			chosen = &sources[i]
		}
	}

	if res.Count > 1 {
		chosen = nearest(sources, last)
	}

	if chosen != nil {
		res.Found = true
		res.Position = models.Position{X: chosen.X, Y: chosen.Y, Size: chosen.Size}
	}
	return res
}

func nearest(sources []models.Blob, last models.Position) *models.Blob {
	var chosen *models.Blob
	lowest := math.Inf(1)
	for i := range sources {
		if !sources[i].Qualifies() {
			continue
		}
		d := Distance(sources[i].X, sources[i].Y, last.X, last.Y)
		if d < lowest {
			lowest = d
			chosen = &sources[i]
		}
	}
	return chosen
}

// Distance 两点欧氏距离
func Distance(ax, ay, bx, by uint16) float64 {
	x := float64(ax) - float64(bx)
	y := float64(ay) - float64(by)
	return math.Sqrt(x*x + y*y)
}
