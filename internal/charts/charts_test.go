package charts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/deckbuilder/internal/deck"
)

func TestCostCurvePoints_FillsGaps(t *testing.T) {
	points := CostCurvePoints([]deck.CostBucket{{Cost: 1, Count: 4}, {Cost: 4, Count: 2}})

	require.Len(t, points, 5)
	assert.Equal(t, DataPoint{Label: "0", Value: 0}, points[0])
	assert.Equal(t, DataPoint{Label: "1", Value: 4}, points[1])
	assert.Equal(t, DataPoint{Label: "3", Value: 0}, points[3])
	assert.Equal(t, DataPoint{Label: "4", Value: 2}, points[4])
}

func TestCostCurvePoints_Empty(t *testing.T) {
	points := CostCurvePoints(nil)

	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestColorPoints_PaletteOrder(t *testing.T) {
	points := ColorPoints(map[string]int{"黄": 1, "赤": 8, "謎": 2, "青": 3})

	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
	}
	assert.Equal(t, []string{"赤", "青", "黄", "謎"}, labels)
	assert.Equal(t, float64(8), points[0].Value)
}

func TestRenderCostCurve(t *testing.T) {
	summary := deck.Summary{
		MainCards:  6,
		TargetSize: deck.TargetSize,
		CostCurve:  []deck.CostBucket{{Cost: 2, Count: 6}},
	}
	var buf bytes.Buffer

	require.NoError(t, RenderCostCurve(&buf, summary, DefaultChartConfig()))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Cost curve")
	assert.Contains(t, html, "6 / 50 cards")
}

func TestRenderColorPie(t *testing.T) {
	summary := deck.Summary{ColorCounts: map[string]int{"赤": 4, "緑": 2}}
	var buf bytes.Buffer

	require.NoError(t, RenderColorPie(&buf, summary, DefaultChartConfig()))

	html := buf.String()
	assert.Contains(t, html, "Colors")
	assert.Contains(t, html, "#D9342B")
}
