// Package charts renders deck composition charts as standalone HTML pages.
package charts

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/deckbuilder/internal/cards"
	"github.com/ramonehamilton/deckbuilder/internal/deck"
)

// ChartConfig holds presentation options.
type ChartConfig struct {
	Title      string
	Subtitle   string
	Width      string // e.g. "900px"
	Height     string
	Theme      string
	ShowLegend bool
	Colors     []string
}

// DefaultChartConfig returns the default presentation options.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// colorHex maps card colors to their chart swatches.
var colorHex = map[string]string{
	cards.ColorRed:       "#D9342B",
	cards.ColorGreen:     "#2E9B5B",
	cards.ColorBlue:      "#2F6DB5",
	cards.ColorPurple:    "#7E3FA0",
	cards.ColorBlack:     "#333333",
	cards.ColorYellow:    "#E8C21C",
	cards.ColorColorless: "#9E9E9E",
}

// DataPoint is one labelled value.
type DataPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// CostCurvePoints returns one point per cost from 0 to the highest cost in
// the curve, filling gaps with zero.
func CostCurvePoints(curve []deck.CostBucket) []DataPoint {
	if len(curve) == 0 {
		return []DataPoint{}
	}
	maxCost := 0
	counts := make(map[int]int, len(curve))
	for _, b := range curve {
		counts[b.Cost] += b.Count
		maxCost = max(maxCost, b.Cost)
	}
	points := make([]DataPoint, 0, maxCost+1)
	for cost := 0; cost <= maxCost; cost++ {
		points = append(points, DataPoint{Label: strconv.Itoa(cost), Value: float64(counts[cost])})
	}
	return points
}

// ColorPoints returns the color breakdown in palette order, with unknown
// colors last.
func ColorPoints(counts map[string]int) []DataPoint {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		ra, rb := paletteRank(a), paletteRank(b)
		if ra != rb {
			return ra - rb
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})

	points := make([]DataPoint, 0, len(names))
	for _, name := range names {
		points = append(points, DataPoint{Label: name, Value: float64(counts[name])})
	}
	return points
}

func paletteRank(color string) int {
	if i := cards.ColorIndex(color); i >= 0 {
		return i
	}
	return len(cards.AllColors)
}

func globalOptions(config ChartConfig) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: config.Title,
			Width:     config.Width,
			Height:    config.Height,
			Theme:     config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
	}
}

// RenderCostCurve writes a bar chart of the deck's cost curve.
func RenderCostCurve(w io.Writer, summary deck.Summary, config ChartConfig) error {
	if config.Title == "" {
		config.Title = "Cost curve"
	}
	if config.Subtitle == "" {
		config.Subtitle = fmt.Sprintf("%d / %d cards", summary.MainCards, summary.TargetSize)
	}

	points := CostCurvePoints(summary.CostCurve)
	xLabels := make([]string, len(points))
	yData := make([]opts.BarData, len(points))
	for i, p := range points {
		xLabels[i] = p.Label
		yData[i] = opts.BarData{Value: p.Value}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(config)...)
	bar.SetGlobalOptions(
		charts.WithColorsOpts(opts.Colors{config.Colors[0]}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Cost"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Cards"}),
	)
	bar.SetXAxis(xLabels).
		AddSeries("Cards", yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "top",
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render cost curve: %w", err)
	}
	return nil
}

// RenderColorPie writes a pie chart of the deck's color breakdown.
func RenderColorPie(w io.Writer, summary deck.Summary, config ChartConfig) error {
	if config.Title == "" {
		config.Title = "Colors"
	}

	points := ColorPoints(summary.ColorCounts)
	data := make([]opts.PieData, len(points))
	for i, p := range points {
		item := opts.PieData{Name: p.Label, Value: p.Value}
		if hex, ok := colorHex[p.Label]; ok {
			item.ItemStyle = &opts.ItemStyle{Color: hex}
		}
		data[i] = item
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(globalOptions(config)...)
	pie.AddSeries("Colors", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c}",
			}),
		)

	if err := pie.Render(w); err != nil {
		return fmt.Errorf("failed to render color chart: %w", err)
	}
	return nil
}
