package chart

import (
	"fmt"
	"strconv"

	"github.com/areacheck/property-insight-service/internal/domain"
)

// curvePalette cycles per report year; a skipped year still consumes its
// slot via the curve's ColorIndex, matching the year-to-color assignment of
// the dashboard legend.
var curvePalette = []string{"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A"}

// ChangeFigure builds the neighbourhood comparison chart: one filled density
// curve per qualifying year, plus reference markers for the neighbourhood
// and property average value changes.
func ChangeFigure(report domain.DensityReport) *Figure {
	fig := &Figure{
		Layout: Layout{
			Title: titleBlock("Neighbourhood Value Change (%)"),
			XAxis: &Axis{
				Title:    "Percentage Change (%)",
				ShowGrid: boolPtr(false),
			},
			Legend:    &Legend{Title: &LegendTitle{Text: "Report Year"}},
			HoverMode: "x",
			Margin:    &Margin{T: 80},
		},
	}

	var peak float64
	for _, curve := range report.Curves {
		xs := make([]any, len(curve.Points))
		ys := make([]float64, len(curve.Points))
		for i, p := range curve.Points {
			xs[i] = p.X
			ys[i] = p.Density
			if p.Density > peak {
				peak = p.Density
			}
		}
		fig.Data = append(fig.Data, Trace{
			Type:      "scatter",
			X:         xs,
			Y:         ys,
			Fill:      "tozeroy",
			Mode:      "lines",
			Name:      strconv.Itoa(curve.Year),
			Line:      &Line{Color: curvePalette[curve.ColorIndex%len(curvePalette)], Width: 2},
			HoverInfo: "name+x+y",
		})
	}

	// Headroom above the tallest curve.
	yMax := peak * 1.1
	fig.Layout.YAxis = &Axis{
		Range:          []float64{0, yMax},
		ShowTickLabels: boolPtr(false),
		ZeroLine:       boolPtr(false),
		ShowGrid:       boolPtr(false),
	}

	fig.Data = append(fig.Data,
		averageMarker("Neighbourhood Average", report.NeighbourhoodAverage, 0.6*yMax, 0.65*yMax, colorImprovement, "circle")...)
	fig.Data = append(fig.Data,
		averageMarker("Property Average", report.PropertyAverage, 0.4*yMax, 0.45*yMax, colorLand, "diamond")...)

	return fig
}

// averageMarker renders a reference point at pointY with a dotted drop line
// to the x-axis and a percentage label at labelY.
func averageMarker(name string, x, pointY, labelY float64, color, symbol string) []Trace {
	label := fmt.Sprintf("%.2f%% (%s)", x, firstWord(name))

	return []Trace{
		{
			Type:      "scatter",
			X:         []any{x},
			Y:         []float64{pointY},
			Mode:      "markers",
			Name:      name,
			Marker:    &Marker{Color: color, Size: 12, Symbol: symbol, Line: &Line{Width: 2, Color: "white"}},
			HoverInfo: "name+x",
		},
		{
			Type:       "scatter",
			X:          []any{x, x},
			Y:          []float64{0, pointY},
			Mode:       "lines",
			Line:       &Line{Color: color, Width: 2, Dash: "dot"},
			ShowLegend: boolPtr(false),
		},
		{
			Type:         "scatter",
			X:            []any{x},
			Y:            []float64{labelY},
			Mode:         "text",
			Text:         []string{label},
			TextPosition: "top center",
			TextFont:     &Font{Size: 14, Color: color},
			ShowLegend:   boolPtr(false),
		},
	}
}

func firstWord(s string) string {
	for i, r := range s {
		if r == ' ' {
			return s[:i]
		}
	}
	return s
}
