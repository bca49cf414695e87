package chart

import (
	"fmt"

	"github.com/areacheck/property-insight-service/internal/domain"
)

// Brand palette shared across figures.
const (
	colorLand        = "#129ad7"
	colorImprovement = "#0abf8e"
	colorNegative    = "#f36870"
	colorInk         = "#0e2f42"
	colorTitle       = "#113146"
)

// ValueFigure builds the per-property stacked bar chart: land and improvement
// values stacked per report year, with total-value and percentage-change
// labels above the bars.
func ValueFigure(records []domain.PropertyRecord) *Figure {
	years := make([]any, len(records))
	landValues := make([]float64, len(records))
	improvementValues := make([]float64, len(records))
	landLabels := make([]string, len(records))
	improvementLabels := make([]string, len(records))

	for i, rec := range records {
		years[i] = rec.ReportYear
		landValues[i] = deref(rec.CurrentLandValue)
		improvementValues[i] = deref(rec.CurrentImprovementValue)
		landLabels[i] = millions(landValues[i])
		improvementLabels[i] = millions(improvementValues[i])
	}

	fig := &Figure{
		Data: []Trace{
			{
				Type:         "bar",
				X:            years,
				Y:            landValues,
				Name:         "Land Value",
				Text:         landLabels,
				TextPosition: "auto",
				Marker:       &Marker{Color: colorLand},
				TextFont:     &Font{Size: 14, Color: "white"},
			},
			{
				Type:         "bar",
				X:            years,
				Y:            improvementValues,
				Name:         "Improvement Value",
				Text:         improvementLabels,
				TextPosition: "auto",
				Marker:       &Marker{Color: colorImprovement},
				TextFont:     &Font{Size: 14, Color: "white"},
			},
		},
		Layout: Layout{
			Title:       titleBlock("Property Value Overview"),
			BarMode:     "stack",
			PlotBGColor: "white",
			ShowLegend:  boolPtr(true),
			Margin:      &Margin{T: 80, B: 40},
			Legend: &Legend{
				Orientation: "h",
				YAnchor:     "bottom",
				Y:           1.1,
				XAnchor:     "center",
				X:           0.5,
			},
			XAxis: &Axis{
				TickMode: "array",
				TickVals: years,
				TickFont: &Font{Size: 18, Color: colorInk},
			},
			YAxis: &Axis{
				Title:          "Value in Millions",
				ShowTickLabels: boolPtr(false),
			},
		},
	}

	// Total value and percentage change labels above each bar stack.
	for i, rec := range records {
		total := landValues[i] + improvementValues[i]
		fig.Data = append(fig.Data, Trace{
			Type:         "scatter",
			X:            []any{rec.ReportYear},
			Y:            []float64{total},
			Mode:         "text",
			Text:         []string{millions(total)},
			TextPosition: "top center",
			TextFont:     &Font{Size: 16, Color: "black"},
			ShowLegend:   boolPtr(false),
		})

		if rec.ValueChange == nil {
			continue
		}
		changeColor := colorImprovement
		if *rec.ValueChange <= 0 {
			changeColor = colorNegative
		}
		fig.Data = append(fig.Data, Trace{
			Type:         "scatter",
			X:            []any{rec.ReportYear},
			Y:            []float64{total + 0.05*total},
			Mode:         "text",
			Text:         []string{fmt.Sprintf("%.2f%%", *rec.ValueChange)},
			TextPosition: "top center",
			TextFont:     &Font{Size: 14, Color: changeColor},
			ShowLegend:   boolPtr(false),
		})
	}

	return fig
}

func millions(v float64) string {
	return fmt.Sprintf("$%.2fM", v/1e6)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func titleBlock(text string) *Title {
	return &Title{
		Text:    text,
		X:       0.5,
		Y:       0.95,
		XAnchor: "center",
		YAnchor: "top",
		Font:    &Font{Size: 24, Color: colorTitle, Family: "Arial, sans-serif"},
	}
}
