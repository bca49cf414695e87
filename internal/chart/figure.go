// Package chart builds Plotly-compatible figure specifications. The structs
// marshal to the JSON shape plotly.js expects; rendering happens in the
// browser, not here.
package chart

// Figure is a Plotly figure: traces plus layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a single Plotly trace. Only the fields this service uses are
// modeled; zero values are omitted from the JSON.
type Trace struct {
	Type         string    `json:"type,omitempty"`
	X            []any     `json:"x,omitempty"`
	Y            []float64 `json:"y,omitempty"`
	Lat          []float64 `json:"lat,omitempty"`
	Lon          []float64 `json:"lon,omitempty"`
	Name         string    `json:"name,omitempty"`
	Mode         string    `json:"mode,omitempty"`
	Text         []string  `json:"text,omitempty"`
	TextPosition string    `json:"textposition,omitempty"`
	Fill         string    `json:"fill,omitempty"`
	HoverInfo    string    `json:"hoverinfo,omitempty"`
	Line         *Line     `json:"line,omitempty"`
	Marker       *Marker   `json:"marker,omitempty"`
	TextFont     *Font     `json:"textfont,omitempty"`
	ShowLegend   *bool     `json:"showlegend,omitempty"`
}

// Line styles a trace's line.
type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
	Dash  string  `json:"dash,omitempty"`
}

// Marker styles a trace's markers.
type Marker struct {
	Color  string  `json:"color,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Symbol string  `json:"symbol,omitempty"`
	Line   *Line   `json:"line,omitempty"`
}

// Font styles text labels.
type Font struct {
	Size   float64 `json:"size,omitempty"`
	Color  string  `json:"color,omitempty"`
	Family string  `json:"family,omitempty"`
}

// Layout is a Plotly layout.
type Layout struct {
	Title       *Title  `json:"title,omitempty"`
	BarMode     string  `json:"barmode,omitempty"`
	PlotBGColor string  `json:"plot_bgcolor,omitempty"`
	ShowLegend  *bool   `json:"showlegend,omitempty"`
	Margin      *Margin `json:"margin,omitempty"`
	Legend      *Legend `json:"legend,omitempty"`
	XAxis       *Axis   `json:"xaxis,omitempty"`
	YAxis       *Axis   `json:"yaxis,omitempty"`
	HoverMode   string  `json:"hovermode,omitempty"`
	Mapbox      *Mapbox `json:"mapbox,omitempty"`
	Height      float64 `json:"height,omitempty"`
}

// Title is a layout title with positioning.
type Title struct {
	Text    string  `json:"text,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	XAnchor string  `json:"xanchor,omitempty"`
	YAnchor string  `json:"yanchor,omitempty"`
	Font    *Font   `json:"font,omitempty"`
}

// Margin is a layout margin in pixels.
type Margin struct {
	T float64 `json:"t,omitempty"`
	B float64 `json:"b,omitempty"`
}

// Legend positions the figure legend.
type Legend struct {
	Orientation string       `json:"orientation,omitempty"`
	X           float64      `json:"x,omitempty"`
	Y           float64      `json:"y,omitempty"`
	XAnchor     string       `json:"xanchor,omitempty"`
	YAnchor     string       `json:"yanchor,omitempty"`
	Title       *LegendTitle `json:"title,omitempty"`
}

// LegendTitle labels the legend.
type LegendTitle struct {
	Text string `json:"text,omitempty"`
}

// Axis styles one layout axis.
type Axis struct {
	Title          string    `json:"title,omitempty"`
	TickMode       string    `json:"tickmode,omitempty"`
	TickVals       []any     `json:"tickvals,omitempty"`
	TickFont       *Font     `json:"tickfont,omitempty"`
	ShowTickLabels *bool     `json:"showticklabels,omitempty"`
	ShowGrid       *bool     `json:"showgrid,omitempty"`
	ZeroLine       *bool     `json:"zeroline,omitempty"`
	Range          []float64 `json:"range,omitempty"`
}

// Mapbox configures a map figure.
type Mapbox struct {
	Style  string  `json:"style,omitempty"`
	Center *Center `json:"center,omitempty"`
	Zoom   float64 `json:"zoom,omitempty"`
}

// Center is a map center point.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func boolPtr(b bool) *bool { return &b }
