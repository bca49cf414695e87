package chart

// MapFigure builds the location map: a single marker centered on the
// property over open-street-map tiles.
func MapFigure(lat, lon float64) *Figure {
	return &Figure{
		Data: []Trace{
			{
				Type:   "scattermapbox",
				Lat:    []float64{lat},
				Lon:    []float64{lon},
				Mode:   "markers",
				Marker: &Marker{Size: 12, Color: colorImprovement},
				Text:   []string{"Property Location"},
			},
		},
		Layout: Layout{
			Title:  titleBlock("Property Location Map"),
			Margin: &Margin{T: 80},
			Mapbox: &Mapbox{
				Style:  "open-street-map",
				Center: &Center{Lat: lat, Lon: lon},
				Zoom:   15,
			},
			Height: 600,
		},
	}
}
