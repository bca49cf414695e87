package domain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/areacheck/property-insight-service/internal/apperr"
)

const (
	// gridSize is the number of evaluation points on the shared x-axis.
	gridSize = 1000

	// gridPadding extends the x-axis beyond the observed extremes so curve
	// tails aren't clipped at the data boundary.
	gridPadding = 2.0

	// minCurveObservations is the smallest per-year sample a KDE is computed
	// for. A single observation has no spread to estimate.
	minCurveObservations = 2
)

// GridPoint is one (x, density) sample of a density curve.
type GridPoint struct {
	X       float64 `json:"x"`
	Density float64 `json:"density"`
}

// DensityCurve is the estimated value-change distribution of one report year.
// ColorIndex is the year's position among all observed years, so a skipped
// year still consumes its palette slot.
type DensityCurve struct {
	Year       int         `json:"year"`
	Points     []GridPoint `json:"points"`
	ColorIndex int         `json:"color_index"`
}

// DensityReport is the output of the neighbourhood comparison: one curve per
// qualifying year over a shared grid, plus the two reference averages.
type DensityReport struct {
	Curves               []DensityCurve `json:"curves"`
	NeighbourhoodAverage float64        `json:"neighbourhood_average"`
	PropertyAverage      float64        `json:"property_average"`
}

// EstimateDensities computes a Gaussian KDE per report year over a shared
// 1000-point grid spanning [min-2, max+2] of every valid value-change
// observation across all years, along with the neighbourhood-wide mean.
// propertyAvg is passed through unchanged for the renderer.
//
// Years with fewer than minCurveObservations valid observations are silently
// skipped, as are degenerate samples whose bandwidth collapses to zero (all
// observations identical). An entirely empty observation set yields a
// validation error rather than an empty report.
func EstimateDensities(series NeighbourhoodSeries, propertyAvg float64) (DensityReport, error) {
	observed := make(map[int][]float64, len(series))
	var all []float64
	for year, records := range series {
		for _, rec := range records {
			if rec.ValueChange == nil {
				continue
			}
			observed[year] = append(observed[year], *rec.ValueChange)
			all = append(all, *rec.ValueChange)
		}
	}

	if len(all) == 0 {
		return DensityReport{}, apperr.Validation("no valid value-change observations in neighbourhood series")
	}

	// The grid spans the combined observations of all years, so per-year
	// curves stay comparable on one axis.
	grid := sharedGrid(all)

	years := make([]int, 0, len(observed))
	for year := range observed {
		years = append(years, year)
	}
	sort.Ints(years)

	report := DensityReport{
		NeighbourhoodAverage: stat.Mean(all, nil),
		PropertyAverage:      propertyAvg,
	}

	for i, year := range years {
		obs := observed[year]
		if len(obs) < minCurveObservations {
			continue
		}
		bandwidth := scottBandwidth(obs)
		if bandwidth <= 0 {
			continue
		}
		report.Curves = append(report.Curves, DensityCurve{
			Year:       year,
			Points:     evaluateKDE(obs, bandwidth, grid),
			ColorIndex: i,
		})
	}

	return report, nil
}

// sharedGrid returns gridSize evenly spaced points over
// [min(obs)-gridPadding, max(obs)+gridPadding].
func sharedGrid(obs []float64) []float64 {
	lo := floats.Min(obs) - gridPadding
	hi := floats.Max(obs) + gridPadding

	grid := make([]float64, gridSize)
	step := (hi - lo) / float64(gridSize-1)
	for i := range grid {
		grid[i] = lo + step*float64(i)
	}
	return grid
}

// scottBandwidth is Scott's rule for one-dimensional data: the sample
// standard deviation scaled by n^(-1/5).
func scottBandwidth(obs []float64) float64 {
	sigma := stat.StdDev(obs, nil)
	return sigma * math.Pow(float64(len(obs)), -0.2)
}

// evaluateKDE averages a Gaussian kernel of the given bandwidth, centered on
// each observation, at every grid point.
func evaluateKDE(obs []float64, bandwidth float64, grid []float64) []GridPoint {
	kernel := distuv.Normal{Mu: 0, Sigma: bandwidth}
	n := float64(len(obs))

	points := make([]GridPoint, len(grid))
	for i, x := range grid {
		var sum float64
		for _, xi := range obs {
			sum += kernel.Prob(x - xi)
		}
		points[i] = GridPoint{X: x, Density: sum / n}
	}
	return points
}
