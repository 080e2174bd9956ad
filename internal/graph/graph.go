// Package graph samples a function of one variable into screen-space
// polylines for a viewport that can be zoomed, panned and re-centred.
package graph

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultPointsPerUnit = 25
	DefaultMaxDeltaY     = 500
)

var validate = validator.New()

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width" validate:"gt=0,lte=10000"`
	Height float64 `json:"height" validate:"gt=0,lte=10000"`
}

// Segment is a continuous run of plotted points.
type Segment []Point

// Viewport maps function units to screen points. The origin is stored as an
// offset from the centre of the bounds so it survives resizing.
type Viewport struct {
	Scale         float64 `json:"scale"`
	OriginX       float64 `json:"origin_x"`
	OriginY       float64 `json:"origin_y"`
	PointsPerUnit float64 `json:"points_per_unit"`
	// MaxDeltaY is the largest vertical jump, in points, still drawn as a
	// connected line.
	MaxDeltaY float64 `json:"max_delta_y"`
}

func DefaultViewport() Viewport {
	return Viewport{
		Scale:         1,
		PointsPerUnit: DefaultPointsPerUnit,
		MaxDeltaY:     DefaultMaxDeltaY,
	}
}

// Normalize replaces unusable fields with their defaults.
func (v Viewport) Normalize() Viewport {
	d := DefaultViewport()
	if !positive(v.Scale) {
		v.Scale = d.Scale
	}
	if !positive(v.PointsPerUnit) {
		v.PointsPerUnit = d.PointsPerUnit
	}
	if !positive(v.MaxDeltaY) {
		v.MaxDeltaY = d.MaxDeltaY
	}
	if !finite(v.OriginX) {
		v.OriginX = 0
	}
	if !finite(v.OriginY) {
		v.OriginY = 0
	}
	return v
}

// Zoom multiplies the scale by factor. Non-positive factors are ignored.
func (v *Viewport) Zoom(factor float64) {
	if positive(factor) {
		v.Scale *= factor
	}
}

func (v *Viewport) Pan(dx, dy float64) {
	if finite(dx) && finite(dy) {
		v.OriginX += dx
		v.OriginY += dy
	}
}

// MoveOrigin places the origin at p within bounds.
func (v *Viewport) MoveOrigin(p Point, bounds Size) {
	v.OriginX = p.X - bounds.Width/2
	v.OriginY = p.Y - bounds.Height/2
}

// Origin returns the absolute origin within bounds.
func (v Viewport) Origin(bounds Size) Point {
	return Point{
		X: bounds.Width/2 + v.OriginX,
		Y: bounds.Height/2 + v.OriginY,
	}
}

func (v Viewport) pointsPerUnit() float64 {
	return v.PointsPerUnit * v.Scale
}

// PlotRequest describes a sampling pass. Density is samples per point.
type PlotRequest struct {
	Bounds  Size    `json:"bounds"`
	Density float64 `json:"density" validate:"gt=0,lte=8"`
}

func (r PlotRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid plot request: %w", err)
	}
	return nil
}

// Plot samples f across the width of the bounds. Points where f is not a
// normal number or zero break the curve, as does a vertical jump larger than
// MaxDeltaY/density between neighbours. Isolated points are dropped.
func (v Viewport) Plot(f func(float64) float64, req PlotRequest) ([]Segment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	v = v.Normalize()

	var (
		origin   = v.Origin(req.Bounds)
		ppu      = v.pointsPerUnit()
		maxDelta = v.MaxDeltaY / req.Density
		steps    = int(math.Floor(req.Bounds.Width * req.Density))
		segments []Segment
		current  Segment
		prevOK   bool
		prevY    float64
	)

	flush := func() {
		if len(current) > 1 {
			segments = append(segments, current)
		}
		current = nil
	}

	for i := 0; i <= steps; i++ {
		xPts := float64(i) / req.Density
		yUnits := f((xPts - origin.X) / ppu)

		if !plottable(yUnits) {
			prevOK = false
			continue
		}

		yPts := -yUnits*ppu + origin.Y
		if !finite(yPts) {
			prevOK = false
			continue
		}
		if !prevOK || math.Abs(yPts-prevY) > maxDelta {
			flush()
		}
		current = append(current, Point{X: xPts, Y: yPts})
		prevY = yPts
		prevOK = true
	}
	flush()

	return segments, nil
}

func plottable(y float64) bool {
	if y == 0 {
		return true
	}
	return finite(y) && math.Abs(y) >= 0x1p-1022
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
