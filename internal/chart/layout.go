// Package chart lays out the commit scatterplot: commits by date along x and
// time of day along y, with area proportional to lines changed.
package chart

import (
	"time"

	"github.com/rohankatakam/codefolio/internal/config"
)

// Margin is the space around the plotting area
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Layout holds the chart geometry and animation settings
type Layout struct {
	Width      float64
	Height     float64
	Margin     Margin
	RadiusMin  float64
	RadiusMax  float64
	Transition time.Duration
	Clock12    bool
	XTicks     int
	YTicks     int
}

// Area is the plotting rectangle inside the margins
type Area struct {
	Left, Right, Top, Bottom float64
}

// Width of the plotting rectangle
func (a Area) Width() float64 { return a.Right - a.Left }

// Height of the plotting rectangle
func (a Area) Height() float64 { return a.Bottom - a.Top }

// DefaultLayout is a 1000x600 chart with room for the axes
func DefaultLayout() Layout {
	return LayoutFromConfig(config.Default().Chart)
}

// LayoutFromConfig converts chart settings into a Layout
func LayoutFromConfig(cfg config.ChartConfig) Layout {
	return Layout{
		Width:  cfg.Width,
		Height: cfg.Height,
		Margin: Margin{
			Top:    cfg.Margin.Top,
			Right:  cfg.Margin.Right,
			Bottom: cfg.Margin.Bottom,
			Left:   cfg.Margin.Left,
		},
		RadiusMin:  cfg.RadiusMin,
		RadiusMax:  cfg.RadiusMax,
		Transition: cfg.Transition,
		Clock12:    cfg.Clock12,
		XTicks:     cfg.XTicks,
		YTicks:     cfg.YTicks,
	}
}

// Usable returns the plotting rectangle
func (l Layout) Usable() Area {
	return Area{
		Left:   l.Margin.Left,
		Right:  l.Width - l.Margin.Right,
		Top:    l.Margin.Top,
		Bottom: l.Height - l.Margin.Bottom,
	}
}
