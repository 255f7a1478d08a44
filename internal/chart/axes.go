package chart

import (
	"fmt"
	"math"

	"github.com/rohankatakam/codefolio/internal/scale"
)

// Tick is an axis label at a pixel position
type Tick struct {
	Pos   float64 `json:"pos"`
	Label string  `json:"label"`
}

func xTicks(s *scale.Time, count int) []Tick {
	var ticks []Tick
	for _, t := range s.Ticks(count) {
		ticks = append(ticks, Tick{Pos: s.Map(t), Label: scale.FormatTick(t)})
	}
	return ticks
}

func yTicks(s *scale.Linear, count int, clock12 bool) []Tick {
	var ticks []Tick
	for _, v := range s.Ticks(count) {
		ticks = append(ticks, Tick{Pos: s.Map(v), Label: HourLabel(v, clock12)})
	}
	return ticks
}

// HourLabel labels an hour of the day: "14:00", or "2 PM" on a 12-hour clock.
// Hour 24 wraps to midnight.
func HourLabel(h float64, clock12 bool) string {
	hour := int(math.Floor(h)) % 24
	if !clock12 {
		return fmt.Sprintf("%02d:00", hour)
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d %s", h12, suffix)
}
