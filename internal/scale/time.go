package scale

import (
	"math"
	"sort"
	"time"
)

// Time is a linear scale whose domain is an instant range. Calendar
// operations (Nice, Ticks, labels) use the location of the domain start.
type Time struct {
	t0, t1 time.Time
	r0, r1 float64
}

// NewTime creates a time scale over [t0, t1] -> [r0, r1]
func NewTime(t0, t1 time.Time, r0, r1 float64) *Time {
	return &Time{t0: t0, t1: t1, r0: r0, r1: r1}
}

// Domain returns the current domain
func (s *Time) Domain() (time.Time, time.Time) { return s.t0, s.t1 }

// Range returns the current range
func (s *Time) Range() (float64, float64) { return s.r0, s.r1 }

// Map projects an instant into the range
func (s *Time) Map(t time.Time) float64 {
	span := s.t1.Sub(s.t0)
	if span == 0 {
		return (s.r0 + s.r1) / 2
	}
	frac := float64(t.Sub(s.t0)) / float64(span)
	return s.r0 + frac*(s.r1-s.r0)
}

// Invert projects a range value back into an instant
func (s *Time) Invert(y float64) time.Time {
	frac := normalize(s.r0, s.r1, y)
	if s.t1.Equal(s.t0) {
		return s.t0
	}
	offset := time.Duration(math.Round(frac * float64(s.t1.Sub(s.t0))))
	return s.t0.Add(offset)
}

// Nice extends the domain outward to boundaries of the tick interval
func (s *Time) Nice(count int) *Time {
	if !s.t1.After(s.t0) {
		return s
	}
	iv := chooseInterval(s.t0, s.t1, count)
	s.t0 = iv.floor(s.t0)
	if c := iv.floor(s.t1); !c.Equal(s.t1) {
		s.t1 = iv.offset(c, 1)
	}
	return s
}

// Ticks returns interval boundaries inside the domain
func (s *Time) Ticks(count int) []time.Time {
	if !s.t1.After(s.t0) {
		return []time.Time{s.t0}
	}
	iv := chooseInterval(s.t0, s.t1, count)
	t := iv.floor(s.t0)
	if t.Before(s.t0) {
		t = iv.offset(t, 1)
	}

	var ticks []time.Time
	for !t.After(s.t1) && len(ticks) < 1000 {
		ticks = append(ticks, t)
		t = iv.offset(t, 1)
	}
	return ticks
}

type unit int

const (
	unitSecond unit = iota
	unitMinute
	unitHour
	unitDay
	unitWeek
	unitMonth
	unitYear
)

type interval struct {
	unit unit
	step int
	// approximate length, used only for choosing between intervals
	approx time.Duration
}

const (
	durDay   = 24 * time.Hour
	durWeek  = 7 * durDay
	durMonth = 30 * durDay
	durYear  = 365 * durDay
)

var tickIntervals = []interval{
	{unitSecond, 1, time.Second},
	{unitSecond, 5, 5 * time.Second},
	{unitSecond, 15, 15 * time.Second},
	{unitSecond, 30, 30 * time.Second},
	{unitMinute, 1, time.Minute},
	{unitMinute, 5, 5 * time.Minute},
	{unitMinute, 15, 15 * time.Minute},
	{unitMinute, 30, 30 * time.Minute},
	{unitHour, 1, time.Hour},
	{unitHour, 3, 3 * time.Hour},
	{unitHour, 6, 6 * time.Hour},
	{unitHour, 12, 12 * time.Hour},
	{unitDay, 1, durDay},
	{unitDay, 2, 2 * durDay},
	{unitWeek, 1, durWeek},
	{unitMonth, 1, durMonth},
	{unitMonth, 3, 3 * durMonth},
	{unitYear, 1, durYear},
}

func chooseInterval(t0, t1 time.Time, count int) interval {
	if count <= 0 {
		count = 10
	}
	target := t1.Sub(t0) / time.Duration(count)

	i := sort.Search(len(tickIntervals), func(i int) bool {
		return tickIntervals[i].approx > target
	})
	switch {
	case i == len(tickIntervals):
		years := TickIncrement(float64(t0.Year()), float64(t1.Year()), count)
		step := int(math.Max(1, years))
		return interval{unitYear, step, time.Duration(step) * durYear}
	case i == 0:
		return tickIntervals[0]
	}

	prev, next := tickIntervals[i-1], tickIntervals[i]
	if float64(target)/float64(prev.approx) < float64(next.approx)/float64(target) {
		return prev
	}
	return next
}

func (iv interval) floor(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, sec := t.Clock()
	loc := t.Location()

	switch iv.unit {
	case unitSecond:
		return time.Date(y, mo, d, h, mi, sec-sec%iv.step, 0, loc)
	case unitMinute:
		return time.Date(y, mo, d, h, mi-mi%iv.step, 0, 0, loc)
	case unitHour:
		return time.Date(y, mo, d, h-h%iv.step, 0, 0, 0, loc)
	case unitDay:
		return time.Date(y, mo, d-(d-1)%iv.step, 0, 0, 0, 0, loc)
	case unitWeek:
		return time.Date(y, mo, d-int(t.Weekday()), 0, 0, 0, 0, loc)
	case unitMonth:
		m := int(mo) - 1
		return time.Date(y, time.Month(m-m%iv.step+1), 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y-y%iv.step, time.January, 1, 0, 0, 0, 0, loc)
	}
}

func (iv interval) offset(t time.Time, n int) time.Time {
	k := iv.step * n
	switch iv.unit {
	case unitSecond:
		return t.Add(time.Duration(k) * time.Second)
	case unitMinute:
		return t.Add(time.Duration(k) * time.Minute)
	case unitHour:
		return t.Add(time.Duration(k) * time.Hour)
	case unitDay:
		next := t.AddDate(0, 0, k)
		if iv.step > 1 {
			// every-other-day ticks restart on the 1st of each month
			if next.Month() != t.Month() {
				next = time.Date(next.Year(), next.Month(), 1, 0, 0, 0, 0, t.Location())
			}
		}
		return next
	case unitWeek:
		return t.AddDate(0, 0, 7*n)
	case unitMonth:
		return t.AddDate(0, k, 0)
	default:
		return t.AddDate(k, 0, 0)
	}
}

// FormatTick labels an instant by the coarsest calendar boundary it sits on
func FormatTick(t time.Time) string {
	_, mo, d := t.Date()
	h, mi, sec := t.Clock()
	switch {
	case t.Nanosecond() != 0:
		return t.Format(".000")
	case sec != 0:
		return t.Format(":05")
	case mi != 0:
		return t.Format("03:04")
	case h != 0:
		return t.Format("03 PM")
	case d != 1:
		if t.Weekday() != time.Sunday {
			return t.Format("Mon 02")
		}
		return t.Format("Jan 02")
	case mo != time.January:
		return t.Format("January")
	default:
		return t.Format("2006")
	}
}
