package scale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearMapInvert(t *testing.T) {
	s := NewLinear(0, 24, 570, 10)

	assert.InDelta(t, 570, s.Map(0), 1e-9)
	assert.InDelta(t, 10, s.Map(24), 1e-9)
	assert.InDelta(t, 290, s.Map(12), 1e-9)
	assert.InDelta(t, 12, s.Invert(290), 1e-9)
}

func TestLinearDegenerateDomain(t *testing.T) {
	s := NewLinear(3, 3, 5, 20)
	assert.Equal(t, 12.5, s.Map(3))
	assert.Equal(t, 12.5, s.Map(100))
}

func TestTicks(t *testing.T) {
	tests := []struct {
		name        string
		start, stop float64
		count       int
		want        []float64
	}{
		{"hours of day", 0, 24, 10, []float64{0, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24}},
		{"unit interval", 0, 1, 5, []float64{0, 0.2, 0.4, 0.6, 0.8, 1}},
		{"offset range", 3, 47, 5, []float64{10, 20, 30, 40}},
		{"reversed", 10, 0, 2, []float64{10, 5, 0}},
		{"single value", 7, 7, 10, []float64{7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ticks(tt.start, tt.stop, tt.count)
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}
}

func TestLinearNice(t *testing.T) {
	s := NewLinear(0.3, 23.7, 0, 1).Nice(10)
	d0, d1 := s.Domain()
	assert.Equal(t, 0.0, d0)
	assert.Equal(t, 24.0, d1)

	s = NewLinear(0, 24, 0, 1).Nice(10)
	d0, d1 = s.Domain()
	assert.Equal(t, 0.0, d0)
	assert.Equal(t, 24.0, d1)
}

func TestSqrtRadiusBand(t *testing.T) {
	s := NewSqrt(1, 10, 5, 20)

	assert.InDelta(t, 5, s.Map(1), 1e-9)
	assert.InDelta(t, 20, s.Map(10), 1e-9)
	assert.InDelta(t, 4, s.Invert(s.Map(4)), 1e-9)

	// area grows linearly: doubling the input does not double the radius
	assert.Less(t, s.Map(8)-5, 2*(s.Map(4)-5))
}

func TestSqrtDegenerate(t *testing.T) {
	s := NewSqrt(4, 4, 5, 20)
	assert.Equal(t, 12.5, s.Map(4))
}

func TestTimeMapInvert(t *testing.T) {
	t0 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(100 * time.Hour)
	s := NewTime(t0, t1, 0, 100)

	assert.InDelta(t, 0, s.Map(t0), 1e-9)
	assert.InDelta(t, 100, s.Map(t1), 1e-9)
	assert.InDelta(t, 25, s.Map(t0.Add(25*time.Hour)), 1e-9)

	assert.True(t, s.Invert(0).Equal(t0))
	assert.True(t, s.Invert(100).Equal(t1))
	assert.True(t, s.Invert(50).Equal(t0.Add(50*time.Hour)))
}

func TestTimeDegenerate(t *testing.T) {
	t0 := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	s := NewTime(t0, t0, 0, 100)

	assert.True(t, s.Invert(0).Equal(t0))
	assert.True(t, s.Invert(73).Equal(t0))
	assert.Equal(t, 50.0, s.Map(t0))
	assert.Len(t, s.Ticks(10), 1)
}

func TestTimeNiceAndTicks(t *testing.T) {
	t0 := time.Date(2024, 2, 3, 13, 27, 0, 0, time.UTC)
	t1 := time.Date(2024, 2, 12, 8, 5, 0, 0, time.UTC)
	s := NewTime(t0, t1, 20, 990).Nice(10)

	d0, d1 := s.Domain()
	assert.Equal(t, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), d0)
	assert.Equal(t, time.Date(2024, 2, 13, 0, 0, 0, 0, time.UTC), d1)

	ticks := s.Ticks(10)
	require.NotEmpty(t, ticks)
	for i, tick := range ticks {
		assert.Equal(t, 0, tick.Hour(), "daily ticks land on midnight")
		if i > 0 {
			assert.Equal(t, 24*time.Hour, tick.Sub(ticks[i-1]))
		}
	}
	assert.Equal(t, d0, ticks[0])
	assert.Equal(t, d1, ticks[len(ticks)-1])
}

func TestTimeTicksMonthly(t *testing.T) {
	t0 := time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2024, 8, 2, 0, 0, 0, 0, time.UTC)
	ticks := NewTime(t0, t1, 0, 1).Ticks(10)

	require.NotEmpty(t, ticks)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), ticks[0])
	for _, tick := range ticks {
		assert.Equal(t, 1, tick.Day())
	}
}

func TestFormatTick(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "March"},
		{time.Date(2024, 2, 4, 0, 0, 0, 0, time.UTC), "Feb 04"}, // Sunday
		{time.Date(2024, 2, 6, 0, 0, 0, 0, time.UTC), "Tue 06"},
		{time.Date(2024, 2, 6, 15, 0, 0, 0, time.UTC), "03 PM"},
		{time.Date(2024, 2, 6, 15, 30, 0, 0, time.UTC), "03:30"},
		{time.Date(2024, 2, 6, 15, 30, 5, 0, time.UTC), ":05"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTick(tt.at))
		})
	}
}
