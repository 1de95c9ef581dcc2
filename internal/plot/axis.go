package plot

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

// checkPositive rejects values that have no logarithm.
func checkPositive(what string, values []float64) error {
	for i, v := range values {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s[%d] = %v", ErrMalformed, what, i, v)
		}
	}
	return nil
}

func log2All(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Log2(v)
	}
	return out
}

// log2Axis spans the log2 of `values` with one tick per power of two,
// labeled with the untransformed value. The range is never empty.
func log2Axis(values []float64) (*chart.ContinuousRange, []chart.Tick) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		e := math.Log2(v)
		lo = math.Min(lo, e)
		hi = math.Max(hi, e)
	}
	lo, hi = math.Floor(lo), math.Ceil(hi)
	if lo == hi {
		hi++
	}

	ticks := make([]chart.Tick, 0, int(hi-lo)+1)
	for e := lo; e <= hi; e++ {
		ticks = append(ticks, chart.Tick{
			Value: e,
			Label: strconv.FormatFloat(math.Exp2(e), 'g', -1, 64),
		})
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}, ticks
}

// yearAxis spans whole years around `dates` with a tick on every January 1st.
func yearAxis(dates []time.Time) (*chart.ContinuousRange, []chart.Tick) {
	first, last := dates[0].Year(), dates[0].Year()
	for _, d := range dates {
		first = min(first, d.Year())
		last = max(last, d.Year())
	}
	loc := dates[0].Location()

	// widen the tick spacing so labels do not collide on long spans
	step := (last-first)/10 + 1

	var ticks []chart.Tick
	year := first
	for ; year <= last; year += step {
		ticks = append(ticks, chart.Tick{
			Value: float64(chart.TimeToFloat64(time.Date(year, time.January, 1, 0, 0, 0, 0, loc))),
			Label: strconv.Itoa(year),
		})
	}
	ticks = append(ticks, chart.Tick{
		Value: float64(chart.TimeToFloat64(time.Date(year, time.January, 1, 0, 0, 0, 0, loc))),
		Label: strconv.Itoa(year),
	})

	return &chart.ContinuousRange{Min: ticks[0].Value, Max: ticks[len(ticks)-1].Value}, ticks
}
