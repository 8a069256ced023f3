package runner

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Timings summarizes how long executed checks took.
type Timings struct {
	Count int64
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
}

// computeTimings records every executed check into a histogram covering 1us
// to 10 minutes with 3 significant digits.
func computeTimings(results []*CheckResult) *Timings {
	h := hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3)
	for _, cr := range results {
		if cr.Skipped || cr.Duration <= 0 {
			continue
		}
		_ = h.RecordValue(cr.Duration.Microseconds())
	}

	if h.TotalCount() == 0 {
		return &Timings{}
	}
	return &Timings{
		Count: h.TotalCount(),
		Min:   time.Duration(h.Min()) * time.Microsecond,
		Max:   time.Duration(h.Max()) * time.Microsecond,
		Mean:  time.Duration(h.Mean()) * time.Microsecond,
		P50:   time.Duration(h.ValueAtQuantile(50)) * time.Microsecond,
		P95:   time.Duration(h.ValueAtQuantile(95)) * time.Microsecond,
		P99:   time.Duration(h.ValueAtQuantile(99)) * time.Microsecond,
	}
}
