package core

const AVG_COUNT uint8 = 30

// LoadMetrics keeps counters and a rolling average of load times for one
// content manager. It is not safe for concurrent use.
type LoadMetrics struct {
	avgCounter uint8
	msTimes    [AVG_COUNT]float64
	samples    uint8

	Loads     uint64
	Fallbacks uint64
	Failures  uint64
	Reloads   uint64
}

// Snapshot is a copy of the metrics at one point in time.
type Snapshot struct {
	Loads       uint64
	Fallbacks   uint64
	Failures    uint64
	Reloads     uint64
	AvgLoadTime float64 // milliseconds
}

// RecordLoad stores the duration of one successful load, in milliseconds.
func (m *LoadMetrics) RecordLoad(ms float64) {
	m.Loads++
	m.msTimes[m.avgCounter] = ms
	m.avgCounter = (m.avgCounter + 1) % AVG_COUNT
	if m.samples < AVG_COUNT {
		m.samples++
	}
}

// Average returns the mean of the last AVG_COUNT recorded loads.
func (m *LoadMetrics) Average() float64 {
	if m.samples == 0 {
		return 0
	}
	var sum float64
	for i := uint8(0); i < m.samples; i++ {
		sum += m.msTimes[i]
	}
	return sum / float64(m.samples)
}

func (m *LoadMetrics) Snapshot() Snapshot {
	return Snapshot{
		Loads:       m.Loads,
		Fallbacks:   m.Fallbacks,
		Failures:    m.Failures,
		Reloads:     m.Reloads,
		AvgLoadTime: m.Average(),
	}
}
