// Package metrics holds dynamo.Metric implementations for pendulum runs.
package metrics

// mean is a running arithmetic mean; the zero value is empty and reports 0.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m *mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func (m *mean) reset() { *m = mean{} }
