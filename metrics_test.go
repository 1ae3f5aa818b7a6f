package authflows

import (
	"testing"
	"time"
)

func TestMetricsIncAndValue(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricRegisterSuccess)

	if got := m.Value(MetricLoginSuccess); got != 2 {
		t.Fatalf("expected 2 login successes, got %d", got)
	}
	if got := m.Value(MetricRegisterSuccess); got != 1 {
		t.Fatalf("expected 1 register success, got %d", got)
	}
	if got := m.Value(MetricLoginFailure); got != 0 {
		t.Fatalf("expected untouched counter to be 0, got %d", got)
	}
}

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricLoginLatency, 10*time.Millisecond)

	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected disabled counter to stay 0, got %d", got)
	}

	s := m.Snapshot()
	if len(s.Counters) != 0 || len(s.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", s)
	}
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricLoginLatency, time.Millisecond)

	if m.Enabled() || m.LatencyEnabled() {
		t.Fatal("expected nil metrics to report disabled")
	}
	if m.Value(MetricLoginSuccess) != 0 {
		t.Fatal("expected nil metrics to read 0")
	}
	if s := m.Snapshot(); len(s.Counters) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", s)
	}
}

func TestObserveRequiresLatencyHistograms(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Observe(MetricLoginLatency, 10*time.Millisecond)

	s := m.Snapshot()
	if len(s.Histograms) != 0 {
		t.Fatalf("expected no histograms without latency opt-in, got %+v", s.Histograms)
	}
}

func TestObserveOnlyTracksLoginLatency(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricLoginLatency, 3*time.Millisecond)
	m.Observe(MetricLoginSuccess, 3*time.Millisecond)

	s := m.Snapshot()
	buckets, ok := s.Histograms[MetricLoginLatency]
	if !ok {
		t.Fatal("expected a login latency histogram")
	}
	if buckets[0] != 1 {
		t.Fatalf("expected one observation in the first bucket, got %v", buckets)
	}
	if _, ok := s.Histograms[MetricLoginSuccess]; ok {
		t.Fatal("expected counter IDs to be ignored by Observe")
	}
}

func TestBucketIndex(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{time.Millisecond, 0},
		{5 * time.Millisecond, 0},
		{8 * time.Millisecond, 1},
		{20 * time.Millisecond, 2},
		{40 * time.Millisecond, 3},
		{90 * time.Millisecond, 4},
		{200 * time.Millisecond, 5},
		{400 * time.Millisecond, 6},
		{2 * time.Second, 7},
	}

	for _, tc := range cases {
		if got := bucketIndex(tc.d); got != tc.want {
			t.Fatalf("bucketIndex(%v) = %d, want %d", tc.d, got, tc.want)
		}
	}
}

func TestSnapshotIsStable(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricLoginLatency, 30*time.Millisecond)

	s := m.Snapshot()

	// Mutations after the snapshot must not leak into it.
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricLoginLatency, 30*time.Millisecond)

	if s.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("expected snapshot counter 1, got %d", s.Counters[MetricLoginSuccess])
	}
	if s.Histograms[MetricLoginLatency][3] != 1 {
		t.Fatalf("expected snapshot bucket 1, got %v", s.Histograms[MetricLoginLatency])
	}
}
