package engine

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestMetricsHandshakeOutcomesByVariant(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.incHandshakeOutcome("magic", "success")
	m.incHandshakeOutcome("magic", "failure")
	m.incHandshakeOutcome("magic", "failure")
	m.incHandshakeOutcome("uv17pro", "success")

	var mm dto.Metric
	if err := m.HandshakeOutcomes.WithLabelValues("magic", "failure").Write(&mm); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if mm.GetCounter().GetValue() != 2 {
		t.Fatalf("expected 2 magic failures, got %v", mm.GetCounter().GetValue())
	}

	var ms dto.Metric
	if err := m.HandshakeOutcomes.WithLabelValues("uv17pro", "success").Write(&ms); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if ms.GetCounter().GetValue() != 1 {
		t.Fatalf("expected 1 uv17pro success, got %v", ms.GetCounter().GetValue())
	}
}

func TestMetricsBlockDurationRecordsObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.observeBlockDuration(5 * time.Millisecond)
	m.observeBlockDuration(10 * time.Millisecond)

	var mm dto.Metric
	if err := m.BlockDuration.Write(&mm); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := mm.GetHistogram().GetSampleCount(); got != 2 {
		t.Fatalf("expected 2 samples, got %d", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.incBlocksRead()
	m.incBlocksWritten()
	m.observeBlockDuration(time.Second)
	m.incHandshakeOutcome("magic", "success")
	m.addBytes(10)
}

func TestNewMetricsIncrementsBlockCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.incBlocksRead()
	m.incBlocksRead()
	m.incBlocksWritten()

	if got := counterValue(t, m.BlocksRead); got != 2 {
		t.Fatalf("expected 2 blocks read, got %v", got)
	}
	if got := counterValue(t, m.BlocksWritten); got != 1 {
		t.Fatalf("expected 1 block written, got %v", got)
	}
}
