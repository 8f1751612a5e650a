package obs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_IsASingleton(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	if a != b {
		t.Error("NewMetrics should return the same process-wide instance on every call")
	}
}

func TestNewMetrics_CountersIncrement(t *testing.T) {
	m := NewMetrics()
	before := testutil.ToFloat64(m.Constructions)
	m.Constructions.Inc()
	after := testutil.ToFloat64(m.Constructions)
	if after != before+1 {
		t.Errorf("Constructions counter = %v, want %v", after, before+1)
	}
}
