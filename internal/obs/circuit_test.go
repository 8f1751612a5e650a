package obs

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("test")
	cfg.MaxFailures = 3
	cfg.MinRequests = 1000 // keep the failure-rate path from tripping first
	cb := NewCircuitBreaker(cfg)

	boom := errors.New("boom")
	for i := 0; i < 3; i++ {
		if err := cb.Execute(context.Background(), func() error { return boom }); err != boom {
			t.Fatalf("call %d: got %v, want the underlying error", i, err)
		}
	}
	if cb.State() != CircuitOpen {
		t.Fatalf("State() = %v, want CircuitOpen after %d failures", cb.State(), cfg.MaxFailures)
	}

	if err := cb.Execute(context.Background(), func() error { return nil }); err == nil {
		t.Error("expected Execute to reject calls while the circuit is open")
	}
}

func TestCircuitBreaker_StaysClosedOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig("test"))
	for i := 0; i < 10; i++ {
		if err := cb.Execute(context.Background(), func() error { return nil }); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if cb.State() != CircuitClosed {
		t.Errorf("State() = %v, want CircuitClosed", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenRecoversToClosed(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("test")
	cfg.MaxFailures = 1
	cfg.MinRequests = 1000
	cfg.Timeout = time.Millisecond
	cfg.MaxRequests = 1
	cb := NewCircuitBreaker(cfg)

	boom := errors.New("boom")
	cb.Execute(context.Background(), func() error { return boom })
	if cb.State() != CircuitOpen {
		t.Fatalf("expected the circuit to open after one failure with MaxFailures=1")
	}

	time.Sleep(2 * time.Millisecond)
	if err := cb.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("expected a half-open probe to be allowed through: %v", err)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("State() = %v, want CircuitClosed after a successful half-open probe", cb.State())
	}
}
