package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRelayDown = errors.New("relay down")

func newTestCB() *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      50 * time.Millisecond,
	})
}

func TestCircuitBreaker_StaysClosedBelowThreshold(t *testing.T) {
	cb := newTestCB()

	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return errRelayDown })
	}

	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_TripsOpenAtThreshold(t *testing.T) {
	cb := newTestCB()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errRelayDown })
	}
	assert.Equal(t, CBOpen, cb.State())

	// Open fast-fails without invoking fn
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := newTestCB()

	_ = cb.Execute(func() error { return errRelayDown })
	_ = cb.Execute(func() error { return errRelayDown })
	require.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return errRelayDown })
	_ = cb.Execute(func() error { return errRelayDown })

	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	cb := newTestCB()
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errRelayDown })
	}
	require.Equal(t, CBOpen, cb.State())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())
}

func TestCircuitBreaker_ClosesAfterSuccessfulProbes(t *testing.T) {
	cb := newTestCB()
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errRelayDown })
	}
	time.Sleep(60 * time.Millisecond)

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb := newTestCB()
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errRelayDown })
	}
	time.Sleep(60 * time.Millisecond)

	_ = cb.Execute(func() error { return errRelayDown })
	assert.Equal(t, CBOpen, cb.State())
}

func TestCBState_String(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
}
