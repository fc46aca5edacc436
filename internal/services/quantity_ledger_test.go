// internal/services/quantity_ledger_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeAvailable(t *testing.T) {
	assert.Equal(t, 100, ComputeAvailable(100, 0))
	assert.Equal(t, 60, ComputeAvailable(100, 40))
	assert.Equal(t, 0, ComputeAvailable(100, 100))

	// Clamped to the invariant 0 <= available <= count
	assert.Equal(t, 0, ComputeAvailable(100, 150))
	assert.Equal(t, 100, ComputeAvailable(100, -5))
}

func TestComputeAvailableScenario(t *testing.T) {
	// count=100, one approved application of 40 leaves 60; a request for 70
	// must then fail the availability check.
	available := ComputeAvailable(100, 40)
	assert.Equal(t, 60, available)
	assert.Greater(t, 70, available)
}
