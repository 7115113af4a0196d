package psyche

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 6, 1, hour, minute, 0, 0, time.UTC)
}

func TestLazinessWakingWindowIsZero(t *testing.T) {
	for h := 10; h < 22; h++ {
		assert.Equal(t, 0.0, Laziness(at(h, 0)), "hour %d", h)
		assert.Equal(t, 0.0, Laziness(at(h, 30)), "hour %d", h)
	}
}

func TestLazinessDeepNightPeak(t *testing.T) {
	assert.Equal(t, LazinessPeak, Laziness(at(1, 0)))
	assert.Equal(t, LazinessPeak, Laziness(at(3, 0)))
	assert.Equal(t, LazinessPeak, Laziness(at(4, 59)))
}

func TestLazinessBoundaryContinuity(t *testing.T) {
	assert.Less(t, math.Abs(Laziness(at(21, 59))-Laziness(at(22, 0))), 0.1)
	assert.Less(t, math.Abs(Laziness(at(4, 59))-Laziness(at(5, 0))), 0.1)
	assert.Less(t, math.Abs(Laziness(at(0, 59))-Laziness(at(1, 0))), 0.1)
	assert.Less(t, math.Abs(Laziness(at(7, 59))-Laziness(at(8, 0))), 0.1)
	// Midnight wrap inside the rising ramp.
	assert.Less(t, math.Abs(Laziness(at(23, 59))-Laziness(at(0, 0))), 0.1)
}

func TestLazinessRampMonotonic(t *testing.T) {
	prev := Laziness(at(22, 0))
	for m := 10; m < 120; m += 10 {
		cur := Laziness(at(22, 0).Add(time.Duration(m) * time.Minute))
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestLazinessRange(t *testing.T) {
	for m := 0; m < 24*60; m += 7 {
		v := Laziness(at(0, 0).Add(time.Duration(m) * time.Minute))
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, LazinessPeak)
	}
}

func TestTolerance(t *testing.T) {
	assert.Equal(t, 1.0, Tolerance(0, NeedChitchat, false))
	assert.InDelta(t, 0.8, Tolerance(0, NeedComfort, false), 1e-9)
	assert.InDelta(t, 0.8, Tolerance(0, NeedVent, false), 1e-9)
	assert.InDelta(t, 0.6, Tolerance(0, NeedVent, true), 1e-9)
	assert.Equal(t, 0.0, Tolerance(0.9, NeedComfort, true), "floor at zero")
}
