package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/redux/internal/clock"
)

func TestSimulatedTime_StepsPerRead(t *testing.T) {
	st := NewSimulatedTime(time.Microsecond)

	assert.Equal(t, clock.InstantOf(time.Microsecond), st.MonotonicTime())
	assert.Equal(t, clock.InstantOf(2*time.Microsecond), st.MonotonicTime())
	assert.Equal(t, clock.InstantOf(2*time.Microsecond), st.Peek(), "peek does not advance")
}

func TestSimulatedTime_Advance(t *testing.T) {
	st := NewSimulatedTime(0)

	st.Advance(time.Second)
	st.Advance(-time.Hour)
	assert.Equal(t, clock.InstantOf(time.Second), st.MonotonicTime())
	assert.Equal(t, clock.InstantOf(time.Second), st.MonotonicTime(), "zero step repeats")
}

func TestSimulatedTime_ResetAndClone(t *testing.T) {
	st := NewSimulatedTime(10)
	st.MonotonicTime()

	c := st.Clone()
	st.Reset()

	assert.Equal(t, clock.InstantOf(0), st.Peek())
	assert.Equal(t, clock.InstantOf(10), c.Peek(), "clone is independent")

	c.SetStep(5)
	assert.Equal(t, clock.InstantOf(15), c.MonotonicTime())
}

func TestSimulatedTime_ThreadSafe(t *testing.T) {
	st := NewSimulatedTime(1)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				st.MonotonicTime()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, clock.InstantOf(1000), st.Peek())
}
