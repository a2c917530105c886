package engine

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_StartsAtZero(t *testing.T) {
	assert.Zero(t, NewClock().Current())
}

func TestClock_NextHandsOutConsecutiveNumbers(t *testing.T) {
	c := NewClock()
	got := []int64{c.Next(), c.Next(), c.Next()}

	assert.Equal(t, []int64{1, 2, 3}, got)
	assert.Equal(t, int64(3), c.Current())
}

// Concurrent submitters must never share a sequence number.
func TestClock_ConcurrentNextIsGapFree(t *testing.T) {
	c := NewClock()
	const submitters, each = 16, 250

	results := make([][]int64, submitters)
	var wg sync.WaitGroup
	for i := 0; i < submitters; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				results[i] = append(results[i], c.Next())
			}
		}()
	}
	wg.Wait()

	var all []int64
	for _, r := range results {
		all = append(all, r...)
	}
	slices.Sort(all)
	require.Len(t, all, submitters*each)
	for i, seq := range all {
		require.Equal(t, int64(i+1), seq)
	}
	assert.Equal(t, int64(submitters*each), c.Current())
}
