package loop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainRunsInOrder(t *testing.T) {
	l := New()
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		require.True(t, l.Post(func() { got = append(got, i) }))
	}

	assert.Equal(t, 5, l.Drain())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Equal(t, 0, l.Drain())
}

func TestRunStopsOnCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	ran := make(chan struct{})
	l.Post(func() { close(ran) })

	var err error
	go func() {
		defer wg.Done()
		err = l.Run(ctx)
	}()

	<-ran
	cancel()
	wg.Wait()
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, l.Post(func() {}))
}

func TestAfterFuncPostsBack(t *testing.T) {
	l := New()
	fired := false
	l.AfterFunc(5*time.Millisecond, func() { fired = true })

	assert.Eventually(t, func() bool {
		l.Drain()
		return fired
	}, time.Second, time.Millisecond)
}
