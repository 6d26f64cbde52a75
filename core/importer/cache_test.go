package importer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_ReusesFreshEntry(t *testing.T) {
	c := NewCache[int](time.Minute)
	var builds int32
	build := func(context.Context) (int, error) {
		return int(atomic.AddInt32(&builds, 1)), nil
	}

	v, err := c.GetOrBuild(context.Background(), "k", build)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = c.GetOrBuild(context.Background(), "k", build)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	c.Invalidate("k")
	v, err = c.GetOrBuild(context.Background(), "k", build)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestCache_Expires(t *testing.T) {
	c := NewCache[int](time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	n := 0
	build := func(context.Context) (int, error) { n++; return n, nil }

	_, _ = c.GetOrBuild(context.Background(), "k", build)
	now = now.Add(2 * time.Minute)
	v, err := c.GetOrBuild(context.Background(), "k", build)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestCache_ZeroTTLNeverRetains(t *testing.T) {
	c := NewCache[int](0)
	n := 0
	build := func(context.Context) (int, error) { n++; return n, nil }

	_, _ = c.GetOrBuild(context.Background(), "k", build)
	v, _ := c.GetOrBuild(context.Background(), "k", build)
	assert.Equal(t, 2, v)
}

func TestCache_ErrorNotStored(t *testing.T) {
	c := NewCache[int](time.Minute)
	_, err := c.GetOrBuild(context.Background(), "k", func(context.Context) (int, error) {
		return 0, errors.New("scan failed")
	})
	assert.EqualError(t, err, "scan failed")

	v, err := c.GetOrBuild(context.Background(), "k", func(context.Context) (int, error) { return 9, nil })
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestCache_ConcurrentMissesBuildOnce(t *testing.T) {
	c := NewCache[int](time.Minute)
	var builds int32
	release := make(chan struct{})
	build := func(context.Context) (int, error) {
		atomic.AddInt32(&builds, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrBuild(context.Background(), "dump", build)
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
}
