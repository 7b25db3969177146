package salaryschema

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProber struct {
	mu     sync.Mutex
	calls  int
	layout Layout
	err    error
}

func (p *countingProber) Probe(ctx context.Context) (Layout, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.layout, p.err
}

type recordingPublisher struct {
	published int
	err       error
}

func (p *recordingPublisher) PublishInvalidation(ctx context.Context) error {
	p.published++
	return p.err
}

func TestCacheProbesOnce(t *testing.T) {
	ctx := context.Background()
	p := &countingProber{layout: withYear}
	c := NewCache(p)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := c.Get(ctx)
			assert.NoError(t, err)
			assert.Equal(t, withYear, l)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, p.calls)

	c.Invalidate()
	_, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestCacheDoesNotKeepErrors(t *testing.T) {
	ctx := context.Background()
	p := &countingProber{err: errors.New("salary table not found")}
	c := NewCache(p)

	_, err := c.Get(ctx)
	require.Error(t, err)

	p.err = nil
	p.layout = withoutYear
	l, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, withoutYear, l)
	assert.Equal(t, 2, p.calls)
}

func TestInvalidateOnSchemaError(t *testing.T) {
	ctx := context.Background()
	p := &countingProber{layout: withYear}
	pub := &recordingPublisher{}
	c := NewCache(p)
	c.SetPublisher(pub)

	_, err := c.Get(ctx)
	require.NoError(t, err)

	assert.False(t, c.InvalidateOnSchemaError(ctx, errors.New("connection reset")))
	assert.False(t, c.InvalidateOnSchemaError(ctx, &pq.Error{Code: "23505"}))
	_, _ = c.Get(ctx)
	assert.Equal(t, 1, p.calls)

	wrapped := errors.Join(errors.New("failed to insert salary"), &pq.Error{Code: "42703"})
	assert.True(t, c.InvalidateOnSchemaError(ctx, wrapped))
	assert.Equal(t, 1, pub.published)

	_, _ = c.Get(ctx)
	assert.Equal(t, 2, p.calls)
}

func TestCacheRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes and drops the layout", func(t *testing.T) {
		p := &countingProber{layout: withYear}
		pub := &recordingPublisher{}
		c := NewCache(p)
		c.SetPublisher(pub)

		_, err := c.Get(ctx)
		require.NoError(t, err)

		c.Refresh(ctx)
		assert.Equal(t, 1, pub.published)

		_, err = c.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, p.calls)
	})

	t.Run("publish failure still drops the layout", func(t *testing.T) {
		p := &countingProber{layout: withYear}
		pub := &recordingPublisher{err: errors.New("redis: connection refused")}
		c := NewCache(p)
		c.SetPublisher(pub)

		_, _ = c.Get(ctx)
		c.Refresh(ctx)
		_, _ = c.Get(ctx)
		assert.Equal(t, 1, pub.published)
		assert.Equal(t, 2, p.calls)
	})

	t.Run("without a publisher", func(t *testing.T) {
		p := &countingProber{layout: withYear}
		c := NewCache(p)

		_, _ = c.Get(ctx)
		c.Refresh(ctx)
		_, _ = c.Get(ctx)
		assert.Equal(t, 2, p.calls)
	})
}

func TestIsSchemaError(t *testing.T) {
	assert.True(t, IsSchemaError(&pq.Error{Code: "42P01"}))
	assert.True(t, IsSchemaError(&pq.Error{Code: "42703"}))
	assert.False(t, IsSchemaError(&pq.Error{Code: "23503"}))
	assert.False(t, IsSchemaError(nil))
}
