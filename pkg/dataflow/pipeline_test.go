package dataflow_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/locvowork/epms/pkg/dataflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Number string
	Name   string
}

func TestMapWithRetry(t *testing.T) {
	ctx := context.Background()

	source := dataflow.From(ctx, "E1,Alice", "E2,Bob", "retry,Charlie", "broken")

	parsed := dataflow.Map(ctx, source, func(msg interface{}) (interface{}, error) {
		parts := strings.Split(msg.(string), ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid format")
		}
		return row{Number: parts[0], Name: parts[1]}, nil
	}, dataflow.WithWorkers(2))

	var attempts int32
	saved := dataflow.Map(ctx, parsed, func(msg interface{}) (interface{}, error) {
		r := msg.(row)
		if r.Number == "retry" && atomic.AddInt32(&attempts, 1) < 3 {
			return nil, fmt.Errorf("transient error")
		}
		return r, nil
	}, dataflow.WithRetry(3, func(i int) time.Duration { return time.Millisecond }))

	var mu sync.Mutex
	var names []string
	err := dataflow.ForEach(ctx, saved, func(msg interface{}) error {
		mu.Lock()
		defer mu.Unlock()
		names = append(names, msg.(row).Name)
		return nil
	})
	require.NoError(t, err)

	sort.Strings(names)
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, names)
}

func TestMapDropsFailedItems(t *testing.T) {
	ctx := context.Background()
	var failed int32
	even := dataflow.Map(ctx, dataflow.From(ctx, 1, 2, 3, 4, 5, 6), func(msg interface{}) (interface{}, error) {
		if msg.(int)%2 != 0 {
			return nil, errors.New("odd")
		}
		return msg, nil
	}, dataflow.WithBufferSize(6), dataflow.WithErrorHandler(func(error) bool {
		atomic.AddInt32(&failed, 1)
		return true
	}))

	sum := 0
	require.NoError(t, dataflow.ForEach(ctx, even, func(msg interface{}) error {
		sum += msg.(int)
		return nil
	}))
	assert.Equal(t, 12, sum)
	assert.Equal(t, int32(3), atomic.LoadInt32(&failed))
}

func TestExponentialBackoff(t *testing.T) {
	backoff := dataflow.ExponentialBackoff(100*time.Millisecond, time.Second)

	assert.Equal(t, 100*time.Millisecond, backoff(1))
	assert.Equal(t, 200*time.Millisecond, backoff(2))
	assert.Equal(t, 800*time.Millisecond, backoff(4))
	assert.Equal(t, time.Second, backoff(5))
	assert.Equal(t, time.Second, backoff(30))
}

func TestForEachRetriesBeforeFailing(t *testing.T) {
	ctx := context.Background()
	var calls int32

	err := dataflow.ForEach(ctx, dataflow.From(ctx, "batch"), func(msg interface{}) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("unavailable")
	}, dataflow.WithRetry(2, func(int) time.Duration { return time.Millisecond }))

	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestBatch(t *testing.T) {
	tests := []struct {
		name  string
		items int
		size  int
		want  []int
	}{
		{"exact multiple", 6, 3, []int{3, 3}},
		{"short tail", 7, 3, []int{3, 3, 1}},
		{"single batch", 2, 10, []int{2}},
		{"empty input", 0, 4, nil},
		{"size below one", 2, 0, []int{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			items := make([]interface{}, tt.items)
			for i := range items {
				items[i] = i
			}

			var got []int
			err := dataflow.ForEach(ctx, dataflow.Batch(ctx, dataflow.From(ctx, items...), tt.size), func(msg interface{}) error {
				got = append(got, len(msg.([]interface{})))
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForEachReturnsFirstError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("bulk item failed")

	err := dataflow.ForEach(ctx, dataflow.From(ctx, 1, 2, 3), func(msg interface{}) error {
		if msg.(int) == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)

	handled := 0
	err = dataflow.ForEach(ctx, dataflow.From(ctx, 1, 2, 3), func(msg interface{}) error {
		return boom
	}, dataflow.WithErrorHandler(func(error) bool {
		handled++
		return true
	}))
	assert.NoError(t, err)
	assert.Equal(t, 3, handled)
}
