package mongo

import (
	"context"
	"sync"
	"time"
)

// FetchPage runs a count and a page query concurrently, each bounded by
// timeout. The count error wins when both fail.
func FetchPage[T any](
	ctx context.Context,
	timeout time.Duration,
	count func(ctx context.Context) (int64, error),
	find func(ctx context.Context) ([]T, error),
) ([]T, int64, error) {
	var (
		total             int64
		items             []T
		errCount, errFind error
		wg                sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ctx, cancel := WithTimeout(ctx, timeout)
		defer cancel()
		total, errCount = count(ctx)
	}()
	go func() {
		defer wg.Done()
		ctx, cancel := WithTimeout(ctx, timeout)
		defer cancel()
		items, errFind = find(ctx)
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	if items == nil {
		items = []T{}
	}
	return items, total, nil
}
