package dataflows

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// countingFetcher counts upstream calls and can be told to fail.
type countingFetcher struct {
	calls int32
	fail  bool
	delay time.Duration
}

func (f *countingFetcher) Fetch(ctx context.Context, symbol string, period Period) (*DataBundle, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail {
		return nil, fmt.Errorf("upstream unavailable")
	}
	return &DataBundle{
		Symbol: symbol,
		Period: period,
		History: []PricePoint{
			{Date: time.Now(), Close: decimal.NewFromInt(100)},
		},
		Meta: InstrumentMeta{ShortName: symbol, Currency: "USD"},
	}, nil
}

func (f *countingFetcher) count() int32 {
	return atomic.LoadInt32(&f.calls)
}

func TestCacheServesFreshEntryWithoutFetch(t *testing.T) {
	fetcher := &countingFetcher{}
	cache := NewCache(fetcher, 5*time.Minute)

	ctx := context.Background()
	first, err := cache.Get(ctx, "NVDA", Period5D)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := cache.Get(ctx, "NVDA", Period5D)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if fetcher.count() != 1 {
		t.Fatalf("expected exactly one upstream fetch, got %d", fetcher.count())
	}
	if first != second {
		t.Fatal("expected the identical cached bundle on the second call")
	}
}

func TestCacheRefetchesAfterTTL(t *testing.T) {
	fetcher := &countingFetcher{}
	cache := NewCache(fetcher, 5*time.Minute)

	current := time.Now()
	cache.now = func() time.Time { return current }

	ctx := context.Background()
	if _, err := cache.Get(ctx, "NVDA", Period5D); err != nil {
		t.Fatalf("Get: %v", err)
	}

	current = current.Add(5*time.Minute + time.Second)
	if _, err := cache.Get(ctx, "NVDA", Period5D); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if fetcher.count() != 2 {
		t.Fatalf("expected refetch after TTL, got %d fetches", fetcher.count())
	}
}

func TestCacheKeysPeriodsIndependently(t *testing.T) {
	fetcher := &countingFetcher{}
	cache := NewCache(fetcher, 5*time.Minute)

	ctx := context.Background()
	if _, err := cache.Get(ctx, "NVDA", Period5D); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := cache.Get(ctx, "NVDA", Period1Y); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if fetcher.count() != 2 {
		t.Fatalf("expected independent fetches per period, got %d", fetcher.count())
	}
	if cache.Len() != 2 {
		t.Fatalf("expected two cache entries, got %d", cache.Len())
	}
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	fetcher := &countingFetcher{fail: true}
	cache := NewCache(fetcher, 5*time.Minute)

	ctx := context.Background()
	if _, err := cache.Get(ctx, "NVDA", Period5D); err == nil {
		t.Fatal("expected fetch error")
	}
	if cache.Len() != 0 {
		t.Fatal("failures must not be cached")
	}

	// Next call retries upstream and succeeds.
	fetcher.fail = false
	if _, err := cache.Get(ctx, "NVDA", Period5D); err != nil {
		t.Fatalf("Get after recovery: %v", err)
	}
	if fetcher.count() != 2 {
		t.Fatalf("expected a retry after failure, got %d fetches", fetcher.count())
	}
}

func TestCacheCachesEmptyHistoryBundles(t *testing.T) {
	fetcher := &emptyFetcher{}
	cache := NewCache(fetcher, 5*time.Minute)

	ctx := context.Background()
	bundle, err := cache.Get(ctx, "RNMBF", Period5D)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if bundle.HasData() {
		t.Fatal("expected an empty-history bundle")
	}

	if _, err := cache.Get(ctx, "RNMBF", Period5D); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("data absence should be cached, got %d fetches", fetcher.calls)
	}
}

type emptyFetcher struct {
	calls int32
}

func (f *emptyFetcher) Fetch(ctx context.Context, symbol string, period Period) (*DataBundle, error) {
	atomic.AddInt32(&f.calls, 1)
	return &DataBundle{Symbol: symbol, Period: period}, nil
}

func TestCacheCollapsesConcurrentMisses(t *testing.T) {
	fetcher := &countingFetcher{delay: 50 * time.Millisecond}
	cache := NewCache(fetcher, 5*time.Minute)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Get(ctx, "NVDA", Period5D); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	wg.Wait()

	if fetcher.count() != 1 {
		t.Fatalf("expected concurrent misses to collapse into one fetch, got %d", fetcher.count())
	}
}
