package loading_test

import (
	"sync"
	"testing"

	"study-client/internal/loading"
)

func TestBeginEndNotifiesSubscribers(t *testing.T) {
	c := loading.NewCoordinator()
	var seen []int
	cancel := c.Subscribe(func(n int) { seen = append(seen, n) })
	defer cancel()

	c.Begin()
	c.Begin()
	c.End()
	c.End()

	want := []int{1, 2, 1, 0}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}

func TestEndIsFlooredAtZero(t *testing.T) {
	c := loading.NewCoordinator()
	var minSeen int
	c.Subscribe(func(n int) {
		if n < minSeen {
			minSeen = n
		}
	})

	c.End()
	c.Begin()
	c.End()
	c.End()

	if c.Count() != 0 {
		t.Fatalf("expected count 0, got %d", c.Count())
	}
	if minSeen < 0 {
		t.Fatalf("observed negative count %d", minSeen)
	}
}

func TestConcurrentInterleavingMatchesNetCount(t *testing.T) {
	c := loading.NewCoordinator()
	var mu sync.Mutex
	negative := false
	c.Subscribe(func(n int) {
		mu.Lock()
		defer mu.Unlock()
		if n < 0 {
			negative = true
		}
	})

	const begins, ends = 200, 150
	var wg sync.WaitGroup
	for i := 0; i < begins; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Begin()
		}()
	}
	wg.Wait()
	for i := 0; i < ends; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.End()
		}()
	}
	wg.Wait()

	if got := c.Count(); got != begins-ends {
		t.Fatalf("expected %d, got %d", begins-ends, got)
	}
	if negative {
		t.Fatalf("subscriber observed a negative count")
	}
}

func TestLateSubscriberReadsCurrentCount(t *testing.T) {
	c := loading.NewCoordinator()
	c.Begin()
	c.Begin()
	c.Begin()
	c.End()

	var notified bool
	cancel := c.Subscribe(func(int) { notified = true })
	defer cancel()

	if c.Count() != 2 || !c.Busy() {
		t.Fatalf("expected count 2 and busy, got %d", c.Count())
	}
	if notified {
		t.Fatalf("subscribe should not replay history")
	}
}

func TestUnsubscribeAndClose(t *testing.T) {
	c := loading.NewCoordinator()
	calls := 0
	cancel := c.Subscribe(func(int) { calls++ })
	c.Begin()
	cancel()
	cancel()
	c.End()
	if calls != 1 {
		t.Fatalf("expected 1 call before unsubscribe, got %d", calls)
	}

	other := 0
	c.Subscribe(func(int) { other++ })
	c.Close()
	c.Begin()
	if other != 0 {
		t.Fatalf("expected no notifications after close, got %d", other)
	}
	if c.Count() != 1 {
		t.Fatalf("expected counting to continue after close, got %d", c.Count())
	}
}
