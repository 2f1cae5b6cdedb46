package limiter_test

import (
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/docs-crawler/pkg/limiter"
)

func TestDomainClock_FirstAccessNeverWaits(t *testing.T) {
	c := limiter.NewDomainClock()
	start := time.Now()
	c.Wait("example.com", 500*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("first access should not wait, took %v", elapsed)
	}
}

func TestDomainClock_SecondAccessWaitsOutDelay(t *testing.T) {
	c := limiter.NewDomainClock()
	c.Wait("example.com", 100*time.Millisecond)

	start := time.Now()
	c.Wait("example.com", 100*time.Millisecond)
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("second access should have waited ~100ms, took %v", elapsed)
	}
}

func TestDomainClock_NoDelayNeverWaits(t *testing.T) {
	c := limiter.NewDomainClock()
	c.Wait("example.com", 0)
	start := time.Now()
	c.Wait("example.com", 0)
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Errorf("zero delay should never wait, took %v", elapsed)
	}
}

func TestDomainClock_IndependentDomainsDoNotBlockEachOther(t *testing.T) {
	c := limiter.NewDomainClock()
	c.Wait("a.com", 200*time.Millisecond)

	start := time.Now()
	c.Wait("b.com", 200*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("a fresh domain should not wait for another domain's delay, took %v", elapsed)
	}
}

func TestDomainClock_ElapsedAlreadyPastDelaySkipsWait(t *testing.T) {
	c := limiter.NewDomainClock()
	c.Wait("example.com", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	start := time.Now()
	c.Wait("example.com", 10*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Errorf("delay already elapsed should not wait, took %v", elapsed)
	}
}

func TestDomainClock_ConcurrentAccessSerializesPerDomain(t *testing.T) {
	c := limiter.NewDomainClock()
	const delay = 30 * time.Millisecond
	const callers = 5

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Wait("shared.example.com", delay)
		}()
	}
	wg.Wait()

	// The clock's mutex serializes the callers, and every caller after the
	// first waits out the delay since the previous stamp, so the whole
	// batch takes at least (callers-1)*delay.
	if elapsed := time.Since(start); elapsed < (callers-1)*delay {
		t.Errorf("expected concurrent callers to serialize for at least %v, took %v", (callers-1)*delay, elapsed)
	}
}
