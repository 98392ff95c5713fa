package tweetabs_internal

import (
	"sync"
	"testing"
	"time"
)

// trackingRemoteApi counts calls and the most calls ever in progress at
// once; used to confirm ThreadedRemoteApi runs one call at a time.
type trackingRemoteApi struct {
	mu          sync.Mutex
	calls       int
	authSeen    int
	inFlight    int
	maxInFlight int
}

func (a *trackingRemoteApi) RateLimit(authenticated bool) (int, error) {
	a.mu.Lock()
	a.calls++
	a.inFlight++
	if a.inFlight > a.maxInFlight {
		a.maxInFlight = a.inFlight
	}
	a.mu.Unlock()
	time.Sleep(time.Millisecond)
	a.mu.Lock()
	a.inFlight--
	a.mu.Unlock()
	return 42, nil
}
func (a *trackingRemoteApi) FollowersIds() ([]uint64, error)      { return nil, nil }
func (a *trackingRemoteApi) FollowingIds() ([]uint64, error)      { return nil, nil }
func (a *trackingRemoteApi) UserShow(string) (UserProfile, error) { return UserProfile{}, nil }
func (a *trackingRemoteApi) Timeline(TimelineKind) ([]Strip, error) { return nil, nil }
func (a *trackingRemoteApi) SendMessage(string) error               { return nil }

func TestThreadedRemoteApiSerializesCalls(t *testing.T) {
	inner := &trackingRemoteApi{}
	threaded := NewThreadedRemoteApi(inner)
	threaded.Start()
	defer threaded.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := threaded.RateLimit(true); err != nil {
				t.Errorf("RateLimit: %v", err)
			}
		}()
	}
	wg.Wait()

	if inner.calls != 20 {
		t.Errorf("inner.calls = %d, want 20", inner.calls)
	}
	if inner.maxInFlight != 1 {
		t.Errorf("inner.maxInFlight = %d, want 1", inner.maxInFlight)
	}
}

func TestThreadedRemoteApiStopAbandonsQueuedJobs(t *testing.T) {
	inner := &trackingRemoteApi{}
	threaded := NewThreadedRemoteApi(inner)
	threaded.Start()
	threaded.Stop()

	// After Stop, run must return promptly via the quit branch rather than
	// blocking forever trying to hand off to a dead worker.
	done := make(chan struct{})
	go func() {
		threaded.RateLimit(true)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RateLimit after Stop() blocked instead of returning")
	}
}
