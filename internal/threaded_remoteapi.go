// ThreadedRemoteApi routes every call through one dedicated background
// goroutine draining a work queue (§9.7), the Go analogue of the
// original's Threaded_Manager: every remote call runs on the same
// goroutine regardless of which scheduler task issued it, so a RemoteApi
// implementation that keeps per-connection state (an auth token approaching
// rotation, a single underlying TCP connection) never has to be
// goroutine-safe. Calls still block the caller until the worker replies,
// so from a scheduler task's point of view a ThreadedRemoteApi and a bare
// RemoteApi are indistinguishable.

package tweetabs_internal

type threadedJob struct {
	run   func()
	doneC chan struct{}
}

// ThreadedRemoteApi wraps a RemoteApi so that every call is executed on a
// single worker goroutine, started by Start and stopped by Stop.
type ThreadedRemoteApi struct {
	inner RemoteApi
	jobs  chan threadedJob
	quit  chan struct{}
}

func NewThreadedRemoteApi(inner RemoteApi) *ThreadedRemoteApi {
	return &ThreadedRemoteApi{
		inner: inner,
		jobs:  make(chan threadedJob),
		quit:  make(chan struct{}),
	}
}

// Start launches the worker goroutine; must be called before any RemoteApi
// method.
func (a *ThreadedRemoteApi) Start() {
	go a.worker()
}

// Stop stops the worker without waiting for it. Queued jobs that have not
// yet been picked up are abandoned.
func (a *ThreadedRemoteApi) Stop() {
	close(a.quit)
}

func (a *ThreadedRemoteApi) worker() {
	for {
		select {
		case job := <-a.jobs:
			job.run()
			close(job.doneC)
		case <-a.quit:
			return
		}
	}
}

// run submits fn to the worker and blocks until it completes.
func (a *ThreadedRemoteApi) run(fn func()) {
	job := threadedJob{run: fn, doneC: make(chan struct{})}
	select {
	case a.jobs <- job:
		<-job.doneC
	case <-a.quit:
	}
}

func (a *ThreadedRemoteApi) RateLimit(authenticated bool) (int, error) {
	var remaining int
	var err error
	a.run(func() { remaining, err = a.inner.RateLimit(authenticated) })
	return remaining, err
}

func (a *ThreadedRemoteApi) FollowersIds() ([]uint64, error) {
	var ids []uint64
	var err error
	a.run(func() { ids, err = a.inner.FollowersIds() })
	return ids, err
}

func (a *ThreadedRemoteApi) FollowingIds() ([]uint64, error) {
	var ids []uint64
	var err error
	a.run(func() { ids, err = a.inner.FollowingIds() })
	return ids, err
}

func (a *ThreadedRemoteApi) UserShow(screenName string) (UserProfile, error) {
	var profile UserProfile
	var err error
	a.run(func() { profile, err = a.inner.UserShow(screenName) })
	return profile, err
}

func (a *ThreadedRemoteApi) Timeline(kind TimelineKind) ([]Strip, error) {
	var strips []Strip
	var err error
	a.run(func() { strips, err = a.inner.Timeline(kind) })
	return strips, err
}

func (a *ThreadedRemoteApi) SendMessage(text string) error {
	var err error
	a.run(func() { err = a.inner.SendMessage(text) })
	return err
}
