// Single-threaded cooperative scheduler for tab tasks.
//
// Scheduler Architecture
// ======================
//
//            +----------------+        +------------------+
//            |  Delay Heap    |        |  Rate-Paced Bag  |
//            +----------------+        +------------------+
//                    ^                          ^
//                    | After(d)                 | RatePaced
//                    v                          v
//            +------------------------------------------------+
//            |                  Loop goroutine                  |
//            |   (the only goroutine that ever calls a task's    |
//            |    Step; advances are strictly serialised)        |
//            +------------------------------------------------+
//                    ^
//          AddTask() | (channel)
//                    |
//            +------------------------------------------------+
//            |            Lock table + FIFO wait queue           |
//            +------------------------------------------------+
//
// A task suspends only at a Yield (task.go). Between yields all mutation of
// tab strip sets, the outputs relation and the registry is implicitly
// serialised, because while the loop runs they are only ever touched from
// inside a task's Step, which only ever runs on the loop goroutine; the
// runner builds the tab graph before Start and closes it after Quit.

package tweetabs_internal

import (
	"container/heap"
	"math/rand"
	"time"
)

var schedulerLog = NewCompLogger("scheduler")

// SchedulerConfig configures the scheduler (§6 Configuration).
type SchedulerConfig struct {
	ErrorBlankingDelay time.Duration `yaml:"error_blanking_delay"`
}

const SCHEDULER_ERROR_BLANKING_DELAY_DEFAULT = 4 * time.Second

func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{ErrorBlankingDelay: SCHEDULER_ERROR_BLANKING_DELAY_DEFAULT}
}

type SchedulerState int

const (
	SchedulerStateCreated SchedulerState = iota
	SchedulerStateRunning
	SchedulerStateStopped
)

var schedulerStateName = map[SchedulerState]string{
	SchedulerStateCreated: "Created",
	SchedulerStateRunning: "Running",
	SchedulerStateStopped: "Stopped",
}

func (s SchedulerState) String() string { return schedulerStateName[s] }

// delayItem is one entry of the delay min-heap: (deadline, task), ties
// broken by insertion sequence so that equal deadlines preserve launch
// order (ordering guarantee (a) in §4.3).
type delayItem struct {
	deadline time.Time
	seq      uint64
	task     Task
}

type delayHeap []*delayItem

func (h delayHeap) Len() int { return len(h) }
func (h delayHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}
func (h delayHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *delayHeap) Push(x any)   { *h = append(*h, x.(*delayItem)) }
func (h *delayHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// waiter is a task parked in the lock table's FIFO wait queue.
type waiter struct {
	task  Task
	locks []string
}

// Scheduler is the process-wide cooperative scheduler singleton. AddTask
// and Errors are safe to call from any goroutine: submissions are handed to
// the loop goroutine over a channel, which is the only place task state is
// ever mutated.
type Scheduler struct {
	clock  Clock
	budget *RateBudget
	rng    *rand.Rand

	// Delay queue:
	delay    delayHeap
	delaySeq uint64

	// Rate-paced queue (bag, drained by uniform-random pick):
	ratePaced []Task

	// Lock table:
	heldLocks map[string]bool
	waitQ     []*waiter

	// Error channel:
	errorBlankingDelay time.Duration
	errors             []string

	state chan SchedulerState // 1-buffered "mailbox": always holds the latest state

	newTaskCh  chan Task
	errorReqCh chan chan []string
	quitCh     chan struct{}
	doneCh     chan struct{}
}

func NewScheduler(cfg *SchedulerConfig, budget *RateBudget, clock Clock) *Scheduler {
	if cfg == nil {
		cfg = DefaultSchedulerConfig()
	}
	if clock == nil {
		clock = RealClock
	}
	s := &Scheduler{
		clock:              clock,
		budget:             budget,
		rng:                rand.New(rand.NewSource(time.Now().UnixNano())),
		heldLocks:          make(map[string]bool),
		errorBlankingDelay: cfg.ErrorBlankingDelay,
		state:              make(chan SchedulerState, 1),
		newTaskCh:          make(chan Task, 64),
		errorReqCh:         make(chan chan []string),
		quitCh:             make(chan struct{}),
		doneCh:             make(chan struct{}),
	}
	s.state <- SchedulerStateCreated
	return s
}

// SetRand overrides the rate-paced queue's RNG; tests must inject a seeded
// source to make random picks deterministic (§9 Design Notes).
func (s *Scheduler) SetRand(r *rand.Rand) { s.rng = r }

func (s *Scheduler) setState(v SchedulerState) {
	<-s.state
	s.state <- v
}

func (s *Scheduler) State() SchedulerState {
	v := <-s.state
	s.state <- v
	return v
}

// Start launches the loop goroutine.
func (s *Scheduler) Start() {
	if s.State() != SchedulerStateCreated {
		return
	}
	s.setState(SchedulerStateRunning)
	schedulerLog.Info("start scheduler")
	go s.loop()
}

// AddTask submits a new task for scheduling. Its locks are acquired
// all-or-nothing at launch; if unavailable the task is parked in the FIFO
// wait queue.
func (s *Scheduler) AddTask(t Task) {
	select {
	case s.newTaskCh <- t:
	case <-s.doneCh:
		schedulerLog.Warnf("AddTask(%s): scheduler already stopped", t.Id())
	}
}

// Quit drains the pending queues, force-releases locks and stops the loop.
// No further timers are armed once Quit returns.
func (s *Scheduler) Quit() {
	if s.State() == SchedulerStateStopped {
		return
	}
	s.setState(SchedulerStateStopped)
	close(s.quitCh)
	<-s.doneCh
}

// Errors returns a snapshot of the diagnostic error FIFO, oldest first.
func (s *Scheduler) Errors() []string {
	reply := make(chan []string, 1)
	select {
	case s.errorReqCh <- reply:
		return <-reply
	case <-s.doneCh:
		return nil
	}
}

// loop is the sole goroutine that ever advances a task.
func (s *Scheduler) loop() {
	defer close(s.doneCh)

	delayTimer := time.NewTimer(time.Hour)
	stopTimer(delayTimer)
	delayActive := false

	rateTimer := time.NewTimer(time.Hour)
	stopTimer(rateTimer)
	rateActive := false

	errTimer := time.NewTimer(time.Hour)
	stopTimer(errTimer)
	errActive := false

	defer delayTimer.Stop()
	defer rateTimer.Stop()
	defer errTimer.Stop()

	for {
		if !delayActive && len(s.delay) > 0 {
			d := time.Until(s.delay[0].deadline)
			if d < 0 {
				d = 0
			}
			delayTimer.Reset(d)
			delayActive = true
		}
		if !rateActive && len(s.ratePaced) > 0 && s.budget != nil {
			rateTimer.Reset(s.budget.RateDelta())
			rateActive = true
		}
		if !errActive && len(s.errors) > 0 {
			errTimer.Reset(s.errorBlankingDelay)
			errActive = true
		}

		select {
		case <-s.quitCh:
			s.drain()
			return

		case t := <-s.newTaskCh:
			s.launch(t)
			delayActive = rearmIfHeadChanged(delayTimer, delayActive)
			if len(s.ratePaced) > 0 {
				rateActive = false
			}

		case reply := <-s.errorReqCh:
			out := make([]string, len(s.errors))
			copy(out, s.errors)
			reply <- out

		case <-delayTimer.C:
			delayActive = false
			s.popDueDelays()

		case <-rateTimer.C:
			rateActive = false
			s.releaseOneRatePaced()

		case <-errTimer.C:
			errActive = false
			if len(s.errors) > 0 {
				s.errors = s.errors[1:]
			}
		}
	}
}

// rearmIfHeadChanged always forces a re-arm on the next loop iteration; a
// newly-delayed task may have an earlier deadline than whatever the timer
// is currently counting down to.
func rearmIfHeadChanged(timer *time.Timer, active bool) bool {
	if active {
		stopTimer(timer)
	}
	return false
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// launch attempts to acquire a newly-submitted task's locks; on success it
// advances it immediately, otherwise it parks it in the wait queue.
func (s *Scheduler) launch(t Task) {
	locks := t.Locks()
	if s.tryAcquire(locks) {
		s.advance(t)
	} else {
		s.waitQ = append(s.waitQ, &waiter{task: t, locks: locks})
	}
}

func (s *Scheduler) tryAcquire(locks []string) bool {
	for _, l := range locks {
		if s.heldLocks[l] {
			return false
		}
	}
	for _, l := range locks {
		s.heldLocks[l] = true
	}
	return true
}

// release frees locks, then scans the wait queue in order and releases the
// first waiter whose full lock set is now available (§4.3 (3)). Only one
// waiter is released per call; further releases cascade from that waiter's
// own eventual Done.
func (s *Scheduler) release(locks []string) {
	for _, l := range locks {
		delete(s.heldLocks, l)
	}
	for i, w := range s.waitQ {
		if s.tryAcquire(w.locks) {
			s.waitQ = append(s.waitQ[:i:i], s.waitQ[i+1:]...)
			s.advance(w.task)
			return
		}
	}
}

// advance reads one yield from task and dispatches accordingly, looping
// in-process for RunSoon so a chain of immediate re-enqueues does not each
// need a trip through the select loop.
func (s *Scheduler) advance(t Task) {
	for {
		y := t.Step()
		switch y.Kind {
		case YieldDone:
			s.release(t.Locks())
			return
		case YieldRunSoon:
			continue
		case YieldAfter:
			s.scheduleAfter(t, y.Delay)
			return
		case YieldRatePaced:
			s.ratePaced = append(s.ratePaced, t)
			return
		case YieldError:
			if y.Err != nil {
				s.pushError(y.Err.Error())
			}
			s.scheduleAfter(t, y.Delay)
			return
		}
	}
}

func (s *Scheduler) scheduleAfter(t Task, d time.Duration) {
	s.delaySeq++
	heap.Push(&s.delay, &delayItem{deadline: s.clock.Now().Add(d), seq: s.delaySeq, task: t})
}

func (s *Scheduler) pushError(msg string) {
	s.errors = append(s.errors, msg)
}

// popDueDelays pops every delay-heap entry whose deadline has passed, in
// dequeue order, and advances each.
func (s *Scheduler) popDueDelays() {
	now := s.clock.Now()
	for len(s.delay) > 0 && !s.delay[0].deadline.After(now) {
		item := heap.Pop(&s.delay).(*delayItem)
		s.advance(item.task)
	}
}

// releaseOneRatePaced picks one rate-paced task uniformly at random,
// advances it and debits the rate budget.
func (s *Scheduler) releaseOneRatePaced() {
	if len(s.ratePaced) == 0 {
		return
	}
	pick := s.rng.Intn(len(s.ratePaced))
	t := s.ratePaced[pick]
	s.ratePaced = append(s.ratePaced[:pick:pick], s.ratePaced[pick+1:]...)
	if s.budget != nil {
		s.budget.DecrementAuth()
	}
	s.advance(t)
}

// drain empties the delay heap and rate-paced bag and force-releases all
// locks, per Quit's contract; parked waiters are simply dropped since no
// task will ever run again.
func (s *Scheduler) drain() {
	s.delay = nil
	s.ratePaced = nil
	s.waitQ = nil
	s.heldLocks = make(map[string]bool)
	schedulerLog.Info("scheduler drained")
}
