package tweetabs_internal

import (
	"container/heap"
	"errors"
	"testing"
	"time"
)

func TestDelayHeapOrdersByDeadlineThenSeq(t *testing.T) {
	h := &delayHeap{}
	now := time.Now()
	heap.Push(h, &delayItem{deadline: now.Add(2 * time.Second), seq: 1, task: NewFuncTask("b", nil, nil)})
	heap.Push(h, &delayItem{deadline: now.Add(1 * time.Second), seq: 2, task: NewFuncTask("a", nil, nil)})
	heap.Push(h, &delayItem{deadline: now.Add(1 * time.Second), seq: 1, task: NewFuncTask("a-earlier", nil, nil)})

	first := heap.Pop(h).(*delayItem)
	if first.task.Id() != "a-earlier" {
		t.Errorf("first popped = %q, want %q (earlier deadline, lower seq)", first.task.Id(), "a-earlier")
	}
	second := heap.Pop(h).(*delayItem)
	if second.task.Id() != "a" {
		t.Errorf("second popped = %q, want %q", second.task.Id(), "a")
	}
	third := heap.Pop(h).(*delayItem)
	if third.task.Id() != "b" {
		t.Errorf("third popped = %q, want %q (latest deadline)", third.task.Id(), "b")
	}
}

func TestSchedulerTryAcquireAndRelease(t *testing.T) {
	s := &Scheduler{heldLocks: make(map[string]bool)}
	if !s.tryAcquire([]string{"a", "b"}) {
		t.Fatal("tryAcquire(a,b) on empty table: want true")
	}
	if s.tryAcquire([]string{"b", "c"}) {
		t.Fatal("tryAcquire(b,c) while b held: want false")
	}
	// A failed tryAcquire must not have partially grabbed "c".
	if s.heldLocks["c"] {
		t.Error("tryAcquire left a partial lock acquisition behind")
	}
	s.release([]string{"a", "b"})
	if s.heldLocks["a"] || s.heldLocks["b"] {
		t.Error("release did not free locks")
	}
}

func TestSchedulerRunsDelayedTaskThenDone(t *testing.T) {
	budget := NewRateBudget(nil)
	sched := NewScheduler(nil, budget, RealClock)
	sched.Start()
	defer sched.Quit()

	done := make(chan struct{})
	step := 0
	task := NewFuncTask("delayed", nil, func() Yield {
		step++
		if step == 1 {
			return After(10 * time.Millisecond)
		}
		close(done)
		return Done()
	})
	sched.AddTask(task)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("delayed task never completed its second step")
	}
}

func TestSchedulerLocksSerializeSharedResource(t *testing.T) {
	budget := NewRateBudget(nil)
	sched := NewScheduler(nil, budget, RealClock)
	sched.Start()
	defer sched.Quit()

	var order []string
	orderCh := make(chan string, 2)

	// "first" holds the lock across one delayed step before finishing, so
	// "second" (submitted at the same time) must wait for it regardless of
	// how much later it was scheduled.
	firstStep := 0
	first := NewFuncTask("first", []string{"shared"}, func() Yield {
		firstStep++
		if firstStep == 1 {
			return After(50 * time.Millisecond)
		}
		orderCh <- "first"
		return Done()
	})
	second := NewFuncTask("second", []string{"shared"}, func() Yield {
		orderCh <- "second"
		return Done()
	})

	sched.AddTask(first)
	sched.AddTask(second)

	for i := 0; i < 2; i++ {
		select {
		case v := <-orderCh:
			order = append(order, v)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for both tasks to report in")
		}
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("order = %v, want [first second] (lock serializes access)", order)
	}
}

func TestSchedulerErrorsSurfacedAndBlanked(t *testing.T) {
	cfg := &SchedulerConfig{ErrorBlankingDelay: 30 * time.Millisecond}
	sched := NewScheduler(cfg, NewRateBudget(nil), RealClock)
	sched.Start()
	defer sched.Quit()

	sched.AddTask(NewFuncTask("erroring", nil, func() Yield {
		return TaskErrorBackoff(errors.New("boom"), time.Hour)
	}))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(sched.Errors()) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if errs := sched.Errors(); len(errs) != 1 {
		t.Fatalf("Errors() = %v, want exactly one entry", errs)
	}

	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(sched.Errors()) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("error was never blanked out after ErrorBlankingDelay")
}
