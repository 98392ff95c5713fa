// Monotonic time source for the scheduler.

package tweetabs_internal

import "time"

// Clock abstracts time.Now()/time.AfterFunc(). The scheduler reads the
// current time through Now only; it arms its wake-up timers with the
// standard library directly, not through After/Cancel, so a fake clock
// does not control when it wakes. Tabs and tasks never touch it directly.
type Clock interface {
	Now() time.Time
	After(d time.Duration, callback func()) TimerToken
	Cancel(token TimerToken)
}

// TimerToken identifies a registered one-shot timer so it can be cancelled.
type TimerToken interface {
	Stop() bool
}

// realClock is the production Clock, backed by the standard library.
type realClock struct{}

var RealClock Clock = realClock{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) After(d time.Duration, callback func()) TimerToken {
	return time.AfterFunc(d, callback)
}

func (realClock) Cancel(token TimerToken) {
	if token != nil {
		token.Stop()
	}
}
