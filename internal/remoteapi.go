// RemoteApi is the rate-limited remote service every periodic and
// interactive task ultimately calls through (§6 Interfaces). Decorated
// calls route through RemoteApiCaller so every call gets the same
// busy/error bookkeeping regardless of which task made it (§4.11).

package tweetabs_internal

import "fmt"

// RemoteApi is implemented by the production client and by test doubles.
// Every method is expected to block for the duration of one network
// round-trip; pacing calls against the remote service's own limits is the
// scheduler's job, not the implementation's.
type RemoteApi interface {
	// RateLimit reports the remaining call budget: authenticated calls and
	// unauthenticated (IP-keyed) calls are tracked separately.
	RateLimit(authenticated bool) (remaining int, err error)
	FollowersIds() ([]uint64, error)
	FollowingIds() ([]uint64, error)
	UserShow(screenName string) (UserProfile, error)
	Timeline(kind TimelineKind) ([]Strip, error)
	SendMessage(text string) error
}

// TimelineKind selects which of the account's timelines a Timeline call
// fetches (§9.1).
type TimelineKind int

const (
	TimelinePublic TimelineKind = iota
	TimelineFriends
	TimelineReplies
	TimelineDirect
	TimelineDirectSent
	TimelineUser
)

var timelineKindName = map[TimelineKind]string{
	TimelinePublic:     "public",
	TimelineFriends:    "friends",
	TimelineReplies:    "replies",
	TimelineDirect:     "direct",
	TimelineDirectSent: "direct_sent",
	TimelineUser:       "user",
}

func (k TimelineKind) String() string { return timelineKindName[k] }

// RemoteApiCaller wraps a RemoteApi so every call through it reports a busy
// message before the call and clears it after, and turns any error into a
// RemoteError that is both handed back to the caller and pushed to the
// view sink (§4.11). It is shared by every periodic/interactive task
// talking to the same RemoteApi.
type RemoteApiCaller struct {
	Api  RemoteApi
	sink ViewSink
}

func NewRemoteApiCaller(api RemoteApi, sink ViewSink) *RemoteApiCaller {
	if sink == nil {
		sink = NullViewSink{}
	}
	return &RemoteApiCaller{Api: api, sink: sink}
}

// call runs fn under the busy-message bracket described above; op names the
// operation for the busy message and for the wrapped RemoteError.
func (c *RemoteApiCaller) call(op string, fn func() error) error {
	c.sink.Message(fmt.Sprintf("%s…", op))
	err := fn()
	c.sink.Message("")
	if err != nil {
		wrapped := NewRemoteError(op, err)
		c.sink.Error(wrapped)
		return wrapped
	}
	return nil
}
