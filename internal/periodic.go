// Periodic tabs: reload on a fixed cadence from the remote API, capacity
// trimmed, rate-paced before each attempt after the first (§4.10, §9.1,
// §9.2, §9.6).

package tweetabs_internal

import "time"

const (
	PERIODIC_DEFAULT_CAPACITY    = 200
	PERIODIC_ERROR_RETRY_DELAY   = 20 * time.Second
	RATE_PROBE_INTERVAL          = 2 * time.Minute
	RATE_PROBE_ERROR_RETRY_DELAY = 20 * time.Second
)

// periodicReloadPhase tracks where a Periodic tab's reload task is between
// Step calls, mirroring the original's three-state generator: call reload,
// wait out the fixed period, then wait for a rate-paced turn before
// calling reload again.
type periodicReloadPhase int

const (
	phaseReload periodicReloadPhase = iota
	phaseAwaitPeriod
	phaseAwaitRatePace
)

// newReloadTask builds the reload task for a Periodic tab. fetch performs
// one blocking remote call and returns the strips it found; the task folds
// those into the tab's preset strips and Refreshes on success, or backs off
// and retries on failure. period is the wait between a successful reload
// and the next attempt.
func newReloadTask(t *Tab, caller *RemoteApiCaller, op string, fetch func() ([]Strip, error), period time.Duration) Task {
	phase := phaseReload
	var step func() Yield
	step = func() Yield {
		switch phase {
		case phaseReload:
			var fetched []Strip
			err := caller.call(op, func() error {
				strips, e := fetch()
				if e != nil {
					return e
				}
				fetched = strips
				return nil
			})
			if err != nil {
				return TaskErrorBackoff(err, PERIODIC_ERROR_RETRY_DELAY)
			}
			for _, s := range fetched {
				t.presetStrips.Add(s)
			}
			t.Refresh()
			phase = phaseAwaitPeriod
			return After(period)
		case phaseAwaitPeriod:
			phase = phaseAwaitRatePace
			return RatePaced()
		default:
			phase = phaseReload
			return RunSoon()
		}
	}
	return NewFuncTask(t.Id()+":reload", []string{t.Id()}, step)
}

// newPeriodic builds the common Periodic plumbing: a Preset-rule tab with
// a capacity and a reload task already submitted to the scheduler.
func newPeriodic(reg *Registry, sched *Scheduler, name string, stripType StripKind, capacity int, caller *RemoteApiCaller, op string, fetch func() ([]Strip, error), period time.Duration) *Tab {
	t := newTab(reg, KindPeriodic, presetRule{})
	t.stripType = stripType
	t.stripTypeSet = true
	t.capacity = capacity
	t.SetName(name)
	t.Refresh()
	sched.AddTask(newReloadTask(t, caller, op, fetch, period))
	return t
}

// The eight concrete periodic tabs (§9.1). Periods and capacities are
// fixed; only PublicTimeline through UserTimeline hold tweets, Followers
// and Following hold users and are never capacity-trimmed.

func NewPublicTimeline(reg *Registry, sched *Scheduler, caller *RemoteApiCaller) *Tab {
	return newPeriodic(reg, sched, "Public", StripTweet, PERIODIC_DEFAULT_CAPACITY, caller,
		"public_timeline", func() ([]Strip, error) { return caller.Api.Timeline(TimelinePublic) },
		120*time.Second)
}

func NewFriendsTimeline(reg *Registry, sched *Scheduler, caller *RemoteApiCaller) *Tab {
	return newPeriodic(reg, sched, "Friends", StripTweet, PERIODIC_DEFAULT_CAPACITY, caller,
		"friends_timeline", func() ([]Strip, error) { return caller.Api.Timeline(TimelineFriends) },
		600*time.Second)
}

func NewRepliesTimeline(reg *Registry, sched *Scheduler, caller *RemoteApiCaller) *Tab {
	return newPeriodic(reg, sched, "Replies", StripTweet, PERIODIC_DEFAULT_CAPACITY, caller,
		"replies_timeline", func() ([]Strip, error) { return caller.Api.Timeline(TimelineReplies) },
		120*time.Second)
}

func NewDirectTimeline(reg *Registry, sched *Scheduler, caller *RemoteApiCaller) *Tab {
	return newPeriodic(reg, sched, "Direct", StripTweet, PERIODIC_DEFAULT_CAPACITY, caller,
		"direct_timeline", func() ([]Strip, error) { return caller.Api.Timeline(TimelineDirect) },
		180*time.Second)
}

func NewDirectSentTimeline(reg *Registry, sched *Scheduler, caller *RemoteApiCaller) *Tab {
	return newPeriodic(reg, sched, "DSent", StripTweet, PERIODIC_DEFAULT_CAPACITY, caller,
		"direct_sent_timeline", func() ([]Strip, error) { return caller.Api.Timeline(TimelineDirectSent) },
		3600*time.Second)
}

func NewUserTimeline(reg *Registry, sched *Scheduler, caller *RemoteApiCaller, accountName string) *Tab {
	name := accountName
	if name == "" {
		name = "User"
	}
	return newPeriodic(reg, sched, name, StripTweet, PERIODIC_DEFAULT_CAPACITY, caller,
		"user_timeline", func() ([]Strip, error) { return caller.Api.Timeline(TimelineUser) },
		240*time.Second)
}

// NewFollowers and NewFollowing hold User strips and are never trimmed
// (capacity 0), since the whole point is to keep the complete set.

func NewFollowers(reg *Registry, sched *Scheduler, caller *RemoteApiCaller) *Tab {
	return newPeriodic(reg, sched, "…ers", StripUser, 0, caller,
		"followers", func() ([]Strip, error) { return fetchUsers(caller.Api.FollowersIds) },
		3600*time.Second)
}

func NewFollowing(reg *Registry, sched *Scheduler, caller *RemoteApiCaller) *Tab {
	return newPeriodic(reg, sched, "…ing", StripUser, 0, caller,
		"following", func() ([]Strip, error) { return fetchUsers(caller.Api.FollowingIds) },
		3600*time.Second)
}

// fetchUsers turns a list of bare ids into id-only User strips; the
// original only ever carried numeric ids for Followers/Following, not full
// profiles (profiles are fetched lazily, on demand, via UserShow instead;
// see FetchUserProfile).
func fetchUsers(idsFn func() ([]uint64, error)) ([]Strip, error) {
	ids, err := idsFn()
	if err != nil {
		return nil, err
	}
	out := make([]Strip, len(ids))
	for i, id := range ids {
		out[i] = Strip{Key: UserId(id)}
	}
	return out, nil
}

// FetchUserProfile is the one-shot RPC behind a user-facing "show profile"
// action (§9.5): a decorated call that returns a User strip carrying the
// full profile, not merely the id.
func FetchUserProfile(caller *RemoteApiCaller, screenName string) (Strip, error) {
	var profile UserProfile
	err := caller.call("fetch_user", func() error {
		p, e := caller.Api.UserShow(screenName)
		if e != nil {
			return e
		}
		profile = p
		return nil
	})
	if err != nil {
		return Strip{}, err
	}
	return NewUserStrip(profile), nil
}

// SendMessage is the one-shot RPC behind a user-facing "direct message"
// action (§9.4): a decorated call with no result strip.
func SendMessage(caller *RemoteApiCaller, text string) error {
	return caller.call("send_message", func() error {
		return caller.Api.SendMessage(text)
	})
}

// NewRateProbeTask builds the task that keeps the shared RateBudget
// honest: it periodically calls rate_limit for both the authenticated and
// the IP-keyed quota and writes the results straight into budget, instead
// of relying purely on the decrement-per-release heuristic (§9.6).
func NewRateProbeTask(caller *RemoteApiCaller, budget *RateBudget) Task {
	var step func() Yield
	step = func() Yield {
		var auth, ip int
		err := caller.call("rate_limit", func() error {
			var e error
			auth, e = caller.Api.RateLimit(true)
			if e != nil {
				return e
			}
			ip, e = caller.Api.RateLimit(false)
			return e
		})
		if err != nil {
			return TaskErrorBackoff(err, RATE_PROBE_ERROR_RETRY_DELAY)
		}
		budget.SetAuthRemaining(auth)
		budget.SetIpRemaining(ip)
		return After(RATE_PROBE_INTERVAL)
	}
	return NewFuncTask("rate_probe", nil, step)
}
