// Strip value types: immutable content items with total ordering and
// hashing by key only.

package tweetabs_internal

import (
	"fmt"
	"sort"

	"github.com/huandu/go-clone"
)

// StripKind classifies a tab's content and gates which inputs may wire
// into it (§3, §4.5).
type StripKind int

const (
	StripTweet StripKind = iota
	StripUser
	StripOpaque
)

func (k StripKind) String() string {
	switch k {
	case StripTweet:
		return "Tweet"
	case StripUser:
		return "User"
	case StripOpaque:
		return "Opaque"
	default:
		return "Unknown"
	}
}

// StripKey is the tagged-variant identity of a strip: TweetId(uint64) |
// UserId(uint64) | OpaqueString(string). Equality and ordering of a Strip
// are entirely defined by its key.
type StripKey struct {
	kind   StripKind
	id     uint64
	opaque string
}

func TweetId(id uint64) StripKey  { return StripKey{kind: StripTweet, id: id} }
func UserId(id uint64) StripKey   { return StripKey{kind: StripUser, id: id} }
func OpaqueKey(s string) StripKey { return StripKey{kind: StripOpaque, opaque: s} }

func (k StripKey) Kind() StripKind { return k.kind }

// String renders the key the way IdOutput/IdInput persist it: one line per
// strip, round-tripping verbatim for opaque keys (§4.9, §6).
func (k StripKey) String() string {
	switch k.kind {
	case StripTweet, StripUser:
		return fmt.Sprintf("%d", k.id)
	default:
		return k.opaque
	}
}

// Less gives StripKey a total order, used to sort strips for persistence
// and for capacity trimming (§9.2).
func (k StripKey) Less(other StripKey) bool {
	if k.kind != other.kind {
		return k.kind < other.kind
	}
	switch k.kind {
	case StripTweet, StripUser:
		return k.id < other.id
	default:
		return k.opaque < other.opaque
	}
}

// TweetPayload is the tweet text/metadata snapshot carried by a Tweet
// strip.
type TweetPayload struct {
	ScreenName string
	Text       string
	CreatedAt  string
	Source     string
}

// UserProfile is the user snapshot carried by a User strip (§9.5).
type UserProfile struct {
	Id          uint64
	ScreenName  string
	Bio         string
	FollowerCnt int
}

// Strip is an immutable content item. Two strips with equal keys are equal
// for set purposes regardless of payload (§3).
type Strip struct {
	Key     StripKey
	Tweet   *TweetPayload
	User    *UserProfile
}

// NewTweetStrip deep-clones payload so the resulting Strip can never alias
// caller-owned mutable state, preserving immutability even when the
// RemoteApi implementation reuses buffers across calls.
func NewTweetStrip(id uint64, payload TweetPayload) Strip {
	cloned := clone.Clone(payload).(TweetPayload)
	return Strip{Key: TweetId(id), Tweet: &cloned}
}

func NewUserStrip(profile UserProfile) Strip {
	cloned := clone.Clone(profile).(UserProfile)
	return Strip{Key: UserId(profile.Id), User: &cloned}
}

func NewOpaqueStrip(s string) Strip {
	return Strip{Key: OpaqueKey(s)}
}

func (s Strip) String() string { return s.Key.String() }

// StripSet is a set of strips keyed by StripKey, the working representation
// for Tab.strips / preset_strips / added / deleted.
type StripSet map[StripKey]Strip

func NewStripSet(strips ...Strip) StripSet {
	set := make(StripSet, len(strips))
	for _, s := range strips {
		set[s.Key] = s
	}
	return set
}

func (set StripSet) Clone() StripSet {
	out := make(StripSet, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out
}

func (set StripSet) Has(k StripKey) bool {
	_, ok := set[k]
	return ok
}

func (set StripSet) Add(s Strip)         { set[s.Key] = s }
func (set StripSet) Discard(k StripKey)  { delete(set, k) }

// Union returns a new set containing every strip in either set.
func (set StripSet) Union(other StripSet) StripSet {
	out := set.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Intersect returns a new set containing only strips present in both.
func (set StripSet) Intersect(other StripSet) StripSet {
	out := make(StripSet)
	small, big := set, other
	if len(other) < len(set) {
		small, big = other, set
	}
	for k, v := range small {
		if big.Has(k) {
			out[k] = v
		}
	}
	return out
}

// Difference returns a new set containing strips in set but not in other.
func (set StripSet) Difference(other StripSet) StripSet {
	out := make(StripSet)
	for k, v := range set {
		if !other.Has(k) {
			out[k] = v
		}
	}
	return out
}

// Sorted returns the set's strips ordered by key, used for persistence and
// for capacity trimming.
func (set StripSet) Sorted() []Strip {
	out := make([]Strip, 0, len(set))
	for _, v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}
