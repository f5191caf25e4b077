package kernel

import (
	"strings"
	"time"
)

// MemberFlags holds the per-member status bits ("op/voice").
type MemberFlags struct {
	Op    bool
	Voice bool
}

// Channel is a named multicast group of clients. Invariant:
// membership is reciprocal — for every member c, c.Channels() contains this
// channel's handle, and vice versa. The kernel is the only thing that may
// break and restore that invariant, and only between suspension points.
type Channel struct {
	handle int

	Name    string
	Modes   string
	Created time.Time

	HasTopic bool
	Topic    string

	members map[int]MemberFlags
	bans    []string
}

// chanKey folds a channel name for case-insensitive lookup: names are
// case-insensitively unique, but Channel.Name keeps whatever case the
// channel was first created with for display.
func chanKey(name string) string {
	return strings.ToLower(name)
}

func newChannel(idx int, name string, now time.Time) *Channel {
	return &Channel{
		handle:  idx,
		Name:    name,
		Created: now,
		members: make(map[int]MemberFlags),
	}
}

// Handle returns this channel's stable chindex.
func (ch *Channel) Handle() int { return ch.handle }

// Members returns the membership set. Callers must not mutate it.
func (ch *Channel) Members() map[int]MemberFlags { return ch.members }

// Empty reports whether the channel currently has no members.
func (ch *Channel) Empty() bool { return len(ch.members) == 0 }

func (ch *Channel) addMember(clindex int) {
	if _, ok := ch.members[clindex]; !ok {
		ch.members[clindex] = MemberFlags{}
	}
}

func (ch *Channel) removeMember(clindex int) {
	delete(ch.members, clindex)
}

// Bans returns the channel's ban list.
func (ch *Channel) Bans() []string { return ch.bans }

func (ch *Channel) addBan(mask string) {
	ch.bans = append(ch.bans, mask)
}
