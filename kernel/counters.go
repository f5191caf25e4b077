package kernel

import "sync/atomic"

// Counters holds the observable counters. They are
// plain atomics rather than lock-protected fields because they are read
// from the metrics Collector's goroutine concurrently with the event
// loop's writes — the one place this package allows concurrent access,
// since an atomic increment is not a table mutation.
type Counters struct {
	totalConns int64
	totalUsers int64
	localUsers int64
	maxUsers   int64
	channels   int64
}

func (c *Counters) incConns()  { atomic.AddInt64(&c.totalConns, 1) }
func (c *Counters) incChans()  { atomic.AddInt64(&c.channels, 1) }
func (c *Counters) decChans()  { atomic.AddInt64(&c.channels, -1) }

// addLocalUser adjusts both STAT_TOTAL_USERS and STAT_LOCAL_USERS for a
// client registered on this server, and updates the max-users high-water
// mark.
func (c *Counters) addLocalUser(delta int64) {
	total := atomic.AddInt64(&c.totalUsers, delta)
	atomic.AddInt64(&c.localUsers, delta)
	c.bumpMax(delta, total)
}

// addRemoteUser adjusts only STAT_TOTAL_USERS, for a client introduced by
// netburst or peer relay — it is not local, so STAT_LOCAL_USERS must not
// move, preserving the invariant LOCAL_USERS <= TOTAL_USERS <= MAX_USERS.
func (c *Counters) addRemoteUser(delta int64) {
	total := atomic.AddInt64(&c.totalUsers, delta)
	c.bumpMax(delta, total)
}

func (c *Counters) bumpMax(delta, total int64) {
	if delta <= 0 {
		return
	}
	for {
		max := atomic.LoadInt64(&c.maxUsers)
		if total <= max {
			break
		}
		if atomic.CompareAndSwapInt64(&c.maxUsers, max, total) {
			break
		}
	}
}

func (c *Counters) TotalConns() int64 { return atomic.LoadInt64(&c.totalConns) }
func (c *Counters) TotalUsers() int64 { return atomic.LoadInt64(&c.totalUsers) }
func (c *Counters) LocalUsers() int64 { return atomic.LoadInt64(&c.localUsers) }
func (c *Counters) MaxUsers() int64   { return atomic.LoadInt64(&c.maxUsers) }
func (c *Counters) Channels() int64   { return atomic.LoadInt64(&c.channels) }
