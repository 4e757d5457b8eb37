package raft

// QuorumTracker counts, per key, how many replicas are known to hold the
// latest log entry written for that key. It is the leader-only
// quorumCount[key] field of spec.md §3, pulled out into its own type the
// way replication/replicator.go in the teacher repo separated quorum
// bookkeeping from the transport-facing replicator.
//
// Q1 (spec.md §9): handle_success only increments a key's count when the
// key is still present in the tracker. If a key is overwritten by a later
// put before the earlier one commits, Start below resets the key's count to
// 1, so the earlier put's progress toward quorum is silently lost; once an
// entry for the key is applied, Forget drops the key and later increments
// for it are no-ops. This is
// implemented literally, not fixed: the spec asks that this be flagged,
// not silently corrected.
type QuorumTracker struct {
	counts map[string]int
}

// NewQuorumTracker returns an empty tracker.
func NewQuorumTracker() *QuorumTracker {
	return &QuorumTracker{counts: make(map[string]int)}
}

// Start begins tracking key at count 1 (the leader's own copy), replacing
// any count already tracked for that key. Called when the leader accepts a
// put (spec.md §4.3 "set quorumCount[key] ← 1 (self)").
func (q *QuorumTracker) Start(key string) {
	q.counts[key] = 1
}

// Increment bumps key's count by one if and only if key is currently
// tracked. Returns the new count and whether the key was tracked at all;
// per Q1 above, a key that was overwritten and re-Started no longer
// corresponds to the stale entry that called Increment, but the tracker
// has no way to distinguish that from the caller's point of view.
func (q *QuorumTracker) Increment(key string) (count int, tracked bool) {
	c, ok := q.counts[key]
	if !ok {
		return 0, false
	}
	c++
	q.counts[key] = c
	return c, true
}

// Count returns the current count for key, or 0 if untracked.
func (q *QuorumTracker) Count(key string) int {
	return q.counts[key]
}

// Forget stops tracking key, e.g. once it has advanced commitIndex.
func (q *QuorumTracker) Forget(key string) {
	delete(q.counts, key)
}
