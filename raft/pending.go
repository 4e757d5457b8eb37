package raft

import "raftkv/transport"

// pendingWrite is one unacknowledged client put sitting in the leader's
// queue (spec.md §3: "pendingWrites | queue of unacknowledged client puts
// (msg + key)").
type pendingWrite struct {
	msg transport.Message
	key string
}

// PendingWrites is the leader's queue of puts awaiting commit, adapted from
// the disk-backed hint queue in replication/hinted_handoff.go into a
// purely in-memory structure; durability across restarts is out of scope
// here (spec.md §1).
type PendingWrites struct {
	items []pendingWrite
}

// NewPendingWrites returns an empty queue.
func NewPendingWrites() *PendingWrites {
	return &PendingWrites{}
}

// Enqueue appends a client put to the queue (spec.md §4.3 "enqueue the
// client message in pendingWrites").
func (p *PendingWrites) Enqueue(msg transport.Message, key string) {
	p.items = append(p.items, pendingWrite{msg: msg, key: key})
}

// DequeueMatching removes and returns every queued write whose key matches,
// in queue order. Per spec.md §4.5 and §9's Q2 note, ALL queued writes for
// a key are acked together the first time that key is applied, including
// ones whose own entry has not actually committed yet, if a later put for
// the same key commits first. That conflation is implemented literally
// here, not deduplicated by MID or validated against the committing index.
func (p *PendingWrites) DequeueMatching(key string) []transport.Message {
	var matched []transport.Message
	remaining := p.items[:0]
	for _, it := range p.items {
		if it.key == key {
			matched = append(matched, it.msg)
		} else {
			remaining = append(remaining, it)
		}
	}
	p.items = remaining
	return matched
}

// Len returns the number of writes still queued, for the admin surface.
func (p *PendingWrites) Len() int {
	return len(p.items)
}
