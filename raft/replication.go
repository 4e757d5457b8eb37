package raft

import "raftkv/transport"

// acceptPut implements spec.md §4.3's "Put acceptance": the leader appends
// the binding to its own log, queues the client message until commit, and
// starts tracking quorum progress for the key.
func (n *Node) acceptPut(msg transport.Message) {
	n.entries = append(n.entries, LogEntry{Key: msg.Key, Value: msg.Value, Term: n.currentTerm})
	n.pending.Enqueue(msg, msg.Key)
	n.quorum.Start(msg.Key)
	n.metrics.putsAccepted.Inc()

	n.send(n.buildReplicationAE())
}

// buildReplicationAE constructs the AE a leader broadcasts right after
// accepting a put, following the three log-length branches of spec.md
// §4.3's "AE payload shape" table.
func (n *Node) buildReplicationAE() transport.Message {
	msg := transport.Envelope(n.id, transport.Broadcast, n.knownLeader, transport.TypeAppendEntries)
	msg.Term = n.currentTerm
	msg.LeaderCommit = n.commitIndex

	switch {
	case len(n.entries) == 0:
		msg.Entries = nil
		msg.PrevLogIndex = -1
		msg.PrevLogTerm = 1
		msg.EntireLog = false
	case len(n.entries) == 1:
		msg.PrevLogIndex = 0
		msg.PrevLogTerm = n.entries[0].Term
		msg.Entries = toWireEntries(n.entries[0:])
	default:
		p := len(n.entries) - 2
		msg.PrevLogIndex = p
		msg.PrevLogTerm = n.entries[p].Term
		msg.Entries = toWireEntries(n.entries[p:])
	}
	return msg
}

// sendHeartbeat broadcasts the fixed-shape empty AE of spec.md §4.3's
// heartbeat cadence.
func (n *Node) sendHeartbeat() {
	msg := transport.Envelope(n.id, transport.Broadcast, n.knownLeader, transport.TypeAppendEntries)
	msg.Term = n.currentTerm
	msg.Entries = nil
	msg.PrevLogIndex = n.lastLogIndex()
	msg.PrevLogTerm = n.lastLogTerm()
	msg.LeaderCommit = n.commitIndex

	n.logHeartbeatSent()
	n.send(msg)
}

// handleAppendReply implements spec.md §4.3's "Reply handling". A stale
// reply from a previous term bumps our term and steps us down if it's
// higher; replies arriving while we are not the leader are a role
// violation and dropped silently (spec.md §7).
func (n *Node) handleAppendReply(msg transport.Message) {
	if msg.Term > n.currentTerm {
		n.stepDown(msg.Term)
		return
	}
	if n.role != Leader {
		return
	}

	if msg.Success {
		n.handleReplicationSuccess(msg)
	} else {
		n.handleReplicationFailure(msg)
	}
}

// handleReplicationSuccess implements the success=true branch of spec.md
// §4.3's "Reply handling", including the Q1 quorum-counting bug (§9): a
// key's count only advances while that key is still tracked by
// n.quorum, so a key overwritten by a later put before commit can have
// its earlier count silently stop progressing. This is preserved
// literally rather than fixed.
func (n *Node) handleReplicationSuccess(msg transport.Message) {
	n.matchIndex[msg.Src] = msg.MatchIndex

	for idx := n.lastApplied + 1; idx <= msg.MatchIndex && idx < len(n.entries); idx++ {
		key := n.entries[idx].Key
		count, tracked := n.quorum.Increment(key)
		if tracked && count >= n.majority() {
			n.commitIndex = idx
		}
	}

	n.applyCommitted()
}

// handleReplicationFailure implements the success=false branch: construct
// a backfill AE carrying the follower's whole missing suffix, flagged
// with entireLog so an empty-log follower may adopt it wholesale
// (spec.md §4.3 "Design note on entireLog").
func (n *Node) handleReplicationFailure(msg transport.Message) {
	idx := msg.MatchIndex
	if idx < 0 {
		idx = 0
	}
	if idx >= len(n.entries) {
		return // nothing yet to backfill
	}

	reply := transport.Envelope(n.id, msg.Src, n.knownLeader, transport.TypeAppendEntries)
	reply.Term = n.currentTerm
	reply.PrevLogIndex = idx
	reply.PrevLogTerm = n.entries[idx].Term
	reply.Entries = toWireEntries(n.entries[idx:])
	reply.EntireLog = true
	reply.LeaderCommit = n.commitIndex
	n.send(reply)
}

// applyCommitted implements spec.md §4.6: entries are applied to kv in
// strict index order, each exactly once, and any pending client puts on
// that key are acked. Per Q2 (§9), EVERY queued write for a key is acked
// on the key's first apply, including ones whose own entry may not have
// committed yet. This conflation is kept literal, not deduplicated.
func (n *Node) applyCommitted() {
	if n.commitIndex <= n.lastApplied {
		return
	}
	n.logCommit(n.commitIndex, n.currentTerm)

	for idx := n.lastApplied + 1; idx <= n.commitIndex; idx++ {
		entry := n.entries[idx]
		n.kv.Apply(entry.Key, entry.Value)
		n.logApply(idx, entry.Key)
		n.quorum.Forget(entry.Key)

		for _, client := range n.pending.DequeueMatching(entry.Key) {
			n.send(n.ackReply(client))
		}
	}
	n.lastApplied = n.commitIndex
}

func (n *Node) ackReply(client transport.Message) transport.Message {
	reply := transport.Envelope(n.id, client.Src, n.knownLeader, transport.TypeOk)
	reply.MID = client.MID
	return reply
}

// handleAppendEntries implements spec.md §4.4: "On AE receipt". The
// election timer is reset unconditionally, matching the spec's literal
// wording, before branching on whether the payload is a heartbeat or a
// reconciliation.
func (n *Node) handleAppendEntries(msg transport.Message) {
	n.resetElectionDeadline()

	if len(msg.Entries) == 0 {
		n.handleHeartbeat(msg)
		return
	}

	n.handleReconciliation(msg)
}

// handleHeartbeat implements the empty-entries branch of spec.md §4.4: a
// current-or-newer-term heartbeat is adopted (no reply is sent, matching
// the spec).
func (n *Node) handleHeartbeat(msg transport.Message) {
	if msg.Term < n.currentTerm {
		return
	}
	old := n.role
	n.currentTerm = msg.Term
	n.role = Follower
	n.votedFor = ""
	n.votesReceived = nil
	n.knownLeader = msg.Leader
	n.inElection = false

	if old != Follower {
		n.logStateChange(old, Follower)
	}
}

// handleReconciliation implements spec.md §4.4's numbered reconciliation
// algorithm exactly, including the already-safe boundary check noted as
// Q3 (§9): branch 2 below rejects cleanly whenever len(log)-1 < P instead
// of indexing log[P] out of bounds.
//
// A term check ahead of the reconciliation steps isn't spelled out
// explicitly in spec.md §4.4's bullet list the way it is for the
// heartbeat branch, but rejecting (and adopting) term the same way a
// heartbeat does is necessary to preserve election safety against a
// stale leader resending old entries; this fills that gap the same way
// the spec's own entireLog mechanism already fills the empty-log case.
func (n *Node) handleReconciliation(msg transport.Message) {
	if msg.Term < n.currentTerm {
		n.send(n.appendReply(msg.Src, false))
		return
	}
	if msg.Term > n.currentTerm || n.role != Follower {
		old := n.role
		n.currentTerm = msg.Term
		n.role = Follower
		n.votedFor = ""
		n.votesReceived = nil
		if old != Follower {
			n.logStateChange(old, Follower)
		}
	}
	n.knownLeader = msg.Leader

	entries := fromWireEntries(msg.Entries)
	success := false

	switch {
	case len(n.entries) == 0:
		if msg.EntireLog {
			n.entries = entries
			success = true
		}
	case len(n.entries)-1 < msg.PrevLogIndex:
		success = false
	case n.entries[msg.PrevLogIndex].Term == msg.PrevLogTerm:
		n.entries = append(n.entries[:msg.PrevLogIndex:msg.PrevLogIndex], entries...)
		success = true
	default:
		success = false
	}

	n.logAppendEntries(msg.Src, msg.Term, msg.PrevLogIndex, len(entries))

	if msg.LeaderCommit > n.commitIndex {
		n.commitIndex = min(msg.LeaderCommit, n.lastLogIndex())
		n.applyCommitted()
	}

	n.send(n.appendReply(msg.Src, success))
}

func (n *Node) appendReply(dst string, success bool) transport.Message {
	reply := transport.Envelope(n.id, dst, n.knownLeader, transport.TypeAppendReply)
	reply.Term = n.currentTerm
	reply.Success = success
	reply.MatchIndex = n.lastLogIndex()
	return reply
}
