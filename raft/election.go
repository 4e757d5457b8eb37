package raft

import (
	"time"

	"raftkv/transport"
)

// startElection transitions this replica to candidate and broadcasts a
// requestVote (spec.md §4.2 "Candidacy"). Unlike the teacher's goroutine
// fan-out with a channel collecting votes under a timeout, this runs
// synchronously in the single event-loop goroutine: the broadcast is fired
// and the function returns immediately, and votes arrive later as ordinary
// inbound messages handled by handleVote.
func (n *Node) startElection() {
	old := n.role
	n.role = Candidate
	n.currentTerm++
	n.votedFor = n.id
	n.knownLeader = ""

	n.inElection = true
	n.electionsStarted++

	n.votesReceived = map[string]bool{n.id: true}

	n.logStateChange(old, Candidate)
	n.logElectionStart()
	n.metrics.electionsStarted.Inc()

	n.resetElectionDeadline()

	msg := transport.Envelope(n.id, transport.Broadcast, n.knownLeader, transport.TypeRequestVote)
	msg.Term = n.currentTerm
	msg.CandidateID = n.id
	msg.LastLogIndex = n.lastLogIndex()
	msg.LastLogTerm = n.lastLogTerm()
	n.send(msg)
}

// handleRequestVote implements spec.md §4.2's "Vote grant rules (receiver)".
func (n *Node) handleRequestVote(msg transport.Message) {
	if msg.Term < n.currentTerm {
		n.send(n.voteReply(msg.Src, false))
		return
	}

	if msg.Term > n.currentTerm {
		n.stepDown(msg.Term)
	}

	granted := false
	if (n.votedFor == "" || n.votedFor == msg.CandidateID) &&
		n.isLogUpToDate(msg.LastLogIndex, msg.LastLogTerm) {
		granted = true
		n.votedFor = msg.CandidateID
		n.knownLeader = msg.CandidateID
		n.logVoteGranted(msg.CandidateID, msg.Term)
		n.resetElectionDeadline()
	} else {
		n.logVoteDenied(msg.CandidateID, msg.Term, "already voted or log not up to date")
	}

	n.send(n.voteReply(msg.Src, granted))
}

func (n *Node) voteReply(dst string, granted bool) transport.Message {
	reply := transport.Envelope(n.id, dst, n.knownLeader, transport.TypeVote)
	reply.Term = n.currentTerm
	reply.VoteGranted = granted
	return reply
}

// handleVote implements spec.md §4.2's "Stale-candidate handling" and tally.
func (n *Node) handleVote(msg transport.Message) {
	if msg.Term > n.currentTerm {
		n.stepDown(msg.Term)
		return
	}

	if n.role != Candidate || msg.Term < n.currentTerm {
		return // stale reply, dropped silently
	}

	if !msg.VoteGranted {
		return
	}

	n.votesReceived[msg.Src] = true
	votes := len(n.votesReceived)
	needed := n.majority()
	if votes >= needed {
		n.logElectionWon(votes, needed)
		n.becomeLeader()
	}
}

// isLogUpToDate implements the up-to-date test of spec.md §4.2.1 exactly.
func (n *Node) isLogUpToDate(candidateLastIndex int, candidateLastTerm uint64) bool {
	if len(n.entries) == 0 {
		return true
	}
	mLastTerm := n.lastLogTerm()
	mLastIdx := n.lastLogIndex()

	if mLastTerm < candidateLastTerm {
		return true
	}
	if mLastTerm == candidateLastTerm && mLastIdx <= candidateLastIndex {
		return true
	}
	return false
}

// becomeLeader implements spec.md §4.2's "Tally" ascension step.
func (n *Node) becomeLeader() {
	old := n.role
	n.role = Leader
	n.knownLeader = n.id
	n.inElection = false
	n.logStateChange(old, Leader)
	n.metrics.leadershipChanges.Inc()

	for _, p := range n.peers.IDs() {
		n.nextIndex[p] = len(n.entries)
		n.matchIndex[p] = 0
	}

	n.sendHeartbeat()
	n.heartbeatDeadline = time.Now().Add(heartbeatInterval)
}

// stepDown converts this replica to follower on observing a higher term
// (spec.md §3 "Role ... exited on ... higher-term observation").
func (n *Node) stepDown(term uint64) {
	if term <= n.currentTerm {
		return
	}
	oldTerm := n.currentTerm
	old := n.role

	n.currentTerm = term
	n.votedFor = ""
	n.role = Follower

	n.logStepDown(oldTerm, term)
	if old != Follower {
		n.logStateChange(old, Follower)
	}

	n.resetElectionDeadline()
}

func (n *Node) resetElectionDeadline() {
	n.electionDeadline = time.Now().Add(n.electionTimeout)
}
