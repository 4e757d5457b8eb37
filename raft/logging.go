package raft

// logStateChange, logElectionStart, and friends mirror the specialized
// event logging the teacher repo's Logger exposed, rebuilt on top of
// zerolog's structured fields instead of a custom printf-style logger.

func (n *Node) logStateChange(old, new Role) {
	n.log.Info().
		Str("from", old.String()).
		Str("to", new.String()).
		Uint64("term", n.currentTerm).
		Msg("role transition")
}

func (n *Node) logElectionStart() {
	n.log.Info().
		Uint64("term", n.currentTerm).
		Int("attempt", n.electionsStarted).
		Msg("starting election")
}

func (n *Node) logElectionWon(votes, needed int) {
	n.log.Info().
		Uint64("term", n.currentTerm).
		Int("votes", votes).
		Int("needed", needed).
		Msg("won election")
}

func (n *Node) logVoteGranted(candidateID string, term uint64) {
	n.log.Debug().
		Str("candidate", candidateID).
		Uint64("term", term).
		Msg("granted vote")
}

func (n *Node) logVoteDenied(candidateID string, term uint64, reason string) {
	n.log.Debug().
		Str("candidate", candidateID).
		Uint64("term", term).
		Str("reason", reason).
		Msg("denied vote")
}

func (n *Node) logHeartbeatSent() {
	n.log.Debug().
		Uint64("term", n.currentTerm).
		Int("peers", n.peers.Count()).
		Msg("sent heartbeat")
}

func (n *Node) logAppendEntries(leaderID string, term uint64, prevLogIndex int, entryCount int) {
	if entryCount == 0 {
		n.log.Debug().Str("leader", leaderID).Uint64("term", term).Msg("received heartbeat")
		return
	}
	n.log.Debug().
		Str("leader", leaderID).
		Uint64("term", term).
		Int("prevLogIndex", prevLogIndex).
		Int("entries", entryCount).
		Msg("received append entries")
}

func (n *Node) logCommit(index int, term uint64) {
	n.log.Info().Int("index", index).Uint64("term", term).Msg("committed entry")
}

func (n *Node) logApply(index int, key string) {
	n.log.Info().Int("index", index).Str("key", key).Msg("applied entry")
}

func (n *Node) logStepDown(oldTerm, newTerm uint64) {
	n.log.Info().Uint64("from", oldTerm).Uint64("to", newTerm).Msg("stepping down")
}
