package raft

import (
	"time"

	"raftkv/transport"
)

// Status is a point-in-time snapshot safe to read from a goroutine other
// than Run, the one deliberate exception to spec.md §5's "no locks
// needed", carved out for the admin/observability surface.
type Status struct {
	ID            string
	Role          string
	Term          uint64
	KnownLeader   string
	LogLength     int
	CommitIndex   int
	LastApplied   int
	Peers         int
	PendingWrites int
}

// Status returns the most recently published snapshot of this replica.
func (n *Node) Status() Status {
	n.statusMu.RLock()
	defer n.statusMu.RUnlock()
	return n.cachedStatus
}

func (n *Node) publishStatus() {
	s := Status{
		ID:            n.id,
		Role:          n.role.String(),
		Term:          n.currentTerm,
		KnownLeader:   n.knownLeader,
		LogLength:     len(n.entries),
		CommitIndex:   n.commitIndex,
		LastApplied:   n.lastApplied,
		Peers:         n.peers.Count(),
		PendingWrites: n.pending.Len(),
	}
	n.statusMu.Lock()
	n.cachedStatus = s
	n.statusMu.Unlock()
}

// Run is the event loop of spec.md §5: block on one Recv, process exactly
// one message, then check timers. It returns when stop is closed.
func (n *Node) Run(stop <-chan struct{}) {
	n.sendHello()

	for {
		select {
		case <-stop:
			return
		default:
		}

		msg, err := n.bus.Recv()
		switch {
		case err == nil:
			n.Dispatch(msg)
		case err == transport.ErrTimeout:
			// fall through to timer check below
		default:
			n.log.Error().Err(err).Msg("receive failed")
			continue
		}

		n.checkTimers()
		n.publishStatus()
	}
}

// checkTimers implements the two time-driven actions of spec.md §2:
// a leader emits heartbeats on its cadence, anyone else starts an
// election once its randomized timeout elapses.
func (n *Node) checkTimers() {
	now := time.Now()

	if n.role == Leader {
		if now.After(n.heartbeatDeadline) {
			n.sendHeartbeat()
			n.heartbeatDeadline = now.Add(heartbeatInterval)
		}
		return
	}

	if now.After(n.electionDeadline) {
		n.startElection()
	}
}

// sendHello emits the advisory startup handshake of spec.md §6; the
// transport/harness is the consumer, the core treats it as fire-and-forget.
func (n *Node) sendHello() {
	n.send(transport.Envelope(n.id, transport.Broadcast, n.knownLeader, transport.TypeHello))
}

// send stamps the source id and hands msg to the bus, logging (but
// otherwise ignoring) a send failure: the bus is best-effort and every
// caller already tolerates loss (spec.md §5/§7).
func (n *Node) send(msg transport.Message) {
	msg.Src = n.id
	if err := n.bus.Send(msg); err != nil {
		n.log.Debug().Err(err).Str("type", string(msg.Type)).Msg("send failed")
	}
}

// Dump returns the full applied key-value map, for the admin surface.
func (n *Node) Dump() map[string]string {
	return n.kv.Dump()
}

// MetricsForRegistration exposes this replica's prometheus collectors so
// cmd/raftkv can hand them to the admin server, which registers them once
// at startup.
func (n *Node) MetricsForRegistration() *Metrics {
	return n.metrics
}
