// Package cluster tracks the fixed set of replica ids a node runs with.
// There is no sharding and no dynamic membership here (spec.md §1
// Non-goals): every replica replicates the same full keyspace, so peers are
// addressed purely by the 4-hex-char id the bus routes on, never by a
// per-key owner.
package cluster

import (
	"fmt"
	"sync"
	"time"
)

// Peer is a replica id this node knows about.
type Peer struct {
	ID       string
	AddedAt  time.Time
	LastSeen time.Time // last time Touch was called for this peer (raft.Node.Dispatch does so on each hello)
}

// PeerSet tracks the other replicas in the cluster, for quorum arithmetic
// (spec.md §3/§4.2 "N = cluster size including self") and for the admin
// introspection surface.
type PeerSet struct {
	mu    sync.RWMutex
	peers map[string]*Peer
}

// NewPeerSet builds a PeerSet from the other replica ids named on the
// command line (spec.md §6: `<prog> <port> <id> <otherId>+`).
func NewPeerSet(otherIDs []string) *PeerSet {
	ps := &PeerSet{peers: make(map[string]*Peer, len(otherIDs))}
	for _, id := range otherIDs {
		ps.peers[id] = &Peer{ID: id, AddedAt: time.Now()}
	}
	return ps
}

// IDs returns the peer ids in no particular order.
func (ps *PeerSet) IDs() []string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	ids := make([]string, 0, len(ps.peers))
	for id := range ps.peers {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of peers, excluding self.
func (ps *PeerSet) Count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.peers)
}

// ClusterSize returns the total cluster size (peers + self), the N in
// spec.md's quorum definition ⌈N/2⌉.
func (ps *PeerSet) ClusterSize() int {
	return ps.Count() + 1
}

// Majority returns ⌈N/2⌉ for this cluster, the number of grants/replications
// needed to win an election or commit an entry (spec.md GLOSSARY: Quorum).
func (ps *PeerSet) Majority() int {
	n := ps.ClusterSize()
	return (n + 1) / 2
}

// Touch records that a message was just observed from peer id.
func (ps *PeerSet) Touch(id string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if p, ok := ps.peers[id]; ok {
		p.LastSeen = time.Now()
	}
}

// Known reports whether id names a peer in this set.
func (ps *PeerSet) Known(id string) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	_, ok := ps.peers[id]
	return ok
}

// Snapshot returns a stable copy of the peer list.
func (ps *PeerSet) Snapshot() []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	out := make([]Peer, 0, len(ps.peers))
	for _, p := range ps.peers {
		out = append(out, *p)
	}
	return out
}

func (ps *PeerSet) String() string {
	return fmt.Sprintf("PeerSet(%d peers)", ps.Count())
}
