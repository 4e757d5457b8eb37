// Package raft implements the consensus engine: leader election with
// randomized timeouts, log replication with prefix-matching reconciliation,
// commit-index advancement by majority quorum, and application of committed
// entries to a key-value state machine. The engine is single-threaded and
// event-driven (spec.md §5): Node.Run blocks on one transport.Bus.Recv at a
// time and processes exactly one message before checking timers, so no
// locking is needed around the core fields: they are owned by the one
// goroutine running Run. The only exception is the narrow statusMu guard
// around the handful of fields the admin HTTP surface reads from a second
// goroutine.
package raft

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"raftkv/cluster"
	"raftkv/storage"
	"raftkv/transport"
)

// Role is a replica's current position in the consensus protocol.
type Role int

const (
	Follower Role = iota
	Candidate
	Leader
)

func (r Role) String() string {
	switch r {
	case Follower:
		return "follower"
	case Candidate:
		return "candidate"
	case Leader:
		return "leader"
	default:
		return "unknown"
	}
}

// LogEntry is one entry of the replicated log (spec.md §3): a single
// key-value binding paired with the term that created it.
type LogEntry struct {
	Key   string
	Value string
	Term  uint64
}

// electionTimeoutMin and electionTimeoutMax bound the randomized per-replica
// election timeout (spec.md §4.2: "[500ms, 750ms] at startup").
const (
	electionTimeoutMin = 500 * time.Millisecond
	electionTimeoutMax = 750 * time.Millisecond

	// heartbeatInterval is the leader's AE cadence (spec.md §4.3: "every
	// 485ms measured from last emission").
	heartbeatInterval = 485 * time.Millisecond

	// recvTimeout bounds transport.Bus.Recv so the event loop still checks
	// timers during prolonged silence (spec.md §5, SHOULD).
	recvTimeout = 100 * time.Millisecond

	// bootstrapLeaderID is the one well-known id that starts as leader of
	// term 1 rather than as a follower (spec.md §3, debated in §9 Q6).
	bootstrapLeaderID = "0000"
)

// bus is the subset of *transport.Bus the engine depends on. Pulling it out
// as an interface (the same role the teacher's RPCServer/RPCClient
// interfaces played) lets tests drive Node with an in-memory fake instead
// of a real UDP socket.
type bus interface {
	Send(transport.Message) error
	Recv() (transport.Message, error)
	Close() error
}

// Config configures a new Node.
type Config struct {
	ID    string
	Peers []string // other replica ids, never including self
	Bus   bus
	KV    *storage.KV
	Log   zerolog.Logger
}

// Node is a single replica. Every field below is read and written only by
// the goroutine executing Run, except where statusMu is explicitly noted.
type Node struct {
	id    string
	peers *cluster.PeerSet
	bus   bus
	kv    *storage.KV
	log   zerolog.Logger

	// Persistent state (spec.md §3). Durability across restarts is an
	// explicit non-goal (spec.md §1/§9 Q6's discussion, §6 Persistence).
	currentTerm uint64
	votedFor    string // "" means unset for currentTerm
	entries     []LogEntry

	// Volatile state, all roles. lastApplied/commitIndex use -1 to mean
	// "nothing yet", matching an empty log rather than a dummy sentinel
	// entry at index 0.
	commitIndex int
	lastApplied int
	role        Role
	knownLeader string

	// Leader-only bookkeeping (spec.md §3 "Leader-only state"). Kept
	// populated even while not leader so becomeLeader has a clean place to
	// reset it; followers never consult it.
	nextIndex  map[string]int
	matchIndex map[string]int
	pending    *PendingWrites
	quorum     *QuorumTracker

	// Election-window buffering (spec.md §4.7). Retained but, per §9 Q4,
	// deliberately never replayed.
	inElection       bool
	electionsStarted int
	missedPuts       []transport.Message
	missedGets       []transport.Message

	// Timer deadlines. A single randomized election timeout is drawn once
	// at startup (spec.md §4.2 "draws ... at startup") and reused across
	// resets, rather than re-randomized on every reset.
	electionTimeout   time.Duration
	electionDeadline  time.Time
	heartbeatDeadline time.Time

	votesReceived map[string]bool

	metrics *Metrics

	// statusMu guards only the read path used by the admin HTTP surface
	// (server.Admin's /status handler), which runs on a goroutine separate
	// from Run. Status() takes it to read the published snapshot; Run
	// takes it briefly after processing each message to publish one.
	statusMu     sync.RWMutex
	cachedStatus Status
}

// NewNode builds a Node in the initial role spec.md §3 describes: every
// replica starts as a follower at term 0 except bootstrapLeaderID, which
// starts as leader at term 1. §9 Q6 flags this bootstrap special-case as a
// deviation from canonical Raft; it is implemented literally here rather
// than silently "fixed" to an all-follower start.
func NewNode(cfg Config) *Node {
	n := &Node{
		id:          cfg.ID,
		peers:       cluster.NewPeerSet(cfg.Peers),
		bus:         cfg.Bus,
		kv:          cfg.KV,
		log:         cfg.Log,
		commitIndex: -1,
		lastApplied: -1,
		role:        Follower,
		knownLeader: "",
		nextIndex:   make(map[string]int),
		matchIndex:  make(map[string]int),
		pending:     NewPendingWrites(),
		quorum:      NewQuorumTracker(),
		metrics:     NewMetrics(),
	}

	n.electionTimeout = randomElectionTimeout()

	if n.id == bootstrapLeaderID {
		n.currentTerm = 1
		n.role = Leader
		n.knownLeader = n.id
		for _, p := range n.peers.IDs() {
			n.nextIndex[p] = len(n.entries)
			n.matchIndex[p] = 0
		}
		n.heartbeatDeadline = time.Now().Add(heartbeatInterval)
	} else {
		n.resetElectionDeadline()
	}

	n.publishStatus()
	return n
}

func randomElectionTimeout() time.Duration {
	span := electionTimeoutMax - electionTimeoutMin
	return electionTimeoutMin + time.Duration(rand.Int63n(int64(span)))
}

// majority returns ceil(N/2) for the full cluster (spec.md GLOSSARY: Quorum).
func (n *Node) majority() int {
	return n.peers.Majority()
}

// lastLogIndex returns the index of the last log entry, or -1 for an empty
// log.
func (n *Node) lastLogIndex() int {
	return len(n.entries) - 1
}

// lastLogTerm returns the term of the last log entry, or 0 for an empty log.
func (n *Node) lastLogTerm() uint64 {
	if len(n.entries) == 0 {
		return 0
	}
	return n.entries[len(n.entries)-1].Term
}
