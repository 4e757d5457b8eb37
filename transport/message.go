// Package transport carries the wire protocol described in spec.md §4.1/§6:
// a best-effort, unordered, unauthenticated bus of JSON-tagged datagrams.
package transport

// Broadcast is the reserved destination addressing every peer.
const Broadcast = "FFFF"

// MaxPayloadBytes is the largest datagram the bus will carry.
const MaxPayloadBytes = 65535

// Type tags the Message union. The router (raft.Node.Dispatch) switches on
// this field; unknown tags are logged and dropped per spec.md §7.
type Type string

const (
	TypeHello         Type = "hello"
	TypePut           Type = "put"
	TypeGet           Type = "get"
	TypeOk            Type = "ok"
	TypeRedirect      Type = "redirect"
	TypeFail          Type = "fail"
	TypeRequestVote   Type = "requestVote"
	TypeVote          Type = "vote"
	TypeAppendEntries Type = "appendEntries"
	TypeAppendReply   Type = "appendReply"
)

// LogEntry is the wire form of a replicated log entry: a single key/value
// command paired with the term that created it (spec.md §3).
type LogEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Term  uint64 `json:"term"`
}

// Message is the envelope every datagram carries. Every field that a given
// Type doesn't use is simply left zero; the wire format is flat JSON, not a
// tagged sum type, matching spec.md's "dynamic string type tags" (§9) at the
// boundary even though the router's internal dispatch is exhaustive.
type Message struct {
	Src    string `json:"src"`
	Dst    string `json:"dst"`
	Leader string `json:"leader"`
	Type   Type   `json:"type"`

	// Client-facing. On a redirect, Leader (above) carries the known
	// leader id and RedirectMsg carries the original client message to
	// forward, per spec.md §4.1/§4.5.
	Key         string   `json:"key,omitempty"`
	Value       string   `json:"value,omitempty"`
	MID         string   `json:"MID,omitempty"`
	RedirectMsg *Message `json:"redirectMessage,omitempty"`

	// Peer protocol
	Term         uint64     `json:"term,omitempty"`
	CandidateID  string     `json:"candidate_id,omitempty"`
	LastLogIndex int        `json:"lastLogIndex,omitempty"`
	LastLogTerm  uint64     `json:"lastLogTerm,omitempty"`
	VoteGranted  bool       `json:"voteGranted,omitempty"`
	PrevLogIndex int        `json:"prevLogIndex,omitempty"`
	PrevLogTerm  uint64     `json:"prevLogTerm,omitempty"`
	Entries      []LogEntry `json:"entries,omitempty"`
	LeaderCommit int        `json:"leaderCommit,omitempty"`
	EntireLog    bool       `json:"entireLog,omitempty"`
	Success      bool       `json:"success,omitempty"`
	MatchIndex   int        `json:"matchIndex,omitempty"`
}

// Envelope stamps the four required header fields (spec.md §4.1: "All
// outbound messages include src, dst, leader, and type").
func Envelope(src, dst, leader string, typ Type) Message {
	return Message{Src: src, Dst: dst, Leader: leader, Type: typ}
}
