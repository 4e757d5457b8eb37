// Package storage holds the applied key-value state machine (spec.md §4.6).
// Persistence across restarts is explicitly out of scope (spec.md §1/§9,
// Q6): KV is volatile and rebuilt by replaying the replicated log.
package storage

// KV is the state machine a raft.Node applies committed log entries to,
// backed by MemTable, an in-memory skip list kept for the sorted iteration
// the admin dump endpoint wants. There is no LSM/SSTable tier in front of
// it: with no disk in this state machine at all (spec.md §1/§9), a filter
// meant to avoid a disk seek before a miss has nothing to shield the table
// from, so KV does a direct MemTable lookup instead.
type KV struct {
	table *MemTable
}

// NewKV creates an empty, volatile state machine.
func NewKV() *KV {
	return &KV{table: NewMemTable()}
}

// Apply sets key to value. Per spec.md §4.6, applying is idempotent: the
// resulting state after replaying the same committed prefix is the same
// regardless of how many times a given (index, term) is replayed.
func (kv *KV) Apply(key, value string) {
	kv.table.Put([]byte(key), []byte(value))
}

// Get returns the value for key and whether it has ever been written.
// spec.md §4.5 treats an absent key as value="" on the wire (§9, Q5-adjacent
// design note); callers map the bool to that wire convention.
func (kv *KV) Get(key string) (string, bool) {
	v, ok := kv.table.Get([]byte(key))
	if !ok {
		return "", false
	}
	return string(v), true
}

// Len returns the number of live keys.
func (kv *KV) Len() int {
	return len(kv.table.Iterator())
}

// Dump returns a copy of every key/value pair as a map (which carries no
// key order), for the admin introspection surface only, never on the hot
// put/get path.
func (kv *KV) Dump() map[string]string {
	entries := kv.table.Iterator()
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[string(e.Key)] = string(e.Value)
	}
	return out
}
