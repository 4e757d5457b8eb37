package raft

import "raftkv/transport"

// toWireEntries converts a slice of the engine's internal log entries to
// their wire form for an AppendEntries payload.
func toWireEntries(entries []LogEntry) []transport.LogEntry {
	out := make([]transport.LogEntry, len(entries))
	for i, e := range entries {
		out[i] = transport.LogEntry{Key: e.Key, Value: e.Value, Term: e.Term}
	}
	return out
}

// fromWireEntries converts a wire AppendEntries payload back to the
// engine's internal log entry type.
func fromWireEntries(entries []transport.LogEntry) []LogEntry {
	out := make([]LogEntry, len(entries))
	for i, e := range entries {
		out[i] = LogEntry{Key: e.Key, Value: e.Value, Term: e.Term}
	}
	return out
}
