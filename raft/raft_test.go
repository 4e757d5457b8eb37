package raft

import (
	"io"
	"sync"

	"github.com/rs/zerolog"

	"raftkv/storage"
	"raftkv/transport"
)

// fakeBus is an in-memory stand-in for *transport.Bus, capturing every
// message a Node sends instead of touching a real socket.
type fakeBus struct {
	mu   sync.Mutex
	sent []transport.Message
}

func (f *fakeBus) Send(msg transport.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeBus) Recv() (transport.Message, error) {
	return transport.Message{}, transport.ErrTimeout
}

func (f *fakeBus) Close() error { return nil }

func (f *fakeBus) last() transport.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return transport.Message{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeBus) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// newTestNode builds a node through NewNode wired to a fakeBus. Any id other
// than bootstrapLeaderID starts as a Follower at term 0; bootstrapLeaderID
// itself starts as leader at term 1, as NewNode always does.
func newTestNode(id string, peers []string) (*Node, *fakeBus) {
	fb := &fakeBus{}
	n := NewNode(Config{
		ID:    id,
		Peers: peers,
		Bus:   fb,
		KV:    storage.NewKV(),
		Log:   testLogger(),
	})
	return n, fb
}
