package raft

import (
	"testing"

	"raftkv/transport"
)

func TestPendingWritesDequeueMatchingPreservesOrder(t *testing.T) {
	p := NewPendingWrites()

	m1 := transport.Envelope("client", "0000", "", transport.TypePut)
	m1.MID = "m1"
	m2 := transport.Envelope("client", "0000", "", transport.TypePut)
	m2.MID = "m2"
	m3 := transport.Envelope("client", "0000", "", transport.TypePut)
	m3.MID = "m3"

	p.Enqueue(m1, "a")
	p.Enqueue(m2, "b")
	p.Enqueue(m3, "a")

	matched := p.DequeueMatching("a")
	if len(matched) != 2 || matched[0].MID != "m1" || matched[1].MID != "m3" {
		t.Fatalf("expected [m1, m3] for key a, got %+v", matched)
	}
	if p.Len() != 1 {
		t.Fatalf("expected 1 remaining write for key b, got %d", p.Len())
	}
}

func TestPendingWritesDequeueMatchingNoMatch(t *testing.T) {
	p := NewPendingWrites()
	m := transport.Envelope("client", "0000", "", transport.TypePut)
	p.Enqueue(m, "a")

	matched := p.DequeueMatching("z")
	if len(matched) != 0 {
		t.Fatalf("expected no matches, got %d", len(matched))
	}
	if p.Len() != 1 {
		t.Fatalf("expected write still queued, got len=%d", p.Len())
	}
}
