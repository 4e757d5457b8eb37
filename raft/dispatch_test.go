package raft

import (
	"testing"

	"raftkv/transport"
)

func TestDispatchDropsMessageNotAddressedToSelf(t *testing.T) {
	n, fb := newTestNode("0001", []string{"0002"})

	msg := transport.Envelope("client", "0002", "", transport.TypeGet)
	n.Dispatch(msg)

	if fb.count() != 0 {
		t.Fatalf("expected message addressed to another replica to be dropped, got %d sends", fb.count())
	}
}

func TestNonLeaderRedirectsPut(t *testing.T) {
	n, fb := newTestNode("0001", []string{"0000"})
	n.knownLeader = "0000"

	msg := transport.Envelope("client", "0001", "", transport.TypePut)
	msg.Key, msg.Value, msg.MID = "a", "1", "m1"
	n.Dispatch(msg)

	reply := fb.last()
	if reply.Type != transport.TypeRedirect || reply.Leader != "0000" {
		t.Fatalf("expected redirect to known leader, got %+v", reply)
	}
	if reply.RedirectMsg == nil || reply.RedirectMsg.Key != "a" {
		t.Fatalf("expected embedded original message, got %+v", reply.RedirectMsg)
	}
}

func TestLeaderGetMissingKeyReturnsEmptyValue(t *testing.T) {
	n, fb := leaderTestNode("0000", []string{"0001"})

	msg := transport.Envelope("client", "0000", "", transport.TypeGet)
	msg.Key, msg.MID = "z", "m9"
	n.Dispatch(msg)

	reply := fb.last()
	if reply.Type != transport.TypeOk || reply.MID != "m9" || reply.Value != "" {
		t.Fatalf("expected ok{MID:m9,value:\"\"}, got %+v", reply)
	}
}

func TestHandleRedirectForwardsToLocalHandler(t *testing.T) {
	n, _ := leaderTestNode("0000", []string{"0001"})

	inner := transport.Envelope("client", "0001", "", transport.TypePut)
	inner.Key, inner.Value, inner.MID = "a", "1", "m1"

	redirect := transport.Envelope("0001", "0000", "0000", transport.TypeRedirect)
	redirect.RedirectMsg = &inner

	n.Dispatch(redirect)

	if len(n.entries) != 1 || n.entries[0].Key != "a" {
		t.Fatalf("expected the redirected put to be accepted locally, got %+v", n.entries)
	}
}

func TestElectionWindowBuffersUnknownLeaderPuts(t *testing.T) {
	n, fb := newTestNode("0001", []string{"0000", "0002"})
	n.inElection = true
	n.electionsStarted = 2 // not the first election

	msg := transport.Envelope("client", "0001", "", transport.TypePut)
	msg.Leader = transport.Broadcast
	msg.Key, msg.MID = "a", "m1"

	n.Dispatch(msg)

	if fb.count() != 0 {
		t.Fatalf("expected buffered put to produce no reply, got %d sends", fb.count())
	}
	if len(n.missedPuts) != 1 {
		t.Fatalf("expected 1 buffered put, got %d", len(n.missedPuts))
	}
}

func TestElectionWindowDoesNotBufferOnFirstElection(t *testing.T) {
	n, fb := newTestNode("0001", []string{"0000"})
	n.inElection = true
	n.electionsStarted = 1 // first election: not buffered per spec
	n.knownLeader = "0000"

	msg := transport.Envelope("client", "0001", "", transport.TypePut)
	msg.Leader = transport.Broadcast
	msg.Key, msg.MID = "a", "m1"

	n.Dispatch(msg)

	if len(n.missedPuts) != 0 {
		t.Fatalf("expected no buffering on the first election, got %d", len(n.missedPuts))
	}
	if fb.count() != 1 {
		t.Fatalf("expected a redirect reply instead, got %d sends", fb.count())
	}
}
