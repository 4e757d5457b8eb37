package storage

import "testing"

func TestKVGetMissing(t *testing.T) {
	kv := NewKV()
	if v, ok := kv.Get("z"); ok || v != "" {
		t.Errorf("expected missing key to report ok=false, value=\"\", got ok=%v value=%q", ok, v)
	}
}

func TestKVApplyThenGet(t *testing.T) {
	kv := NewKV()
	kv.Apply("a", "1")

	v, ok := kv.Get("a")
	if !ok || v != "1" {
		t.Errorf("expected a=1, got ok=%v value=%q", ok, v)
	}
}

func TestKVApplyOverwrite(t *testing.T) {
	kv := NewKV()
	kv.Apply("a", "1")
	kv.Apply("a", "2")

	v, ok := kv.Get("a")
	if !ok || v != "2" {
		t.Errorf("expected last write to win: a=2, got ok=%v value=%q", ok, v)
	}
}

// TestKVApplyIdempotent verifies spec.md §4.6/§8 "apply idempotence": replaying
// the same committed prefix into a fresh state machine yields the same map.
func TestKVApplyIdempotent(t *testing.T) {
	commands := []struct{ key, value string }{
		{"a", "1"},
		{"b", "2"},
		{"a", "3"},
	}

	replay := func() map[string]string {
		kv := NewKV()
		for _, c := range commands {
			kv.Apply(c.key, c.value)
		}
		return kv.Dump()
	}

	first := replay()
	second := replay()

	if len(first) != len(second) {
		t.Fatalf("replay produced different sized maps: %d vs %d", len(first), len(second))
	}
	for k, v := range first {
		if second[k] != v {
			t.Errorf("key %q: first replay=%q second replay=%q", k, v, second[k])
		}
	}
}
