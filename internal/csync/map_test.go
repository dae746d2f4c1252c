package csync

import (
	"sync"
	"testing"
)

func TestMapConcurrentSet(t *testing.T) {
	t.Parallel()

	m := NewMap[int, int]()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Set(i, i*2)
		}()
	}
	wg.Wait()

	got := m.ToMap()
	if len(got) != 64 {
		t.Fatalf("len = %d, want 64", len(got))
	}
	if got[7] != 14 {
		t.Errorf("got[7] = %d, want 14", got[7])
	}
}

func TestMapToMapIsACopy(t *testing.T) {
	t.Parallel()

	m := NewMap[string, string]()
	m.Set("a", "1")

	snap := m.ToMap()
	snap["a"] = "mutated"
	m.Set("b", "2")

	if got := m.ToMap()["a"]; got != "1" {
		t.Errorf("a = %q after mutating the snapshot, want %q", got, "1")
	}
	if _, ok := snap["b"]; ok {
		t.Error("snapshot picked up a write made after it was taken")
	}
}
