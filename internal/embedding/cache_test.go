package embedding

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestCache_GetSet(t *testing.T) {
	c := NewCache(2)
	if _, ok := c.Get("missing"); ok {
		t.Error("empty cache should miss")
	}
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	if v, ok := c.Get("a"); !ok || v[0] != 1 {
		t.Error("Get(a) after Set failed")
	}
	// "a" was just touched, so adding "c" should evict "b".
	c.Set("c", []float32{3})
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive eviction")
	}
	if c.Len() != 2 {
		t.Errorf("Len: got %d", c.Len())
	}
}

// Get promotes entries in the recency list, so concurrent readers must not
// corrupt it. Run with -race.
func TestCache_ConcurrentAccess(t *testing.T) {
	c := NewCache(16)
	for i := 0; i < 16; i++ {
		c.Set(fmt.Sprintf("key-%d", i), []float32{float32(i)})
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d", (g+i)%16)
				if v, ok := c.Get(key); ok && v[0] != float32((g+i)%16) {
					t.Errorf("Get(%s) returned wrong value %v", key, v)
				}
				if i%10 == 0 {
					c.Set(fmt.Sprintf("key-%d", i%16), []float32{float32(i % 16)})
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() != 16 {
		t.Errorf("Len: got %d, want 16", c.Len())
	}
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	a1, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := e.Embed(context.Background(), "hello")
	b, _ := e.Embed(context.Background(), "world")
	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatal("same text should embed identically")
		}
	}
	same := true
	for i := range a1 {
		if a1[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts should embed differently")
	}
	if e.Dimensions() != 8 {
		t.Errorf("Dimensions: got %d", e.Dimensions())
	}
}
