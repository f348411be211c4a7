package sumtree

import (
	"math"
	"math/rand"
	"testing"
)

func TestEmptyTree(t *testing.T) {
	tree := New[string](8)
	if tree.Total() != 0 {
		t.Fatalf("Total() = %v, want 0", tree.Total())
	}
	if tree.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", tree.Size())
	}
	if tree.Capacity() != 8 {
		t.Fatalf("Capacity() = %d, want 8", tree.Capacity())
	}
}

func TestAddSingle(t *testing.T) {
	tree := New[string](4)
	tree.Add(5.0, "a")
	if tree.Total() != 5.0 {
		t.Fatalf("Total() = %v, want 5.0", tree.Total())
	}
	if tree.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", tree.Size())
	}
}

func TestAddAccumulatesTotal(t *testing.T) {
	tree := New[string](4)
	tree.Add(1.0, "a")
	tree.Add(2.0, "b")
	tree.Add(3.0, "c")
	tree.Add(4.0, "d")
	if tree.Total() != 10.0 {
		t.Fatalf("Total() = %v, want 10.0", tree.Total())
	}
	if tree.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", tree.Size())
	}
}

func TestGetDescends(t *testing.T) {
	tree := New[string](4)
	tree.Add(1.0, "a")
	tree.Add(2.0, "b")
	tree.Add(3.0, "c")

	_, priority, item := tree.Get(0.5)
	if item != "a" || priority != 1.0 {
		t.Fatalf("Get(0.5) = (%q, %v), want (a, 1.0)", item, priority)
	}

	_, priority, item = tree.Get(4.0)
	if item != "c" || priority != 3.0 {
		t.Fatalf("Get(4.0) = (%q, %v), want (c, 3.0)", item, priority)
	}
}

func TestUpdatePropagates(t *testing.T) {
	tree := New[string](4)
	idx := tree.Add(3.0, "a")
	tree.Add(2.0, "b")
	if tree.Total() != 5.0 {
		t.Fatalf("Total() = %v, want 5.0", tree.Total())
	}

	tree.Update(idx, 12.0)
	if tree.Total() != 14.0 {
		t.Fatalf("Total() after update = %v, want 14.0", tree.Total())
	}
	if tree.Priority(idx) != 12.0 {
		t.Fatalf("Priority(%d) = %v, want 12.0", idx, tree.Priority(idx))
	}
}

func TestWraparoundOverwritesOldest(t *testing.T) {
	tree := New[string](3)
	tree.Add(1.0, "a")
	tree.Add(2.0, "b")
	tree.Add(3.0, "c")
	tree.Add(4.0, "d") // replaces "a"

	if tree.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", tree.Size())
	}
	if tree.Total() != 9.0 {
		t.Fatalf("Total() = %v, want 9.0", tree.Total())
	}

	// The first leaf slot now holds the newest payload in place of "a".
	if got := tree.items[0]; got != "d" {
		t.Fatalf("slot 0 holds %q, want d", got)
	}
	if p := tree.Priority(tree.LeafIndex(0)); p != 4.0 {
		t.Fatalf("slot 0 priority = %v, want 4.0", p)
	}
	// "a" is gone from the priority mass: surviving payloads are b, c, d.
	seen := map[string]bool{}
	for _, s := range []float64{0.5, 2.5, 6.5} {
		_, _, item := tree.Get(s)
		seen[item] = true
	}
	if seen["a"] || len(seen) != 3 {
		t.Fatalf("live payloads = %v, want exactly {b, c, d}", seen)
	}
}

func TestMinPriority(t *testing.T) {
	tree := New[int](4)
	if tree.MinPriority() != 0 {
		t.Fatalf("MinPriority(empty) = %v, want 0", tree.MinPriority())
	}
	tree.Add(3.0, 1)
	tree.Add(1.5, 2)
	tree.Add(2.0, 3)
	if tree.MinPriority() != 1.5 {
		t.Fatalf("MinPriority() = %v, want 1.5", tree.MinPriority())
	}
}

// Total must equal the sum of live leaf priorities through any sequence
// of adds (including wraparound) and updates.
func TestTotalMatchesLeafSum(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	tree := New[int](7)
	for i := 0; i < 100; i++ {
		if rng.Float64() < 0.7 || tree.Size() == 0 {
			tree.Add(rng.Float64()*10, i)
		} else {
			slot := rng.Intn(tree.Size())
			tree.Update(tree.LeafIndex(slot), rng.Float64()*10)
		}

		var sum float64
		for slot := 0; slot < tree.Size(); slot++ {
			sum += tree.Priority(tree.LeafIndex(slot))
		}
		if math.Abs(sum-tree.Total()) > 1e-9 {
			t.Fatalf("step %d: Total() = %v, leaf sum = %v", i, tree.Total(), sum)
		}
	}
}

func TestGetBeyondTotalReturnsLastLeaf(t *testing.T) {
	tree := New[string](2)
	tree.Add(1.0, "a")
	tree.Add(1.0, "b")
	_, _, item := tree.Get(100.0)
	if item != "b" {
		t.Fatalf("Get(100.0) = %q, want b", item)
	}
}
