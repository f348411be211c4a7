// Package sumtree implements the segment tree backing prioritized
// sampling: a fixed-capacity complete binary tree stored in one array of
// 2*capacity-1 float64 nodes. Leaves hold per-slot priorities, internal
// nodes hold subtree sums, and the root holds the total, giving O(log n)
// weighted insert, update, and sample without building a cumulative
// distribution array.
package sumtree

// Tree is a sum tree over payloads of type T. Leaves are written in
// round-robin order; once full, the oldest slot is silently replaced.
// Tree is not safe for concurrent use.
type Tree[T any] struct {
	capacity int
	nodes    []float64 // 2*capacity-1; leaves start at capacity-1
	items    []T       // one payload per leaf slot
	write    int       // next leaf slot to fill
	size     int       // live leaf count, <= capacity
}

// New creates a tree with the given leaf capacity. Capacity must be at
// least 1; smaller values are clamped.
func New[T any](capacity int) *Tree[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Tree[T]{
		capacity: capacity,
		nodes:    make([]float64, 2*capacity-1),
		items:    make([]T, capacity),
	}
}

// Capacity returns the leaf capacity.
func (t *Tree[T]) Capacity() int { return t.capacity }

// Size returns the number of live leaves.
func (t *Tree[T]) Size() int { return t.size }

// Total returns the sum of all live leaf priorities (the root value).
func (t *Tree[T]) Total() float64 { return t.nodes[0] }

// Add writes the payload into the next round-robin leaf with the given
// priority and returns that leaf's tree index. When the tree is full the
// oldest leaf is overwritten and its priority replaced.
func (t *Tree[T]) Add(priority float64, item T) int {
	idx := t.write + t.capacity - 1
	t.items[t.write] = item
	t.Update(idx, priority)

	t.write++
	if t.write >= t.capacity {
		t.write = 0
	}
	if t.size < t.capacity {
		t.size++
	}
	return idx
}

// Update sets the priority at a tree index (as returned by Add or Get)
// and propagates the delta up to the root. Out-of-range indices are
// ignored.
func (t *Tree[T]) Update(treeIndex int, priority float64) {
	if treeIndex < t.capacity-1 || treeIndex >= len(t.nodes) {
		return
	}
	delta := priority - t.nodes[treeIndex]
	t.nodes[treeIndex] = priority
	for treeIndex != 0 {
		treeIndex = (treeIndex - 1) / 2
		t.nodes[treeIndex] += delta
	}
}

// Get walks from the root choosing the child whose cumulative sum covers
// s, returning the reached leaf's tree index, priority, and payload.
// s should be drawn from [0, Total()); larger values land on the last
// nonempty branch.
func (t *Tree[T]) Get(s float64) (int, float64, T) {
	idx := 0
	for idx < t.capacity-1 {
		left := 2*idx + 1
		if s <= t.nodes[left] {
			idx = left
		} else {
			s -= t.nodes[left]
			idx = left + 1
		}
	}
	return idx, t.nodes[idx], t.items[idx-(t.capacity-1)]
}

// Priority returns the stored priority at a tree index, or 0 for
// out-of-range indices.
func (t *Tree[T]) Priority(treeIndex int) float64 {
	if treeIndex < t.capacity-1 || treeIndex >= len(t.nodes) {
		return 0
	}
	return t.nodes[treeIndex]
}

// MinPriority returns the smallest live leaf priority, or 0 for an
// empty tree.
func (t *Tree[T]) MinPriority() float64 {
	if t.size == 0 {
		return 0
	}
	min := t.nodes[t.capacity-1]
	for i := 1; i < t.size; i++ {
		if p := t.nodes[t.capacity-1+i]; p < min {
			min = p
		}
	}
	return min
}

// LeafIndex converts a leaf slot number in [0, Size()) to a tree index.
func (t *Tree[T]) LeafIndex(slot int) int {
	return slot + t.capacity - 1
}
