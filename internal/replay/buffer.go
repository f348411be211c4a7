// Package replay implements a prioritized experience replay buffer.
// Experiences are stored in a sum tree keyed by |TD-error|^alpha so that
// surprising transitions are replayed more often, and samples carry
// importance-sampling weights that anneal the induced bias away as beta
// approaches 1.
package replay

import (
	"math"
	"math/rand"

	"github.com/Str0mxx/atlas-rlcore/internal/sumtree"
	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

const (
	defaultAlpha         = 0.6
	defaultBeta          = 0.4
	defaultBetaIncrement = 0.001

	// minPriority keeps every stored transition sampleable even when its
	// TD-error is exactly zero.
	minPriority = 1e-6
)

// Option configures a Buffer at construction time.
type Option func(*Buffer)

// WithAlpha sets the prioritization exponent (0 = uniform sampling).
func WithAlpha(alpha float64) Option {
	return func(b *Buffer) { b.alpha = alpha }
}

// WithBeta sets the initial importance-sampling exponent.
func WithBeta(beta float64) Option {
	return func(b *Buffer) { b.beta = beta }
}

// WithBetaIncrement sets the per-sample beta annealing step.
func WithBetaIncrement(inc float64) Option {
	return func(b *Buffer) { b.betaIncrement = inc }
}

// WithRand injects the random source used for stratified sampling.
// Tests pass a seeded source for reproducibility.
func WithRand(rng *rand.Rand) Option {
	return func(b *Buffer) { b.rng = rng }
}

// Buffer is a fixed-capacity prioritized replay buffer. Once full, adding
// evicts the oldest experience. Buffer is not safe for concurrent use.
type Buffer struct {
	tree *sumtree.Tree[types.Experience]

	maxSize       int
	alpha         float64
	beta          float64
	betaInitial   float64
	betaIncrement float64

	maxPriority float64 // largest raw |TD-error| seen, floor 1.0
	totalAdded  int

	rng *rand.Rand
}

// Stats is a point-in-time summary of buffer occupancy and priorities.
type Stats struct {
	Size          int     `json:"size"`
	MaxSize       int     `json:"max_size"`
	TotalAdded    int     `json:"total_added"`
	Beta          float64 `json:"beta"`
	TotalPriority float64 `json:"total_priority"`
	MaxPriority   float64 `json:"max_priority"`
}

// New creates a buffer with the given capacity. Capacities below 1 are
// clamped to 1.
func New(maxSize int, opts ...Option) *Buffer {
	if maxSize < 1 {
		maxSize = 1
	}
	b := &Buffer{
		maxSize:       maxSize,
		alpha:         defaultAlpha,
		beta:          defaultBeta,
		betaIncrement: defaultBetaIncrement,
		maxPriority:   1.0,
		rng:           rand.New(rand.NewSource(rand.Int63())),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.betaInitial = b.beta
	b.tree = sumtree.New[types.Experience](maxSize)
	return b
}

// Size returns the number of stored experiences.
func (b *Buffer) Size() int { return b.tree.Size() }

// Add stores an experience at the current maximum priority so it is
// sampled at least once before its real TD-error is known.
func (b *Buffer) Add(exp types.Experience) {
	b.tree.Add(b.transform(b.maxPriority), exp)
	b.totalAdded++
}

// AddWithPriority stores an experience at an explicit raw priority,
// bypassing the optimistic default. The usual transform applies and the
// running priority ceiling is raised when exceeded.
func (b *Buffer) AddWithPriority(exp types.Experience, priority float64) {
	raw := math.Abs(priority)
	b.tree.Add(b.transform(raw), exp)
	b.totalAdded++
	if raw > b.maxPriority {
		b.maxPriority = raw
	}
}

// Sample draws up to batchSize experiences via stratified sampling over
// the priority mass and anneals beta one step. It returns nil when the
// buffer is empty.
func (b *Buffer) Sample(batchSize int) []types.PrioritizedExperience {
	n := b.tree.Size()
	if n == 0 {
		return nil
	}
	b.beta = math.Min(1.0, b.beta+b.betaIncrement)

	if batchSize > n {
		batchSize = n
	}
	total := b.tree.Total()
	segment := total / float64(batchSize)

	// The smallest stored probability bounds the largest possible weight;
	// dividing by it keeps every weight in (0, 1].
	minProb := b.tree.MinPriority() / total
	maxWeight := math.Pow(minProb*float64(n), -b.beta)

	out := make([]types.PrioritizedExperience, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		lo := segment * float64(i)
		s := lo + b.rng.Float64()*segment
		idx, priority, exp := b.tree.Get(s)

		prob := priority / total
		weight := math.Pow(prob*float64(n), -b.beta) / maxWeight

		out = append(out, types.PrioritizedExperience{
			Experience: exp,
			Priority:   priority,
			Weight:     weight,
			TreeIndex:  idx,
		})
	}
	return out
}

// UpdatePriorities rewrites the priorities of previously sampled leaves
// from their new TD-errors. Indices and errors are matched pairwise;
// extra entries on either side are ignored.
func (b *Buffer) UpdatePriorities(treeIndices []int, tdErrors []float64) {
	n := len(treeIndices)
	if len(tdErrors) < n {
		n = len(tdErrors)
	}
	for i := 0; i < n; i++ {
		raw := math.Abs(tdErrors[i])
		b.tree.Update(treeIndices[i], b.transform(raw))
		if raw > b.maxPriority {
			b.maxPriority = raw
		}
	}
}

// Clear discards all experiences and resets beta and the priority
// ceiling to their construction values.
func (b *Buffer) Clear() {
	b.tree = sumtree.New[types.Experience](b.maxSize)
	b.beta = b.betaInitial
	b.maxPriority = 1.0
	b.totalAdded = 0
}

// Stats reports current occupancy, annealing state, and priority mass.
func (b *Buffer) Stats() Stats {
	return Stats{
		Size:          b.tree.Size(),
		MaxSize:       b.maxSize,
		TotalAdded:    b.totalAdded,
		Beta:          b.beta,
		TotalPriority: b.tree.Total(),
		MaxPriority:   b.maxPriority,
	}
}

func (b *Buffer) transform(raw float64) float64 {
	return math.Max(math.Pow(math.Abs(raw), b.alpha), minPriority)
}
