package qlearn

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/Str0mxx/atlas-rlcore/internal/statekey"
	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

// linearApprox estimates Q(s,a) as w . phi(s,a). The feature vector is
// built from the state's entries in sorted key order, one hashed action
// feature, and a bias term. When a state with a different entry count
// arrives the weights are reinitialized to zeros; learned values for the
// old shape are deliberately discarded rather than misaligned.
type linearApprox struct {
	weights *mat.VecDense
	resets  int
}

func newLinearApprox() *linearApprox {
	return &linearApprox{}
}

// featureVector maps (state, action) to phi(s,a). Numeric values pass
// through, booleans become 0/1, and everything else is hashed into
// [0,1).
func featureVector(state types.State, action string) *mat.VecDense {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	features := make([]float64, 0, len(keys)+2)
	for _, k := range keys {
		features = append(features, featureOf(state[k]))
	}
	features = append(features, statekey.ForAction(action))
	features = append(features, 1.0) // bias
	return mat.NewVecDense(len(features), features)
}

func featureOf(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case bool:
		if x {
			return 1.0
		}
		return 0.0
	default:
		return statekey.ForValue(v)
	}
}

func (f *linearApprox) ensure(n int) {
	if f.weights == nil || f.weights.Len() != n {
		if f.weights != nil {
			f.resets++
		}
		f.weights = mat.NewVecDense(n, nil)
	}
}

func (f *linearApprox) predict(state types.State, action string) float64 {
	x := featureVector(state, action)
	f.ensure(x.Len())
	return mat.Dot(f.weights, x)
}

// update moves the weights by step * phi(s,a); step carries both the
// learning rate and the TD-error.
func (f *linearApprox) update(state types.State, action string, step float64) {
	x := featureVector(state, action)
	f.ensure(x.Len())
	f.weights.AddScaledVec(f.weights, step, x)
}

func (f *linearApprox) dim() int {
	if f.weights == nil {
		return 0
	}
	return f.weights.Len()
}

func (f *linearApprox) raw() []float64 {
	if f.weights == nil {
		return nil
	}
	out := make([]float64, f.weights.Len())
	copy(out, f.weights.RawVector().Data)
	return out
}

func (f *linearApprox) restore(w []float64) {
	if len(w) == 0 {
		f.weights = nil
		return
	}
	f.weights = mat.NewVecDense(len(w), append([]float64(nil), w...))
}
