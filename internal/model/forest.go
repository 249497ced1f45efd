package model

import "fmt"

// node follows the flattened tree layout of common tree learners: Left and
// Right of -1 mark a leaf whose Value holds per-class weights.
type node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

func (n node) leaf() bool { return n.Left < 0 && n.Right < 0 }

type tree struct {
	Nodes []node `json:"nodes"`
}

// Forest is a random forest classifier: class probabilities are the mean of
// the normalized leaf distributions reached in each tree.
type Forest struct {
	trees     []tree
	nFeatures int
	classes   []string
}

func newForest(trees []tree, nFeatures int, classes []string) (*Forest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}
	for ti, t := range trees {
		if len(t.Nodes) == 0 {
			return nil, fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range t.Nodes {
			if n.leaf() {
				if len(n.Value) != len(classes) {
					return nil, fmt.Errorf("tree %d node %d: leaf has %d values, want %d", ti, ni, len(n.Value), len(classes))
				}
				if sum(n.Value) <= 0 {
					return nil, fmt.Errorf("tree %d node %d: leaf weights must be positive", ti, ni)
				}
				continue
			}
			// Children must come after their parent, which rules out cycles.
			if n.Left <= ni || n.Right <= ni || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
				return nil, fmt.Errorf("tree %d node %d: invalid children %d/%d", ti, ni, n.Left, n.Right)
			}
			if n.Feature < 0 || n.Feature >= nFeatures {
				return nil, fmt.Errorf("tree %d node %d: feature index %d out of range", ti, ni, n.Feature)
			}
		}
	}
	return &Forest{trees: trees, nFeatures: nFeatures, classes: classes}, nil
}

// PredictProba returns one probability row per input row.
func (f *Forest) PredictProba(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != f.nFeatures {
			return nil, fmt.Errorf("row %d: expected %d features, got %d", i, f.nFeatures, len(row))
		}
		p := make([]float64, len(f.classes))
		for _, t := range f.trees {
			leaf := t.walk(row)
			total := sum(leaf)
			for c, w := range leaf {
				p[c] += w / total
			}
		}
		for c := range p {
			p[c] /= float64(len(f.trees))
		}
		out[i] = p
	}
	return out, nil
}

// Predict returns the most probable class label per row.
func (f *Forest) Predict(rows [][]float64) ([]string, error) {
	probs, err := f.PredictProba(rows)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(probs))
	for i, p := range probs {
		labels[i] = f.classes[argmax(p)]
	}
	return labels, nil
}

func (t tree) walk(row []float64) []float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.leaf() {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func sum(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}
