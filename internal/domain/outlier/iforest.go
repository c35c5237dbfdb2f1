package outlier

import (
	"math"
	"math/rand"
)

// eulerGamma is the Euler-Mascheroni constant used by the harmonic number
// approximation.
const eulerGamma = 0.5772156649015329

// isolationForest scores rows by how quickly random axis-aligned splits
// isolate them. Short average paths mean anomalies.
type isolationForest struct {
	trees      int
	sampleSize int
	seed       int64
}

type itreeNode struct {
	feature int
	split   float64
	size    int
	left    *itreeNode
	right   *itreeNode
}

func (f *isolationForest) Name() string { return IsolationForest }

func (f *isolationForest) Detect(rows [][]float64) ([]int, error) {
	n, _, err := shape(rows)
	if err != nil {
		return nil, err
	}
	flagged := []int{}
	if n == 0 {
		return flagged, nil
	}

	for i, s := range f.scores(rows) {
		if s > anomalyScoreThreshold {
			flagged = append(flagged, i)
		}
	}
	return flagged, nil
}

// scores returns the anomaly score 2^(-E[h(x)]/c(psi)) of every row.
func (f *isolationForest) scores(rows [][]float64) []float64 {
	n := len(rows)
	psi := min(f.sampleSize, n)
	out := make([]float64, n)

	norm := averagePathLength(psi)
	if norm == 0 {
		for i := range out {
			out[i] = anomalyScoreThreshold
		}
		return out
	}

	rng := rand.New(rand.NewSource(f.seed)) //nolint:gosec // reproducible detection
	maxDepth := int(math.Ceil(math.Log2(float64(psi))))

	depths := make([]float64, n)
	for t := 0; t < f.trees; t++ {
		sample := rng.Perm(n)[:psi]
		root := growTree(rows, sample, 0, maxDepth, rng)
		for i, x := range rows {
			depths[i] += root.pathLength(x, 0)
		}
	}

	for i, d := range depths {
		out[i] = math.Pow(2, -(d/float64(f.trees))/norm)
	}
	return out
}

func growTree(rows [][]float64, idx []int, depth, maxDepth int, rng *rand.Rand) *itreeNode {
	if depth >= maxDepth || len(idx) <= 1 {
		return &itreeNode{size: len(idx)}
	}

	width := len(rows[idx[0]])
	lo := make([]float64, width)
	hi := make([]float64, width)
	copy(lo, rows[idx[0]])
	copy(hi, rows[idx[0]])
	for _, i := range idx[1:] {
		for j, v := range rows[i] {
			lo[j] = math.Min(lo[j], v)
			hi[j] = math.Max(hi[j], v)
		}
	}

	candidates := make([]int, 0, width)
	for j := range lo {
		if hi[j] > lo[j] {
			candidates = append(candidates, j)
		}
	}
	if len(candidates) == 0 {
		return &itreeNode{size: len(idx)}
	}

	feature := candidates[rng.Intn(len(candidates))]
	split := lo[feature] + rng.Float64()*(hi[feature]-lo[feature])

	var left, right []int
	for _, i := range idx {
		if rows[i][feature] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &itreeNode{
		feature: feature,
		split:   split,
		size:    len(idx),
		left:    growTree(rows, left, depth+1, maxDepth, rng),
		right:   growTree(rows, right, depth+1, maxDepth, rng),
	}
}

func (n *itreeNode) pathLength(x []float64, depth int) float64 {
	if n.left == nil {
		return float64(depth) + averagePathLength(n.size)
	}
	if x[n.feature] < n.split {
		return n.left.pathLength(x, depth+1)
	}
	return n.right.pathLength(x, depth+1)
}

// averagePathLength is c(n), the mean path length of an unsuccessful search
// in a binary search tree of n nodes.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	m := float64(n)
	return 2*(math.Log(m-1)+eulerGamma) - 2*(m-1)/m
}
