package outlier

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	maxCSteps = 30
	// ridgeScale regularizes near-singular covariances, which are the norm
	// when a group has fewer strides than samples per stride.
	ridgeScale = 1e-6
	ridgeFloor = 1e-12
)

// minCovDet is an elliptic envelope over a minimum covariance determinant
// estimate: rows whose robust Mahalanobis distance lies above the
// (1-contamination) quantile are flagged.
type minCovDet struct {
	contamination float64
	starts        int
	seed          int64
}

type estimate struct {
	mean   *mat.VecDense
	chol   mat.Cholesky
	logDet float64
}

func (m *minCovDet) Name() string { return MinCovDet }

func (m *minCovDet) Detect(rows [][]float64) ([]int, error) {
	n, p, err := shape(rows)
	if err != nil {
		return nil, err
	}
	flagged := []int{}
	if n < 2 {
		return flagged, nil
	}

	x := mat.NewDense(n, p, nil)
	for i, r := range rows {
		x.SetRow(i, r)
	}

	best, err := m.fit(x, supportSize(n, p))
	if err != nil {
		return nil, err
	}

	dist := best.distances(x)
	sorted := append([]float64(nil), dist...)
	sort.Float64s(sorted)
	cutoff := percentile(sorted, 1-m.contamination)

	for i, d := range dist {
		if d > cutoff {
			flagged = append(flagged, i)
		}
	}
	return flagged, nil
}

// fit runs concentration steps from several random h-subsets and keeps the
// estimate with the smallest covariance determinant.
func (m *minCovDet) fit(x *mat.Dense, h int) (*estimate, error) {
	n, _ := x.Dims()
	if h >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return estimateFrom(x, all)
	}

	rng := rand.New(rand.NewSource(m.seed)) //nolint:gosec // reproducible detection
	var best *estimate
	for s := 0; s < m.starts; s++ {
		est, err := concentrate(x, rng.Perm(n)[:h], h)
		if err != nil {
			continue
		}
		if best == nil || est.logDet < best.logDet {
			best = est
		}
	}
	if best == nil {
		return nil, ErrDegenerate
	}
	return best, nil
}

func concentrate(x *mat.Dense, subset []int, h int) (*estimate, error) {
	est, err := estimateFrom(x, subset)
	if err != nil {
		return nil, err
	}
	for step := 0; step < maxCSteps; step++ {
		dist := est.distances(x)
		order := make([]int, len(dist))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return dist[order[a]] < dist[order[b]] })

		next, err := estimateFrom(x, order[:h])
		if err != nil || next.logDet >= est.logDet {
			break
		}
		est = next
	}
	return est, nil
}

func estimateFrom(x *mat.Dense, subset []int) (*estimate, error) {
	_, p := x.Dims()
	sub := mat.NewDense(len(subset), p, nil)
	for r, i := range subset {
		sub.SetRow(r, x.RawRowView(i))
	}

	mean := mat.NewVecDense(p, nil)
	col := make([]float64, len(subset))
	for j := 0; j < p; j++ {
		mat.Col(col, j, sub)
		mean.SetVec(j, stat.Mean(col, nil))
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, sub, nil)
	ridge := ridgeScale*mat.Trace(&cov)/float64(p) + ridgeFloor
	for j := 0; j < p; j++ {
		cov.SetSym(j, j, cov.At(j, j)+ridge)
	}

	est := &estimate{mean: mean}
	if ok := est.chol.Factorize(&cov); !ok {
		return nil, fmt.Errorf("%w: covariance of %d rows is not positive definite", ErrDegenerate, len(subset))
	}
	est.logDet = est.chol.LogDet()
	if math.IsNaN(est.logDet) {
		return nil, ErrDegenerate
	}
	return est, nil
}

func (e *estimate) distances(x *mat.Dense) []float64 {
	n, p := x.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = stat.Mahalanobis(mat.NewVecDense(p, x.RawRowView(i)), e.mean, &e.chol)
	}
	return out
}

// supportSize is h = ceil((n+p+1)/2), capped at n.
func supportSize(n, p int) int {
	return min(n, (n+p+2)/2)
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := min(lo+1, len(sorted)-1)
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
