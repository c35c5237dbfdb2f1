package outlier

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// lrdEpsilon keeps the reachability density finite for duplicate rows.
const lrdEpsilon = 1e-10

// localOutlierFactor compares each row's local density with that of its k
// nearest neighbors.
type localOutlierFactor struct {
	neighbors int
}

// lofData holds LOF computation data for a row
type lofData struct {
	neighbors []neighborInfo
	kDistance float64
	lrd       float64
}

type neighborInfo struct {
	index    int
	distance float64
}

func (l *localOutlierFactor) Name() string { return LocalOutlierFactor }

func (l *localOutlierFactor) Detect(rows [][]float64) ([]int, error) {
	n, _, err := shape(rows)
	if err != nil {
		return nil, err
	}
	flagged := []int{}
	if n < 2 {
		return flagged, nil
	}

	for i, lof := range l.factors(rows) {
		if lof > lofThreshold {
			flagged = append(flagged, i)
		}
	}
	return flagged, nil
}

func (l *localOutlierFactor) factors(rows [][]float64) []float64 {
	n := len(rows)
	k := min(l.neighbors, n-1)

	// Step 1: k-nearest neighbors and k-distance
	data := make([]lofData, n)
	for i := range rows {
		data[i].neighbors = nearestNeighbors(rows, i, k)
		data[i].kDistance = data[i].neighbors[len(data[i].neighbors)-1].distance
	}

	// Step 2: local reachability density
	for i := range data {
		data[i].lrd = reachabilityDensity(data[i].neighbors, data)
	}

	// Step 3: local outlier factor
	out := make([]float64, n)
	for i := range data {
		sum := 0.0
		for _, nb := range data[i].neighbors {
			sum += data[nb.index].lrd
		}
		out[i] = sum / float64(len(data[i].neighbors)) / data[i].lrd
	}
	return out
}

func nearestNeighbors(rows [][]float64, target, k int) []neighborInfo {
	all := make([]neighborInfo, 0, len(rows)-1)
	for i, r := range rows {
		if i == target {
			continue
		}
		all = append(all, neighborInfo{index: i, distance: floats.Distance(rows[target], r, 2)})
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].distance < all[b].distance })
	return all[:k]
}

// reachabilityDensity is 1 / mean(max(k-distance(B), d(A, B))) over the
// neighbors B of A.
func reachabilityDensity(neighbors []neighborInfo, data []lofData) float64 {
	sum := 0.0
	for _, nb := range neighbors {
		sum += math.Max(data[nb.index].kDistance, nb.distance)
	}
	return 1 / (sum/float64(len(neighbors)) + lrdEpsilon)
}
