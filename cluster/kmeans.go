// Package cluster groups samples by expression profile (k-means) and
// projects them for visualization (PCA).
package cluster

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/carbocation/pfx"
	"gonum.org/v1/gonum/mat"
)

// KMeans partitions the rows of x into k clusters with Lloyd iterations and
// k-means++ seeding. The random source is built from the explicit seed so a
// fixed seed reproduces the assignment exactly; no ambient randomness is
// consulted. Returns one cluster label per row.
func KMeans(x *mat.Dense, k int, seed int64, maxIter int) ([]int, error) {
	n, d := x.Dims()
	if k < 1 || k > n {
		return nil, pfx.Err(fmt.Errorf("k = %d with %d samples", k, n))
	}
	if maxIter < 1 {
		maxIter = 100
	}

	rnd := rand.New(rand.NewSource(seed))
	centroids := seedCentroids(x, k, rnd)

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := false

		// Assignment step.
		for i := 0; i < n; i++ {
			row := x.RawRowView(i)
			best, bestDist := 0, math.Inf(1)
			for c := 0; c < k; c++ {
				if dist := sqDist(row, centroids[c]); dist < bestDist {
					best, bestDist = c, dist
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		// Update step.
		counts := make([]int, k)
		for c := range centroids {
			for j := range centroids[c] {
				centroids[c][j] = 0
			}
		}
		for i := 0; i < n; i++ {
			c := labels[i]
			counts[c]++
			row := x.RawRowView(i)
			for j := 0; j < d; j++ {
				centroids[c][j] += row[j]
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Re-seed an emptied cluster at the point farthest from
				// its centroid.
				copy(centroids[c], x.RawRowView(farthestRow(x, centroids, labels)))
				continue
			}
			for j := 0; j < d; j++ {
				centroids[c][j] /= float64(counts[c])
			}
		}
	}

	return labels, nil
}

// seedCentroids implements k-means++: the first centroid is a uniform draw
// and each later one is drawn proportional to squared distance from the
// nearest centroid chosen so far.
func seedCentroids(x *mat.Dense, k int, rnd *rand.Rand) [][]float64 {
	n, d := x.Dims()

	centroids := make([][]float64, 0, k)
	first := make([]float64, d)
	copy(first, x.RawRowView(rnd.Intn(n)))
	centroids = append(centroids, first)

	dist := make([]float64, n)
	for len(centroids) < k {
		var total float64
		for i := 0; i < n; i++ {
			row := x.RawRowView(i)
			nearest := math.Inf(1)
			for _, c := range centroids {
				if d := sqDist(row, c); d < nearest {
					nearest = d
				}
			}
			dist[i] = nearest
			total += nearest
		}

		next := 0
		if total > 0 {
			draw := rnd.Float64() * total
			for i := 0; i < n; i++ {
				draw -= dist[i]
				if draw <= 0 {
					next = i
					break
				}
			}
		} else {
			next = rnd.Intn(n)
		}

		c := make([]float64, d)
		copy(c, x.RawRowView(next))
		centroids = append(centroids, c)
	}

	return centroids
}

func farthestRow(x *mat.Dense, centroids [][]float64, labels []int) int {
	n, _ := x.Dims()
	far, farDist := 0, -1.0
	for i := 0; i < n; i++ {
		if dist := sqDist(x.RawRowView(i), centroids[labels[i]]); dist > farDist {
			far, farDist = i, dist
		}
	}
	return far
}

func sqDist(a, b []float64) float64 {
	var out float64
	for i := range a {
		diff := a[i] - b[i]
		out += diff * diff
	}
	return out
}
