// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package segment

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

// KMeans is a fitted k-means model.
type KMeans struct {
	Centroids  [][]float64
	Inertia    float64
	Iterations int
}

// kmeansRun is the result of one restart.
type kmeansRun struct {
	centroids  [][]float64
	inertia    float64
	iterations int
}

// FitKMeans clusters x into cfg.Clusters groups. Restarts run concurrently,
// each with an RNG derived from the seed and the restart index, so the
// result does not depend on scheduling. Ties in inertia go to the lowest
// restart index.
func FitKMeans(ctx context.Context, x [][]float64, cfg *Config) (*KMeans, error) {
	k := cfg.Clusters
	if len(x) < k {
		return nil, fmt.Errorf("%w: %d rows for %d clusters", ErrTrainingPrecondition, len(x), k)
	}

	tol := cfg.Tolerance * meanVariance(x)

	runs := make([]kmeansRun, cfg.NInit)
	g, gctx := errgroup.WithContext(ctx)
	for r := 0; r < cfg.NInit; r++ {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(r)))
			centroids := seedPlusPlus(x, k, rng)
			res, err := lloyd(gctx, x, centroids, cfg.MaxIterations, tol)
			if err != nil {
				return err
			}
			runs[r] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := 0
	for r := 1; r < len(runs); r++ {
		if runs[r].inertia < runs[best].inertia {
			best = r
		}
	}

	return &KMeans{
		Centroids:  runs[best].centroids,
		Inertia:    runs[best].inertia,
		Iterations: runs[best].iterations,
	}, nil
}

// Predict returns the index of the nearest centroid, ties to the lowest index.
func (m *KMeans) Predict(row []float64) int {
	idx, _ := nearest(m.Centroids, row)
	return idx
}

// seedPlusPlus picks k initial centroids with k-means++ weighting.
func seedPlusPlus(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(x[rng.IntN(len(x))]))

	dist := make([]float64, len(x))
	for len(centroids) < k {
		total := 0.0
		for i, row := range x {
			_, d := nearest(centroids, row)
			dist[i] = d
			total += d
		}

		// Every point coincides with a centroid.
		if total == 0 {
			centroids = append(centroids, clone(x[rng.IntN(len(x))]))
			continue
		}

		target := rng.Float64() * total
		pick := len(x) - 1
		for i, d := range dist {
			target -= d
			if target < 0 {
				pick = i
				break
			}
		}
		centroids = append(centroids, clone(x[pick]))
	}
	return centroids
}

// lloyd refines centroids until the total squared centroid shift is at most
// tol or maxIter is reached. An empty cluster keeps its previous centroid.
func lloyd(ctx context.Context, x, centroids [][]float64, maxIter int, tol float64) (kmeansRun, error) {
	k := len(centroids)
	dims := len(x[0])
	labels := make([]int, len(x))

	iter := 0
	for iter < maxIter {
		if err := ctx.Err(); err != nil {
			return kmeansRun{}, err
		}
		iter++

		for i, row := range x {
			labels[i], _ = nearest(centroids, row)
		}

		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		counts := make([]int, k)
		for i, row := range x {
			c := labels[i]
			counts[c]++
			for j, v := range row {
				sums[c][j] += v
			}
		}

		shift := 0.0
		next := make([][]float64, k)
		for c := range next {
			if counts[c] == 0 {
				next[c] = centroids[c]
				continue
			}
			next[c] = make([]float64, dims)
			for j := range next[c] {
				next[c][j] = sums[c][j] / float64(counts[c])
			}
			shift += squaredDistance(centroids[c], next[c])
		}
		centroids = next

		if shift <= tol {
			break
		}
	}

	inertia := 0.0
	for _, row := range x {
		_, d := nearest(centroids, row)
		inertia += d
	}

	return kmeansRun{centroids: centroids, inertia: inertia, iterations: iter}, nil
}

// nearest returns the closest centroid and its squared distance.
func nearest(centroids [][]float64, row []float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(centroid, row); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// meanVariance is the average population variance over the columns of x.
func meanVariance(x [][]float64) float64 {
	if len(x) == 0 {
		return 0
	}
	dims := len(x[0])
	n := float64(len(x))
	total := 0.0
	for j := 0; j < dims; j++ {
		mean := 0.0
		for _, row := range x {
			mean += row[j]
		}
		mean /= n
		for _, row := range x {
			d := row[j] - mean
			total += d * d
		}
	}
	return total / n / float64(dims)
}

func clone(row []float64) []float64 {
	out := make([]float64, len(row))
	copy(out, row)
	return out
}
