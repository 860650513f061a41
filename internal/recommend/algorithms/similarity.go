// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package algorithms

import (
	"sort"
)

// Neighbor is another client with its similarity to the target.
type Neighbor struct {
	ClientID   int
	Similarity float64
}

// SimilarityTable holds pairwise cosine similarities between the rows of a
// purchase matrix. It is square and symmetric.
type SimilarityTable struct {
	matrix *PurchaseMatrix
	scores [][]float64
}

// ComputeSimilarity scores every pair of clients in m. A nil matrix yields
// an empty table.
func ComputeSimilarity(m *PurchaseMatrix) *SimilarityTable {
	t := &SimilarityTable{matrix: m}
	if m == nil {
		return t
	}

	n := len(m.clientIDs)
	vectors := make([][]float64, n)
	for i := range vectors {
		vectors[i] = m.vector(i)
	}

	t.scores = make([][]float64, n)
	for i := range t.scores {
		t.scores[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		t.scores[i][i] = cosineSimilarity(vectors[i], vectors[i])
		for j := i + 1; j < n; j++ {
			s := cosineSimilarity(vectors[i], vectors[j])
			t.scores[i][j] = s
			t.scores[j][i] = s
		}
	}

	return t
}

// Similarity returns the score between two clients. ok is false when either
// client has no row.
func (t *SimilarityTable) Similarity(a, b int) (score float64, ok bool) {
	if t.matrix == nil {
		return 0, false
	}
	ai, okA := t.matrix.clientIndex[a]
	bi, okB := t.matrix.clientIndex[b]
	if !okA || !okB {
		return 0, false
	}
	return t.scores[ai][bi], true
}

// Neighbors returns every other client ordered by descending similarity,
// ties broken by ascending client id. The client itself is never included.
// An unknown client, or the only client in the matrix, has no neighbors.
func (t *SimilarityTable) Neighbors(clientID int) []Neighbor {
	if t.matrix == nil {
		return nil
	}
	ci, ok := t.matrix.clientIndex[clientID]
	if !ok {
		return nil
	}

	neighbors := make([]Neighbor, 0, len(t.matrix.clientIDs)-1)
	for j, otherID := range t.matrix.clientIDs {
		if j == ci {
			continue
		}
		neighbors = append(neighbors, Neighbor{ClientID: otherID, Similarity: t.scores[ci][j]})
	}

	sort.SliceStable(neighbors, func(a, b int) bool {
		if neighbors[a].Similarity != neighbors[b].Similarity {
			return neighbors[a].Similarity > neighbors[b].Similarity
		}
		return neighbors[a].ClientID < neighbors[b].ClientID
	})

	return neighbors
}

// topNeighbors returns at most k neighbors scoring at least minSimilarity.
func (t *SimilarityTable) topNeighbors(clientID, k int, minSimilarity float64) []Neighbor {
	all := t.Neighbors(clientID)
	out := make([]Neighbor, 0, k)
	for _, nb := range all {
		if len(out) == k {
			break
		}
		if nb.Similarity < minSimilarity {
			// Sorted descending, nothing further qualifies.
			break
		}
		out = append(out, nb)
	}
	return out
}
