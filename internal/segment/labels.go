// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package segment

import (
	"sort"

	"github.com/tomtom215/shopsense/internal/segment/storage"
)

// DeriveLabels names clusters by ranking their centroids, in original
// units, by monetary value. The lowest is At Risk, the highest is High
// Value and everything between is Loyal. Equal values rank by cluster index.
func DeriveLabels(centroids [][]float64) map[int]Segment {
	order := make([]int, len(centroids))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return centroids[order[a]][featureMonetary] < centroids[order[b]][featureMonetary]
	})

	labels := make(map[int]Segment, len(centroids))
	for rank, cluster := range order {
		switch rank {
		case 0:
			labels[cluster] = SegmentAtRisk
		case len(order) - 1:
			labels[cluster] = SegmentHighValue
		default:
			labels[cluster] = SegmentLoyal
		}
	}
	return labels
}

func labelStates(labels map[int]Segment) []storage.LabelState {
	out := make([]storage.LabelState, 0, len(labels))
	for c := 0; c < len(labels); c++ {
		seg := labels[c]
		out = append(out, storage.LabelState{Cluster: c, Name: seg.Name, Color: seg.Color})
	}
	return out
}

func labelsFromStates(states []storage.LabelState) map[int]Segment {
	labels := make(map[int]Segment, len(states))
	for _, st := range states {
		labels[st.Cluster] = Segment{Name: st.Name, Color: st.Color}
	}
	return labels
}
