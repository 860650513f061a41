// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package segment

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/shopsense/internal/segment/storage"
)

// Scaler standardizes features to zero mean and unit variance.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler computes per-column mean and population standard deviation.
// A column with zero variance gets scale 1.
func FitScaler(x [][]float64) (*Scaler, error) {
	if len(x) == 0 {
		return nil, errors.New("fit scaler: no rows")
	}
	dims := len(x[0])
	mean := make([]float64, dims)
	for i, row := range x {
		if len(row) != dims {
			return nil, fmt.Errorf("fit scaler: row %d has %d columns, want %d", i, len(row), dims)
		}
		for j, v := range row {
			mean[j] += v
		}
	}
	n := float64(len(x))
	for j := range mean {
		mean[j] /= n
	}

	scale := make([]float64, dims)
	for _, row := range x {
		for j, v := range row {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	return &Scaler{Mean: mean, Scale: scale}, nil
}

// Transform scales one row.
func (s *Scaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out
}

// TransformAll scales every row.
func (s *Scaler) TransformAll(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = s.Transform(row)
	}
	return out
}

// InverseTransform maps a scaled row back to original units.
func (s *Scaler) InverseTransform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = v*s.Scale[j] + s.Mean[j]
	}
	return out
}

func (s *Scaler) state() storage.ScalerState {
	return storage.ScalerState{Mean: s.Mean, Scale: s.Scale}
}

func scalerFromState(st *storage.ScalerState) (*Scaler, error) {
	if len(st.Mean) != numFeatures || len(st.Scale) != numFeatures {
		return nil, fmt.Errorf("scaler has %d/%d columns, want %d", len(st.Mean), len(st.Scale), numFeatures)
	}
	for j, v := range st.Scale {
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("scaler column %d has invalid scale %g", j, v)
		}
	}
	return &Scaler{Mean: st.Mean, Scale: st.Scale}, nil
}
