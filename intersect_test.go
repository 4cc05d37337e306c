/*
Copyright © 2025 the PEC authors.
This file is part of PEC.

PEC is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PEC is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PEC.  If not, see <http://www.gnu.org/licenses/>.*/

package pec

import (
	"testing"

	"github.com/kr/pretty"
)

func TestIntersect(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 []float64
		want           []Point
		tolerance      float64
	}{
		{
			name: "cross",
			x1:   []float64{0, 1}, y1: []float64{0, 1},
			x2: []float64{0, 1}, y2: []float64{1, 0},
			want: []Point{{0.5, 0.5}},
		},
		{
			name: "parallel",
			x1:   []float64{0, 1}, y1: []float64{0, 1},
			x2: []float64{0, 1}, y2: []float64{1, 2},
		},
		{
			name: "disjoint",
			x1:   []float64{0, 1}, y1: []float64{0, 1},
			x2: []float64{2, 3}, y2: []float64{1, 0},
		},
		{
			name: "shared vertex",
			x1:   []float64{0, 1, 2}, y1: []float64{0, 1, 2},
			x2: []float64{0, 2}, y2: []float64{2, 0},
			want: []Point{{1, 1}},
		},
		{
			name: "supply and demand",
			x1:   []float64{0, 1, 2}, y1: []float64{10, 10, 0},
			x2: []float64{1.5, 1.5, 1.5, 1.5}, y2: []float64{0, 5, 10, 15},
			want: []Point{{1.5, 5}},
		},
		{
			name: "tangent at a vertex",
			x1:   []float64{0, 1, 2}, y1: []float64{0, 1, 0},
			x2: []float64{0, 2}, y2: []float64{1, 1},
			want: []Point{{1, 1}},
		},
		{
			// Supply V = 2 - 0.01 J and demand V = 0.5 + 0.02 J.
			name: "supply and demand lines",
			x1:   linearCurve(2, -0.01, 0, 100, 7).V, y1: linearCurve(2, -0.01, 0, 100, 7).J,
			x2: linearCurve(0.5, 0.02, 0, 100, 3).V, y2: linearCurve(0.5, 0.02, 0, 100, 3).J,
			want:      []Point{{1.5, 50}},
			tolerance: 1e-9,
		},
		{
			name: "two crossings",
			x1:   []float64{0, 1, 2}, y1: []float64{0, 2, 0},
			x2: []float64{0, 2}, y2: []float64{1, 1},
			want: []Point{{0.5, 1}, {1.5, 1}},
		},
		{
			name: "too short",
			x1:   []float64{0}, y1: []float64{0},
			x2: []float64{0, 1}, y2: []float64{1, 0},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have := Intersect(test.x1, test.y1, test.x2, test.y2)
			if len(have) != len(test.want) {
				t.Fatalf("have %v, want %v", have, test.want)
			}
			tol := test.tolerance
			if tol == 0 {
				tol = 1e-12
			}
			for i := range have {
				if absDifferent(have[i].X, test.want[i].X, tol) || absDifferent(have[i].Y, test.want[i].Y, tol) {
					t.Errorf("point %d: %v", i, pretty.Diff(have[i], test.want[i]))
				}
			}
		})
	}
}

// linearCurve returns the curve V = v0 + slope*J sampled at currents
// from j0 to j1 in steps of dj, with j1 always included.
func linearCurve(v0, slope, j0, j1, dj float64) Curve {
	var c Curve
	for j := j0; j < j1; j += dj {
		c.J = append(c.J, j)
		c.V = append(c.V, v0+slope*j)
	}
	c.J = append(c.J, j1)
	c.V = append(c.V, v0+slope*j1)
	return c
}

func TestZeroCrossing(t *testing.T) {
	if x, ok := ZeroCrossing([]float64{0, 1, 2}, []float64{2, 1, -1}); !ok || absDifferent(x, 1.5, 1e-12) {
		t.Errorf("have (%g, %v), want (1.5, true)", x, ok)
	}
	if x, ok := ZeroCrossing([]float64{0, 1, 2}, []float64{2, 0, -1}); !ok || x != 1 {
		t.Errorf("exact zero: have (%g, %v), want (1, true)", x, ok)
	}
	if _, ok := ZeroCrossing([]float64{0, 1}, []float64{2, 1}); ok {
		t.Error("curve without a zero crossing")
	}
}

func TestOperatingPointZero(t *testing.T) {
	if !(OperatingPoint{}).Zero() {
		t.Error("zero value should be zero")
	}
	if (OperatingPoint{V: 1}).Zero() {
		t.Error("nonzero value should not be zero")
	}
}
