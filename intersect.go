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
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Point is a point in voltage-current space.
type Point struct {
	X, Y float64
}

// mergeDistance is the distance below which two intersection points
// are considered the same point.
const mergeDistance = 1e-12

// Intersect returns the points where the polyline (x1, y1) crosses the
// polyline (x2, y2). Each pair of segments whose bounding boxes
// overlap is solved as a 4×4 linear system; pairs that are parallel
// or give a non-finite solution are skipped. Points are returned in
// the order of the segments of the first polyline, and points closer
// than 1e-12 to one already found are dropped.
func Intersect(x1, y1, x2, y2 []float64) []Point {
	n1, n2 := len(x1)-1, len(x2)-1
	if n1 < 1 || n2 < 1 || len(y1) != len(x1) || len(y2) != len(x2) {
		return nil
	}
	// When the second polyline's y values never decrease, only the
	// segments within a first segment's y span can touch it.
	increasing := sort.Float64sAreSorted(y2)

	var pts []Point
	a := mat.NewDense(4, 4, nil)
	b := mat.NewVecDense(4, nil)
	var t mat.VecDense
	for i := 0; i < n1; i++ {
		xMin1, xMax1 := minMax(x1[i], x1[i+1])
		yMin1, yMax1 := minMax(y1[i], y1[i+1])
		jStart, jEnd := 0, n2
		if increasing {
			// Segment j spans [y2[j], y2[j+1]].
			jStart = sort.SearchFloat64s(y2, yMin1) - 1
			if jStart < 0 {
				jStart = 0
			}
			jEnd = sort.Search(len(y2), func(k int) bool { return y2[k] > yMax1 })
			if jEnd > n2 {
				jEnd = n2
			}
		}
		for j := jStart; j < jEnd; j++ {
			xMin2, xMax2 := minMax(x2[j], x2[j+1])
			yMin2, yMax2 := minMax(y2[j], y2[j+1])
			if xMin1 > xMax2 || xMax1 < xMin2 || yMin1 > yMax2 || yMax1 < yMin2 {
				continue
			}
			a.Zero()
			a.Set(0, 0, x1[i+1]-x1[i])
			a.Set(1, 1, x2[j+1]-x2[j])
			a.Set(2, 0, y1[i+1]-y1[i])
			a.Set(3, 1, y2[j+1]-y2[j])
			a.Set(0, 2, -1)
			a.Set(1, 2, -1)
			a.Set(2, 3, -1)
			a.Set(3, 3, -1)
			b.SetVec(0, -x1[i])
			b.SetVec(1, -x2[j])
			b.SetVec(2, -y1[i])
			b.SetVec(3, -y2[j])
			if err := t.SolveVec(a, b); err != nil {
				if c, ok := err.(mat.Condition); !ok || math.IsInf(float64(c), 1) {
					continue
				}
			}
			t0, t1 := t.AtVec(0), t.AtVec(1)
			if !(t0 >= 0 && t0 <= 1 && t1 >= 0 && t1 <= 1) {
				continue
			}
			p := Point{X: t.AtVec(2), Y: t.AtVec(3)}
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
				continue
			}
			if !contains(pts, p) {
				pts = append(pts, p)
			}
		}
	}
	return pts
}

func minMax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}

func contains(pts []Point, p Point) bool {
	for _, q := range pts {
		if math.Abs(q.X-p.X) < mergeDistance && math.Abs(q.Y-p.Y) < mergeDistance {
			return true
		}
	}
	return false
}

// ZeroCrossing returns the x value where y first reaches zero, linearly
// interpolating between samples. ok is false if y never reaches zero.
func ZeroCrossing(x, y []float64) (x0 float64, ok bool) {
	for i := 0; i < len(y); i++ {
		if y[i] == 0 {
			return x[i], true
		}
		if i+1 < len(y) && (y[i] > 0) != (y[i+1] > 0) && y[i+1] != 0 {
			return x[i] - y[i]*(x[i+1]-x[i])/(y[i+1]-y[i]), true
		}
	}
	return 0, false
}

// OperatingPoint is the point where the supply curve of a tandem cell
// meets the voltage demand of its catalysts.
type OperatingPoint struct {
	V  float64 // V
	J  float64 // mA/cm²
	FE float64 // Faradaic efficiency, %
}

// Zero returns whether p is the zero value, which signals that the
// supply and demand curves do not intersect.
func (p OperatingPoint) Zero() bool { return p == OperatingPoint{} }
