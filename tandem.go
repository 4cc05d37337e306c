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

import "fmt"

// CombineSeries returns the current-voltage curve of junctions a and b
// connected in series. The junction with the smaller short-circuit
// current limits the stack, so its current values are used as the
// current axis and the other junction's voltage at each of those
// currents is added to its own. Currents outside the other curve's
// range take the voltage at its nearest end.
func CombineSeries(a, b Curve) Curve {
	axis, other := a, b
	if b.ShortCircuit() < a.ShortCircuit() {
		axis, other = b, a
	}
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	// Junction currents fall with voltage, so reversing gives the
	// increasing abscissa that interpolation needs.
	oj, ov := reversed(other.J), reversed(other.V)
	c := Curve{V: make([]float64, n), J: make([]float64, n)}
	for i := 0; i < n; i++ {
		c.J[i] = axis.J[i]
		c.V[i] = axis.V[i] + interpClamped(axis.J[i], oj, ov)
	}
	return c
}

// Stack is a multi-junction solar cell.
type Stack struct {
	// Bandgaps holds the junction bandgaps [eV], top first.
	Bandgaps []float64

	// Junctions holds the fill-factor matched curve of each junction,
	// top first. A junction with the same bandgap as the one above it
	// receives no light. Its curve is empty and it is left out of the
	// series connection.
	Junctions []FillFactorResult

	// Curve is the series-connected curve of the whole stack.
	Curve Curve
}

// junctionFunc returns the fill-factor matched curve of a junction
// with bandgap eg under spectrum s. upper is the bandgap of the
// junction above it, or 0 for the top junction.
type junctionFunc func(s *Spectrum, eg, upper float64, pos StackPosition) (FillFactorResult, error)

// Tandem computes the curve of a stack of two or three junctions with
// the given bandgaps [eV], top first, each matched to fill factor
// ffGoal. Each junction below the top one absorbs only the light that
// passes the junctions above it.
func Tandem(s *Spectrum, bandgaps []float64, ffGoal float64) (*Stack, error) {
	return buildStack(s, bandgaps, func(s *Spectrum, eg, _ float64, pos StackPosition) (FillFactorResult, error) {
		return MatchFillFactor(s, eg, ffGoal, pos)
	})
}

// ValidStack returns whether bandgaps are ordered so that each
// junction lets light through to the ones below it: the second
// bandgap must be smaller than the first and the third no larger
// than either.
func ValidStack(bandgaps []float64) bool {
	switch len(bandgaps) {
	case 2:
		return bandgaps[1] < bandgaps[0]
	case 3:
		return bandgaps[1] < bandgaps[0] && bandgaps[2] <= bandgaps[0] && bandgaps[2] <= bandgaps[1]
	default:
		return false
	}
}

func buildStack(s *Spectrum, bandgaps []float64, junction junctionFunc) (*Stack, error) {
	if len(bandgaps) != 2 && len(bandgaps) != 3 {
		return nil, fmt.Errorf("pec: a tandem cell needs 2 or 3 junctions but %d were given", len(bandgaps))
	}
	if !ValidStack(bandgaps) {
		return nil, fmt.Errorf("pec: junction bandgaps %v must decrease from top to bottom", bandgaps)
	}
	st := &Stack{
		Bandgaps:  append([]float64(nil), bandgaps...),
		Junctions: make([]FillFactorResult, len(bandgaps)),
	}
	pos := Top
	upper := 0.
	for i, eg := range bandgaps {
		if pos == Stacked && eg >= upper {
			st.Junctions[i] = FillFactorResult{Status: Unmodified}
			continue
		}
		r, err := junction(s, eg, upper, pos)
		if err != nil {
			return nil, err
		}
		st.Junctions[i] = r
		s = s.Residual(AbsorptionEdge(eg))
		pos, upper = Stacked, eg
	}
	for i := len(st.Junctions) - 1; i >= 0; i-- {
		c := st.Junctions[i].Curve
		switch {
		case c.Len() == 0:
		case st.Curve.Len() == 0:
			st.Curve = c
		default:
			st.Curve = CombineSeries(c, st.Curve)
		}
	}
	return st, nil
}
