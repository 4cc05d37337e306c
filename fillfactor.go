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

	"gonum.org/v1/gonum/floats"
)

// Fill-factor matching parameters.
const (
	ffTolerance     = 0.001
	ffMaxIterations = 100
	ffStartRs       = 1e-10 // Ω cm²
	ffMinRs         = 1e-12 // Ω cm²
	ffStartFactor   = 4.
	ffMaxVocShift   = 0.01 // V
)

// FillFactor returns the fill factor of curve c: the maximum power
// divided by the product of the maximum current and the open-circuit
// voltage. If the curve never reaches zero current, the largest
// voltage is used as the open-circuit voltage.
func FillFactor(c Curve) float64 {
	if c.Len() == 0 {
		return 0
	}
	_, _, pm := c.MaxPowerPoint()
	d := floats.Max(c.J) * openCircuitVoltage(c)
	if d == 0 {
		return 0
	}
	return pm / d
}

func openCircuitVoltage(c Curve) float64 {
	if voc, ok := ZeroCrossing(c.V, c.J); ok {
		return voc
	}
	return floats.Max(c.V)
}

// FillFactorResult is the outcome of matching a junction's fill factor
// to a target.
type FillFactorResult struct {
	Curve

	// Rs is the series resistance [Ω cm²] that gives the final curve.
	Rs float64

	// FF is the fill factor of the final curve.
	FF float64

	// Iterations is the number of series resistances tried.
	Iterations int

	// Status is Unmodified if the ideal curve was returned, Converged if
	// the target was met within tolerance, and Capped otherwise.
	Status Status

	// VocShift is the change in open-circuit voltage [V] caused by the
	// series resistance.
	VocShift float64
}

// Suspect returns whether adding series resistance moved the
// open-circuit voltage by more than 10 mV, which indicates the
// resistance-only fill factor model is being stretched.
func (r FillFactorResult) Suspect() bool { return r.VocShift > ffMaxVocShift }

// MatchFillFactor computes the curve of a junction with the given
// bandgap [eV] under spectrum s, adding series resistance until its
// fill factor is within 0.001 of target.
func MatchFillFactor(s *Spectrum, bandgap, target float64, pos StackPosition) (FillFactorResult, error) {
	j, err := NewJunction(s, bandgap, pos)
	if err != nil {
		return FillFactorResult{}, err
	}
	return j.MatchFillFactor(target), nil
}

// MatchFillFactor returns the curve of j with a series resistance
// chosen so that its fill factor is within 0.001 of target. If the
// zero-resistance fill factor is already at or below the target, the
// zero-resistance curve is returned.
//
// The search starts at 1e-10 Ω cm² and multiplies or divides the
// resistance by a factor that starts at 4 and halves its excess over
// 1 whenever the search changes direction. It stops after 100
// resistances or when the resistance falls below 1e-12 Ω cm².
func (j *Junction) MatchFillFactor(target float64) FillFactorResult {
	c := j.Curve(0, 0)
	r := FillFactorResult{Curve: c, FF: FillFactor(c), Status: Unmodified}
	if r.FF <= target {
		return r
	}
	voc0 := openCircuitVoltage(c)

	rs := ffStartRs
	factor := ffStartFactor
	greater := true // direction of the previous step
	for math.Abs(r.FF-target) > ffTolerance && r.Iterations < ffMaxIterations {
		if r.FF > target {
			if !greater {
				factor = 1 + (factor-1)/2
			}
			rs *= factor
			greater = true
		} else {
			if greater {
				factor = 1 + (factor-1)/2
			}
			rs /= factor
			greater = false
		}
		r.Iterations++
		if rs < ffMinRs {
			rs = ffMinRs
			r.Curve = j.Curve(rs, 0)
			r.FF = FillFactor(r.Curve)
			break
		}
		r.Curve = j.Curve(rs, 0)
		r.FF = FillFactor(r.Curve)
	}
	r.Rs = rs
	if math.Abs(r.FF-target) <= ffTolerance {
		r.Status = Converged
	} else {
		r.Status = Capped
	}
	r.VocShift = math.Abs(openCircuitVoltage(r.Curve) - voc0)
	return r
}
