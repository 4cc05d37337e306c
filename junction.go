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
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultShuntResistance is the shunt resistance [Ω cm²] used when none
// is specified. It is large enough that no current is lost through the
// shunt.
const DefaultShuntResistance = 1e99

// StackPosition specifies where a junction sits in a tandem stack.
type StackPosition int

const (
	// Top is the junction that receives the unfiltered spectrum.
	Top StackPosition = iota

	// Stacked is a junction below another junction. It must be given
	// the residual spectrum of the junction directly above it.
	Stacked
)

func (p StackPosition) String() string {
	switch p {
	case Top:
		return "top"
	case Stacked:
		return "stacked"
	default:
		return fmt.Sprintf("StackPosition(%d)", int(p))
	}
}

// refractiveIndices returns the refractive indices on the front and
// back of a junction at position p.
func (p StackPosition) refractiveIndices() (front, back float64) {
	if p == Stacked {
		return 3.3, 0 // GaAs front, perfect back reflector
	}
	return 1, 3.42 // air front, Si back
}

// Curve is a current-voltage curve. V is in units of volts and J is in
// units of mA/cm². The curve can be passed directly to plotting
// functions that accept an XYer.
type Curve struct {
	V, J []float64
}

// Len returns the number of points in the curve.
func (c Curve) Len() int { return len(c.V) }

// XY returns the voltage and current of point i.
func (c Curve) XY(i int) (x, y float64) { return c.V[i], c.J[i] }

// ShortCircuit returns the largest current in the curve.
func (c Curve) ShortCircuit() float64 {
	if len(c.J) == 0 {
		return 0
	}
	return floats.Max(c.J)
}

// MaxPowerPoint returns the voltage, current and power density
// [mW/cm²] at the first point of maximum power.
func (c Curve) MaxPowerPoint() (v, j, p float64) {
	if len(c.V) == 0 {
		return 0, 0, 0
	}
	i := 0
	p = c.V[0] * c.J[0]
	for k := 1; k < len(c.V); k++ {
		if pk := c.V[k] * c.J[k]; pk > p {
			i, p = k, pk
		}
	}
	return c.V[i], c.J[i], p
}

// Junction is a single photovoltaic junction under a given spectrum.
type Junction struct {
	Bandgap  float64 // eV
	Position StackPosition

	// Jph is the photocurrent density [mA/cm²].
	Jph float64

	// J0 is the radiative saturation current density [mA/cm²].
	J0 float64

	// Voc is the ideal open-circuit voltage [V].
	Voc float64

	// V is the voltage grid [V] that curves are evaluated on.
	V []float64
}

// NewJunction creates a junction with the given bandgap [eV] that
// absorbs photons from spectrum s.
func NewJunction(s *Spectrum, bandgap float64, pos StackPosition) (*Junction, error) {
	if !(bandgap > 0) || math.IsInf(bandgap, 0) {
		return nil, fmt.Errorf("pec: junction bandgap is %g eV but should be >0", bandgap)
	}
	j := &Junction{
		Bandgap:  bandgap,
		Position: pos,
		Jph:      s.PhotoCurrent(AbsorptionEdge(bandgap)),
		J0:       saturationCurrent(bandgap, pos),
	}
	if !(j.J0 > 0) {
		return nil, fmt.Errorf("pec: saturation current of a %g eV junction underflows", bandgap)
	}
	j.Voc = kTeV * math.Log(j.Jph/j.J0+1)
	vStep := math.Max(j.Voc/500, 1e-4)
	j.V = arange(0, j.Voc+2*vStep, vStep)
	return j, nil
}

// saturationCurrent returns the radiative-limit saturation current
// density [mA/cm²] from detailed balance (Henry, J. Appl. Phys. 51,
// 4494, 1980).
func saturationCurrent(bandgap float64, pos StackPosition) float64 {
	front, back := pos.refractiveIndices()
	eg := bandgap * charge
	a := charge * (front*front + back*back) * eg * eg * boltzmann * temperature /
		(4 * math.Pi * math.Pi * hbar * hbar * hbar * lightSpeed * lightSpeed) / 10
	return a * math.Exp(-eg/(boltzmann*temperature))
}

// Curve returns the current-voltage curve of the junction with series
// resistance rs and shunt resistance rsh [Ω cm²]. If rsh <= 0,
// DefaultShuntResistance is used.
func (j *Junction) Curve(rs, rsh float64) Curve {
	return j.curve(j.Jph, rs, rsh)
}

func (j *Junction) curve(jph, rs, rsh float64) Curve {
	if rsh <= 0 {
		rsh = DefaultShuntResistance
	}
	c := Curve{V: j.V, J: make([]float64, len(j.V))}
	for i, v := range j.V {
		c.J[i] = diodeCurrent(v, jph, j.J0, rs, rsh)
	}
	return c
}

// diodeCurrent returns the single-diode current density at voltage v.
// For rs > 0 the implicit equation is solved exactly with the
// Lambert W function.
func diodeCurrent(v, jph, j0, rs, rsh float64) float64 {
	vt := thermalVoltage()
	if rs <= 0 {
		return jph - j0*math.Expm1(v/vt) - v/rsh
	}
	d := vt * (1 + rs/rsh)
	lnArg := math.Log(rs*j0/d) + v/vt*(1-rs/(rs+rsh)) + (jph+j0)*rs/d
	return (jph+j0-v/rsh)/(1+rs/rsh) - vt/rs*lambertWExp(lnArg)
}

// ComputeJunctionCurve returns the current-voltage curve of a junction
// with the given bandgap under spectrum s, along with the residual
// spectrum that reaches the junction below it.
func ComputeJunctionCurve(s *Spectrum, bandgap, rs, rsh float64, pos StackPosition) (Curve, *Spectrum, error) {
	j, err := NewJunction(s, bandgap, pos)
	if err != nil {
		return Curve{}, nil, err
	}
	return j.Curve(rs, rsh), s.Residual(AbsorptionEdge(bandgap)), nil
}
