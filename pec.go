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

// Package pec models tandem-junction photoelectrochemical (PEC) cells
// that drive CO2-to-ethylene or hydrogen evolution electrocatalysts.
//
// Given an illumination spectrum, the package computes single-diode
// current-voltage curves for each photovoltaic junction, combines them
// into a series-connected tandem curve, and intersects that curve with
// the voltage demand of the oxidation and reduction catalysts to find
// the operating point. Sweeps over grids of bandgap combinations, over
// illumination intensity and over catalyst degradation are built on top
// of that operating-point search.
package pec

import "math"

// Version gives the version number.
const Version = "1.0.0"

// Physical constants.
const (
	planck      = 6.62607015e-34   // m² kg/s
	lightSpeed  = 299792458.       // m/s
	avogadro    = 6.0221409e+23    // 1/mol
	charge      = 1.602176634e-19  // C
	boltzmann   = 1.38064852e-23   // m² kg/s²/K
	faraday     = avogadro * charge // C/mol
	temperature = 298.15           // K

	// nmeV converts between photon wavelength in nm and energy in eV.
	nmeV = 1239.84207

	// kTeV is the thermal energy in eV at the model temperature.
	kTeV = 0.02585202874091 * temperature / 300.0
)

// Thermodynamic potentials [V].
const (
	// OxygenEvolutionPotential is the equilibrium potential of the
	// oxygen evolution reaction.
	OxygenEvolutionPotential = 1.23

	// EthylenePotential is the equilibrium potential of CO2 reduction
	// to ethylene.
	EthylenePotential = 0.08

	// HydrogenPotential is the equilibrium potential of the hydrogen
	// evolution reaction.
	HydrogenPotential = 0.
)

// electronsPerEthylene is the number of electrons transferred per
// ethylene molecule produced.
const electronsPerEthylene = 12

// thermalVoltage returns kT/q [V].
func thermalVoltage() float64 { return boltzmann * temperature / charge }

// hbar is the reduced Planck constant.
var hbar = planck / (2 * math.Pi)

// arange returns evenly spaced values in [start, stop) separated by
// step, with the same length rule as numpy.arange.
func arange(start, stop, step float64) []float64 {
	if step == 0 {
		return nil
	}
	n := int(math.Ceil((stop - start) / step))
	if n <= 0 {
		return nil
	}
	o := make([]float64, n)
	for i := range o {
		o[i] = start + float64(i)*step
	}
	return o
}

// Arange is the exported form of arange, used by callers that need to
// build the same parameter ranges the model uses internally.
func Arange(start, stop, step float64) []float64 { return arange(start, stop, step) }

// interpClamped linearly interpolates fp(xp) at x. xp must be
// increasing. Values outside of xp are clamped to the end values.
func interpClamped(x float64, xp, fp []float64) float64 {
	n := len(xp)
	if n == 0 {
		return math.NaN()
	}
	if x <= xp[0] {
		return fp[0]
	}
	if x >= xp[n-1] {
		return fp[n-1]
	}
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if xp[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	if xp[hi] == xp[lo] {
		return fp[lo]
	}
	return fp[lo] + (fp[hi]-fp[lo])*(x-xp[lo])/(xp[hi]-xp[lo])
}

// reversed returns a reversed copy of s.
func reversed(s []float64) []float64 {
	o := make([]float64, len(s))
	for i, v := range s {
		o[len(s)-1-i] = v
	}
	return o
}
