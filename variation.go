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

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Standard incident power densities [mW/cm²] of the global and direct
// reference spectra.
const (
	globalStandardPower = 100.2
	directStandardPower = 90.
)

// DefaultFactors returns the default illumination factors of
// VaryIllumination.
func DefaultFactors() []float64 { return arange(0.1, 1.5, 0.01) }

// DefaultDegradation returns the default catalyst degradation
// percentages of Degrade.
func DefaultDegradation() []float64 { return arange(0, 36, 1) }

// Variation holds the response of one cell to a varying condition.
// Element i of each slice corresponds to X[i].
type Variation struct {
	// Name describes the varied condition and X holds its values.
	Name string
	X    []float64

	// Insolation is the incident power density [mW/cm²] and is only
	// set for illumination variations.
	Insolation []float64

	Efficiency         []float64 // %
	FaradaicEfficiency []float64 // %
	Voltage            []float64 // V
	Current            []float64 // mA/cm²
	Production         []float64 // µmol/h/cm²

	// ReductionCurrent is the current density [mA/cm²] at the
	// reduction catalyst.
	ReductionCurrent []float64

	Status []Status
}

func newVariation(name string, x []float64) *Variation {
	n := len(x)
	return &Variation{
		Name:               name,
		X:                  append([]float64(nil), x...),
		Efficiency:         make([]float64, n),
		FaradaicEfficiency: make([]float64, n),
		Voltage:            make([]float64, n),
		Current:            make([]float64, n),
		Production:         make([]float64, n),
		ReductionCurrent:   make([]float64, n),
		Status:             make([]Status, n),
	}
}

func (v *Variation) set(i int, p OperatingPoint, eff, prod, jRed float64, s Status) {
	v.Efficiency[i] = eff
	v.FaradaicEfficiency[i] = p.FE
	v.Voltage[i] = p.V
	v.Current[i] = p.J
	v.Production[i] = prod
	v.ReductionCurrent[i] = jRed
	v.Status[i] = s
}

// VaryIllumination computes the response of the cell with the given
// bandgaps [eV] to illumination intensity factors, with the reduction
// catalyst sized by concentrator. The Faradaic efficiency follows the
// catalyst's measured response. When the configured mirror factor is
// not 1, the factors scale the mirror-concentrated direct spectrum.
func (m *Model) VaryIllumination(bandgaps []float64, concentrator float64, factors []float64) (*Variation, error) {
	if factors == nil {
		factors = DefaultFactors()
	}
	if !(concentrator > 0) {
		return nil, fmt.Errorf("pec: catalyst concentrator is %g but should be >0", concentrator)
	}
	mirror := m.cfg.MirrorFactor
	standard := globalStandardPower
	if mirror != 1 {
		standard = directStandardPower * mirror
	}
	v := newVariation("illumination factor", factors)
	v.Insolation = make([]float64, len(factors))
	for i, f := range factors {
		if !(f > 0) {
			return nil, fmt.Errorf("pec: illumination factor is %g but should be >0", f)
		}
		env := Environment{
			Concentration: f,
			Mirror:        mirror,
			Concentrator:  concentrator,
		}
		if mirror != 1 {
			env.Concentration = f * mirror
		}
		mt, err := m.SupplyDemand(bandgaps, env)
		if err != nil {
			return nil, err
		}
		v.Insolation[i] = f * standard
		v.set(i, mt.OperatingPoint, m.efficiency(mt.OperatingPoint, mt.Power),
			m.production(mt.OperatingPoint, mirror), mt.J*concentrator, mt.Status)
		m.Log.WithFields(logrus.Fields{
			"factor": f,
			"j":      mt.J,
			"v":      mt.V,
			"fe":     mt.FE,
		}).Debug("pec: illumination variation")
	}
	return v, nil
}

// Degrade computes the response of the cell with the given bandgaps
// [eV] to catalyst degradation. A catalyst degraded by d percent has
// lost d percent of its active area, so the current density at both
// catalysts grows by 100/(100-d) and the reduction catalyst
// concentrator grows by the same factor. The electrolyte ohmic loss is
// unchanged.
func (m *Model) Degrade(bandgaps []float64, concentrator float64, percentages []float64) (*Variation, error) {
	if percentages == nil {
		percentages = DefaultDegradation()
	}
	if !(concentrator > 0) {
		return nil, fmt.Errorf("pec: catalyst concentrator is %g but should be >0", concentrator)
	}
	for _, d := range percentages {
		if d < 0 || d >= 100 {
			return nil, fmt.Errorf("pec: catalyst degradation is %g%% but should be in [0, 100)", d)
		}
	}
	env := m.Environment()
	env.Concentrator = concentrator
	env.FixedFE = false
	st, s, err := m.Stack(bandgaps, env)
	if err != nil {
		return nil, err
	}
	supply := st.Curve
	jCat := m.demandCurrents(floats.Max(supply.J), env)
	c := m.catalyst

	v := newVariation("catalyst degradation (%)", percentages)
	for i, d := range percentages {
		f := 100 / (100 - d)
		conc := concentrator * f
		demand := Curve{V: make([]float64, len(jCat)), J: jCat}
		for k, j := range jCat {
			jDeg := j * f
			jRed := jDeg * conc
			if c.Chemistry == HydrogenEvolution {
				jRed = jDeg
			}
			red, _ := c.ReductionVoltage(jRed, Interpolated)
			demand.V[k] = c.OERVoltage(jDeg) + red + c.OhmicDrop(j)
		}
		var p OperatingPoint
		status := NoIntersection
		if pts := Intersect(supply.V, supply.J, demand.V, demand.J); len(pts) > 0 {
			p = OperatingPoint{V: pts[0].X, J: pts[0].Y}
			p.FE = c.FaradaicEfficiencyAt(p.J * conc)
			status = stackStatus(st)
		}
		v.set(i, p, m.efficiency(p, s.Power), m.production(p, env.Mirror), p.J*conc, status)
		m.Log.WithFields(logrus.Fields{
			"degradation": d,
			"j":           p.J,
			"v":           p.V,
			"fe":          p.FE,
		}).Debug("pec: catalyst degradation")
	}
	return v, nil
}
