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

	"github.com/sirupsen/logrus"
)

// concentrateCell computes a cell in SolarConcentration mode. Light is
// concentrated with mirrors until the reduction catalyst, covering the
// whole cell, receives its peak-efficiency current density.
//
// The mirror factor starts at J_peak/50. While the operating current
// is below 90% of J_peak the factor jumps to the value that would
// reach J_peak if current scaled linearly with light; closer to J_peak
// it grows by 1. A factor above J_peak is reduced to J_peak and the
// search stops, as is a current above J_peak, which is then clipped to
// J_peak at peak Faradaic efficiency.
func (m *Model) concentrateCell(bandgaps []float64) (cellResult, error) {
	jPeak := m.catalyst.PeakJ
	mirror := jPeak / 50
	match := func(mirror float64) (*Match, Environment, error) {
		env := Environment{
			Concentration: mirror,
			Mirror:        mirror,
			Concentrator:  1,
			FixedFE:       m.cfg.FixedEthyleneOutput,
		}
		mt, err := m.SupplyDemand(bandgaps, env)
		return mt, env, err
	}
	mt, env, err := match(mirror)
	if err != nil {
		return cellResult{}, err
	}
	status := Converged
	for iter := 0; ; iter++ {
		if iter >= m.cfg.MaxConcentrationIterations {
			status = Capped
			m.Log.WithFields(logrus.Fields{
				"bandgaps": bandgaps,
				"mirror":   mirror,
				"j":        mt.J,
			}).Warn("pec: mirror search reached its iteration limit")
			break
		}
		if mt.J < 0.9*jPeak {
			mirror = math.Ceil(jPeak / (mt.J / mirror)) // +Inf when J is 0
		} else {
			mirror++
		}
		if mirror > jPeak {
			mirror = jPeak
			if mt, env, err = match(mirror); err != nil {
				return cellResult{}, err
			}
			break
		}
		if mt, env, err = match(mirror); err != nil {
			return cellResult{}, err
		}
		if mt.J > jPeak {
			mt.J = jPeak
			mt.FE = m.catalyst.PeakFE
			break
		}
	}
	cr := cellResult{
		OperatingPoint: mt.OperatingPoint,
		power:          mt.Power,
		extra:          mirror,
		status:         mt.Status,
	}
	if status == Capped && cr.status != NoIntersection {
		cr.status = Capped
	}
	cr.efficiency = m.efficiency(cr.OperatingPoint, mt.Power)
	cr.production = m.production(cr.OperatingPoint, env.Mirror)
	m.logCell(bandgaps, cr)
	return cr, nil
}
