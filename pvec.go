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

// membraneLoss is the voltage [V] lost across the electrolyzer
// membrane.
const membraneLoss = 0.1

// minAreaRatioCurrent [mA/cm²] stands in for the operating current of
// a cell that produces none when computing its area ratio.
const minAreaRatioCurrent = 0.01

// areaRatio returns the photovoltaic to electrolyzer area ratio of a
// cell with operating current j whose electrolyzer runs at peakJ
// [mA/cm²].
func areaRatio(peakJ, j float64) float64 {
	if j <= 0 {
		j = minAreaRatioCurrent
	}
	return peakJ / j
}

// solarCell computes the maximum power point of a tandem cell without
// catalysts.
func (m *Model) solarCell(bandgaps []float64) (cellResult, error) {
	env := m.Environment()
	st, s, err := m.Stack(bandgaps, env)
	if err != nil {
		return cellResult{}, err
	}
	v, j, p := st.Curve.MaxPowerPoint()
	cr := cellResult{
		OperatingPoint:  OperatingPoint{V: v, J: j},
		solarEfficiency: p / s.Power * 100,
		power:           s.Power,
		status:          stackStatus(st),
	}
	cr.efficiency = cr.solarEfficiency
	return cr, nil
}

// ElectrolyzerVoltage returns the voltage [V] an electrolyzer needs to
// run the catalysts at their peak Faradaic efficiency point.
func (c *Catalyst) ElectrolyzerVoltage() float64 {
	return OxygenEvolutionPotential + c.OER.RefOverpotential - c.PeakV + membraneLoss
}

// ElectrolyzerEfficiency returns the voltage efficiency of an
// electrolyzer running at ElectrolyzerVoltage.
func (c *Catalyst) ElectrolyzerEfficiency() float64 {
	return ethyleneCellVoltage / c.ElectrolyzerVoltage()
}

// pvecCell computes a cell in PVEC mode. The tandem cell runs at its
// maximum power point and its power is converted without loss to the
// electrolyzer voltage.
func (m *Model) pvecCell(bandgaps []float64) (cellResult, error) {
	cr, err := m.solarCell(bandgaps)
	if err != nil {
		return cr, err
	}
	c := m.catalyst
	cr.FE = c.PeakFE
	cr.efficiency = cr.solarEfficiency * c.ElectrolyzerEfficiency() * c.PeakFE / 100

	// Electrolyzer current density per unit of light-harvesting area.
	jOp := cr.solarEfficiency / 100 * cr.power / c.ElectrolyzerVoltage()
	cr.production = EthyleneProduction(jOp, c.PeakFE, m.cfg.MirrorFactor)
	cr.extra = areaRatio(c.PeakJ, cr.J)
	m.logCell(bandgaps, cr)
	return cr, nil
}
