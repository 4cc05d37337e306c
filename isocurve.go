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
)

// DefaultIsocurveVoltages returns the reduction catalyst peak voltages
// [V vs RHE] swept by default in Isocurves.
func DefaultIsocurveVoltages() []float64 { return arange(0, -1.7, -0.05) }

// DefaultIsocurveFE returns the Faradaic efficiencies [%] tabulated by
// default in Isocurves.
func DefaultIsocurveFE() []float64 { return arange(0, 100, 1) }

// Isocurve holds the best achievable operating current of a
// hypothetical CO2 reduction catalyst as a function of its peak
// voltage, and the production rate and efficiency that would result at
// each Faradaic efficiency.
type Isocurve struct {
	// Voltages holds the catalyst peak voltages [V vs RHE].
	Voltages []float64

	// Current holds the largest operating current density [mA/cm²]
	// over the bandgap grid for each voltage.
	Current []float64

	// FE holds the tabulated Faradaic efficiencies [%].
	FE []float64

	// Production [µmol/h/cm²] and Efficiency [%] are indexed as
	// [FE index][voltage index].
	Production [][]float64
	Efficiency [][]float64
}

// Isocurves sweeps the bandgap grid of m with a Variable CO2 reduction
// catalyst in sparse coverage at each peak voltage in voltages, with
// peak Faradaic efficiency fe, and tabulates production and
// efficiency over feRange. Junction curves are shared with m.
func (m *Model) Isocurves(voltages []float64, fe float64, feRange []float64) (*Isocurve, error) {
	if m.cfg.Chemistry != CO2Reduction {
		return nil, fmt.Errorf("pec: isocurves require CO2 reduction")
	}
	if voltages == nil {
		voltages = DefaultIsocurveVoltages()
	}
	if feRange == nil {
		feRange = DefaultIsocurveFE()
	}
	iso := &Isocurve{
		Voltages: append([]float64(nil), voltages...),
		Current:  make([]float64, len(voltages)),
		FE:       append([]float64(nil), feRange...),
	}
	cfg := m.Config()
	cfg.Mode = SparseCoverage
	cfg.CO2RR = Variable
	cfg.VariableMaxFE = fe
	cfg.FixedEthyleneOutput = true
	for i, v := range voltages {
		cfg.VariableVMax = v
		mv, err := m.derive(cfg)
		if err != nil {
			return nil, err
		}
		res, err := mv.Sweep()
		if err != nil {
			return nil, err
		}
		iso.Current[i], _ = maxCell(res.Current)
		m.Log.WithFields(logrus.Fields{
			"voltage": v,
			"j":       iso.Current[i],
		}).Info("pec: isocurve voltage")
	}

	s, err := m.spectrum(m.Environment())
	if err != nil {
		return nil, err
	}
	iso.Production = make([][]float64, len(feRange))
	iso.Efficiency = make([][]float64, len(feRange))
	for f, fei := range feRange {
		iso.Production[f] = make([]float64, len(voltages))
		iso.Efficiency[f] = make([]float64, len(voltages))
		for i, j := range iso.Current {
			iso.Production[f][i] = EthyleneProduction(j, fei, m.cfg.MirrorFactor)
			iso.Efficiency[f][i] = SolarToEthylene(j, fei, s.Power)
		}
	}
	return iso, nil
}
