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
	"strings"
)

// Mode is the way light and catalyst areas are coupled in a cell.
type Mode int

const (
	// OneOnOne uses equal light-harvesting and catalyst areas.
	OneOnOne Mode = iota

	// SparseCoverage places the reduction catalyst on a fraction of
	// the cell area so that it runs at its peak current density.
	SparseCoverage

	// SolarConcentration concentrates light with mirrors until the
	// reduction catalyst runs at its peak current density.
	SolarConcentration

	// PVEC couples the solar cell at its maximum power point to a
	// separate electrolyzer.
	PVEC

	// SolarCells computes only the solar-to-electricity efficiency of
	// the tandem cell.
	SolarCells
)

var modeNames = []string{"1:1", "sparse coverage", "solar concentration", "PV-EC", "Solar cells"}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the mode with the given name. Matching ignores
// case.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(s, n) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("pec: invalid mode %q; options are %q", s, modeNames)
}

// Range is a range of values from Min (inclusive) to Max (exclusive)
// separated by Step.
type Range struct {
	Min, Max, Step float64
}

// Values returns the values in the range.
func (r Range) Values() []float64 { return arange(r.Min, r.Max, r.Step) }

func (r Range) String() string { return fmt.Sprintf("[%g, %g) step %g", r.Min, r.Max, r.Step) }

// Default accuracies.
const (
	defaultCurrentAccuracy = 0.01  // mA/cm²
	defaultVoltageAccuracy = 0.001 // V
)

// Config holds the configuration of a cell scenario. A Config is a
// plain value; the model copies it on creation.
type Config struct {
	Mode      Mode
	Chemistry Chemistry

	OER   OERCatalyst
	HER   HERCatalyst
	CO2RR CO2RRCatalyst

	// CustomCO2RR holds the measurements of the Custom CO2 reduction
	// catalyst.
	CustomCO2RR *CO2RRTable

	// VariableVMax [V vs RHE] and VariableMaxFE [%] give the peak point
	// of the Variable CO2 reduction catalyst.
	VariableVMax  float64
	VariableMaxFE float64

	// FluidResistance is the electrolyte resistance [Ω cm²].
	FluidResistance float64

	// FFGoal is the fill factor that every junction is matched to.
	FFGoal float64

	// Bandgaps holds the bandgap range [eV] of each junction, top
	// first. There must be 2 or 3.
	Bandgaps []Range

	// Concentration multiplies the spectrum irradiance.
	Concentration float64

	// MirrorFactor is the geometric concentration by mirrors. When it
	// is not 1, the direct irradiance column is used.
	MirrorFactor float64

	// FixedEthyleneOutput, when true, assumes the reduction catalyst
	// runs at its peak Faradaic efficiency.
	FixedEthyleneOutput bool

	// CurrentAccuracy [mA/cm²] is the current step of catalyst demand
	// curves and VoltageAccuracy [V] the voltage step of extended
	// catalyst tables.
	CurrentAccuracy float64
	VoltageAccuracy float64

	// MaxConcentrationIterations limits the mirror search of the
	// SolarConcentration mode.
	MaxConcentrationIterations int

	// CacheSize is the number of junction curves kept in memory.
	CacheSize int
}

// DefaultConfig returns the configuration of a tandem cell with
// sparse coverage of an oxide-derived copper catalyst and a NiFeOx
// anode at pH 14.
func DefaultConfig() Config {
	return Config{
		Mode:                       SparseCoverage,
		Chemistry:                  CO2Reduction,
		OER:                        NiFeOxPH14,
		HER:                        Platinum,
		CO2RR:                      OIIDCu,
		VariableVMax:               -0.615,
		VariableMaxFE:              61.18,
		FluidResistance:            5,
		FFGoal:                     0.85,
		Bandgaps:                   DefaultBandgaps(SparseCoverage, CO2Reduction, 2),
		Concentration:              1,
		MirrorFactor:               1,
		FixedEthyleneOutput:        true,
		CurrentAccuracy:            defaultCurrentAccuracy,
		VoltageAccuracy:            defaultVoltageAccuracy,
		MaxConcentrationIterations: 1000,
		CacheSize:                  2048,
	}
}

// DefaultBandgaps returns the bandgap grid used for the given mode,
// chemistry and number of junctions.
func DefaultBandgaps(mode Mode, chem Chemistry, junctions int) []Range {
	switch {
	case mode == SolarCells || mode == PVEC:
		return []Range{{1.35, 2.4, 0.01}, {0.5, 1.3, 0.01}}
	case chem == HydrogenEvolution:
		return []Range{{1.35, 2.45, 0.05}, {0.65, 1.325, 0.025}}
	case junctions == 3:
		return []Range{{1.6, 2.0, 0.01}, {0.9, 1.5, 0.01}, {0.35, 1.0, 0.01}}
	default:
		return []Range{{1.6, 2.6, 0.05}, {1.0, 2.1, 0.05}}
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Mode < OneOnOne || c.Mode > SolarCells {
		return fmt.Errorf("pec: invalid mode %v", c.Mode)
	}
	if _, ok := oerCatalysts[c.OER]; !ok {
		return fmt.Errorf("pec: invalid OER catalyst %q; options are %v", c.OER, oerNames())
	}
	switch c.Chemistry {
	case HydrogenEvolution:
		if _, ok := herCatalysts[c.HER]; !ok {
			return fmt.Errorf("pec: invalid HER catalyst %q; options are %v", c.HER, herNames())
		}
		if c.Mode == SolarConcentration || c.Mode == PVEC {
			return fmt.Errorf("pec: mode %v requires CO2 reduction", c.Mode)
		}
	case CO2Reduction:
		switch c.CO2RR {
		case Variable:
			if !(c.VariableMaxFE > 0 && c.VariableMaxFE <= 100) {
				return fmt.Errorf("pec: variable catalyst Faradaic efficiency is %g%% but should be in (0, 100]", c.VariableMaxFE)
			}
			if math.IsNaN(c.VariableVMax) || math.IsInf(c.VariableVMax, 0) {
				return fmt.Errorf("pec: variable catalyst voltage is %g but should be finite", c.VariableVMax)
			}
		case Custom:
			if c.CustomCO2RR == nil {
				return fmt.Errorf("pec: CO2 reduction catalyst is %q but no custom table is given", Custom)
			}
			if err := c.CustomCO2RR.Validate(); err != nil {
				return fmt.Errorf("pec: custom CO2 reduction catalyst: %v", err)
			}
		default:
			if _, ok := co2rrTables[c.CO2RR]; !ok {
				return fmt.Errorf("pec: invalid CO2 reduction catalyst %q; options are %v", c.CO2RR, co2rrNames())
			}
		}
	default:
		return fmt.Errorf("pec: invalid chemistry %v", c.Chemistry)
	}
	if !(c.FFGoal > 0 && c.FFGoal < 1) {
		return fmt.Errorf("pec: fill factor goal is %g but should be between 0 and 1", c.FFGoal)
	}
	if len(c.Bandgaps) != 2 && len(c.Bandgaps) != 3 {
		return fmt.Errorf("pec: %d bandgap ranges are given but there should be 2 or 3", len(c.Bandgaps))
	}
	for i, r := range c.Bandgaps {
		if !(r.Step > 0) {
			return fmt.Errorf("pec: bandgap %d range step is %g but should be >0", i+1, r.Step)
		}
		if !(r.Max > r.Min) || !(r.Min > 0) {
			return fmt.Errorf("pec: bandgap %d range %v should have 0 < min < max", i+1, r)
		}
	}
	if c.Mode == SolarConcentration && len(c.Bandgaps) == 3 {
		return fmt.Errorf("pec: solar concentration is only possible with 2 junctions")
	}
	if !(c.Concentration > 0) {
		return fmt.Errorf("pec: concentration is %g but should be >0", c.Concentration)
	}
	if !(c.MirrorFactor > 0) {
		return fmt.Errorf("pec: mirror factor is %g but should be >0", c.MirrorFactor)
	}
	if c.FluidResistance < 0 {
		return fmt.Errorf("pec: fluid resistance is %g but should be >=0", c.FluidResistance)
	}
	if !(c.CurrentAccuracy > 0) {
		return fmt.Errorf("pec: current accuracy is %g but should be >0", c.CurrentAccuracy)
	}
	if !(c.VoltageAccuracy > 0) {
		return fmt.Errorf("pec: voltage accuracy is %g but should be >0", c.VoltageAccuracy)
	}
	if c.Mode == SolarConcentration && c.MaxConcentrationIterations <= 0 {
		return fmt.Errorf("pec: MaxConcentrationIterations is %d but should be >0", c.MaxConcentrationIterations)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("pec: cache size is %d but should be >=0", c.CacheSize)
	}
	return nil
}
