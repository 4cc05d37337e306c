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
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Chemistry is the reduction reaction driven by the cell.
type Chemistry int

const (
	// CO2Reduction reduces CO2 to ethylene.
	CO2Reduction Chemistry = iota

	// HydrogenEvolution reduces water to hydrogen.
	HydrogenEvolution
)

func (c Chemistry) String() string {
	switch c {
	case CO2Reduction:
		return "CO2 reduction"
	case HydrogenEvolution:
		return "HER"
	default:
		return fmt.Sprintf("Chemistry(%d)", int(c))
	}
}

// ParseChemistry returns the chemistry with the given name.
func ParseChemistry(s string) (Chemistry, error) {
	switch s {
	case "CO2 reduction", "CO2RR", "co2rr":
		return CO2Reduction, nil
	case "HER", "her":
		return HydrogenEvolution, nil
	default:
		return 0, fmt.Errorf("pec: invalid chemistry %q; options are \"CO2 reduction\" and \"HER\"", s)
	}
}

// ReductionMode specifies how the reduction catalyst's voltage and
// Faradaic efficiency are found for a current density.
type ReductionMode int

const (
	// Optimal assumes the catalyst always runs at its peak
	// Faradaic efficiency point.
	Optimal ReductionMode = iota

	// Interpolated looks up the catalyst's measured response at the
	// current density reaching it.
	Interpolated
)

// Demand is the voltage needed to drive a current density through the
// catalysts and electrolyte.
type Demand struct {
	Total     float64 // V
	OER       float64 // V
	Reduction float64 // V
	FE        float64 // Faradaic efficiency, %
}

// Catalyst is the combined response of the oxidation and reduction
// catalysts of a cell.
type Catalyst struct {
	Chemistry Chemistry
	OER       Tafel
	HER       Tafel

	// PeakV [V vs RHE, negative], PeakJ [mA/cm²] and PeakFE [%] give
	// the CO2 reduction point of maximum Faradaic efficiency.
	PeakV, PeakJ, PeakFE float64

	// FluidResistance is the electrolyte resistance [Ω cm²].
	FluidResistance float64

	// Extended CO2 reduction table, from the least negative voltage to
	// the most negative. It is empty when no measurements are
	// available.
	extV, extJ, extFE []float64
	jIncreasing       bool
}

// variablePeakCurrent is the peak current density [mA/cm²] assumed for
// the Variable CO2 reduction catalyst.
const variablePeakCurrent = 250.

// NewCatalyst resolves the catalysts named in cfg.
func NewCatalyst(cfg Config) (*Catalyst, error) {
	tafel, ok := oerCatalysts[cfg.OER]
	if !ok {
		return nil, fmt.Errorf("pec: invalid OER catalyst %q; options are %v", cfg.OER, oerNames())
	}
	c := &Catalyst{
		Chemistry:       cfg.Chemistry,
		OER:             tafel,
		FluidResistance: cfg.FluidResistance,
	}
	switch cfg.Chemistry {
	case HydrogenEvolution:
		c.HER, ok = herCatalysts[cfg.HER]
		if !ok {
			return nil, fmt.Errorf("pec: invalid HER catalyst %q; options are %v", cfg.HER, herNames())
		}
		c.PeakFE = 100
		return c, nil
	case CO2Reduction:
	default:
		return nil, fmt.Errorf("pec: invalid chemistry %v", cfg.Chemistry)
	}

	var table CO2RRTable
	switch cfg.CO2RR {
	case Variable:
		c.PeakV = cfg.VariableVMax
		c.PeakJ = variablePeakCurrent
		c.PeakFE = cfg.VariableMaxFE
		return c, nil
	case Custom:
		if cfg.CustomCO2RR == nil {
			return nil, fmt.Errorf("pec: CO2 reduction catalyst is %q but no custom table is given", Custom)
		}
		table = *cfg.CustomCO2RR
	default:
		table, ok = co2rrTables[cfg.CO2RR]
		if !ok {
			return nil, fmt.Errorf("pec: invalid CO2 reduction catalyst %q; options are %v", cfg.CO2RR, co2rrNames())
		}
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("pec: CO2 reduction catalyst %q: %v", cfg.CO2RR, err)
	}
	acc := cfg.VoltageAccuracy
	if acc <= 0 {
		acc = defaultVoltageAccuracy
	}
	if err := c.extend(table, acc); err != nil {
		return nil, fmt.Errorf("pec: CO2 reduction catalyst %q: %v", cfg.CO2RR, err)
	}
	return c, nil
}

// Validate checks that t has enough rows of finite values, with
// distinct voltages, to fit a cubic spline.
func (t CO2RRTable) Validate() error {
	const minRows = 4
	if len(t.V) != len(t.J) || len(t.V) != len(t.FE) {
		return fmt.Errorf("table has %d voltages, %d current densities and %d Faradaic efficiencies but they should be the same",
			len(t.V), len(t.J), len(t.FE))
	}
	if len(t.V) < minRows {
		return fmt.Errorf("table has %d rows but needs at least %d", len(t.V), minRows)
	}
	seen := make(map[float64]bool)
	for i := range t.V {
		for _, v := range []float64{t.V[i], t.J[i], t.FE[i]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d contains a non-finite value", i)
			}
		}
		if seen[t.V[i]] {
			return fmt.Errorf("voltage %g appears more than once", t.V[i])
		}
		seen[t.V[i]] = true
	}
	return nil
}

// peak returns the index of the first row with the largest Faradaic
// efficiency.
func (t CO2RRTable) peak() int {
	k := 0
	for i, fe := range t.FE {
		if fe > t.FE[k] {
			k = i
		}
	}
	return k
}

// extend records the peak point of t and resamples t every acc volts,
// interpolating current density linearly and Faradaic efficiency with
// a not-a-knot cubic spline.
func (c *Catalyst) extend(t CO2RRTable, acc float64) error {
	k := t.peak()
	c.PeakV, c.PeakJ, c.PeakFE = t.V[k], t.J[k], t.FE[k]

	idx := make([]int, len(t.V))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return t.V[idx[a]] < t.V[idx[b]] })
	v := make([]float64, len(idx))
	j := make([]float64, len(idx))
	fe := make([]float64, len(idx))
	for i, k := range idx {
		v[i], j[i], fe[i] = t.V[k], t.J[k], t.FE[k]
	}

	var current interp.PiecewiseLinear
	if err := current.Fit(v, j); err != nil {
		return err
	}
	var efficiency interp.NotAKnotCubic
	if err := efficiency.Fit(v, fe); err != nil {
		return fmt.Errorf("fitting Faradaic efficiency: %v", err)
	}

	minV, maxV := v[0], v[len(v)-1]
	c.extV = arange(maxV, minV+acc, -acc)
	c.extJ = make([]float64, len(c.extV))
	c.extFE = make([]float64, len(c.extV))
	for i, x := range c.extV {
		c.extJ[i] = current.Predict(x)
		c.extFE[i] = efficiency.Predict(x)
	}
	c.jIncreasing = sort.Float64sAreSorted(c.extJ)
	return nil
}

// HasTable returns whether the reduction catalyst has measured data.
// Without it, the interpolated mode falls back to the peak point.
func (c *Catalyst) HasTable() bool { return len(c.extV) > 0 }

// OERVoltage returns the anode potential [V] at current density j.
func (c *Catalyst) OERVoltage(j float64) float64 {
	return OxygenEvolutionPotential + c.OER.Overpotential(j)
}

// ReductionVoltage returns the magnitude of the cathode potential [V]
// and the Faradaic efficiency [%] at current density j [mA/cm²]
// reaching the reduction catalyst.
func (c *Catalyst) ReductionVoltage(j float64, mode ReductionMode) (v, fe float64) {
	if c.Chemistry == HydrogenEvolution {
		return c.HER.Overpotential(j), 100
	}
	if mode == Optimal || !c.HasTable() {
		return -c.PeakV, c.PeakFE
	}
	k := c.nearestCurrent(j)
	return -c.extV[k], c.extFE[k]
}

// nearestCurrent returns the first index of the extended table whose
// current density is closest to j.
func (c *Catalyst) nearestCurrent(j float64) int {
	if c.jIncreasing {
		n := len(c.extJ)
		k := sort.SearchFloat64s(c.extJ, j)
		switch {
		case k == 0:
			return 0
		case k == n:
			return sort.SearchFloat64s(c.extJ, c.extJ[n-1])
		case j-c.extJ[k-1] <= c.extJ[k]-j:
			return sort.SearchFloat64s(c.extJ, c.extJ[k-1])
		default:
			return k
		}
	}
	k := 0
	d := math.Abs(c.extJ[0] - j)
	for i, x := range c.extJ {
		if di := math.Abs(x - j); di < d {
			k, d = i, di
		}
	}
	return k
}

// OhmicDrop returns the voltage [V] lost in the electrolyte at current
// density j [mA/cm²].
func (c *Catalyst) OhmicDrop(j float64) float64 {
	return j * 1e-3 * c.FluidResistance
}

// RequiredVoltage returns the voltage needed to drive current density j
// [mA/cm²] through the cell. In Interpolated mode the reduction
// catalyst sees current density j·concentrator.
func (c *Catalyst) RequiredVoltage(j float64, mode ReductionMode, concentrator float64) Demand {
	d := Demand{OER: c.OERVoltage(j)}
	switch {
	case c.Chemistry == HydrogenEvolution:
		d.Reduction, d.FE = c.ReductionVoltage(j, mode)
	case mode == Optimal:
		d.Reduction, d.FE = c.ReductionVoltage(j, Optimal)
	default:
		d.Reduction, d.FE = c.ReductionVoltage(j*concentrator, Interpolated)
	}
	d.Total = d.OER + d.Reduction + c.OhmicDrop(j)
	return d
}

// FaradaicEfficiencyAt returns the ethylene Faradaic efficiency [%]
// when current density j [mA/cm²] reaches the reduction catalyst.
func (c *Catalyst) FaradaicEfficiencyAt(j float64) float64 {
	switch {
	case c.Chemistry == HydrogenEvolution:
		return 100
	case !c.HasTable():
		return c.PeakFE
	case c.jIncreasing:
		return interpClamped(j, c.extJ, c.extFE)
	default:
		return c.extFE[c.nearestCurrent(j)]
	}
}

func oerNames() []string {
	var o []string
	for k := range oerCatalysts {
		o = append(o, string(k))
	}
	sort.Strings(o)
	return o
}

func herNames() []string {
	var o []string
	for k := range herCatalysts {
		o = append(o, string(k))
	}
	sort.Strings(o)
	return o
}

func co2rrNames() []string {
	o := []string{string(Variable), string(Custom)}
	for k := range co2rrTables {
		o = append(o, string(k))
	}
	sort.Strings(o)
	return o
}

// CatalystNames returns the names of the known OER, HER and CO2
// reduction catalysts.
func CatalystNames() (oer, her, co2rr []string) {
	return oerNames(), herNames(), co2rrNames()
}
