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

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// newArray returns a zeroed array with one dimension per junction
// axis. Values are stored in row-major order, so the index of cell
// (i, j, k) is (i*ny+j)*nz+k.
func newArray(axes [3][]float64) *sparse.DenseArray {
	return sparse.ZerosDense(len(axes[0]), len(axes[1]), len(axes[2]))
}

// maxCell returns the largest value in a and the index of its first
// occurrence in a.Elements.
func maxCell(a *sparse.DenseArray) (v float64, n int) {
	n = floats.MaxIdx(a.Elements)
	return a.Elements[n], n
}

// Results holds the outcome of a bandgap sweep. Cells whose bandgaps
// are not ordered from top to bottom are not computed and hold zeros.
type Results struct {
	Mode      Mode
	Chemistry Chemistry

	// Axes holds the bandgaps [eV] of the first, second and third
	// junctions. The third axis is {0} for tandem cells with two
	// junctions.
	Axes [3][]float64

	// Efficiency is the solar-to-fuel efficiency [%], or the
	// solar-to-electricity efficiency in SolarCells mode.
	Efficiency *sparse.DenseArray

	// FaradaicEfficiency [%], Voltage [V] and Current [mA/cm²] describe
	// the operating point of each cell.
	FaradaicEfficiency *sparse.DenseArray
	Voltage            *sparse.DenseArray
	Current            *sparse.DenseArray

	// Production is the ethylene production rate [µmol/h/cm²].
	Production *sparse.DenseArray

	// Extra holds the catalyst concentrator ratio in SparseCoverage
	// mode, the mirror factor in SolarConcentration mode and the
	// photovoltaic to electrolyzer area ratio in PVEC mode.
	Extra *sparse.DenseArray

	// SolarEfficiency is the maximum-power-point efficiency [%] of the
	// tandem cell, computed in PVEC and SolarCells modes.
	SolarEfficiency *sparse.DenseArray

	// Power is the incident power density [mW/cm²].
	Power *sparse.DenseArray

	// Status holds the status of each cell, indexed like the Elements
	// of the result arrays.
	Status []Status

	// Computed marks the cells whose bandgaps are in a valid order.
	Computed []bool

	// Best is the Elements index of the first cell with the highest
	// efficiency and BestBandgaps holds its bandgaps.
	Best         int
	BestBandgaps []float64

	// Concentrator is the catalyst concentrator ratio at the best cell
	// in SparseCoverage mode, and 1 otherwise.
	Concentrator float64

	// Counts holds the number of computed cells with each status.
	Counts StatusCounts
}

func newResults(mode Mode, chem Chemistry, axes [3][]float64) *Results {
	n := len(axes[0]) * len(axes[1]) * len(axes[2])
	r := &Results{
		Mode:               mode,
		Chemistry:          chem,
		Axes:               axes,
		Efficiency:         newArray(axes),
		FaradaicEfficiency: newArray(axes),
		Voltage:            newArray(axes),
		Current:            newArray(axes),
		Production:         newArray(axes),
		Extra:              newArray(axes),
		SolarEfficiency:    newArray(axes),
		Power:              newArray(axes),
		Status:             make([]Status, n),
		Computed:           make([]bool, n),
		Concentrator:       1,
		Counts:             make(StatusCounts),
	}
	return r
}

// Bandgaps returns the bandgaps of the cell at Elements index n. The
// result has 2 or 3 elements depending on the number of junctions.
func (r *Results) Bandgaps(n int) []float64 {
	idx := r.Efficiency.IndexNd(n)
	b := []float64{r.Axes[0][idx[0]], r.Axes[1][idx[1]], r.Axes[2][idx[2]]}
	if len(r.Axes[2]) == 1 && r.Axes[2][0] == 0 {
		return b[:2]
	}
	return b
}

// cellResult is the outcome of one cell.
type cellResult struct {
	OperatingPoint
	efficiency, production, extra, solarEfficiency, power float64
	status                                                Status
}

// Sweep computes every cell of the bandgap grid in the configured mode.
// Cells are computed concurrently. A cell that fails to converge or
// whose curves do not cross does not stop the sweep; it is recorded in
// Results.Status and Results.Counts.
func (m *Model) Sweep() (*Results, error) {
	var axes [3][]float64
	for i, r := range m.cfg.Bandgaps {
		axes[i] = r.Values()
		if len(axes[i]) == 0 {
			return nil, fmt.Errorf("pec: bandgap %d range %v is empty", i+1, r)
		}
	}
	if len(m.cfg.Bandgaps) == 2 {
		axes[2] = []float64{0}
	}
	res := newResults(m.cfg.Mode, m.cfg.Chemistry, axes)

	var cells []int
	for n := range res.Status {
		if ValidStack(res.Bandgaps(n)) {
			res.Computed[n] = true
			cells = append(cells, n)
		}
	}
	m.Log.WithFields(logrus.Fields{
		"mode":  m.cfg.Mode,
		"cells": len(cells),
		"grid":  fmt.Sprintf("%dx%dx%d", len(axes[0]), len(axes[1]), len(axes[2])),
	}).Info("pec: starting sweep")

	calc := m.cellCalculator()
	prog := newProgress(m.Log, len(cells))
	errs := make([]error, len(cells))
	Calculations(len(cells), func(_, c int) {
		n := cells[c]
		cr, err := calc(res.Bandgaps(n))
		if err != nil {
			errs[c] = err
			return
		}
		res.Efficiency.Elements[n] = cr.efficiency
		res.FaradaicEfficiency.Elements[n] = cr.FE
		res.Voltage.Elements[n] = cr.V
		res.Current.Elements[n] = cr.J
		res.Production.Elements[n] = cr.production
		res.Extra.Elements[n] = cr.extra
		res.SolarEfficiency.Elements[n] = cr.solarEfficiency
		res.Power.Elements[n] = cr.power
		res.Status[n] = cr.status
		prog.step()
	})
	for c, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("pec: cell with bandgaps %v: %v", res.Bandgaps(cells[c]), err)
		}
	}
	for _, n := range cells {
		res.Counts[res.Status[n]]++
	}
	m.finishResults(res)
	return res, nil
}

// finishResults finds the best cell of res and logs a summary.
func (m *Model) finishResults(res *Results) {
	best, n := maxCell(res.Efficiency)
	res.Best = n
	res.BestBandgaps = res.Bandgaps(n)
	if m.cfg.Mode == SparseCoverage {
		if c := res.Extra.Elements[n]; c > 0 {
			res.Concentrator = c
		}
	}
	fields := logrus.Fields{
		"best":         best,
		"bandgaps":     res.BestBandgaps,
		"concentrator": res.Concentrator,
	}
	for s, c := range res.Counts {
		fields[s.String()] = c
	}
	m.Log.WithFields(fields).Info("pec: sweep finished")
	if bad := res.Counts[NoIntersection] + res.Counts[Capped] + res.Counts[Suspect]; bad > 0 {
		m.Log.WithFields(logrus.Fields{
			"no intersection": res.Counts[NoIntersection],
			"capped":          res.Counts[Capped],
			"suspect":         res.Counts[Suspect],
		}).Warn("pec: some cells did not converge cleanly")
	}
}

// cellCalculator returns the function that computes one cell in the
// configured mode.
func (m *Model) cellCalculator() func(bandgaps []float64) (cellResult, error) {
	switch m.cfg.Mode {
	case SolarConcentration:
		return m.concentrateCell
	case PVEC:
		return m.pvecCell
	case SolarCells:
		return m.solarCell
	default:
		return m.operatingCell
	}
}

// operatingCell computes a cell in OneOnOne or SparseCoverage mode.
func (m *Model) operatingCell(bandgaps []float64) (cellResult, error) {
	env := m.Environment()
	mt, err := m.SupplyDemand(bandgaps, env)
	if err != nil {
		return cellResult{}, err
	}
	cr := cellResult{
		OperatingPoint: mt.OperatingPoint,
		power:          mt.Power,
		status:         mt.Status,
	}
	cr.efficiency = m.efficiency(cr.OperatingPoint, mt.Power)
	cr.production = m.production(cr.OperatingPoint, env.Mirror)
	if m.cfg.Mode == SparseCoverage && m.cfg.Chemistry == CO2Reduction && cr.J > 0 {
		cr.extra = m.catalyst.PeakJ / cr.J
	}
	m.logCell(bandgaps, cr)
	return cr, nil
}

func (m *Model) logCell(bandgaps []float64, cr cellResult) {
	m.Log.WithFields(logrus.Fields{
		"bandgaps":   bandgaps,
		"efficiency": cr.efficiency,
		"production": cr.production,
		"fe":         cr.FE,
		"v":          cr.V,
		"j":          cr.J,
		"status":     cr.status,
	}).Debug("pec: cell")
}
