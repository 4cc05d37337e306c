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

// Model computes operating points of cells for a configuration and a
// spectrum source.
type Model struct {
	cfg      Config
	source   *SpectrumSource
	catalyst *Catalyst
	cache    *curveCache

	// Log receives status messages. It defaults to the logrus standard
	// logger.
	Log logrus.FieldLogger
}

// NewModel validates cfg and creates a new model that illuminates cells
// with src.
func NewModel(cfg Config, src *SpectrumSource) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("pec: no spectrum source given")
	}
	if len(src.Wavelength) != len(src.Global) || len(src.Wavelength) != len(src.Direct) {
		return nil, fmt.Errorf("pec: spectrum source has %d wavelengths, %d global and %d direct values but they should be the same",
			len(src.Wavelength), len(src.Global), len(src.Direct))
	}
	cat, err := NewCatalyst(cfg)
	if err != nil {
		return nil, err
	}
	cfg.Bandgaps = append([]Range(nil), cfg.Bandgaps...)
	return &Model{
		cfg:      cfg,
		source:   src,
		catalyst: cat,
		cache:    newCurveCache(cfg.CacheSize),
		Log:      logrus.StandardLogger(),
	}, nil
}

// derive returns a model for cfg that shares m's spectrum source,
// junction-curve cache and logger.
func (m *Model) derive(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cat, err := NewCatalyst(cfg)
	if err != nil {
		return nil, err
	}
	return &Model{cfg: cfg, source: m.source, catalyst: cat, cache: m.cache, Log: m.Log}, nil
}

// Config returns a copy of the model configuration.
func (m *Model) Config() Config {
	c := m.cfg
	c.Bandgaps = append([]Range(nil), m.cfg.Bandgaps...)
	return c
}

// Catalyst returns the model's catalyst.
func (m *Model) Catalyst() *Catalyst { return m.catalyst }

// Environment describes the illumination and catalyst loading of a
// cell.
type Environment struct {
	// Concentration multiplies the spectrum irradiance.
	Concentration float64

	// Mirror is the mirror concentration factor. The direct spectrum
	// is used when it is not 1, and production rates are given per
	// unit of mirror area.
	Mirror float64

	// Concentrator is the ratio of light-harvesting area to reduction
	// catalyst area.
	Concentrator float64

	// FixedFE assumes the reduction catalyst runs at its peak Faradaic
	// efficiency.
	FixedFE bool
}

// Environment returns the environment configured for m.
func (m *Model) Environment() Environment {
	return Environment{
		Concentration: m.cfg.Concentration,
		Mirror:        m.cfg.MirrorFactor,
		Concentrator:  1,
		FixedFE:       m.cfg.FixedEthyleneOutput,
	}
}

func (env Environment) direct() bool { return env.Mirror != 1 }

// spectrum returns the spectrum for env.
func (m *Model) spectrum(env Environment) (*Spectrum, error) {
	key := spectrumKey{concentration: env.Concentration, direct: env.direct()}
	if s, ok := m.cache.get(key); ok {
		return s.(*Spectrum), nil
	}
	s, err := m.source.Spectrum(env.Concentration, env.direct())
	if err != nil {
		return nil, err
	}
	m.cache.add(key, s)
	return s, nil
}

// Stack returns the fill-factor matched tandem cell with the given
// bandgaps under the illumination of env.
func (m *Model) Stack(bandgaps []float64, env Environment) (*Stack, *Spectrum, error) {
	s, err := m.spectrum(env)
	if err != nil {
		return nil, nil, err
	}
	st, err := buildStack(s, bandgaps, func(s *Spectrum, eg, upper float64, pos StackPosition) (FillFactorResult, error) {
		key := curveKey{
			concentration: env.Concentration,
			direct:        env.direct(),
			bandgap:       eg,
			upper:         upper,
			ffGoal:        m.cfg.FFGoal,
		}
		if r, ok := m.cache.get(key); ok {
			return r.(FillFactorResult), nil
		}
		r, err := MatchFillFactor(s, eg, m.cfg.FFGoal, pos)
		if err != nil {
			return r, err
		}
		if r.Status == Capped || r.Suspect() {
			m.Log.WithFields(logrus.Fields{
				"bandgap":   eg,
				"status":    r.Status,
				"ff":        r.FF,
				"rs":        r.Rs,
				"voc shift": r.VocShift,
			}).Debug("pec: fill factor match is approximate")
		}
		m.cache.add(key, r)
		return r, nil
	})
	return st, s, err
}

// reductionMode returns the catalyst lookup used for env.
func (m *Model) reductionMode(env Environment) ReductionMode {
	if m.cfg.Mode == SparseCoverage && env.FixedFE {
		return Optimal
	}
	return Interpolated
}

// demandCurrents returns the current densities [mA/cm²] that the
// catalyst demand curve is evaluated at for a supply curve whose
// largest current is jMax.
func (m *Model) demandCurrents(jMax float64, env Environment) []float64 {
	return arange(0.1, 1.2*jMax, m.cfg.CurrentAccuracy*env.Mirror)
}

// demandCurve returns the voltage needed by the catalysts at each
// current in j.
func (m *Model) demandCurve(j []float64, env Environment) Curve {
	c := Curve{V: make([]float64, len(j)), J: j}
	if m.cfg.Mode == PVEC {
		// The electrolyzer always runs at the catalyst's peak current.
		v := m.catalyst.RequiredVoltage(m.catalyst.PeakJ, Interpolated, env.Concentrator).Total
		for i := range c.V {
			c.V[i] = v
		}
		return c
	}
	mode := m.reductionMode(env)
	for i, ji := range j {
		c.V[i] = m.catalyst.RequiredVoltage(ji, mode, env.Concentrator).Total
	}
	return c
}

// Match is the result of searching for the operating point of a cell.
type Match struct {
	OperatingPoint

	// Stack is the tandem cell and Demand the catalyst voltage demand.
	Stack  *Stack
	Demand Curve

	// Power is the incident power density [mW/cm²].
	Power float64

	Status Status
}

// Supply returns the current-voltage curve of the tandem cell.
func (mt *Match) Supply() Curve { return mt.Stack.Curve }

// SupplyDemand returns the supply and demand curves of the cell with
// the given bandgaps [eV] and their operating point. When the curves
// cross more than once, the crossing at the lowest supply voltage is
// used.
func (m *Model) SupplyDemand(bandgaps []float64, env Environment) (*Match, error) {
	st, s, err := m.Stack(bandgaps, env)
	if err != nil {
		return nil, err
	}
	supply := st.Curve
	mt := &Match{
		Stack:  st,
		Demand: m.demandCurve(m.demandCurrents(floats.Max(supply.J), env), env),
		Power:  s.Power,
	}
	pts := Intersect(supply.V, supply.J, mt.Demand.V, mt.Demand.J)
	if len(pts) == 0 {
		mt.Status = NoIntersection
		return mt, nil
	}
	mt.V, mt.J = pts[0].X, pts[0].Y
	switch {
	case m.cfg.Mode == PVEC || env.FixedFE:
		mt.FE = m.catalyst.PeakFE
	default:
		mt.FE = m.catalyst.FaradaicEfficiencyAt(mt.J * env.Concentrator)
	}
	mt.Status = stackStatus(st)
	return mt, nil
}

// FindCurrentMatch returns the operating point of the cell with the
// given bandgaps [eV]. The zero OperatingPoint is returned if the
// supply and demand curves do not cross.
func (m *Model) FindCurrentMatch(bandgaps []float64, env Environment) (OperatingPoint, Status, error) {
	mt, err := m.SupplyDemand(bandgaps, env)
	if err != nil {
		return OperatingPoint{}, 0, err
	}
	return mt.OperatingPoint, mt.Status, nil
}

// stackStatus summarizes the fill-factor matching of the junctions in
// st.
func stackStatus(st *Stack) Status {
	status := Converged
	for _, j := range st.Junctions {
		switch {
		case j.Status == Capped:
			return Capped
		case j.Suspect():
			status = Suspect
		}
	}
	return status
}

// efficiency returns the solar-to-fuel efficiency [%] of operating
// point p under incident power [mW/cm²].
func (m *Model) efficiency(p OperatingPoint, power float64) float64 {
	if m.cfg.Chemistry == HydrogenEvolution {
		return SolarToHydrogen(p.J, power)
	}
	return SolarToEthylene(p.J, p.FE, power)
}

// production returns the ethylene production rate [µmol/h/cm²] at
// operating point p, or 0 for hydrogen evolution.
func (m *Model) production(p OperatingPoint, mirror float64) float64 {
	if m.cfg.Chemistry == HydrogenEvolution {
		return 0
	}
	return EthyleneProduction(p.J, p.FE, mirror)
}
