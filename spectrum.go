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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/integrate"
)

// Spectrum holds an illumination spectrum and the photon flux derived
// from it. A Spectrum should not be modified after it is created.
type Spectrum struct {
	// Wavelength is in units of nm and is strictly increasing.
	Wavelength []float64

	// Irradiance is in units of W/m²/nm.
	Irradiance []float64

	// Flux is the photon flux in units of photons/m²/s/nm.
	Flux []float64

	// Power is the integrated irradiance in units of mW/cm².
	Power float64
}

// NewSpectrum creates a new spectrum from wavelengths [nm] and
// irradiances [W/m²/nm], multiplying the irradiance by concentration.
func NewSpectrum(wavelength, irradiance []float64, concentration float64) (*Spectrum, error) {
	if len(wavelength) != len(irradiance) {
		return nil, fmt.Errorf("pec: spectrum has %d wavelengths but %d irradiance values", len(wavelength), len(irradiance))
	}
	if len(wavelength) < 2 {
		return nil, fmt.Errorf("pec: spectrum needs at least 2 samples but has %d", len(wavelength))
	}
	if !(concentration > 0) {
		return nil, fmt.Errorf("pec: solar concentration is %g but should be >0", concentration)
	}
	s := &Spectrum{
		Wavelength: make([]float64, len(wavelength)),
		Irradiance: make([]float64, len(wavelength)),
		Flux:       make([]float64, len(wavelength)),
	}
	for i, wl := range wavelength {
		if i > 0 && !(wl > wavelength[i-1]) {
			return nil, fmt.Errorf("pec: spectrum wavelengths must be strictly increasing but %g follows %g", wl, wavelength[i-1])
		}
		if irradiance[i] < 0 || math.IsNaN(irradiance[i]) {
			return nil, fmt.Errorf("pec: spectrum irradiance at %g nm is %g but should be >=0", wl, irradiance[i])
		}
		s.Wavelength[i] = wl
		s.Irradiance[i] = irradiance[i] * concentration
		s.Flux[i] = s.Irradiance[i] * wl * 1e-9 / planck / lightSpeed
	}
	s.Power = integrate.Trapezoidal(s.Wavelength, s.Irradiance) / 10
	return s, nil
}

// absorbed returns the number of samples with a wavelength <= lambdaMax.
func (s *Spectrum) absorbed(lambdaMax float64) int {
	return sort.Search(len(s.Wavelength), func(i int) bool { return s.Wavelength[i] > lambdaMax })
}

// PhotoCurrent returns the current density [mA/cm²] generated if every
// photon with a wavelength <= lambdaMax [nm] is absorbed.
func (s *Spectrum) PhotoCurrent(lambdaMax float64) float64 {
	n := s.absorbed(lambdaMax)
	if n < 2 {
		return 0
	}
	return charge * integrate.Trapezoidal(s.Wavelength[:n], s.Flux[:n]) / 10
}

// Residual returns a copy of the spectrum where every sample with a
// wavelength <= lambdaMax [nm] has been absorbed. It is the
// spectrum seen by a junction stacked below one with absorption edge
// lambdaMax.
func (s *Spectrum) Residual(lambdaMax float64) *Spectrum {
	n := s.absorbed(lambdaMax)
	r := &Spectrum{
		Wavelength: s.Wavelength,
		Irradiance: make([]float64, len(s.Irradiance)),
		Flux:       make([]float64, len(s.Flux)),
	}
	copy(r.Irradiance[n:], s.Irradiance[n:])
	copy(r.Flux[n:], s.Flux[n:])
	r.Power = integrate.Trapezoidal(r.Wavelength, r.Irradiance) / 10
	return r
}

// AbsorptionEdge returns the longest wavelength [nm] that a junction
// with the given bandgap [eV] absorbs.
func AbsorptionEdge(bandgap float64) float64 { return nmeV / bandgap }

// SpectrumSource holds an illumination table with global and direct
// irradiance columns.
type SpectrumSource struct {
	Wavelength []float64 // nm
	Global     []float64 // W/m²/nm, used without mirrors
	Direct     []float64 // W/m²/nm, used when light is concentrated by mirrors
}

// Spectrum returns the spectrum for the given concentration factor.
// If direct is true, the direct irradiance column is used.
func (src *SpectrumSource) Spectrum(concentration float64, direct bool) (*Spectrum, error) {
	if direct {
		return NewSpectrum(src.Wavelength, src.Direct, concentration)
	}
	return NewSpectrum(src.Wavelength, src.Global, concentration)
}

// Spectrum file columns.
const (
	wavelengthColumn = 0
	globalColumn     = 2
	directColumn     = 3
)

// ReadSpectrum reads a semicolon-delimited spectral table in which
// column 0 is the wavelength [nm], column 2 is the global
// irradiance and column 3 is the direct irradiance [W/m²/nm]. Decimal
// commas, quotes and byte-string markers are removed before parsing.
// Rows that cannot be parsed as numbers, such as headers, are skipped.
func ReadSpectrum(r io.Reader) (*SpectrumSource, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	clean := strings.NewReplacer(",", ".", "'", "", "\"", "", "b", "")

	src := new(SpectrumSource)
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("pec: reading spectrum line %d: %v", line, err)
		}
		if len(rec) <= directColumn {
			return nil, fmt.Errorf("pec: spectrum line %d has %d columns but needs %d", line, len(rec), directColumn+1)
		}
		var vals [directColumn + 1]float64
		ok := true
		for _, c := range []int{wavelengthColumn, globalColumn, directColumn} {
			v, err := strconv.ParseFloat(strings.TrimSpace(clean.Replace(rec[c])), 64)
			if err != nil {
				ok = false
				break
			}
			vals[c] = v
		}
		if !ok {
			if len(src.Wavelength) == 0 {
				continue // header
			}
			return nil, fmt.Errorf("pec: spectrum line %d: invalid number in %q", line, rec)
		}
		src.Wavelength = append(src.Wavelength, vals[wavelengthColumn])
		src.Global = append(src.Global, vals[globalColumn])
		src.Direct = append(src.Direct, vals[directColumn])
	}
	if len(src.Wavelength) < 2 {
		return nil, fmt.Errorf("pec: spectrum file has %d data rows but needs at least 2", len(src.Wavelength))
	}
	return src, nil
}

// ReferenceSpectrum returns a 5778 K blackbody spectrum between 280 and
// 4000 nm, scaled to a global power of 100 mW/cm² and a direct power of
// 90 mW/cm². It stands in for measured AM1.5 data when none is
// available.
func ReferenceSpectrum() *SpectrumSource {
	const (
		sunTemperature = 5778. // K
		globalPower    = 1000. // W/m²
		directPower    = 900.  // W/m²
	)
	wl := arange(280, 4000.5, 1)
	b := make([]float64, len(wl))
	for i, l := range wl {
		lm := l * 1e-9
		b[i] = 2 * planck * lightSpeed * lightSpeed / math.Pow(lm, 5) /
			math.Expm1(planck*lightSpeed/(lm*boltzmann*sunTemperature))
	}
	total := integrate.Trapezoidal(wl, b)
	src := &SpectrumSource{
		Wavelength: wl,
		Global:     make([]float64, len(wl)),
		Direct:     make([]float64, len(wl)),
	}
	for i, v := range b {
		src.Global[i] = v * globalPower / total
		src.Direct[i] = v * directPower / total
	}
	return src
}
