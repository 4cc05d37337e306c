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
	"os"
	"path/filepath"
	"testing"
)

// measuredSpectrumFile is the AM1.5 table in the semicolon-delimited
// format read by ReadSpectrum: wavelength, extraterrestrial, global
// tilt and direct columns.
var measuredSpectrumFile = filepath.Join("testdata", "AM1.5.csv")

// measuredSpectrum opens the AM1.5 table at measuredSpectrumFile, or
// at the path in the PEC_SPECTRUM environment variable.
func measuredSpectrum(t *testing.T) *SpectrumSource {
	path := os.Getenv("PEC_SPECTRUM")
	if path == "" {
		path = measuredSpectrumFile
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		t.Skipf("no AM1.5 table at %s", path)
	}
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	src, err := ReadSpectrum(f)
	if err != nil {
		t.Fatal(err)
	}
	return src
}

// TestMeasuredSpectrum sweeps a sparse coverage cell with an OD(II)-Cu
// cathode and a NiFeOx anode over the published bandgap grid and
// checks that the optimum lands near (1.8, 1.2) eV at a mid-teens
// solar-to-ethylene efficiency.
func TestMeasuredSpectrum(t *testing.T) {
	if testing.Short() {
		t.Skip("full bandgap sweep")
	}
	src := measuredSpectrum(t)
	s, err := src.Spectrum(1, false)
	if err != nil {
		t.Fatal(err)
	}
	if s.Power < 90 || s.Power > 110 {
		t.Errorf("global power %g mW/cm² is not near one sun", s.Power)
	}

	cfg := DefaultConfig()
	cfg.Bandgaps = []Range{
		{Min: 1.6, Max: 2.625, Step: 0.05},
		{Min: 1.0, Max: 2.125, Step: 0.05},
	}
	m, err := NewModel(cfg, src)
	if err != nil {
		t.Fatal(err)
	}
	m.Log = quietLogger()
	r, err := m.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	if n := len(r.Axes[0]); n != 21 {
		t.Fatalf("top junction axis has %d bandgaps, want 21", n)
	}
	if n := len(r.Axes[1]); n != 23 {
		t.Fatalf("bottom junction axis has %d bandgaps, want 23", n)
	}
	const tolerance = 0.05 + 1e-9
	best := r.BestBandgaps
	if math.Abs(best[0]-1.8) > tolerance || math.Abs(best[1]-1.2) > tolerance {
		t.Errorf("optimum at %v, want (1.8, 1.2) ± 0.05 eV", best)
	}
	if eff := r.Efficiency.Elements[r.Best]; eff < 12 || eff > 18 {
		t.Errorf("best efficiency %g%%, want the mid-teens", eff)
	}
}
