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

package pecutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/pec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var b bytes.Buffer
	Root.SetOut(&b)
	Root.SetArgs([]string{"version"})
	require.NoError(t, Root.Execute())
	assert.Equal(t, "PEC v"+pec.Version+"\n", b.String())
}

func TestScenariosCommand(t *testing.T) {
	var b bytes.Buffer
	Root.SetOut(&b)
	Root.SetArgs([]string{"presets"})
	require.NoError(t, Root.Execute())
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	assert.Equal(t, ScenarioNames(), lines)
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	Root.SetOut(io.Discard)
	Cfg.Set("Bandgap1", "[2.0, 2.5, 0.25]")
	Cfg.Set("Bandgap2", "[1.5, 2.0, 0.25]")

	t.Run("run", func(t *testing.T) {
		out := filepath.Join(dir, "run.xlsx")
		Cfg.Set("OutputFile", out)
		Cfg.Set("OutputVariables", map[string]interface{}{"Eff": "Efficiency"})
		Root.SetArgs([]string{"run"})
		require.NoError(t, Root.Execute())
		for _, f := range []string{"run.xlsx", "run.log", "run.html", "run.toml", "run_Eff.png"} {
			_, err := os.Stat(filepath.Join(dir, f))
			assert.NoError(t, err, f)
		}
	})
	t.Run("curve", func(t *testing.T) {
		Cfg.Set("OutputFile", filepath.Join(dir, "cell.xlsx"))
		Cfg.Set("Bandgaps", "[2.0, 1.5]")
		Root.SetArgs([]string{"curve"})
		require.NoError(t, Root.Execute())
		_, err := os.Stat(filepath.Join(dir, "cell_curve.png"))
		assert.NoError(t, err)
	})
	t.Run("vary", func(t *testing.T) {
		Cfg.Set("OutputFile", filepath.Join(dir, "vary.xlsx"))
		Cfg.Set("Factors", "[0.5, 1]")
		Root.SetArgs([]string{"vary"})
		require.NoError(t, Root.Execute())
		for _, f := range []string{"vary.xlsx", "vary.png", "vary.html", "vary.log"} {
			_, err := os.Stat(filepath.Join(dir, f))
			assert.NoError(t, err, f)
		}
	})
	t.Run("degrade", func(t *testing.T) {
		Cfg.Set("OutputFile", filepath.Join(dir, "degrade.xlsx"))
		Cfg.Set("Degradation", "[0, 10]")
		Root.SetArgs([]string{"degrade"})
		require.NoError(t, Root.Execute())
		_, err := os.Stat(filepath.Join(dir, "degrade.xlsx"))
		assert.NoError(t, err)
	})
	t.Run("isocurve", func(t *testing.T) {
		Cfg.Set("OutputFile", filepath.Join(dir, "iso.xlsx"))
		Cfg.Set("IsocurveVoltages", "[-0.4, -0.8]")
		Cfg.Set("IsocurveFERange", "[30, 60]")
		Root.SetArgs([]string{"isocurve"})
		require.NoError(t, Root.Execute())
		_, err := os.Stat(filepath.Join(dir, "iso.xlsx"))
		assert.NoError(t, err)
	})
	t.Run("bad output directory", func(t *testing.T) {
		Cfg.Set("OutputFile", filepath.Join(dir, "missing", "out.xlsx"))
		Root.SetArgs([]string{"run"})
		assert.Error(t, Root.Execute())
	})
}
