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
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pec"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// smallGrid sets a 2×2 bandgap grid on v.
func smallGrid(v *viper.Viper) {
	v.Set("Bandgap1", "[2.0, 2.5, 0.25]")
	v.Set("Bandgap2", "[1.5, 2.0, 0.25]")
}

func TestModelConfigDefault(t *testing.T) {
	c, err := ModelConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, pec.DefaultConfig(), c)
}

func TestModelConfigScenario(t *testing.T) {
	v := viper.New()
	v.Set("Scenario", "Scenario B: solar concentration")
	c, err := ModelConfig(v)
	require.NoError(t, err)
	assert.Equal(t, pec.SolarConcentration, c.Mode)
	assert.Equal(t, 1., c.FluidResistance)
	assert.Equal(t, pec.OIIDCu, c.CO2RR)

	v.Set("FluidResistance", 3)
	v.Set("FFGoal", "0.8")
	c, err = ModelConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 3., c.FluidResistance, "explicit options override the scenario")
	assert.Equal(t, 0.8, c.FFGoal)
	assert.Equal(t, pec.SolarConcentration, c.Mode)
}

func TestModelConfigOptions(t *testing.T) {
	v := viper.New()
	v.Set("Mode", "1:1")
	v.Set("Chemistry", "HER")
	v.Set("HERCatalyst", "Common Earth, Ni-MO")
	v.Set("OERCatalyst", "NiFeOx Neutral")
	v.Set("FixedEthyleneOutput", false)
	v.Set("MirrorFactor", 2.5)
	v.Set("CacheSize", 7)
	v.Set("Bandgap1", "1.6, 2.0, 0.1")
	v.Set("Bandgap2", []interface{}{1.0, 1.5, int64(1)})
	c, err := ModelConfig(v)
	require.NoError(t, err)
	assert.Equal(t, pec.OneOnOne, c.Mode)
	assert.Equal(t, pec.HydrogenEvolution, c.Chemistry)
	assert.Equal(t, pec.CommonNiMo, c.HER)
	assert.Equal(t, pec.NiFeOxNeutral, c.OER)
	assert.False(t, c.FixedEthyleneOutput)
	assert.Equal(t, 2.5, c.MirrorFactor)
	assert.Equal(t, 7, c.CacheSize)
	assert.Equal(t, []pec.Range{{Min: 1.6, Max: 2.0, Step: 0.1}, {Min: 1.0, Max: 1.5, Step: 1}}, c.Bandgaps)
}

func TestModelConfigErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		set  map[string]interface{}
		msg  string
	}{
		{"scenario", map[string]interface{}{"Scenario": "Scenario Z"}, "invalid scenario"},
		{"mode", map[string]interface{}{"Mode": "sideways"}, "invalid mode"},
		{"chemistry", map[string]interface{}{"Chemistry": "fusion"}, "invalid chemistry"},
		{"catalyst", map[string]interface{}{"CO2RRCatalyst": "Gold"}, "invalid CO2 reduction catalyst"},
		{"ff", map[string]interface{}{"FFGoal": 1.5}, "fill factor"},
		{"float", map[string]interface{}{"FFGoal": "high"}, "invalid FFGoal"},
		{"one range", map[string]interface{}{"Bandgap1": "[1, 2, 0.1]"}, "Bandgap2 is not"},
		{"gap", map[string]interface{}{"Bandgap1": "[1, 2, 0.1]", "Bandgap3": "[1, 2, 0.1]"}, "before it"},
		{"short range", map[string]interface{}{"Bandgap1": "[1, 2]", "Bandgap2": "[1, 2, 0.1]"}, "[min, max, step]"},
		{"bad range", map[string]interface{}{"Bandgap1": "[1, x]"}, "invalid Bandgap1"},
		{"missing file", map[string]interface{}{"CustomCatalystFile": "does/not/exist.toml"}, "custom catalyst file"},
	} {
		t.Run(test.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range test.set {
				v.Set(k, val)
			}
			_, err := ModelConfig(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.msg)
		})
	}
}

func TestCustomCatalystFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(good, []byte(`
FE = [10.0, 20.0, 30.0, 20.0]
J = [10.0, 20.0, 30.0, 40.0]
V = [-0.5, -0.6, -0.7, -0.8]
`), 0644))
	v := viper.New()
	v.Set("CustomCatalystFile", good)
	c, err := ModelConfig(v)
	require.NoError(t, err)
	assert.Equal(t, pec.Custom, c.CO2RR)
	require.NotNil(t, c.CustomCO2RR)
	assert.Equal(t, []float64{10, 20, 30, 40}, c.CustomCO2RR.J)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("FE = [1.0]\nJ = [1.0]\nV = [-1.0]\nW = 2\n"), 0644))
	_, err = readCatalystTable(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys")

	short := filepath.Join(dir, "short.toml")
	require.NoError(t, os.WriteFile(short, []byte("FE = [1.0]\nJ = [1.0]\nV = [-1.0]\n"), 0644))
	_, err = readCatalystTable(short)
	assert.Error(t, err)
}

func TestToFloat64SliceE(t *testing.T) {
	for _, test := range []struct {
		in   interface{}
		want []float64
	}{
		{nil, nil},
		{"", nil},
		{"[]", []float64{}},
		{"[1, 2.5]", []float64{1, 2.5}},
		{" 1,2.5 ", []float64{1, 2.5}},
		{[]float64{3}, []float64{3}},
		{[]interface{}{int64(1), 2.5, "3"}, []float64{1, 2.5, 3}},
	} {
		have, err := toFloat64SliceE(test.in)
		require.NoError(t, err, "%#v", test.in)
		assert.Equal(t, test.want, have, "%#v", test.in)
	}
	_, err := toFloat64SliceE("[1, a]")
	assert.Error(t, err)
}

func TestGetStringMapString(t *testing.T) {
	v := viper.New()
	v.Set("a", `{"Eff": "Efficiency*2"}`)
	v.Set("b", map[string]interface{}{"Eff": "Efficiency"})
	v.Set("c", "{bad")
	v.Set("d", 3)

	m, err := GetStringMapString("a", v)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Eff": "Efficiency*2"}, m)

	m, err = GetStringMapString("b", v)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Eff": "Efficiency"}, m)

	m, err = GetStringMapString("unset", v)
	require.NoError(t, err)
	assert.Empty(t, m)

	_, err = GetStringMapString("c", v)
	assert.Error(t, err)
	_, err = GetStringMapString("d", v)
	assert.Error(t, err)
}

func TestCheckOutputVars(t *testing.T) {
	os.Setenv("PEC_TEST_EXPR", "Efficiency")
	defer os.Unsetenv("PEC_TEST_EXPR")
	o := checkOutputVars(map[string]string{"E": "2 *\r\n$PEC_TEST_EXPR\n+ 1"})
	assert.Equal(t, map[string]string{"E": "2 * Efficiency + 1"}, o)
}

func TestCheckOutputFile(t *testing.T) {
	dir := t.TempDir()
	f, err := checkOutputFile(filepath.Join(dir, "out.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.xlsx"), f)

	_, err = checkOutputFile("")
	assert.Error(t, err)
	_, err = checkOutputFile(filepath.Join(dir, "missing", "out.xlsx"))
	assert.Error(t, err)

	assert.Equal(t, filepath.Join(dir, "out.log"), checkLogFile("", filepath.Join(dir, "out.xlsx")))
	assert.Equal(t, "my.log", checkLogFile("my.log", "out.xlsx"))
	assert.Equal(t, "out_Efficiency.png", outputPath("out.xlsx", "_Efficiency", ".png"))
}

func TestLoadSpectrum(t *testing.T) {
	src, err := loadSpectrum("", quietLogger())
	require.NoError(t, err)
	assert.Equal(t, pec.ReferenceSpectrum().Wavelength[0], src.Wavelength[0])

	f := filepath.Join(t.TempDir(), "spectrum.csv")
	data := []string{
		"Wvlgth nm;Etr W*m-2*nm-1;Global tilt W*m-2*nm-1;Direct+circumsolar W*m-2*nm-1",
		"400;1,5;1,2;1,0",
		"500;1,9;1,5;1,3",
		"600;1,8;1,4;1,2",
	}
	require.NoError(t, os.WriteFile(f, []byte(strings.Join(data, "\n")), 0644))
	src, err = loadSpectrum(f, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, []float64{400, 500, 600}, src.Wavelength)
	assert.Equal(t, []float64{1.2, 1.5, 1.4}, src.Global)
	assert.Equal(t, []float64{1.0, 1.3, 1.2}, src.Direct)

	_, err = loadSpectrum(filepath.Join(t.TempDir(), "none.csv"), quietLogger())
	assert.Error(t, err)
}
