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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pec"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) map[string]string {
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="pec.xlsx")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("pecutil: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}

// outputPath returns outputFile with its extension replaced by ext.
func outputPath(outputFile, suffix, ext string) string {
	return strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + suffix + ext
}

// ModelConfig returns the model configuration held in cfg. The
// configuration starts from pec.DefaultConfig, then the Scenario
// setting is applied, and finally any individually set options
// override the scenario.
func ModelConfig(cfg *viper.Viper) (pec.Config, error) {
	c := pec.DefaultConfig()
	if s := os.ExpandEnv(cfg.GetString("Scenario")); s != "" {
		if err := ApplyScenario(&c, s); err != nil {
			return c, err
		}
	}
	var err error
	if cfg.IsSet("Mode") {
		if c.Mode, err = pec.ParseMode(cfg.GetString("Mode")); err != nil {
			return c, err
		}
	}
	if cfg.IsSet("Chemistry") {
		if c.Chemistry, err = pec.ParseChemistry(cfg.GetString("Chemistry")); err != nil {
			return c, err
		}
	}
	if cfg.IsSet("OERCatalyst") {
		c.OER = pec.OERCatalyst(cfg.GetString("OERCatalyst"))
	}
	if cfg.IsSet("HERCatalyst") {
		c.HER = pec.HERCatalyst(cfg.GetString("HERCatalyst"))
	}
	if cfg.IsSet("CO2RRCatalyst") {
		c.CO2RR = pec.CO2RRCatalyst(cfg.GetString("CO2RRCatalyst"))
	}
	if f := os.ExpandEnv(cfg.GetString("CustomCatalystFile")); f != "" {
		if c.CustomCO2RR, err = readCatalystTable(f); err != nil {
			return c, err
		}
		if !cfg.IsSet("CO2RRCatalyst") {
			c.CO2RR = pec.Custom
		}
	}
	floatOpts := []struct {
		name string
		v    *float64
	}{
		{"VariableVMax", &c.VariableVMax},
		{"VariableMaxFE", &c.VariableMaxFE},
		{"FluidResistance", &c.FluidResistance},
		{"FFGoal", &c.FFGoal},
		{"Concentration", &c.Concentration},
		{"MirrorFactor", &c.MirrorFactor},
		{"CurrentAccuracy", &c.CurrentAccuracy},
		{"VoltageAccuracy", &c.VoltageAccuracy},
	}
	for _, o := range floatOpts {
		if cfg.IsSet(o.name) {
			if *o.v, err = cast.ToFloat64E(cfg.Get(o.name)); err != nil {
				return c, fmt.Errorf("pecutil: invalid %s: %v", o.name, err)
			}
		}
	}
	if cfg.IsSet("FixedEthyleneOutput") {
		c.FixedEthyleneOutput = cfg.GetBool("FixedEthyleneOutput")
	}
	if cfg.IsSet("MaxConcentrationIterations") {
		c.MaxConcentrationIterations = cfg.GetInt("MaxConcentrationIterations")
	}
	if cfg.IsSet("CacheSize") {
		c.CacheSize = cfg.GetInt("CacheSize")
	}
	if bg, err := bandgapRanges(cfg); err != nil {
		return c, err
	} else if bg != nil {
		c.Bandgaps = bg
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// bandgapRanges returns the bandgap ranges set by the Bandgap1,
// Bandgap2 and Bandgap3 options, or nil if none are set. Each option
// holds [min, max, step].
func bandgapRanges(cfg *viper.Viper) ([]pec.Range, error) {
	var o []pec.Range
	for i, name := range []string{"Bandgap1", "Bandgap2", "Bandgap3"} {
		if !cfg.IsSet(name) {
			continue
		}
		v, err := toFloat64SliceE(cfg.Get(name))
		if err != nil {
			return nil, fmt.Errorf("pecutil: invalid %s: %v", name, err)
		}
		if len(v) == 0 {
			continue
		}
		if len(v) != 3 {
			return nil, fmt.Errorf("pecutil: %s should be [min, max, step] but is %v", name, v)
		}
		if len(o) != i {
			return nil, fmt.Errorf("pecutil: %s is set but the bandgap ranges before it are not", name)
		}
		o = append(o, pec.Range{Min: v[0], Max: v[1], Step: v[2]})
	}
	if len(o) == 1 {
		return nil, fmt.Errorf("pecutil: Bandgap1 is set but Bandgap2 is not")
	}
	return o, nil
}

// toFloat64SliceE converts s to a slice of floats. s can be a
// slice read from a configuration file or a string holding a JSON
// array or comma-separated values, as set from the command line or an
// environment variable.
func toFloat64SliceE(s interface{}) ([]float64, error) {
	switch v := s.(type) {
	case nil:
		return nil, nil
	case []float64:
		return v, nil
	case []interface{}:
		o := make([]float64, len(v))
		for i, val := range v {
			f, err := cast.ToFloat64E(val)
			if err != nil {
				return nil, err
			}
			o[i] = f
		}
		return o, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, nil
		}
		if !strings.HasPrefix(v, "[") {
			v = "[" + v + "]"
		}
		var o []float64
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return cast.ToFloat64SliceE(s)
	}
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("pecutil: invalid %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("pecutil: invalid type for %s: %#v", varName, i)
	}
}

// readCatalystTable reads CO2 reduction catalyst measurements from a
// TOML file with FE [%], J [mA/cm²] and V [V vs RHE] arrays.
func readCatalystTable(path string) (*pec.CO2RRTable, error) {
	t := new(pec.CO2RRTable)
	md, err := toml.DecodeFile(path, t)
	if err != nil {
		return nil, fmt.Errorf("pecutil: reading custom catalyst file: %v", err)
	}
	if u := md.Undecoded(); len(u) > 0 {
		return nil, fmt.Errorf("pecutil: custom catalyst file %s has unknown keys %v", path, u)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("pecutil: custom catalyst file %s: %v", path, err)
	}
	return t, nil
}

// loadSpectrum reads the spectral table at path. If path is empty the
// reference blackbody spectrum is returned.
func loadSpectrum(path string, log logrus.FieldLogger) (*pec.SpectrumSource, error) {
	path = os.ExpandEnv(path)
	if path == "" {
		log.Warn("pecutil: no SpectrumFile given; using the blackbody reference spectrum")
		return pec.ReferenceSpectrum(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pecutil: opening spectrum: %v", err)
	}
	defer f.Close()
	src, err := pec.ReadSpectrum(f)
	if err != nil {
		return nil, fmt.Errorf("pecutil: %s: %v", path, err)
	}
	log.WithField("rows", len(src.Wavelength)).Info("pecutil: read spectrum " + path)
	return src, nil
}
