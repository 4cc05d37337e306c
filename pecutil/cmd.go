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

// Package pecutil contains the command line interface, configuration
// handling, output writers and HTTP server of the PEC model.
package pecutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/pec"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	def := pec.DefaultConfig()

	// modelSets are the flag sets of the commands that build a model.
	modelSets := []*pflag.FlagSet{runCmd.Flags(), varyCmd.Flags(), degradeCmd.Flags(),
		isocurveCmd.Flags(), curveCmd.Flags()}
	outputSets := []*pflag.FlagSet{runCmd.Flags(), varyCmd.Flags(), degradeCmd.Flags(),
		isocurveCmd.Flags(), curveCmd.Flags()}
	cellSets := []*pflag.FlagSet{varyCmd.Flags(), degradeCmd.Flags(), curveCmd.Flags()}

	// Options are the configuration options available to PEC.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Scenario",
			usage: `
              Scenario specifies a named cell scenario that sets the mode,
              catalysts, electrolyte resistance, fill factor and bandgap grid.
              Options set individually override the scenario. Run
              'pec scenarios' to list the available scenarios.`,
			shorthand:  "s",
			defaultVal: "",
			flagsets:   modelSets,
		},
		{
			name: "Mode",
			usage: `
              Mode specifies how light and catalyst areas are coupled. Options
              are "1:1", "sparse coverage", "solar concentration", "PV-EC" and
              "Solar cells".`,
			defaultVal: def.Mode.String(),
			flagsets:   modelSets,
		},
		{
			name: "Chemistry",
			usage: `
              Chemistry specifies the reduction reaction: "CO2 reduction" or "HER".`,
			defaultVal: def.Chemistry.String(),
			flagsets:   modelSets,
		},
		{
			name: "OERCatalyst",
			usage: `
              OERCatalyst specifies the oxygen evolution catalyst.`,
			defaultVal: string(def.OER),
			flagsets:   modelSets,
		},
		{
			name: "HERCatalyst",
			usage: `
              HERCatalyst specifies the hydrogen evolution catalyst. It is
              used when Chemistry is "HER".`,
			defaultVal: string(def.HER),
			flagsets:   modelSets,
		},
		{
			name: "CO2RRCatalyst",
			usage: `
              CO2RRCatalyst specifies the CO2 reduction catalyst. "Variable"
              is a hypothetical catalyst defined by VariableVMax and
              VariableMaxFE, and "Custom" reads CustomCatalystFile.`,
			defaultVal: string(def.CO2RR),
			flagsets:   modelSets,
		},
		{
			name: "CustomCatalystFile",
			usage: `
              CustomCatalystFile is the path to a TOML file holding FE [%],
              J [mA/cm²] and V [V vs RHE] arrays of CO2 reduction catalyst
              measurements. If set, CO2RRCatalyst defaults to "Custom".`,
			defaultVal: "",
			flagsets:   modelSets,
		},
		{
			name: "VariableVMax",
			usage: `
              VariableVMax is the voltage [V vs RHE] at which the Variable CO2
              reduction catalyst reaches its peak Faradaic efficiency.`,
			defaultVal: def.VariableVMax,
			flagsets:   modelSets,
		},
		{
			name: "VariableMaxFE",
			usage: `
              VariableMaxFE is the peak ethylene Faradaic efficiency [%] of the
              Variable CO2 reduction catalyst.`,
			defaultVal: def.VariableMaxFE,
			flagsets:   modelSets,
		},
		{
			name: "FluidResistance",
			usage: `
              FluidResistance is the electrolyte resistance [Ω cm²].`,
			defaultVal: def.FluidResistance,
			flagsets:   modelSets,
		},
		{
			name: "FFGoal",
			usage: `
              FFGoal is the fill factor that every junction is matched to by
              adding series resistance.`,
			defaultVal: def.FFGoal,
			flagsets:   modelSets,
		},
		{
			name: "Bandgap1",
			usage: `
              Bandgap1 is the [min, max, step] bandgap range [eV] of the top
              junction. If not set, the range is chosen from the mode and
              chemistry.`,
			defaultVal: []float64{},
			flagsets:   modelSets,
		},
		{
			name: "Bandgap2",
			usage: `
              Bandgap2 is the [min, max, step] bandgap range [eV] of the
              second junction.`,
			defaultVal: []float64{},
			flagsets:   modelSets,
		},
		{
			name: "Bandgap3",
			usage: `
              Bandgap3 is the [min, max, step] bandgap range [eV] of the
              third junction. Set it to model triple-junction cells.`,
			defaultVal: []float64{},
			flagsets:   modelSets,
		},
		{
			name: "Concentration",
			usage: `
              Concentration multiplies the spectrum irradiance.`,
			defaultVal: def.Concentration,
			flagsets:   modelSets,
		},
		{
			name: "MirrorFactor",
			usage: `
              MirrorFactor is the geometric concentration by mirrors. When it
              is not 1 the direct irradiance column of the spectrum is used.`,
			defaultVal: def.MirrorFactor,
			flagsets:   modelSets,
		},
		{
			name: "FixedEthyleneOutput",
			usage: `
              FixedEthyleneOutput specifies whether the reduction catalyst is
              assumed to run at its peak Faradaic efficiency.`,
			defaultVal: def.FixedEthyleneOutput,
			flagsets:   modelSets,
		},
		{
			name: "CurrentAccuracy",
			usage: `
              CurrentAccuracy is the current step [mA/cm²] of catalyst demand
              curves.`,
			defaultVal: def.CurrentAccuracy,
			flagsets:   modelSets,
		},
		{
			name: "VoltageAccuracy",
			usage: `
              VoltageAccuracy is the voltage step [V] of extended catalyst
              tables.`,
			defaultVal: def.VoltageAccuracy,
			flagsets:   modelSets,
		},
		{
			name: "MaxConcentrationIterations",
			usage: `
              MaxConcentrationIterations limits the mirror search in
              "solar concentration" mode.`,
			defaultVal: def.MaxConcentrationIterations,
			flagsets:   modelSets,
		},
		{
			name: "CacheSize",
			usage: `
              CacheSize is the number of junction curves kept in memory.`,
			defaultVal: def.CacheSize,
			flagsets:   modelSets,
		},
		{
			name: "SpectrumFile",
			usage: `
              SpectrumFile is the path to a semicolon-delimited spectral table
              with the wavelength [nm] in column 1, the global irradiance
              [W/m²/nm] in column 3 and the direct irradiance in column 4. If
              it is not set, a blackbody reference spectrum is used.`,
			defaultVal: "",
			flagsets:   append(append([]*pflag.FlagSet{}, modelSets...), serveCmd.Flags()),
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the output workbook. Plots, reports and
              summaries are written next to it with the same base name.`,
			shorthand:  "o",
			defaultVal: "pec.xlsx",
			flagsets:   outputSets,
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the log file. If it is not set, the log is
              written next to OutputFile.`,
			defaultVal: "",
			flagsets:   outputSets,
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies the derived outputs of a sweep as a
              map of names to expressions of the grid variables Eg1, Eg2, Eg3,
              Efficiency, FaradaicEfficiency, Voltage, Current, Production,
              Extra, SolarEfficiency and Power. Outputs can refer to each other.`,
			defaultVal: map[string]string{
				"Efficiency": "Efficiency",
				"Current":    "Current",
				"Production": "Production",
			},
			flagsets: []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OpenReport",
			usage: `
              OpenReport specifies whether to open the HTML report in a web
              browser when the run finishes.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Bandgaps",
			usage: `
              Bandgaps holds the junction bandgaps [eV] of a single cell, top
              first. If it is not set, the best cell of a bandgap sweep is used.`,
			defaultVal: []float64{},
			flagsets:   cellSets,
		},
		{
			name: "Concentrator",
			usage: `
              Concentrator is the ratio of light-harvesting area to reduction
              catalyst area of a single cell. If it is <= 0, the value of the
              best cell of a sweep is used, or 1 when Bandgaps is set.`,
			defaultVal: 0.,
			flagsets:   cellSets,
		},
		{
			name: "Factors",
			usage: `
              Factors holds the illumination intensity factors. The default
              is 0.1 to 1.5 in steps of 0.01.`,
			defaultVal: []float64{},
			flagsets:   []*pflag.FlagSet{varyCmd.Flags()},
		},
		{
			name: "Degradation",
			usage: `
              Degradation holds the catalyst degradation percentages. The
              default is 0 to 35 in steps of 1.`,
			defaultVal: []float64{},
			flagsets:   []*pflag.FlagSet{degradeCmd.Flags()},
		},
		{
			name: "IsocurveVoltages",
			usage: `
              IsocurveVoltages holds the peak voltages [V vs RHE] of the
              hypothetical catalysts. The default is 0 to -1.65 in steps of
              -0.05.`,
			defaultVal: []float64{},
			flagsets:   []*pflag.FlagSet{isocurveCmd.Flags()},
		},
		{
			name: "IsocurveFE",
			usage: `
              IsocurveFE is the peak Faradaic efficiency [%] of the
              hypothetical catalysts. If it is <= 0, VariableMaxFE is used.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{isocurveCmd.Flags()},
		},
		{
			name: "IsocurveFERange",
			usage: `
              IsocurveFERange holds the Faradaic efficiencies [%] at which
              production and efficiency are tabulated. The default is 0 to 99.`,
			defaultVal: []float64{},
			flagsets:   []*pflag.FlagSet{isocurveCmd.Flags()},
		},
		{
			name: "Addr",
			usage: `
              Addr is the address the server listens on.`,
			defaultVal: ":8080",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "RedisAddr",
			usage: `
              RedisAddr is the address of a redis server used to share cached
              responses between servers. If it is not set, responses are only
              cached in memory.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "ResponseCacheSize",
			usage: `
              ResponseCacheSize is the number of responses the server keeps in
              memory.`,
			defaultVal: 1000,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("PEC")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case []float64, map[string]string:
				// Slices and maps are passed as JSON.
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(bytes.TrimSpace(b.Bytes()))
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(scenariosCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(varyCmd)
	Root.AddCommand(degradeCmd)
	Root.AddCommand(isocurveCmd)
	Root.AddCommand(curveCmd)
	Root.AddCommand(serveCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("pec: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// getFloat64Slice returns the slice held by option name, or nil if it
// is empty.
func getFloat64Slice(cfg *viper.Viper, name string) ([]float64, error) {
	v, err := toFloat64SliceE(cfg.Get(name))
	if err != nil {
		return nil, fmt.Errorf("pec: invalid %s: %v", name, err)
	}
	if len(v) == 0 {
		return nil, nil
	}
	return v, nil
}

// outputs returns the output and log file paths.
func outputs(cfg *viper.Viper) (outputFile, logFile string, err error) {
	outputFile, err = checkOutputFile(cfg.GetString("OutputFile"))
	if err != nil {
		return "", "", err
	}
	return outputFile, checkLogFile(cfg.GetString("LogFile"), outputFile), nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "pec",
	Short: "A tandem photoelectrochemical cell model.",
	Long: `PEC models tandem-junction photoelectrochemical cells that drive CO2
reduction to ethylene or hydrogen evolution. Use the subcommands specified
below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'PEC_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of PEC.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("PEC v%s\n", pec.Version)
	},
	DisableAutoGenTag: true,
}

var scenariosCmd = &cobra.Command{
	Use:     "scenarios",
	Aliases: []string{"presets"},
	Short:   "List the named cell scenarios",
	Long:    "scenarios lists the names that can be given to the Scenario option.",
	Run: func(cmd *cobra.Command, args []string) {
		for _, n := range ScenarioNames() {
			cmd.Println(n)
		}
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sweep the bandgap grid.",
	Long: `run computes the operating point of every combination of junction
bandgaps in the configured grid and saves the results in a workbook, heat
maps, an HTML report and a TOML summary.

	Grid variables:
	Eg1, Eg2, Eg3: Junction bandgaps [eV], top first
	Efficiency: Solar-to-fuel efficiency [%], or solar-to-electricity
	  efficiency in "Solar cells" mode
	FaradaicEfficiency: Faradaic efficiency at the operating point [%]
	Voltage: Operating voltage [V]
	Current: Operating current density [mA/cm²]
	Production: Ethylene production rate [µmol/h/cm²]
	Extra: Catalyst concentrator ratio, mirror factor or PV to
	  electrolyzer area ratio, depending on the mode
	SolarEfficiency: Maximum power point efficiency [%]
	Power: Incident power density [mW/cm²]`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ModelConfig(Cfg)
		if err != nil {
			return err
		}
		outputFile, logFile, err := outputs(Cfg)
		if err != nil {
			return err
		}
		vars, err := GetStringMapString("OutputVariables", Cfg)
		if err != nil {
			return err
		}
		if _, err = Run(cmd, logFile, outputFile, checkOutputVars(vars), c, Cfg.GetString("SpectrumFile")); err != nil {
			return err
		}
		if Cfg.GetBool("OpenReport") {
			return open.Run(outputPath(outputFile, "", ".html"))
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var varyCmd = &cobra.Command{
	Use:   "vary",
	Short: "Vary the illumination of one cell.",
	Long: `vary computes the response of one cell to changes in illumination
intensity, with the Faradaic efficiency following the catalyst's measured
response.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ModelConfig(Cfg)
		if err != nil {
			return err
		}
		outputFile, logFile, err := outputs(Cfg)
		if err != nil {
			return err
		}
		bandgaps, err := getFloat64Slice(Cfg, "Bandgaps")
		if err != nil {
			return err
		}
		factors, err := getFloat64Slice(Cfg, "Factors")
		if err != nil {
			return err
		}
		_, err = Vary(cmd, logFile, outputFile, c, Cfg.GetString("SpectrumFile"),
			bandgaps, Cfg.GetFloat64("Concentrator"), factors)
		return err
	},
	DisableAutoGenTag: true,
}

var degradeCmd = &cobra.Command{
	Use:   "degrade",
	Short: "Degrade the catalysts of one cell.",
	Long: `degrade computes the response of one cell to the loss of active
catalyst area.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ModelConfig(Cfg)
		if err != nil {
			return err
		}
		outputFile, logFile, err := outputs(Cfg)
		if err != nil {
			return err
		}
		bandgaps, err := getFloat64Slice(Cfg, "Bandgaps")
		if err != nil {
			return err
		}
		degradation, err := getFloat64Slice(Cfg, "Degradation")
		if err != nil {
			return err
		}
		_, err = Degrade(cmd, logFile, outputFile, c, Cfg.GetString("SpectrumFile"),
			bandgaps, Cfg.GetFloat64("Concentrator"), degradation)
		return err
	},
	DisableAutoGenTag: true,
}

var isocurveCmd = &cobra.Command{
	Use:   "isocurve",
	Short: "Map production over catalyst voltage and efficiency.",
	Long: `isocurve sweeps the bandgap grid with hypothetical CO2 reduction
catalysts that reach their peak Faradaic efficiency at a range of voltages,
and tabulates the best achievable production rate and efficiency.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ModelConfig(Cfg)
		if err != nil {
			return err
		}
		outputFile, logFile, err := outputs(Cfg)
		if err != nil {
			return err
		}
		voltages, err := getFloat64Slice(Cfg, "IsocurveVoltages")
		if err != nil {
			return err
		}
		feRange, err := getFloat64Slice(Cfg, "IsocurveFERange")
		if err != nil {
			return err
		}
		fe := Cfg.GetFloat64("IsocurveFE")
		if fe <= 0 {
			fe = c.VariableMaxFE
		}
		_, err = Isocurves(cmd, logFile, outputFile, c, Cfg.GetString("SpectrumFile"), voltages, fe, feRange)
		return err
	},
	DisableAutoGenTag: true,
}

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Plot the supply and demand curves of one cell.",
	Long: `curve finds the operating point of one cell and plots the
current-voltage curve of its tandem junctions together with the voltage
demand of its catalysts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ModelConfig(Cfg)
		if err != nil {
			return err
		}
		outputFile, logFile, err := outputs(Cfg)
		if err != nil {
			return err
		}
		bandgaps, err := getFloat64Slice(Cfg, "Bandgaps")
		if err != nil {
			return err
		}
		_, err = Curve(cmd, logFile, outputPath(outputFile, "_curve", ".png"), c,
			Cfg.GetString("SpectrumFile"), bandgaps, Cfg.GetFloat64("Concentrator"))
		return err
	},
	DisableAutoGenTag: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP server.",
	Long: `serve starts an HTTP server that answers JSON requests.

	GET  /version    Version number
	GET  /scenarios  Scenario names
	GET  /catalysts  Catalyst names
	POST /sweep      Bandgap sweep for the options in the request body
	POST /curve      Supply and demand curves of the cell with the
	                 request's Bandgaps`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logrus.New()
		log.SetOutput(cmd.OutOrStdout())
		src, err := loadSpectrum(Cfg.GetString("SpectrumFile"), log)
		if err != nil {
			return err
		}
		ctx := context.Background()
		var client *redis.Client
		if addr := Cfg.GetString("RedisAddr"); addr != "" {
			if client, err = ConnectRedis(ctx, addr, 8, log); err != nil {
				return err
			}
			defer client.Close()
		}
		s := NewServer(src, log, Cfg.GetInt("ResponseCacheSize"), client, 24*time.Hour)
		addr := Cfg.GetString("Addr")
		log.WithField("addr", addr).Info("pec: starting server")
		return http.ListenAndServe(addr, s)
	},
	DisableAutoGenTag: true,
}
