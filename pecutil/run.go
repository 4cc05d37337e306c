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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pec"
	"github.com/spf13/cobra"
)

// newLogger returns a logger that writes to the command output and to
// the file at logFile. The returned function closes the file.
func newLogger(cmd *cobra.Command, logFile string) (*logrus.Logger, func() error, error) {
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("pecutil: problem creating log file: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.MultiWriter(cmd.OutOrStdout(), f))
	return log, f.Close, nil
}

// newModel reads the spectrum at spectrumFile and creates a model for c
// that logs to log.
func newModel(c pec.Config, spectrumFile string, log logrus.FieldLogger) (*pec.Model, error) {
	src, err := loadSpectrum(spectrumFile, log)
	if err != nil {
		return nil, err
	}
	m, err := pec.NewModel(c, src)
	if err != nil {
		return nil, err
	}
	m.Log = log
	return m, nil
}

// Run sweeps the bandgap grid of the model configured by c.
//
// CobraCommand is the cobra.Command instance where Run is called from.
//
// LogFile is the path to the desired log file location.
//
// OutputFile is the path to the output workbook. Heat maps, an HTML
// report and a TOML summary are written next to it with the same base
// name.
//
// OutputVariables maps the names of derived outputs to expressions of
// the result grids.
//
// SpectrumFile is the path to a spectral table. If it is empty the
// reference spectrum is used.
func Run(CobraCommand *cobra.Command, LogFile, OutputFile string, OutputVariables map[string]string, c pec.Config, SpectrumFile string) (*pec.Results, error) {
	start := time.Now()
	log, closeLog, err := newLogger(CobraCommand, LogFile)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	o, err := pec.NewOutputter(OutputVariables, nil)
	if err != nil {
		return nil, err
	}
	m, err := newModel(c, SpectrumFile, log)
	if err != nil {
		return nil, err
	}
	r, err := m.Sweep()
	if err != nil {
		return nil, err
	}
	derived, err := o.Results(r)
	if err != nil {
		return nil, err
	}
	names := o.Names()

	if err := writeResultsWorkbook(OutputFile, r, derived, names); err != nil {
		return nil, err
	}
	if _, err := writeHeatmaps(OutputFile, r, derivedGrids(derived, names)); err != nil {
		return nil, err
	}
	f, err := os.Create(outputPath(OutputFile, "", ".html"))
	if err != nil {
		return nil, fmt.Errorf("pecutil: creating report: %v", err)
	}
	if err := writeReport(f, r, derivedGrids(derived, names)); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	s := NewSummary(c, r)
	s.OutputVariables = names
	if err := writeSummary(outputPath(OutputFile, "", ".toml"), s, time.Since(start)); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"output":   OutputFile,
		"walltime": s.Walltime,
	}).Info("pecutil: run finished")
	return r, nil
}

// cell returns bandgaps and concentrator unchanged if bandgaps is
// set. Otherwise it sweeps the bandgap grid of m and returns the best
// cell and its concentrator ratio. A concentrator <= 0 is replaced by
// the sweep's.
func cell(m *pec.Model, bandgaps []float64, concentrator float64) ([]float64, float64, error) {
	if len(bandgaps) > 0 {
		if concentrator <= 0 {
			concentrator = 1
		}
		return bandgaps, concentrator, nil
	}
	r, err := m.Sweep()
	if err != nil {
		return nil, 0, err
	}
	if concentrator <= 0 {
		concentrator = r.Concentrator
	}
	m.Log.WithFields(logrus.Fields{
		"bandgaps":     r.BestBandgaps,
		"concentrator": concentrator,
	}).Info("pecutil: using best cell of sweep")
	return r.BestBandgaps, concentrator, nil
}

// writeVariation saves v to OutputFile with a PNG plot and an HTML
// report next to it.
func writeVariation(OutputFile string, v *pec.Variation) error {
	if err := writeVariationWorkbook(OutputFile, v); err != nil {
		return err
	}
	if err := writeVariationPlot(outputPath(OutputFile, "", ".png"), v); err != nil {
		return err
	}
	f, err := os.Create(outputPath(OutputFile, "", ".html"))
	if err != nil {
		return fmt.Errorf("pecutil: creating report: %v", err)
	}
	if err := writeVariationReport(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Vary computes the response of one cell to the illumination
// intensity factors. If Bandgaps is empty, the best cell of a bandgap
// sweep is used. If Concentrator is <= 0, the sweep's concentrator
// ratio is used, or 1 when Bandgaps is given.
func Vary(CobraCommand *cobra.Command, LogFile, OutputFile string, c pec.Config, SpectrumFile string,
	Bandgaps []float64, Concentrator float64, Factors []float64) (*pec.Variation, error) {
	log, closeLog, err := newLogger(CobraCommand, LogFile)
	if err != nil {
		return nil, err
	}
	defer closeLog()
	m, err := newModel(c, SpectrumFile, log)
	if err != nil {
		return nil, err
	}
	bg, conc, err := cell(m, Bandgaps, Concentrator)
	if err != nil {
		return nil, err
	}
	v, err := m.VaryIllumination(bg, conc, Factors)
	if err != nil {
		return nil, err
	}
	return v, writeVariation(OutputFile, v)
}

// Degrade computes the response of one cell to catalyst degradation
// percentages. Bandgaps and Concentrator are chosen as in Vary.
func Degrade(CobraCommand *cobra.Command, LogFile, OutputFile string, c pec.Config, SpectrumFile string,
	Bandgaps []float64, Concentrator float64, Degradation []float64) (*pec.Variation, error) {
	log, closeLog, err := newLogger(CobraCommand, LogFile)
	if err != nil {
		return nil, err
	}
	defer closeLog()
	m, err := newModel(c, SpectrumFile, log)
	if err != nil {
		return nil, err
	}
	bg, conc, err := cell(m, Bandgaps, Concentrator)
	if err != nil {
		return nil, err
	}
	v, err := m.Degrade(bg, conc, Degradation)
	if err != nil {
		return nil, err
	}
	return v, writeVariation(OutputFile, v)
}

// Isocurves sweeps the bandgap grid with hypothetical CO2 reduction
// catalysts whose peak Faradaic efficiency FE [%] is reached at each
// of Voltages [V vs RHE], and tabulates production and efficiency over
// FERange.
func Isocurves(CobraCommand *cobra.Command, LogFile, OutputFile string, c pec.Config, SpectrumFile string,
	Voltages []float64, FE float64, FERange []float64) (*pec.Isocurve, error) {
	log, closeLog, err := newLogger(CobraCommand, LogFile)
	if err != nil {
		return nil, err
	}
	defer closeLog()
	m, err := newModel(c, SpectrumFile, log)
	if err != nil {
		return nil, err
	}
	iso, err := m.Isocurves(Voltages, FE, FERange)
	if err != nil {
		return nil, err
	}
	return iso, writeIsocurveWorkbook(OutputFile, iso)
}

// Curve finds the operating point of one cell and plots its supply and
// demand curves to OutputFile. Bandgaps and Concentrator are chosen
// as in Vary.
func Curve(CobraCommand *cobra.Command, LogFile, OutputFile string, c pec.Config, SpectrumFile string,
	Bandgaps []float64, Concentrator float64) (*pec.Match, error) {
	log, closeLog, err := newLogger(CobraCommand, LogFile)
	if err != nil {
		return nil, err
	}
	defer closeLog()
	m, err := newModel(c, SpectrumFile, log)
	if err != nil {
		return nil, err
	}
	bg, conc, err := cell(m, Bandgaps, Concentrator)
	if err != nil {
		return nil, err
	}
	env := m.Environment()
	env.Concentrator = conc
	mt, err := m.SupplyDemand(bg, env)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"bandgaps": bg,
		"v":        mt.V,
		"j":        mt.J,
		"fe":       mt.FE,
		"status":   mt.Status,
	}).Info("pecutil: operating point")
	return mt, writeCurvePlot(OutputFile, bg, mt)
}
