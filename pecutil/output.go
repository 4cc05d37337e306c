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
	"image/color"
	"io"
	"math"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/sparse"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spatialmodel/pec"
	"github.com/tealeg/xlsx"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// namedGrid is a result grid and the name it is written under.
type namedGrid struct {
	name string
	g    *sparse.DenseArray
}

// resultGrids returns the grids of r in output order.
func resultGrids(r *pec.Results) []namedGrid {
	return []namedGrid{
		{"Efficiency", r.Efficiency},
		{"FaradaicEfficiency", r.FaradaicEfficiency},
		{"Voltage", r.Voltage},
		{"Current", r.Current},
		{"Production", r.Production},
		{"Extra", r.Extra},
		{"SolarEfficiency", r.SolarEfficiency},
		{"Power", r.Power},
	}
}

// junctions returns the number of junctions of the cells in r.
func junctions(r *pec.Results) int {
	return len(r.BestBandgaps)
}

// bestLayer returns the third-junction index of the best cell of r.
func bestLayer(r *pec.Results) int {
	return r.Efficiency.IndexNd(r.Best)[2]
}

// gridLayer adapts one third-junction layer of a result grid to
// plotter.GridXYZ. Cells that were not computed are NaN.
type gridLayer struct {
	g        *sparse.DenseArray
	computed []bool
	x, y     []float64
	k        int
}

func newGridLayer(r *pec.Results, g *sparse.DenseArray, k int) gridLayer {
	return gridLayer{g: g, computed: r.Computed, x: r.Axes[0], y: r.Axes[1], k: k}
}

func (l gridLayer) Dims() (c, r int) { return len(l.x), len(l.y) }
func (l gridLayer) X(c int) float64  { return l.x[c] }
func (l gridLayer) Y(r int) float64  { return l.y[r] }

func (l gridLayer) Z(c, r int) float64 {
	n := l.g.Index1d(c, r, l.k)
	if !l.computed[n] {
		return math.NaN()
	}
	return l.g.Elements[n]
}

// span returns the smallest and largest finite values of the layer.
// If there are none, or they are equal, the span is widened so that
// it can be used as a color scale.
func (l gridLayer) span() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	nc, nr := l.Dims()
	for c := 0; c < nc; c++ {
		for r := 0; r < nr; r++ {
			v := l.Z(c, r)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}
	if min > max {
		return 0, 1
	}
	if min == max {
		return min, min + 1
	}
	return min, max
}

func (l gridLayer) Min() float64 { min, _ := l.span(); return min }
func (l gridLayer) Max() float64 { _, max := l.span(); return max }

// writeHeatmap saves a PNG heat map of l to path.
func writeHeatmap(path, title string, l gridLayer) error {
	p := plot.New()
	min, max := l.span()
	p.Title.Text = fmt.Sprintf("%s (%.3g to %.3g)", title, min, max)
	p.X.Label.Text = "Top junction bandgap (eV)"
	p.Y.Label.Text = "Bottom junction bandgap (eV)"

	cm := moreland.SmoothBlueRed()
	cm.SetMin(min)
	cm.SetMax(max)
	h := plotter.NewHeatMap(l, cm.Palette(255))
	h.NaN = color.Transparent
	p.Add(h)
	if err := p.Save(6*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("pecutil: saving heat map: %v", err)
	}
	return nil
}

// writeHeatmaps saves a heat map of each grid in grids with the name
// outputFile_name.png. For triple junctions, the layer holding the
// best cell is drawn.
func writeHeatmaps(outputFile string, r *pec.Results, grids []namedGrid) ([]string, error) {
	k := bestLayer(r)
	var files []string
	for _, ng := range grids {
		title := ng.name
		if junctions(r) == 3 {
			title = fmt.Sprintf("%s, bottom junction %.2f eV", ng.name, r.Axes[2][k])
		}
		path := outputPath(outputFile, "_"+ng.name, ".png")
		if err := writeHeatmap(path, title, newGridLayer(r, ng.g, k)); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

// writeCurvePlot saves a PNG plot of the supply and demand curves of
// mt to path.
func writeCurvePlot(path string, bandgaps []float64, mt *pec.Match) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Bandgaps %v eV", bandgaps)
	p.X.Label.Text = "Voltage (V)"
	p.Y.Label.Text = "Current density (mA/cm²)"
	if err := plotutil.AddLines(p, "Tandem cell", mt.Supply(), "Catalysts", mt.Demand); err != nil {
		return fmt.Errorf("pecutil: plotting curves: %v", err)
	}
	if !mt.Zero() {
		s, err := plotter.NewScatter(plotter.XYs{{X: mt.V, Y: mt.J}})
		if err != nil {
			return fmt.Errorf("pecutil: plotting operating point: %v", err)
		}
		p.Add(s)
		p.Legend.Add("Operating point", s)
	}
	p.Y.Min = 0
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("pecutil: saving curve plot: %v", err)
	}
	return nil
}

// writeVariationPlot saves a PNG plot of the efficiency and current of
// v to path.
func writeVariationPlot(path string, v *pec.Variation) error {
	p := plot.New()
	p.X.Label.Text = v.Name
	p.Y.Label.Text = "Efficiency (%), current (mA/cm²)"
	eff := make(plotter.XYs, len(v.X))
	cur := make(plotter.XYs, len(v.X))
	for i, x := range v.X {
		eff[i] = plotter.XY{X: x, Y: v.Efficiency[i]}
		cur[i] = plotter.XY{X: x, Y: v.Current[i]}
	}
	if err := plotutil.AddLinePoints(p, "Efficiency", eff, "Current", cur); err != nil {
		return fmt.Errorf("pecutil: plotting variation: %v", err)
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("pecutil: saving variation plot: %v", err)
	}
	return nil
}

// addRow appends a row holding vals to sheet. NaN values are left
// blank.
func addRow(sheet *xlsx.Sheet, vals ...interface{}) {
	row := sheet.AddRow()
	for _, v := range vals {
		c := row.AddCell()
		switch t := v.(type) {
		case float64:
			if !math.IsNaN(t) {
				c.SetFloat(t)
			}
		case int:
			c.SetInt(t)
		case string:
			c.SetString(t)
		default:
			c.SetString(fmt.Sprint(t))
		}
	}
}

// cellsSheet is the name of the workbook sheet that lists every
// computed cell.
const cellsSheet = "Cells"

// writeResultsWorkbook saves a workbook to path with one row per
// computed cell of r, holding every result grid and derived output.
// For tandem cells, each derived output also gets a sheet with the top
// junction bandgap down the rows and the bottom junction bandgap
// across the columns.
func writeResultsWorkbook(path string, r *pec.Results, derived map[string]*sparse.DenseArray, names []string) error {
	f := xlsx.NewFile()
	cells, err := f.AddSheet(cellsSheet)
	if err != nil {
		return fmt.Errorf("pecutil: creating workbook: %v", err)
	}
	grids := resultGrids(r)
	for _, n := range names {
		grids = append(grids, namedGrid{n, derived[n]})
	}
	nj := junctions(r)
	header := []interface{}{"Eg1", "Eg2"}
	if nj == 3 {
		header = append(header, "Eg3")
	}
	header = append(header, "Status")
	for _, ng := range grids {
		header = append(header, ng.name)
	}
	addRow(cells, header...)
	for n, ok := range r.Computed {
		if !ok {
			continue
		}
		var row []interface{}
		for _, eg := range r.Bandgaps(n) {
			row = append(row, eg)
		}
		row = append(row, r.Status[n].String())
		for _, ng := range grids {
			row = append(row, ng.g.Elements[n])
		}
		addRow(cells, row...)
	}
	if nj == 2 {
		for _, n := range names {
			if err := addMatrixSheet(f, n, r, derived[n]); err != nil {
				return err
			}
		}
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("pecutil: saving workbook: %v", err)
	}
	return nil
}

// addMatrixSheet adds a sheet holding the first layer of g.
func addMatrixSheet(f *xlsx.File, name string, r *pec.Results, g *sparse.DenseArray) error {
	s, err := f.AddSheet(name)
	if err != nil {
		return fmt.Errorf("pecutil: adding sheet %s: %v", name, err)
	}
	l := newGridLayer(r, g, 0)
	header := []interface{}{"Eg1 \\ Eg2"}
	for _, y := range l.y {
		header = append(header, y)
	}
	addRow(s, header...)
	for i, x := range l.x {
		row := []interface{}{x}
		for j := range l.y {
			row = append(row, l.Z(i, j))
		}
		addRow(s, row...)
	}
	return nil
}

// maxSheetName is the longest sheet name a workbook allows.
const maxSheetName = 31

// writeVariationWorkbook saves v to a workbook at path.
func writeVariationWorkbook(path string, v *pec.Variation) error {
	f := xlsx.NewFile()
	name := v.Name
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	s, err := f.AddSheet(name)
	if err != nil {
		return fmt.Errorf("pecutil: creating workbook: %v", err)
	}
	header := []interface{}{v.Name}
	if v.Insolation != nil {
		header = append(header, "Insolation")
	}
	header = append(header, "Efficiency", "FaradaicEfficiency", "Voltage", "Current",
		"Production", "ReductionCurrent", "Status")
	addRow(s, header...)
	for i, x := range v.X {
		row := []interface{}{x}
		if v.Insolation != nil {
			row = append(row, v.Insolation[i])
		}
		row = append(row, v.Efficiency[i], v.FaradaicEfficiency[i], v.Voltage[i], v.Current[i],
			v.Production[i], v.ReductionCurrent[i], v.Status[i].String())
		addRow(s, row...)
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("pecutil: saving workbook: %v", err)
	}
	return nil
}

// writeIsocurveWorkbook saves iso to a workbook at path, with the best
// current for each catalyst voltage and production and efficiency
// tables over Faradaic efficiency and voltage.
func writeIsocurveWorkbook(path string, iso *pec.Isocurve) error {
	f := xlsx.NewFile()
	s, err := f.AddSheet("Current")
	if err != nil {
		return fmt.Errorf("pecutil: creating workbook: %v", err)
	}
	addRow(s, "Voltage", "Current")
	for i, v := range iso.Voltages {
		addRow(s, v, iso.Current[i])
	}
	for _, t := range []struct {
		name string
		data [][]float64
	}{{"Production", iso.Production}, {"Efficiency", iso.Efficiency}} {
		s, err := f.AddSheet(t.name)
		if err != nil {
			return fmt.Errorf("pecutil: creating workbook: %v", err)
		}
		header := []interface{}{"FE \\ Voltage"}
		for _, v := range iso.Voltages {
			header = append(header, v)
		}
		addRow(s, header...)
		for i, fe := range iso.FE {
			row := []interface{}{fe}
			for _, v := range t.data[i] {
				row = append(row, v)
			}
			addRow(s, row...)
		}
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("pecutil: saving workbook: %v", err)
	}
	return nil
}

// Summary describes the outcome of a bandgap sweep.
type Summary struct {
	Version   string `json:"version"`
	Scenario  string `json:"scenario,omitempty" toml:",omitempty"`
	Mode      string `json:"mode"`
	Chemistry string `json:"chemistry"`
	OER       string `json:"oer"`
	Reduction string `json:"reduction"`

	FFGoal          float64 `json:"ffGoal"`
	FluidResistance float64 `json:"fluidResistance"`

	Cells    int            `json:"cells"`
	Computed int            `json:"computed"`
	Status   map[string]int `json:"status"`

	BestBandgaps    []float64 `json:"bestBandgaps"`
	Efficiency      float64   `json:"efficiency"`
	Voltage         float64   `json:"voltage"`
	Current         float64   `json:"current"`
	FE              float64   `json:"fe"`
	Production      float64   `json:"production"`
	Concentrator    float64   `json:"concentrator"`
	Extra           float64   `json:"extra"`
	Walltime        string    `json:"walltime,omitempty" toml:",omitempty"`
	OutputVariables []string  `json:"outputVariables,omitempty" toml:",omitempty"`
}

// NewSummary summarizes the sweep r of a model with configuration c.
func NewSummary(c pec.Config, r *pec.Results) *Summary {
	s := &Summary{
		Version:         pec.Version,
		Mode:            c.Mode.String(),
		Chemistry:       c.Chemistry.String(),
		OER:             string(c.OER),
		FFGoal:          c.FFGoal,
		FluidResistance: c.FluidResistance,
		Cells:           len(r.Computed),
		Status:          make(map[string]int),
		BestBandgaps:    r.BestBandgaps,
		Efficiency:      r.Efficiency.Elements[r.Best],
		Voltage:         r.Voltage.Elements[r.Best],
		Current:         r.Current.Elements[r.Best],
		FE:              r.FaradaicEfficiency.Elements[r.Best],
		Production:      r.Production.Elements[r.Best],
		Concentrator:    r.Concentrator,
		Extra:           r.Extra.Elements[r.Best],
	}
	if c.Chemistry == pec.HydrogenEvolution {
		s.Reduction = string(c.HER)
	} else {
		s.Reduction = string(c.CO2RR)
	}
	for _, ok := range r.Computed {
		if ok {
			s.Computed++
		}
	}
	for st, n := range r.Counts {
		s.Status[st.String()] = n
	}
	return s
}

// writeSummary saves s as TOML to path.
func writeSummary(path string, s *Summary, walltime time.Duration) error {
	s.Walltime = walltime.Round(time.Millisecond).String()
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pecutil: creating summary: %v", err)
	}
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		f.Close()
		return fmt.Errorf("pecutil: writing summary: %v", err)
	}
	return f.Close()
}

// heatmapChart returns an interactive heat map of l.
func heatmapChart(title string, l gridLayer) *charts.HeatMap {
	min, max := l.span()
	xs := make([]string, len(l.x))
	for i, x := range l.x {
		xs[i] = fmt.Sprintf("%.3g", x)
	}
	ys := make([]string, len(l.y))
	for i, y := range l.y {
		ys[i] = fmt.Sprintf("%.3g", y)
	}
	var data []opts.HeatMapData
	for i := range l.x {
		for j := range l.y {
			v := l.Z(i, j)
			if math.IsNaN(v) {
				continue
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{i, j, v}})
		}
	}
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Eg1 (eV)", Type: "category", Data: xs}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Eg2 (eV)", Type: "category", Data: ys}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(min),
			Max:        float32(max),
			InRange:    &opts.VisualMapInRange{Color: []string{"#3b4cc0", "#dddddd", "#b40426"}},
		}),
	)
	hm.SetXAxis(xs).AddSeries(title, data)
	return hm
}

// writeReport renders an HTML page with an interactive heat map of
// each grid to w.
func writeReport(w io.Writer, r *pec.Results, grids []namedGrid) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("PEC %s sweep", r.Mode)
	k := bestLayer(r)
	for _, ng := range grids {
		page.AddCharts(heatmapChart(ng.name, newGridLayer(r, ng.g, k)))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("pecutil: rendering report: %v", err)
	}
	return nil
}

// writeVariationReport renders an HTML line chart of v to w.
func writeVariationReport(w io.Writer, v *pec.Variation) error {
	xs := make([]string, len(v.X))
	for i, x := range v.X {
		xs[i] = fmt.Sprintf("%.4g", x)
	}
	series := func(y []float64) []opts.LineData {
		o := make([]opts.LineData, len(y))
		for i, val := range y {
			o[i] = opts.LineData{Value: val}
		}
		return o
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: v.Name}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: v.Name}),
	)
	line.SetXAxis(xs).
		AddSeries("Efficiency (%)", series(v.Efficiency)).
		AddSeries("Current (mA/cm²)", series(v.Current)).
		AddSeries("Faradaic efficiency (%)", series(v.FaradaicEfficiency)).
		AddSeries("Production (µmol/h/cm²)", series(v.Production))
	if err := line.Render(w); err != nil {
		return fmt.Errorf("pecutil: rendering report: %v", err)
	}
	return nil
}

// derivedGrids returns the derived outputs in names order.
func derivedGrids(derived map[string]*sparse.DenseArray, names []string) []namedGrid {
	o := make([]namedGrid, 0, len(names))
	for _, n := range names {
		o = append(o, namedGrid{n, derived[n]})
	}
	return o
}
