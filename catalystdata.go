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

	"gonum.org/v1/gonum/interp"
)

// Tafel holds Tafel parameters of an electrocatalyst: a reference
// current density and the overpotential needed to reach it, and the
// Tafel slope.
type Tafel struct {
	RefCurrent       float64 // mA/cm²
	RefOverpotential float64 // V
	Slope            float64 // V/decade
}

// ExchangeCurrent returns the exchange current density [mA/cm²].
func (t Tafel) ExchangeCurrent() float64 {
	return t.RefCurrent / math.Pow(10, t.RefOverpotential/t.Slope)
}

// Overpotential returns the overpotential [V] needed to drive current
// density j [mA/cm²].
func (t Tafel) Overpotential(j float64) float64 {
	return t.Slope * math.Log10(j/t.ExchangeCurrent())
}

// OERCatalyst is the name of an oxygen evolution catalyst.
type OERCatalyst string

// Oxygen evolution catalysts.
const (
	RuO2Neutral   OERCatalyst = "RuO2 Neutral"
	NiFeOxNeutral OERCatalyst = "NiFeOx Neutral"
	CuxO          OERCatalyst = "CuxO"
	NiFeOxPH14    OERCatalyst = "NiFeOx_pH14"
	IrOxPH14      OERCatalyst = "IrOx_pH14"
	NiCoOxPH14    OERCatalyst = "NiCoOx_pH14"
)

// oerCatalysts holds Tafel parameters for the oxygen evolution
// catalysts.
var oerCatalysts = map[OERCatalyst]Tafel{
	// Hu et al., Energy Environ. Sci. 6, 2984 (2013).
	RuO2Neutral:   {RefCurrent: 10, RefOverpotential: 240e-3, Slope: 37e-3},
	NiFeOxNeutral: {RefCurrent: 10, RefOverpotential: 280e-3, Slope: 40e-3},

	// Joya & de Groot, ACS Catal. 6, 1768 (2016).
	CuxO: {RefCurrent: 50, RefOverpotential: 1.84 - 1.23, Slope: 44e-3},

	// McCrory et al., J. Am. Chem. Soc. 135, 16977 (2013).
	NiFeOxPH14: {RefCurrent: 10, RefOverpotential: 327e-3, Slope: 34e-3},
	IrOxPH14:   {RefCurrent: 10, RefOverpotential: 325e-3, Slope: 40e-3},
	NiCoOxPH14: {RefCurrent: 10, RefOverpotential: 345e-3, Slope: 33e-3},
}

// HERCatalyst is the name of a hydrogen evolution catalyst.
type HERCatalyst string

// Hydrogen evolution catalysts.
const (
	Platinum   HERCatalyst = "Platinum"
	CommonNiMo HERCatalyst = "Common Earth, Ni-MO"
)

// herCatalysts holds Tafel parameters for the hydrogen evolution
// catalysts, from Hu et al., Energy Environ. Sci. 6, 2984 (2013).
var herCatalysts = map[HERCatalyst]Tafel{
	Platinum:   {RefCurrent: 10, RefOverpotential: 55e-3, Slope: 30e-3},
	CommonNiMo: {RefCurrent: 10, RefOverpotential: 75e-3, Slope: 40e-3},
}

// CO2RRCatalyst is the name of a CO2-to-ethylene reduction catalyst.
type CO2RRCatalyst string

// CO2 reduction catalysts.
const (
	DanRen2017         CO2RRCatalyst = "DanRen2017"
	Dinh2018           CO2RRCatalyst = "Dinh2018"
	Greatzel2022       CO2RRCatalyst = "Greatzel2022"
	Cu200nm            CO2RRCatalyst = "Cu200nm"
	OIIDCu             CO2RRCatalyst = "OIID-Cu"
	OIDCu              CO2RRCatalyst = "OID-Cu"
	Tan2021NearNeutral CO2RRCatalyst = "Tan2021nearNeutral"
	Tan2021KOH         CO2RRCatalyst = "Tan2021KOH"
	CuAu               CO2RRCatalyst = "CuAu"
	CuAg               CO2RRCatalyst = "CuAg"
	Copper             CO2RRCatalyst = "Copper"
	Choi2020           CO2RRCatalyst = "Choi2020"

	// Variable is a hypothetical catalyst whose peak voltage and
	// Faradaic efficiency are set in the configuration.
	Variable CO2RRCatalyst = "Variable"

	// Custom is a catalyst whose measurements are given in the
	// configuration.
	Custom CO2RRCatalyst = "Custom"
)

// CO2RRTable holds measurements of a CO2 reduction catalyst. Row i
// gives the ethylene Faradaic efficiency FE[i] [%] and current density
// J[i] [mA/cm²] at voltage V[i] [V vs RHE, negative].
type CO2RRTable struct {
	FE []float64
	J  []float64
	V  []float64
}

// co2rrTables holds the measured catalyst tables.
var co2rrTables = map[CO2RRCatalyst]CO2RRTable{
	// ACS Sustainable Chem. Eng. 5, 9191 (2017).
	DanRen2017: {
		FE: []float64{4, 14.5, 26.8, 30, 24, 20.5},
		J:  []float64{70, 47, 36, 25.5, 19, 11},
		V:  []float64{-1.1, -1.05, -1, -0.95, -0.9, -0.85},
	},
	// Dinh et al., Science 360, 783 (2018).
	Dinh2018: {
		FE: []float64{65, 70, 67, 58, 50, 40, 0},
		J:  []float64{150, 100, 60, 35, 25, 15, 10},
		V:  []float64{-0.58, -0.57, -0.53, -0.47, -0.41, -0.32, -0.25},
	},
	Greatzel2022: {
		FE: []float64{19, 52, 63, 75, 60, 30},
		J:  []float64{10, 30, 70, 100, 150, 200},
		V:  []float64{-0.35, -0.52, -0.56, -0.58, -0.615, -0.64},
	},
	// Ren et al., J. Phys. Chem. Lett. 12, 7583 (2021).
	Cu200nm: {
		FE: []float64{0.03, 0.43, 2.06, 11.05, 22.3, 43.25, 51.21, 59.49, 34.56},
		J:  []float64{18.92, 24.31, 33.38, 32.15, 36.88, 94.06, 181.37, 282.73, 390},
		V:  []float64{-0.35, -0.4, -0.45, -0.5, -0.55, -0.6, -0.65, -0.7, -0.75},
	},
	OIIDCu: {
		FE: []float64{17, 17.25, 43, 57.23, 58.73, 61.18, 59.79, 57.28, 52.13},
		J:  []float64{20, 50, 100, 150, 200, 250, 300, 350, 400},
		V:  []float64{-0.40, -0.44, -0.5375, -0.575, -0.60, -0.615, -0.627, -0.6375, -0.65},
	},
	OIDCu: {
		FE: []float64{0, 14.02, 42.75, 49.02, 50.74, 55.94, 53.25, 53.09, 52.63},
		J:  []float64{20, 50, 100, 150, 200, 250, 300, 350, 400},
		V:  []float64{-0.60, -0.61, -0.66, -0.68, -0.70, -0.72, -0.73, -0.74, -0.75},
	},
	// Tan et al., Nano Energy 89, 106460 (2021).
	Tan2021NearNeutral: {
		FE: []float64{40, 47, 55, 60, 69.8, 55, 41, 33, 33},
		J:  []float64{37.5, 33, 29.5, 25.5, 22.5, 19, 16.5, 15, 12},
		V:  []float64{-1.3, -1.25, -1.2, -1.15, -1.1, -1.05, -1, -0.95, -0.9},
	},
	Tan2021KOH: {
		FE: []float64{38, 48, 52.5, 59.5, 66, 76, 62.5, 48.5},
		J:  []float64{170, 155, 140, 130, 120, 112, 105, 102},
		V:  []float64{-0.95, -0.9, -0.85, -0.8, -0.75, -0.7, -0.65, -0.6},
	},
	// Faraday Discuss. 215, 282 (2019).
	CuAu: {
		FE: []float64{0, 1.15, 4.8, 31.7, 34.1, 36.17, 38.7, 34.97, 15.85},
		J:  []float64{2, 4.53, 7.7, 17.73, 24.32, 31.24, 42.87, 48.82, 63.98},
		V:  []float64{-0.6, -0.7, -0.8, -0.9, -0.95, -1, -1.05, -1.1, -1.15},
	},
	// J. Am. Chem. Soc. 141, 18704 (2019).
	CuAg: {
		FE: []float64{0.57, 0.93, 3.30, 12.93, 24.00, 34.03, 51.50, 35.33, 26.13, 15.70, 10, 5},
		J:  []float64{1.82, 3.69, 6.2, 12.66, 18.62, 28.58, 35.12, 48.04, 64.43, 80.29, 110, 200},
		V:  []float64{-0.6, -0.7, -0.8, -0.9, -0.95, -1, -1.05, -1.1, -1.15, -1.2, -1.25, -1.3},
	},
	Copper: {
		FE: []float64{0, 1.8, 4.17, 10.80, 23.83, 33.20, 30.47, 25.47, 24.07, 12.07},
		J:  []float64{2.23, 3.95, 9.13, 12.85, 19, 25.47, 28.08, 35.2, 54.43, 68.94},
		V:  []float64{-0.6, -0.7, -0.8, -0.9, -0.95, -1, -1.05, -1.1, -1.15, -1.2},
	},
	Choi2020: choi2020(),
}

// choi2020 derives total current densities for the stepped Cu
// catalyst of Choi et al., Nat. Catal. 3, 804 (2020), from its partial
// ethylene current densities.
func choi2020() CO2RRTable {
	t := CO2RRTable{
		FE: []float64{15, 57, 66, 72, 69, 61},
		V:  []float64{-0.8, -0.95, -0.98, -1, -1.03, -1.07},
	}
	// Partial current densities, sorted by voltage.
	partialV := []float64{-1.1, -1.06, -1.01, -0.98, -0.95, -0.9, -0.82, -0.78}
	partialJ := []float64{28, 25, 23, 15, 4, 1, 0.5, 0}
	var partial interp.PiecewiseLinear
	if err := partial.Fit(partialV, partialJ); err != nil {
		panic(err)
	}
	t.J = make([]float64, len(t.V))
	for i, v := range t.V {
		t.J[i] = partial.Predict(v) / t.FE[i] * 100
	}
	return t
}
