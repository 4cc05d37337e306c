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

// Thermodynamic cell voltages [V] of the overall reactions.
const (
	ethyleneCellVoltage = OxygenEvolutionPotential - EthylenePotential
	hydrogenCellVoltage = OxygenEvolutionPotential - HydrogenPotential
)

// SolarToEthylene returns the solar-to-ethylene efficiency [%] at
// operating current density j [mA/cm²], Faradaic efficiency fe [%] and
// incident power [mW/cm²].
func SolarToEthylene(j, fe, power float64) float64 {
	return j * ethyleneCellVoltage / power * fe
}

// SolarToHydrogen returns the solar-to-hydrogen efficiency [%] at
// operating current density j [mA/cm²] and incident power [mW/cm²].
func SolarToHydrogen(j, power float64) float64 {
	return j * hydrogenCellVoltage / power * 100
}

// EthyleneProduction returns the ethylene production rate
// [µmol/h/cm²] of mirror-concentrated light-harvesting area at
// operating current density j [mA/cm²] and Faradaic efficiency fe [%].
func EthyleneProduction(j, fe, mirror float64) float64 {
	jEthylene := j * fe / 100 // mA/cm²
	return jEthylene / faraday / electronsPerEthylene * 3600 * 1e3 / mirror
}
