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

import "fmt"

// Status describes how a calculation finished.
type Status int

const (
	// Converged means an iterative calculation met its tolerance.
	Converged Status = iota

	// Unmodified means no iteration was needed, for example because a
	// junction's ideal fill factor was already below the target.
	Unmodified

	// Capped means an iteration limit or bound was reached and the
	// result is approximate.
	Capped

	// NoIntersection means the supply and demand curves never met.
	NoIntersection

	// Suspect means the result was computed but a diagnostic check
	// failed, for example a large open-circuit voltage shift during
	// fill-factor matching.
	Suspect
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case Unmodified:
		return "unmodified"
	case Capped:
		return "capped"
	case NoIntersection:
		return "no intersection"
	case Suspect:
		return "suspect"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// StatusCounts holds the number of grid cells that finished with each
// status.
type StatusCounts map[Status]int
