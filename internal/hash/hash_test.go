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

package hash

import (
	"math"
	"testing"
)

type request struct {
	Name    string
	Values  []float64
	Options map[string]float64
}

type named string

func (n named) String() string { return "named-" + string(n) }

func TestHash(t *testing.T) {
	a := request{Name: "a", Values: []float64{1, 2}, Options: map[string]float64{"x": 1, "y": 2}}
	b := request{Name: "a", Values: []float64{1, 2}, Options: map[string]float64{"y": 2, "x": 1}}
	c := request{Name: "a", Values: []float64{1, 3}}
	if Hash(a) != Hash(b) {
		t.Errorf("equal objects have different hashes %s and %s", Hash(a), Hash(b))
	}
	if Hash(a) == Hash(c) {
		t.Errorf("different objects have the same hash %s", Hash(a))
	}
	if len(Hash(a)) != 32 {
		t.Errorf("hash %s should have 32 characters", Hash(a))
	}
}

func TestHashNaN(t *testing.T) {
	a := request{Values: []float64{math.NaN()}}
	if Hash(a) != Hash(a) {
		t.Error("hash of NaN should be stable")
	}
}

func TestHashInterfaceKeys(t *testing.T) {
	a := map[interface{}]int{1: 1, "b": 2}
	if h := Hash(a); h != Hash(map[interface{}]int{"b": 2, 1: 1}) {
		t.Errorf("hash of interface-keyed map is not stable: %s", h)
	}
}

func TestKey(t *testing.T) {
	if k := Key("run", named("x")); k != "run:named-x" {
		t.Errorf("have %s, want run:named-x", k)
	}
	a := request{Name: "a"}
	if Key("run", a) == Key("curve", a) {
		t.Error("keys in different namespaces should differ")
	}
}
