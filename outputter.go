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
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/sparse"
)

// Outputter calculates derived output variables from sweep results.
//
// outputVariables maps the names of the variables for which data
// should be returned to expressions that define how the
// requested data should be calculated. These expressions can utilize
// the grid variables of the sweep, user-defined variables, and
// functions.
//
// modelVariables is automatically generated based on the grid
// variables that are required to calculate the requested output
// variables.
type Outputter struct {
	outputVariables map[string]string
	modelVariables  []string
	outputFunctions map[string]govaluate.ExpressionFunction
}

// GridVariables returns the names of the variables available to output
// expressions, with descriptions.
func GridVariables() map[string]string {
	return map[string]string{
		"Eg1":                "Bandgap of the top junction (eV)",
		"Eg2":                "Bandgap of the second junction (eV)",
		"Eg3":                "Bandgap of the third junction (eV), 0 for two junctions",
		"Efficiency":         "Solar-to-fuel efficiency (%)",
		"FaradaicEfficiency": "Faradaic efficiency of the reduction catalyst (%)",
		"Voltage":            "Operating voltage (V)",
		"Current":            "Operating current density (mA/cm²)",
		"Production":         "Ethylene production rate (µmol/h/cm²)",
		"Extra":              "Concentrator ratio, mirror factor or PV-EC area ratio",
		"SolarEfficiency":    "Solar cell maximum power point efficiency (%)",
		"Power":              "Incident power density (mW/cm²)",
	}
}

// NewOutputter initializes a new Outputter and adds a set of default
// output functions: exp(x), log(x), abs(x), sqrt(x), max(x, y, ...)
// and min(x, y, ...).
func NewOutputter(outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp":  unaryFunc("exp", math.Exp),
		"log":  unaryFunc("log", math.Log),
		"abs":  unaryFunc("abs", math.Abs),
		"max":  reduceFunc("max", math.Max),
		"min":  reduceFunc("min", math.Min),
		"sqrt": unaryFunc("sqrt", math.Sqrt),
	}
	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}
	o := Outputter{
		outputVariables: make(map[string]string, len(outputVariables)),
		outputFunctions: defaultOutputFuncs,
	}
	for k, v := range outputVariables {
		o.outputVariables[k] = v
	}
	if err := checkOutputNames(o.outputVariables); err != nil {
		return nil, err
	}
	if err := o.checkForDerivatives(0); err != nil {
		return nil, err
	}
	if err := o.checkModelVars(); err != nil {
		return nil, err
	}
	return &o, nil
}

func unaryFunc(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("pec: got %d arguments for function '%s', but needs 1", len(arg), name)
		}
		x, ok := arg[0].(float64)
		if !ok {
			return nil, fmt.Errorf("pec: argument of function '%s' is %T, not a number", name, arg[0])
		}
		return f(x), nil
	}
}

func reduceFunc(name string, f func(a, b float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) == 0 {
			return nil, fmt.Errorf("pec: function '%s' needs at least 1 argument", name)
		}
		var r float64
		for i, a := range arg {
			x, ok := a.(float64)
			if !ok {
				return nil, fmt.Errorf("pec: argument %d of function '%s' is %T, not a number", i, name, a)
			}
			if i == 0 {
				r = x
			} else {
				r = f(r, x)
			}
		}
		return r, nil
	}
}

// removeDuplicates removes all duplicated strings from a slice, returning a
// slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]struct{})
	for _, val := range s {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = struct{}{}
		}
	}
	return result
}

var wordChar = regexp.MustCompile("[a-zA-Z0-9_]")

// checkPrefix returns whether s starts with a character that can be
// part of a variable name.
func checkPrefix(s string) bool {
	return s != "" && wordChar.MatchString(s[:1])
}

// checkSuffix returns whether s ends with a character that can be part
// of a variable name.
func checkSuffix(s string) bool {
	return s != "" && wordChar.MatchString(s[len(s)-1:])
}

// maxDerivativeDepth limits the expansion of user-defined variables
// that refer to each other.
const maxDerivativeDepth = 100

// checkForDerivatives replaces every user-defined variable that appears
// in another variable's expression by the expression that defines it,
// and records the grid variables the expressions need.
func (o *Outputter) checkForDerivatives(depth int) error {
	if depth > maxDerivativeDepth {
		return fmt.Errorf("pec: output variables refer to each other in a cycle")
	}
	o.modelVariables = make([]string, 0, len(o.outputVariables))
	for key, val := range o.outputVariables {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(val, o.outputFunctions)
		if err != nil {
			return fmt.Errorf("pec: output variable %s: %v", key, err)
		}
		uniqueVars := removeDuplicates(expression.Vars())
		for _, uniqueVar := range uniqueVars {
			if def, ok := o.outputVariables[uniqueVar]; ok && def != uniqueVar {
				// An instance of the name is only a variable if it is not
				// part of a longer name, such as 'Current' in
				// 'ReductionCurrent'.
				splitVal := strings.Split(val, uniqueVar)
				for i := 0; i < len(splitVal)-1; i++ {
					if !checkSuffix(splitVal[i]) && !checkPrefix(splitVal[i+1]) {
						splitVal[i] += "(" + def + ")"
					} else {
						splitVal[i] += uniqueVar
					}
				}
				o.outputVariables[key] = strings.Join(splitVal, "")
				return o.checkForDerivatives(depth + 1)
			}
		}
		o.modelVariables = append(o.modelVariables, uniqueVars...)
	}
	o.modelVariables = removeDuplicates(o.modelVariables)
	sort.Strings(o.modelVariables)
	return nil
}

// checkModelVars checks whether the grid variables required to
// calculate the requested output variables exist.
func (o *Outputter) checkModelVars() error {
	vars := GridVariables()
	for _, v := range o.modelVariables {
		if _, ok := vars[v]; !ok {
			return fmt.Errorf("pec: undefined variable name '%s'", v)
		}
	}
	return nil
}

var outputName = regexp.MustCompile(`^[A-Za-z]\w*$`)

// checkOutputNames checks that output variable names can be used as
// spreadsheet names: at most 31 characters, starting with a letter and
// containing only letters, digits and underscores.
func checkOutputNames(o map[string]string) error {
	for key := range o {
		long := len(key) > 31
		ok := outputName.MatchString(key)
		switch {
		case long && !ok:
			return fmt.Errorf("pec: output variable name '%s' exceeds 31 characters and includes unsupported character(s)", key)
		case long:
			return fmt.Errorf("pec: output variable name '%s' exceeds 31 characters", key)
		case !ok:
			return fmt.Errorf("pec: output variable name '%s' includes unsupported characters", key)
		}
	}
	return nil
}

// Names returns the sorted names of the output variables.
func (o *Outputter) Names() []string {
	names := make([]string, 0, len(o.outputVariables))
	for k := range o.outputVariables {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Expression returns the expanded expression of output variable name.
func (o *Outputter) Expression(name string) string { return o.outputVariables[name] }

// cellVariables returns the grid variables of cell n of r.
func cellVariables(r *Results, n int) map[string]interface{} {
	idx := r.Efficiency.IndexNd(n)
	return map[string]interface{}{
		"Eg1":                r.Axes[0][idx[0]],
		"Eg2":                r.Axes[1][idx[1]],
		"Eg3":                r.Axes[2][idx[2]],
		"Efficiency":         r.Efficiency.Elements[n],
		"FaradaicEfficiency": r.FaradaicEfficiency.Elements[n],
		"Voltage":            r.Voltage.Elements[n],
		"Current":            r.Current.Elements[n],
		"Production":         r.Production.Elements[n],
		"Extra":              r.Extra.Elements[n],
		"SolarEfficiency":    r.SolarEfficiency.Elements[n],
		"Power":              r.Power.Elements[n],
	}
}

// Results evaluates the output variables for every cell of r. Each
// returned array has the shape of the sweep grid. Cells that were
// not computed are NaN.
func (o *Outputter) Results(r *Results) (map[string]*sparse.DenseArray, error) {
	out := make(map[string]*sparse.DenseArray, len(o.outputVariables))
	exprs := make(map[string]*govaluate.EvaluableExpression, len(o.outputVariables))
	for name, val := range o.outputVariables {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(val, o.outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("pec: output variable %s: %v", name, err)
		}
		exprs[name] = e
		out[name] = newArray(r.Axes)
	}
	for n := range r.Efficiency.Elements {
		if !r.Computed[n] {
			for name := range exprs {
				out[name].Elements[n] = math.NaN()
			}
			continue
		}
		params := cellVariables(r, n)
		for name, e := range exprs {
			v, err := e.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("pec: evaluating output variable %s: %v", name, err)
			}
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("pec: output variable %s evaluates to %T, not a number", name, v)
			}
			out[name].Elements[n] = f
		}
	}
	return out, nil
}
