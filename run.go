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
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// CellCalculator performs a calculation on the grid cell with the given
// index. worker identifies the goroutine running it, so that
// per-worker accumulators can be updated without locking.
type CellCalculator func(worker, cell int)

// Calculations concurrently runs calc on cells 0 through n-1, striping
// the cells over runtime.GOMAXPROCS(0) goroutines. It returns the
// number of goroutines used. Each cell must only write to its own
// output locations.
func Calculations(n int, calc CellCalculator) (nprocs int) {
	nprocs = runtime.GOMAXPROCS(0) // number of processors
	if nprocs > n {
		nprocs = n
	}
	if nprocs < 1 {
		return 0
	}
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for ii := pp; ii < n; ii += nprocs {
				calc(pp, ii)
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()
	return nprocs
}

// progress logs the fraction of cells completed at most once per
// period.
type progress struct {
	log    logrus.FieldLogger
	total  int64
	done   int64
	start  time.Time
	period time.Duration

	mu   sync.Mutex
	last time.Time
}

func newProgress(log logrus.FieldLogger, total int) *progress {
	now := time.Now()
	return &progress{log: log, total: int64(total), start: now, last: now, period: 10 * time.Second}
}

// step records a completed cell.
func (p *progress) step() {
	done := atomic.AddInt64(&p.done, 1)
	p.mu.Lock()
	defer p.mu.Unlock()
	if time.Since(p.last) < p.period {
		return
	}
	p.last = time.Now()
	p.log.WithFields(logrus.Fields{
		"cells":    done,
		"of":       p.total,
		"walltime": time.Since(p.start).Round(time.Second).String(),
	}).Info("pec: sweep progress")
}
