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
	"sync"

	"github.com/golang/groupcache/lru"
)

// curveKey identifies a fill-factor matched junction curve. The
// spectrum reaching a junction depends only on the illumination and
// the bandgap of the junction directly above it.
type curveKey struct {
	concentration float64
	direct        bool
	bandgap       float64
	upper         float64
	ffGoal        float64
}

// spectrumKey identifies an illumination spectrum.
type spectrumKey struct {
	concentration float64
	direct        bool
}

// curveCache holds recently used junction curves and spectra. It is
// safe for concurrent use. A nil *curveCache caches nothing.
type curveCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

func newCurveCache(maxEntries int) *curveCache {
	if maxEntries <= 0 {
		return nil
	}
	return &curveCache{cache: lru.New(maxEntries)}
}

func (c *curveCache) get(key interface{}) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Get(key)
}

func (c *curveCache) add(key, value interface{}) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.cache.Add(key, value)
	c.mu.Unlock()
}

// Len returns the number of cached items.
func (c *curveCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}
