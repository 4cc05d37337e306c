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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ctessum/sparse"
	"github.com/go-redis/redis/v8"
	"github.com/golang/groupcache/lru"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pec"
	"github.com/spatialmodel/pec/internal/hash"
	"github.com/spf13/viper"
)

// DefaultMaxCells is the largest bandgap grid a server computes for
// one request.
const DefaultMaxCells = 20000

// resultCache holds encoded responses in memory and, optionally, in a
// shared redis database.
type resultCache struct {
	mu    sync.Mutex
	local *lru.Cache
	redis *redis.Client
	ttl   time.Duration
}

func newResultCache(size int, client *redis.Client, ttl time.Duration) *resultCache {
	return &resultCache{local: lru.New(size), redis: client, ttl: ttl}
}

func (c *resultCache) get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	v, ok := c.local.Get(key)
	c.mu.Unlock()
	if ok {
		return v.([]byte), true
	}
	if c.redis == nil {
		return nil, false
	}
	b, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	c.mu.Lock()
	c.local.Add(key, b)
	c.mu.Unlock()
	return b, true
}

func (c *resultCache) add(ctx context.Context, key string, b []byte) error {
	c.mu.Lock()
	c.local.Add(key, b)
	c.mu.Unlock()
	if c.redis == nil {
		return nil
	}
	return c.redis.Set(ctx, key, b, c.ttl).Err()
}

// ConnectRedis connects to the redis server at addr, retrying with
// exponential backoff until it answers or ctx is done.
func ConnectRedis(ctx context.Context, addr string, maxRetries uint64, log logrus.FieldLogger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ping := func() error { return client.Ping(ctx).Err() }
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	err := backoff.RetryNotify(ping, b, func(err error, d time.Duration) {
		log.WithError(err).WithField("addr", addr).Warnf("pecutil: redis is not ready; retrying in %v", d)
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("pecutil: connecting to redis at %s: %v", addr, err)
	}
	return client, nil
}

// Server answers model requests over HTTP. Requests are JSON objects
// holding the same options as the command line, for example
//	{"Scenario": "Scenario A: sparse coverage", "FFGoal": 0.8}
// Responses are cached by request.
type Server struct {
	src    *pec.SpectrumSource
	log    logrus.FieldLogger
	cache  *resultCache
	router *mux.Router

	// MaxCells limits the size of the bandgap grid of a request.
	MaxCells int
}

// NewServer creates a server that illuminates cells with src and keeps
// cacheSize responses in memory, or all responses if cacheSize is 0.
// If client is not nil, responses are also shared through redis for
// ttl.
func NewServer(src *pec.SpectrumSource, log logrus.FieldLogger, cacheSize int, client *redis.Client, ttl time.Duration) *Server {
	s := &Server{
		src:      src,
		log:      log,
		cache:    newResultCache(cacheSize, client, ttl),
		router:   mux.NewRouter(),
		MaxCells: DefaultMaxCells,
	}
	s.router.HandleFunc("/version", s.version).Methods(http.MethodGet)
	s.router.HandleFunc("/scenarios", s.scenarios).Methods(http.MethodGet)
	s.router.HandleFunc("/catalysts", s.catalysts).Methods(http.MethodGet)
	s.router.HandleFunc("/sweep", s.cached("sweep", s.sweep)).Methods(http.MethodPost)
	s.router.HandleFunc("/curve", s.cached("curve", s.curve)).Methods(http.MethodPost)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"version": pec.Version})
}

func (s *Server) scenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, ScenarioNames())
}

func (s *Server) catalysts(w http.ResponseWriter, r *http.Request) {
	oer, her, co2rr := pec.CatalystNames()
	writeJSON(w, map[string][]string{"OER": oer, "HER": her, "CO2RR": co2rr})
}

// requestError is an error caused by the content of a request.
type requestError struct{ error }

// handler computes the response to a decoded request.
type handler func(ctx context.Context, req *viper.Viper) (interface{}, error)

// cached decodes the JSON request body, answers from the cache when
// possible and otherwise calls h and caches its response.
func (s *Server) cached(namespace string, h handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, fmt.Sprintf("pecutil: invalid request: %v", err), http.StatusBadRequest)
			return
		}
		key := hash.Key(namespace, body)
		ctx := r.Context()
		if b, ok := s.cache.get(ctx, key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "hit")
			w.Write(b)
			return
		}
		req := viper.New()
		if err := req.MergeConfigMap(body); err != nil {
			http.Error(w, fmt.Sprintf("pecutil: invalid request: %v", err), http.StatusBadRequest)
			return
		}
		v, err := h(ctx, req)
		if err != nil {
			code := http.StatusInternalServerError
			if _, ok := err.(requestError); ok {
				code = http.StatusBadRequest
			}
			http.Error(w, err.Error(), code)
			return
		}
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(v); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := s.cache.add(ctx, key, buf.Bytes()); err != nil {
			s.log.WithError(err).Warn("pecutil: caching response")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "miss")
		w.Write(buf.Bytes())
	}
}

// model creates a model for the configuration in req.
func (s *Server) model(req *viper.Viper) (*pec.Model, error) {
	c, err := ModelConfig(req)
	if err != nil {
		return nil, requestError{err}
	}
	n := 1
	for _, r := range c.Bandgaps {
		n *= len(r.Values())
	}
	if n > s.MaxCells {
		return nil, requestError{fmt.Errorf("pecutil: bandgap grid has %d cells but at most %d are allowed", n, s.MaxCells)}
	}
	m, err := pec.NewModel(c, s.src)
	if err != nil {
		return nil, requestError{err}
	}
	m.Log = s.log
	return m, nil
}

// SweepResponse is the response to a sweep request. Grid values are
// in the row-major order of the sweep arrays and are null for cells
// that were not computed.
type SweepResponse struct {
	Summary *Summary              `json:"summary"`
	Axes    [3][]float64          `json:"axes"`
	Grids   map[string][]*float64 `json:"grids"`
}

func jsonGrid(g *sparse.DenseArray, computed []bool) []*float64 {
	o := make([]*float64, len(g.Elements))
	for i, v := range g.Elements {
		if computed[i] {
			v := v
			o[i] = &v
		}
	}
	return o
}

func (s *Server) sweep(ctx context.Context, req *viper.Viper) (interface{}, error) {
	vars, err := GetStringMapString("OutputVariables", req)
	if err != nil {
		return nil, requestError{err}
	}
	if len(vars) == 0 {
		vars = map[string]string{"Efficiency": "Efficiency"}
	}
	o, err := pec.NewOutputter(checkOutputVars(vars), nil)
	if err != nil {
		return nil, requestError{err}
	}
	m, err := s.model(req)
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
	resp := &SweepResponse{
		Summary: NewSummary(m.Config(), r),
		Axes:    r.Axes,
		Grids:   make(map[string][]*float64),
	}
	resp.Summary.Scenario = req.GetString("Scenario")
	resp.Summary.OutputVariables = o.Names()
	for _, n := range o.Names() {
		resp.Grids[n] = jsonGrid(derived[n], r.Computed)
	}
	return resp, nil
}

// CurveResponse is the response to a curve request.
type CurveResponse struct {
	Bandgaps []float64 `json:"bandgaps"`
	Supply   pec.Curve `json:"supply"`
	Demand   pec.Curve `json:"demand"`
	V        float64   `json:"v"`
	J        float64   `json:"j"`
	FE       float64   `json:"fe"`
	Power    float64   `json:"power"`
	Status   string    `json:"status"`
}

func (s *Server) curve(ctx context.Context, req *viper.Viper) (interface{}, error) {
	bandgaps, err := toFloat64SliceE(req.Get("Bandgaps"))
	if err != nil {
		return nil, requestError{fmt.Errorf("pecutil: invalid Bandgaps: %v", err)}
	}
	if len(bandgaps) != 2 && len(bandgaps) != 3 {
		return nil, requestError{fmt.Errorf("pecutil: curve requests need 2 or 3 Bandgaps but have %d", len(bandgaps))}
	}
	m, err := s.model(req)
	if err != nil {
		return nil, err
	}
	env := m.Environment()
	if req.IsSet("Concentrator") {
		env.Concentrator = req.GetFloat64("Concentrator")
	}
	if !(env.Concentrator > 0) {
		return nil, requestError{fmt.Errorf("pecutil: Concentrator is %g but should be >0", env.Concentrator)}
	}
	mt, err := m.SupplyDemand(bandgaps, env)
	if err != nil {
		return nil, requestError{err}
	}
	return &CurveResponse{
		Bandgaps: bandgaps,
		Supply:   mt.Supply(),
		Demand:   mt.Demand,
		V:        mt.V,
		J:        mt.J,
		FE:       mt.FE,
		Power:    mt.Power,
		Status:   mt.Status.String(),
	}, nil
}
