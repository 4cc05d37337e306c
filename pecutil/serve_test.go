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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spatialmodel/pec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() *Server {
	return NewServer(pec.ReferenceSpectrum(), quietLogger(), 10, nil, 0)
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

const smallSweep = `{"Bandgap1": [2.0, 2.5, 0.25], "Bandgap2": [1.5, 2.0, 0.25],
	"OutputVariables": {"Eff": "Efficiency", "J": "Current"}}`

func TestServerInfo(t *testing.T) {
	s := testServer()

	w := do(s, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, w.Code)
	var v map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	assert.Equal(t, pec.Version, v["version"])

	w = do(s, http.MethodGet, "/scenarios", "")
	require.Equal(t, http.StatusOK, w.Code)
	var names []string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&names))
	assert.Equal(t, ScenarioNames(), names)

	w = do(s, http.MethodGet, "/catalysts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cats map[string][]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cats))
	assert.Contains(t, cats["CO2RR"], "OIID-Cu")
	assert.Contains(t, cats["HER"], "Platinum")

	w = do(s, http.MethodGet, "/sweep", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServerSweep(t *testing.T) {
	s := testServer()
	w := do(s, http.MethodPost, "/sweep", smallSweep)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "miss", w.Header().Get("X-Cache"))
	first := w.Body.String()

	var resp SweepResponse
	require.NoError(t, json.Unmarshal([]byte(first), &resp))
	assert.Equal(t, 4, resp.Summary.Computed)
	assert.Equal(t, []string{"Eff", "J"}, resp.Summary.OutputVariables)
	assert.Equal(t, []float64{2.0, 2.25}, resp.Axes[0])
	require.Len(t, resp.Grids["Eff"], 4)
	for _, v := range resp.Grids["Eff"] {
		require.NotNil(t, v)
		assert.True(t, *v > 0)
	}

	w = do(s, http.MethodPost, "/sweep", smallSweep)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hit", w.Header().Get("X-Cache"))
	assert.Equal(t, first, w.Body.String())
}

func TestServerErrors(t *testing.T) {
	s := testServer()
	s.MaxCells = 2
	for _, test := range []struct {
		name, path, body string
	}{
		{"json", "/sweep", "{"},
		{"mode", "/sweep", `{"Mode": "sideways"}`},
		{"size", "/sweep", smallSweep},
		{"outputs", "/sweep", `{"OutputVariables": {"x": "nothing"}}`},
		{"no bandgaps", "/curve", `{}`},
	} {
		t.Run(test.name, func(t *testing.T) {
			w := do(s, http.MethodPost, test.path, test.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestServerCurve(t *testing.T) {
	s := testServer()
	w := do(s, http.MethodPost, "/curve", `{"Bandgaps": [2.0, 1.5]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp CurveResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, []float64{2.0, 1.5}, resp.Bandgaps)
	assert.True(t, resp.J > 0)
	assert.True(t, resp.V > 0)
	assert.NotEmpty(t, resp.Supply.V)
	assert.Equal(t, len(resp.Demand.V), len(resp.Demand.J))
	assert.NotEqual(t, pec.NoIntersection.String(), resp.Status)

	w = do(s, http.MethodPost, "/curve", `{"Bandgaps": [2.0, 1.5], "Concentrator": -1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResultCache(t *testing.T) {
	c := newResultCache(1, nil, 0)
	ctx := context.Background()
	require.NoError(t, c.add(ctx, "a", []byte("1")))
	b, ok := c.get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "1", string(b))
	require.NoError(t, c.add(ctx, "b", []byte("2")))
	_, ok = c.get(ctx, "a")
	assert.False(t, ok, "a should be evicted")
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("PEC_REDIS_ADDR")
	if addr == "" {
		t.Skip("PEC_REDIS_ADDR is not set")
	}
	ctx := context.Background()
	client, err := ConnectRedis(ctx, addr, 2, quietLogger())
	require.NoError(t, err)
	defer client.Close()

	key := "pec-test:" + time.Now().Format(time.RFC3339Nano)
	c := newResultCache(1, client, time.Minute)
	require.NoError(t, c.add(ctx, key, []byte("x")))
	require.NoError(t, c.add(ctx, key+"2", []byte("y"))) // evicts key locally
	b, ok := c.get(ctx, key)
	require.True(t, ok, "key should be found in redis")
	assert.Equal(t, "x", string(b))
}
