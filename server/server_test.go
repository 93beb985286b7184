// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthread/ot-budget/catalog"
	"github.com/openthread/ot-budget/report"
	"github.com/openthread/ot-budget/types"
)

const exampleRequest = `{
	"title": "station",
	"duration": 10,
	"sensors": [{"name": "temperature", "operating_voltage": 3.3, "active_consumption": 20,
		"inactive_consumption": 1, "sampling_rate": 1, "active_time": 0.1, "data_volume": 1}],
	"microcontroller": {"name": "mcu", "operating_voltage": 3.3, "active_consumption": 80,
		"deep_sleep_consumption": 1},
	"radio": {"name": "radio", "operating_voltage": 3.3, "transmit_consumption": 40,
		"inactive_consumption": 1, "datarate": 10000, "data_refresh_rate": 0.5}
}`

type stubPublisher struct {
	runs []string
	err  error
}

func (p *stubPublisher) PublishReport(r *report.Report) (string, error) {
	p.runs = append(p.runs, r.RunID)
	if p.err != nil {
		return "", p.err
	}
	return "test/" + r.RunID + "/summary", nil
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	rr := do(t, New(":0", nil, nil).Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rr.Body.String())
}

func TestComputeConsumption(t *testing.T) {
	pub := &stubPublisher{}
	rr := do(t, New(":0", nil, pub).Handler(), http.MethodPost, "/v1/consumption", exampleRequest)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp struct {
		RunID  string                    `json:"run_id"`
		Title  string                    `json:"title"`
		Topic  string                    `json:"topic"`
		Totals report.Totals             `json:"totals"`
		Comps  []report.ComponentSummary `json:"components"`
	}
	require.Nil(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "station", resp.Title)
	assert.InDelta(t, 132.72, resp.Totals.Charge, 1e-9)
	assert.Len(t, resp.Comps, 3)
	require.Len(t, pub.runs, 1)
	assert.Equal(t, pub.runs[0], resp.RunID)
	assert.Equal(t, "test/"+resp.RunID+"/summary", resp.Topic)
}

func TestComputeConsumptionPublishFailureIsNotFatal(t *testing.T) {
	pub := &stubPublisher{err: errors.New("broker down")}
	rr := do(t, New(":0", nil, pub).Handler(), http.MethodPost, "/v1/consumption", exampleRequest)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"topic"`)
}

func TestComputeConsumptionInvalidInput(t *testing.T) {
	h := New(":0", nil, nil).Handler()

	body := strings.Replace(exampleRequest, `"data_refresh_rate": 0.5`, `"data_refresh_rate": 0`, 1)
	rr := do(t, h, http.MethodPost, "/v1/consumption", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "data_refresh_rate")

	rr = do(t, h, http.MethodPost, "/v1/consumption", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/v1/consumption", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestComputeConsumptionRejectsOversizedRequests(t *testing.T) {
	h := New(":0", nil, nil).Handler()

	body := strings.Replace(exampleRequest, `"duration": 10,`, `"duration": 4611686018427387904, "resolution": 2,`, 1)
	rr := do(t, h, http.MethodPost, "/v1/consumption", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "duration")

	body = strings.Replace(exampleRequest, `"sampling_rate": 1, "active_time": 0.1`,
		`"sampling_rate": 1e308, "active_time": 0`, 1)
	rr = do(t, h, http.MethodPost, "/v1/consumption", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "sampling_rate")
}

func TestWriteJsonUnsupportedValue(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJson(rr, http.StatusOK, map[string]float64{"charge": math.NaN()})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "unsupported value")
}

func TestListCatalog(t *testing.T) {
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog"))
	require.Nil(t, err)
	s, _ := types.NewSensorProfile("co2", 5, 30, 0.1, 0.2, 1, 2)
	_, err = cat.AddSensor(s)
	require.Nil(t, err)

	h := New(":0", cat, nil).Handler()
	rr := do(t, h, http.MethodGet, "/v1/catalog/sensors", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var entries []catalog.Entry
	require.Nil(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "co2", entries[0].Name)

	rr = do(t, h, http.MethodGet, "/v1/catalog/batteries", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, New(":0", nil, nil).Handler(), http.MethodGet, "/v1/catalog/sensors", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStopBeforeServe(t *testing.T) {
	s := New("127.0.0.1:0", nil, nil)
	require.Nil(t, s.Stop(context.Background()))
	assert.Nil(t, s.Serve())
	<-s.Started
}
