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
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/openthread/ot-budget/catalog"
	"github.com/openthread/ot-budget/logger"
	"github.com/openthread/ot-budget/report"
	"github.com/openthread/ot-budget/scenario"
	"github.com/openthread/ot-budget/types"
)

type consumptionResponse struct {
	*report.Report
	Topic string `json:"topic,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) computeConsumption(w http.ResponseWriter, req *http.Request) {
	var sc scenario.Scenario
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxRequestBytes))
	if err := dec.Decode(&sc); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode scenario"))
		return
	}

	r, err := sc.Report()
	if errors.Is(err, types.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err)
		return
	} else if err != nil {
		logger.Errorf("compute %s: %v", sc.Title, err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Infof("run %s (%s): %f mAs over %ds", r.RunID, r.Title, r.Totals.Charge, r.Duration)

	resp := consumptionResponse{Report: r}
	if s.publisher != nil {
		topic, err := s.publisher.PublishReport(r)
		if err != nil {
			logger.Warnf("run %s: %v", r.RunID, err)
		} else {
			resp.Topic = topic
		}
	}
	writeJson(w, http.StatusOK, resp)
}

func (s *Server) listCatalog(w http.ResponseWriter, req *http.Request) {
	if s.catalog == nil {
		writeError(w, http.StatusNotFound, errors.New("no catalog configured"))
		return
	}
	kind, err := catalog.ParseKind(mux.Vars(req)["kind"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entries, err := s.catalog.List(kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJson(w, http.StatusOK, entries)
}
