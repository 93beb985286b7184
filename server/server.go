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

// Package server exposes the estimator over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/openthread/ot-budget/catalog"
	"github.com/openthread/ot-budget/logger"
	"github.com/openthread/ot-budget/report"
)

const maxRequestBytes = 1 << 20

// ReportPublisher forwards computed reports, e.g. to an MQTT broker.
type ReportPublisher interface {
	PublishReport(r *report.Report) (string, error)
}

type Server struct {
	httpServer *http.Server
	catalog    *catalog.Catalog
	publisher  ReportPublisher
	lock       sync.Mutex
	stopped    bool
	Started    chan struct{}
}

// New creates a server listening on addr. cat and pub are optional.
func New(addr string, cat *catalog.Catalog, pub ReportPublisher) *Server {
	s := &Server{
		catalog:   cat,
		publisher: pub,
		Started:   make(chan struct{}),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in logging and recovery middleware.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/consumption", s.computeConsumption).Methods(http.MethodPost)
	v1.HandleFunc("/catalog/{kind}", s.listCatalog).Methods(http.MethodGet)

	recovered := handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}), handlers.PrintRecoveryStack(true))(r)
	return handlers.LoggingHandler(logWriter{}, recovered)
}

// Serve serves until Stop is called. It returns nil after a regular Stop.
func (s *Server) Serve() error {
	defer logger.Debugf("http server exit.")

	s.lock.Lock()
	if s.stopped {
		s.lock.Unlock()
		close(s.Started)
		return nil
	}
	s.lock.Unlock()

	logger.Infof("http server serving on %s ...", s.httpServer.Addr)
	close(s.Started)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.lock.Lock()
	s.stopped = true
	s.lock.Unlock()
	logger.Debugf("http server stopping")
	return s.httpServer.Shutdown(ctx)
}

type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	logger.Debugf("http: %s", strings.TrimSpace(string(p)))
	return len(p), nil
}

type recoveryLogger struct{}

func (recoveryLogger) Println(args ...interface{}) {
	logger.Error(args...)
}

func writeJson(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Errorf("http: encode response: %v", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(append(data, '\n')); err != nil {
		logger.Warnf("http: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJson(w, status, map[string]string{"error": err.Error()})
}
