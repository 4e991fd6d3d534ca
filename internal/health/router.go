// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package health

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter returns a gorilla/mux router exposing /healthz (JSON pool
// status) and /metrics (Prometheus exposition format), the same router
// construction idiom cmd/cc-backend uses for its own routes.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", Handler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}
