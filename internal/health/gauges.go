// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package health

import "github.com/prometheus/client_golang/prometheus"

var (
	poolCapacity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "probius_pool_capacity_pages",
			Help: "Maximum number of pages a named buffer pool will ever allocate.",
		},
		[]string{"pool"},
	)

	poolOutstanding = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "probius_pool_outstanding_pages",
			Help: "Pages currently allocated from a named buffer pool but not yet released.",
		},
		[]string{"pool"},
	)
)

func init() {
	prometheus.MustRegister(poolCapacity, poolOutstanding)
}
