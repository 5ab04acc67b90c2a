// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/negroni"
)

var requestCount = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cloudfoam",
		Subsystem: "occi",
		Name:      "http_requests_total",
		Help:      "Count of OCCI HTTP requests served",
	},
	[]string{"method", "status"},
)

var requestDuration = prometheus.NewSummaryVec(
	prometheus.SummaryOpts{
		Namespace: "cloudfoam",
		Subsystem: "occi",
		Name:      "http_request_duration_seconds",
		Help:      "Time spent serving OCCI HTTP requests",
	},
	[]string{"method"},
)

func init() {
	prometheus.MustRegister(requestCount)
	prometheus.MustRegister(requestDuration)
}

// metricsMiddleware records request counts and durations.  It runs
// inside negroni, whose response writer exposes the final status.
type metricsMiddleware struct{}

func (m *metricsMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	start := time.Now()
	next(w, r)

	status := http.StatusOK
	if nw, wrapped := w.(negroni.ResponseWriter); wrapped {
		status = nw.Status()
	}
	requestCount.With(prometheus.Labels{
		"method": r.Method,
		"status": strconv.Itoa(status),
	}).Inc()
	requestDuration.With(prometheus.Labels{
		"method": r.Method,
	}).Observe(time.Since(start).Seconds())
}
