// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

// Package main provides occid, the OCCI protocol daemon.  It serves
// the OCCI rendering and discovery protocol over HTTP against a
// pluggable storage backend.
package main

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/urfave/negroni"

	"github.com/cloudfoam/go-occi/backend"
	"github.com/cloudfoam/go-occi/cache"
	"github.com/cloudfoam/go-occi/infrastructure"
	"github.com/cloudfoam/go-occi/occihttp"
	"github.com/cloudfoam/go-occi/server"
)

func main() {
	app := cli.NewApp()
	app.Name = "occid"
	app.Usage = "OCCI protocol daemon"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "http",
			Value: ":8086",
			Usage: "[ip]:port for the HTTP interface",
		},
		cli.StringFlag{
			Name:  "backend",
			Value: "memory",
			Usage: "impl[:address] of the storage backend",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "global configuration YAML file",
		},
		cli.BoolFlag{
			Name:  "log-requests",
			Usage: "log all requests",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("occid failed")
	}
}

func run(c *cli.Context) error {
	config, err := loadConfig(c)
	if err != nil {
		return err
	}

	selector := backend.Backend{Implementation: "memory"}
	if err = selector.Set(config.Backend); err != nil {
		return err
	}

	registry := infrastructure.NewRegistry()
	store, err := selector.Backend(registry)
	if err != nil {
		return err
	}
	store = cache.New(store)

	handler := &occihttp.Handler{Server: server.New(registry, store)}
	if config.LogRequests {
		handler.Log = requestLogger()
	}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.PathPrefix("/").Handler(handler)

	n := negroni.New(negroni.NewRecovery(), &metricsMiddleware{})
	n.UseHandler(r)

	logrus.WithFields(logrus.Fields{
		"http":    config.HTTP,
		"backend": selector.String(),
	}).Info("serving OCCI requests")
	return http.ListenAndServe(config.HTTP, n)
}

// requestLogger builds the per-request logger: the standard logger's
// output and formatting, but at debug level so request lines
// actually emit.
func requestLogger() *logrus.Logger {
	stdlog := logrus.StandardLogger()
	return &logrus.Logger{
		Out:       stdlog.Out,
		Formatter: stdlog.Formatter,
		Hooks:     stdlog.Hooks,
		Level:     logrus.DebugLevel,
	}
}
