// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/gorilla/handlers"

	"github.com/ClusterCockpit/cc-probius/internal/health"
	"github.com/ClusterCockpit/cc-probius/internal/probius"
	"github.com/ClusterCockpit/cc-probius/internal/sink"
	"github.com/ClusterCockpit/cc-probius/pkg/bufpool"
	"github.com/ClusterCockpit/cc-probius/pkg/nats"
	"github.com/ClusterCockpit/cc-probius/pkg/traceconfig"
	"github.com/ClusterCockpit/cc-probius/pkg/tracelog"
)

func main() {
	var flagEnvFile, flagConfigFile string
	var flagGops bool
	flag.StringVar(&flagEnvFile, "env", "./.env", "Path to an optional .env file to load before reading the config")
	flag.StringVar(&flagConfigFile, "config", "./config.json", "Overwrite the global config options by those specified in `config.json`")
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging), overriding the config file's 'gops' key")
	flag.Parse()

	if err := traceconfig.Init(flagEnvFile, flagConfigFile); err != nil {
		tracelog.Fatal(err)
	}
	cfg := traceconfig.Keys

	if flagGops || cfg.Gops {
		health.StartGopsAgent()
	}

	pool := bufpool.NewPool(cfg.BufferSize, cfg.NumBatches, cfg.BuffersPerBatch)
	health.RegisterPool("events", pool)

	var wg sync.WaitGroup
	var stopSink func()

	switch cfg.SinkMode {
	case "tcp":
		if cfg.PageAddr == "" {
			tracelog.Fatal("cc-probius: sink-mode is 'tcp' but 'page-addr' is not configured")
		}
		probius.Init(sink.TCPSinkHeadroom, pool)

		sender, receiver := bufpool.NewQueue(cfg.BuffersPerBatch)
		flusher := sink.NewFlusher(probius.Flush, sender)
		tcpSink := sink.NewTCPSink(cfg.AppName, cfg.PageAddr)

		stop := make(chan struct{})
		wg.Add(1)
		go func() {
			defer wg.Done()
			tcpSink.Run(receiver, stop)
		}()
		stopSink = func() {
			close(stop)
			sender.Close()
		}

		s, err := gocron.NewScheduler()
		if err != nil {
			tracelog.Fatalf("cc-probius: could not create gocron scheduler: %s", err.Error())
		}
		interval, err := time.ParseDuration(cfg.FlushInterval)
		if err != nil {
			tracelog.Fatalf("cc-probius: invalid flush-interval %q: %s", cfg.FlushInterval, err.Error())
		}
		if _, err := s.NewJob(gocron.DurationJob(interval), gocron.NewTask(flusher.Flush)); err != nil {
			tracelog.Fatalf("cc-probius: could not register flush job: %s", err.Error())
		}
		s.Start()
		prevStop := stopSink
		stopSink = func() {
			_ = s.Shutdown()
			prevStop()
		}

	case "void", "":
		probius.Init(0, pool)
		stopSink = sink.SpawnVoidSink(probius.Flush)

	default:
		tracelog.Fatalf("cc-probius: unknown sink-mode %q", cfg.SinkMode)
	}

	var stopHeartbeat func()
	if cfg.HeartbeatInterval != "" {
		interval, err := time.ParseDuration(cfg.HeartbeatInterval)
		if err != nil {
			tracelog.Fatalf("cc-probius: invalid heartbeat-interval %q: %s", cfg.HeartbeatInterval, err.Error())
		}
		nats.Connect()
		stop := make(chan struct{})
		wg.Add(1)
		go func() {
			defer wg.Done()
			health.RunHeartbeat(interval, stop)
		}()
		stopHeartbeat = func() { close(stop) }
	}

	var server *http.Server
	if cfg.HealthAddr != "" {
		r := health.NewRouter()
		r.Use(handlers.CompressHandler)
		r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))

		server = &http.Server{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			Handler:      r,
			Addr:         cfg.HealthAddr,
		}

		listener, err := net.Listen("tcp", cfg.HealthAddr)
		if err != nil {
			tracelog.Fatal(err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
				tracelog.Fatal(err)
			}
		}()
		tracelog.Infof("cc-probius: health server listening at %s", cfg.HealthAddr)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	tracelog.Info("cc-probius: shutting down")

	if stopHeartbeat != nil {
		stopHeartbeat()
	}
	if server != nil {
		server.Shutdown(context.Background())
	}
	stopSink()

	wg.Wait()
	tracelog.Info("cc-probius: graceful shutdown completed")
}
