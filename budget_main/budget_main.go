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

package budget_main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/openthread/ot-budget/catalog"
	"github.com/openthread/ot-budget/cli"
	"github.com/openthread/ot-budget/logger"
	"github.com/openthread/ot-budget/progctx"
	"github.com/openthread/ot-budget/publish"
	"github.com/openthread/ot-budget/report"
	"github.com/openthread/ot-budget/scenario"
	"github.com/openthread/ot-budget/server"
)

type MainArgs struct {
	CatalogDir   string
	ScenarioFile string
	Sensors      string
	Mcu          int
	Radio        int
	Duration     int
	Resolution   int
	ReportFormat string
	OutputDir    string
	ListenAddr   string
	MqttBroker   string
	MqttPrefix   string
	LogLevel     string
	LogFile      string
	Batch        bool
}

var (
	args MainArgs
)

func parseArgs() map[string]bool {
	flag.StringVar(&args.CatalogDir, "catalog", "components", "directory holding the component catalog files")
	flag.StringVar(&args.ScenarioFile, "scenario", "", "load the device and window from a YAML scenario file")
	flag.StringVar(&args.Sensors, "sensors", "", "select catalog sensors by index, e.g. \"0,2\"")
	flag.IntVar(&args.Mcu, "mcu", -1, "select the catalog microcontroller by index")
	flag.IntVar(&args.Radio, "radio", -1, "select the catalog radio interface by index")
	flag.IntVar(&args.Duration, "duration", 0, "simulated time window in seconds")
	flag.IntVar(&args.Resolution, "resolution", 1, "schedule slots per second")
	flag.StringVar(&args.ReportFormat, "report", "table", "batch report format: table, csv, json, yaml")
	flag.StringVar(&args.OutputDir, "out", "energy_results", "directory for exported reports (empty: do not export in batch mode)")
	flag.StringVar(&args.ListenAddr, "serve", "", "serve the HTTP API on the given address, e.g. localhost:8080")
	flag.StringVar(&args.MqttBroker, "mqtt", "", "MQTT broker URL for publishing reports, e.g. tcp://localhost:1883")
	flag.StringVar(&args.MqttPrefix, "mqtt-prefix", publish.DefaultTopicPrefix, "MQTT topic prefix")
	flag.StringVar(&args.LogLevel, "log", "warn", "set logging level: trace, debug, info, warn, error.")
	flag.StringVar(&args.LogFile, "logfile", "", "also write the log to the given file")
	flag.BoolVar(&args.Batch, "batch", false, "compute the selected device once, print and export the report, then exit")

	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

func Main(ctx *progctx.ProgCtx, cliOptions *cli.CliOptions) {
	set := parseArgs()

	lv, err := logger.ParseLevelString(args.LogLevel)
	logger.FatalIfError(err)
	logger.SetLevel(lv)
	if args.LogFile != "" {
		logger.FatalIfError(logger.SetOutput([]string{"stderr", args.LogFile}))
	}
	defer logger.Sync()

	cat, err := catalog.Open(args.CatalogDir)
	logger.FatalIfError(err)

	var pub cli.ReportPublisher
	if args.MqttBroker != "" {
		pub = connectPublisher(ctx)
	}

	session, err := buildSession(cat, set)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	if args.Batch {
		ctx.Cancel(runBatch(session, pub))
		return
	}

	// run console in the main goroutine
	ctx.Defer(func() {
		_ = os.Stdin.Close()
	})

	handleSignals(ctx)

	if args.ListenAddr != "" {
		startServer(ctx, cat, pub)
	}

	rt := cli.NewCmdRunner(ctx, cli.RunnerConfig{
		Catalog:   cat,
		Publisher: pub,
		OutputDir: args.OutputDir,
	}, session)
	console := cli.NewCliInstance()
	logger.SetStdoutCallback(console)
	go func() {
		err := console.Run(rt, cliOptions)
		ctx.Cancel(errors.Wrapf(err, "console exit"))
	}()

	<-ctx.Done()
	logger.Debugf("waiting for ot-budget to stop gracefully ...")
	ctx.Wait()
}

func connectPublisher(ctx *progctx.ProgCtx) cli.ReportPublisher {
	cfg := publish.DefaultConfig()
	cfg.Broker = args.MqttBroker
	cfg.TopicPrefix = args.MqttPrefix

	p, err := publish.New(cfg)
	logger.FatalIfError(err)
	if err = p.Connect(); err != nil {
		logger.Errorf("%v, reports will not be published", err)
		return nil
	}
	ctx.Defer(p.Close)
	return p
}

// buildSession prepares the initial session from the scenario file and the catalog selection flags.
// Flags given explicitly override the scenario.
func buildSession(cat *catalog.Catalog, set map[string]bool) (*cli.Session, error) {
	s := cli.NewSession()
	if args.ScenarioFile != "" {
		sc, err := scenario.Load(args.ScenarioFile)
		if err != nil {
			return nil, err
		}
		if err = s.LoadScenario(sc); err != nil {
			return nil, err
		}
	}

	if args.Sensors != "" {
		indices, err := catalog.ParseIndices(args.Sensors)
		if err != nil {
			return nil, err
		}
		sensors, err := cat.SelectSensors(indices)
		if err != nil {
			return nil, err
		}
		if err = s.SetSensors(sensors); err != nil {
			return nil, err
		}
	}
	if args.Mcu >= 0 {
		m, err := cat.Microcontroller(args.Mcu)
		if err != nil {
			return nil, err
		}
		s.SetMicrocontroller(m)
	}
	if args.Radio >= 0 {
		r, err := cat.Radio(args.Radio)
		if err != nil {
			return nil, err
		}
		s.SetRadio(r)
	}
	if args.ScenarioFile == "" || set["duration"] {
		if err := s.SetDuration(args.Duration); err != nil {
			return nil, err
		}
	}
	if args.ScenarioFile == "" || set["resolution"] {
		if err := s.SetResolution(args.Resolution); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func runBatch(session *cli.Session, pub cli.ReportPublisher) error {
	format, err := report.ParseFormat(args.ReportFormat)
	if err != nil {
		return err
	}
	sc, err := session.Scenario()
	if err != nil {
		return err
	}
	if err = sc.Validate(); err != nil {
		return err
	}
	r, err := session.Run()
	if err != nil {
		return err
	}
	if err = r.Write(os.Stdout, format); err != nil {
		return err
	}

	if args.OutputDir != "" {
		paths, err := r.SaveToDir(args.OutputDir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			logger.Infof("saved %s", p)
		}
	}
	if pub != nil {
		topic, err := pub.PublishReport(r)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "published to %s\n", topic)
	}
	return nil
}

func startServer(ctx *progctx.ProgCtx, cat *catalog.Catalog, pub cli.ReportPublisher) {
	srv := server.New(args.ListenAddr, cat, pub)
	ctx.Defer(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Stop(stopCtx); err != nil {
			logger.Warnf("http server stop: %v", err)
		}
	})
	ctx.Go("http-server", srv.Serve)
	<-srv.Started
}

func handleSignals(ctx *progctx.ProgCtx) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)

	ctx.WaitAdd("handleSignals", 1)
	go func() {
		defer logger.Debugf("handleSignals exit.")
		defer ctx.WaitDone("handleSignals")

		for {
			select {
			case sig := <-c:
				logger.Infof("signal received: %v", sig)
				ctx.Cancel(nil)
			case <-ctx.Done():
				return
			}
		}
	}()
}
