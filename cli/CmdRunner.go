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

package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openthread/ot-budget/catalog"
	"github.com/openthread/ot-budget/logger"
	"github.com/openthread/ot-budget/progctx"
	"github.com/openthread/ot-budget/report"
	"github.com/openthread/ot-budget/scenario"
	"github.com/openthread/ot-budget/types"
)

const (
	Prompt = "> "
)

// ReportPublisher forwards computed reports, e.g. to an MQTT broker.
type ReportPublisher interface {
	PublishReport(r *report.Report) (string, error)
}

type CommandContext struct {
	context.Context
	*Command
	rt     *CmdRunner
	err    error
	output io.Writer
}

func (cc *CommandContext) outputStr(msg string) {
	_, _ = fmt.Fprint(cc.output, msg)
}

func (cc *CommandContext) outputf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cc.output, format, args...)
}

func (cc *CommandContext) errorf(format string, args ...interface{}) {
	cc.error(errors.Errorf(format, args...))
}

func (cc *CommandContext) error(err error) {
	if err != nil {
		if cc.err != nil { // if previous error, print it now and keep the last.
			cc.outputf("Error: %s\n", cc.err)
		}
		cc.err = err
	}
}

// Err returns the last error that occurred during command execution.
func (cc *CommandContext) Err() error {
	return cc.err
}

func (cc *CommandContext) outputItemsAsYaml(items interface{}) {
	var itemsYaml yaml.Node

	err := itemsYaml.Encode(items)
	logger.PanicIfError(err)

	for _, content := range itemsYaml.Content {
		content.Style = yaml.FlowStyle
	}

	data, err := yaml.Marshal(&itemsYaml)
	logger.PanicIfError(err)

	_, err = cc.output.Write(data)
	logger.PanicIfError(err)
}

// RunnerConfig holds the collaborators of a CmdRunner. Catalog and Publisher are optional.
type RunnerConfig struct {
	Catalog   *catalog.Catalog
	Publisher ReportPublisher
	OutputDir string
}

type CmdRunner struct {
	ctx     *progctx.ProgCtx
	cfg     RunnerConfig
	session *Session
	help    Help
}

func NewCmdRunner(ctx *progctx.ProgCtx, cfg RunnerConfig, session *Session) *CmdRunner {
	if session == nil {
		session = NewSession()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "energy_results"
	}
	return &CmdRunner{
		ctx:     ctx,
		cfg:     cfg,
		session: session,
		help:    newHelp(),
	}
}

// Session returns the state the runner operates on.
func (rt *CmdRunner) Session() *Session {
	return rt.session
}

func (rt *CmdRunner) RunCommand(cmdline string, output io.Writer) error {
	if rt.ctx.Err() == nil {
		cmd := Command{}
		if err := parseBytes([]byte(cmdline), &cmd); err != nil {
			if _, err := fmt.Fprintf(output, "Error: %v\n", err); err != nil {
				return err
			}
		} else {
			rt.execute(&cmd, output)
		}
	}
	return rt.ctx.Err()
}

func (rt *CmdRunner) HandleCommand(cmdline string, output io.Writer) error {
	return rt.RunCommand(cmdline, output)
}

func (rt *CmdRunner) GetPrompt() string {
	if rt.session.Title == "" {
		return Prompt
	}
	return rt.session.Title + Prompt
}

func (rt *CmdRunner) execute(cmd *Command, output io.Writer) {
	cc := &CommandContext{
		Context: rt.ctx,
		Command: cmd,
		rt:      rt,
		output:  output,
	}

	defer func() {
		if cc.Err() != nil {
			cc.outputf("Error: %v\n", cc.Err())
		} else {
			cc.outputf("Done\n")
		}
	}()

	defer func() {
		rerr := recover()

		if rerr != nil {
			if err, ok := rerr.(error); ok {
				cc.err = errors.Wrapf(err, "panic: %v", err)
			} else {
				cc.err = errors.Errorf("panic: %v", rerr)
			}
		}
	}()

	if cmd.Sensor != nil {
		rt.executeSensor(cc, cmd.Sensor)
	} else if cmd.Mcu != nil {
		rt.executeMcu(cc, cmd.Mcu)
	} else if cmd.Radio != nil {
		rt.executeRadio(cc, cmd.Radio)
	} else if cmd.Catalog != nil {
		rt.executeCatalog(cc, cmd.Catalog)
	} else if cmd.Select != nil {
		rt.executeSelect(cc, cmd.Select)
	} else if cmd.Duration != nil {
		rt.executeDuration(cc, cmd.Duration)
	} else if cmd.Resolution != nil {
		rt.executeResolution(cc, cmd.Resolution)
	} else if cmd.Title != nil {
		rt.executeTitle(cc, cmd.Title)
	} else if cmd.Load != nil {
		rt.executeLoad(cc, cmd.Load)
	} else if cmd.Save != nil {
		rt.executeSave(cc, cmd.Save)
	} else if cmd.Run != nil {
		rt.executeRun(cc)
	} else if cmd.Report != nil {
		rt.executeReport(cc, cmd.Report)
	} else if cmd.Export != nil {
		rt.executeExport(cc, cmd.Export)
	} else if cmd.Publish != nil {
		rt.executePublish(cc)
	} else if cmd.Show != nil {
		rt.executeShow(cc)
	} else if cmd.Clear != nil {
		rt.session.Clear()
	} else if cmd.LogLevel != nil {
		rt.executeLogLevel(cc, cmd.LogLevel)
	} else if cmd.Help != nil {
		rt.executeHelp(cc, cmd.Help)
	} else if cmd.Exit != nil {
		rt.executeExit(cc)
	} else {
		logger.Panicf("unimplemented command: %#v", cmd)
	}
}

func (rt *CmdRunner) executeSensor(cc *CommandContext, cmd *SensorCmd) {
	s, err := types.NewSensorProfile(unquote(cmd.Name), cmd.Voltage, cmd.Active, cmd.Inactive, cmd.SamplingRate,
		cmd.ActiveTime, cmd.DataVolume)
	if err != nil {
		cc.error(err)
		return
	}
	if err = rt.session.AddSensor(s); err != nil {
		cc.error(err)
		return
	}
	if cmd.NoSave == nil && rt.cfg.Catalog != nil {
		idx, err := rt.cfg.Catalog.AddSensor(s)
		if err != nil {
			cc.error(err)
			return
		}
		cc.outputf("%d\n", idx)
	}
}

func (rt *CmdRunner) executeMcu(cc *CommandContext, cmd *McuCmd) {
	m, err := types.NewMicrocontrollerProfile(unquote(cmd.Name), cmd.Voltage, cmd.Active, cmd.LightSleep,
		cmd.DeepSleep)
	if err != nil {
		cc.error(err)
		return
	}
	rt.session.SetMicrocontroller(m)
	if cmd.NoSave == nil && rt.cfg.Catalog != nil {
		idx, err := rt.cfg.Catalog.AddMicrocontroller(m)
		if err != nil {
			cc.error(err)
			return
		}
		cc.outputf("%d\n", idx)
	}
}

func (rt *CmdRunner) executeRadio(cc *CommandContext, cmd *RadioCmd) {
	r, err := types.NewRadioProfile(unquote(cmd.Name), cmd.Voltage, cmd.Transmit, cmd.Receive, cmd.Inactive,
		cmd.Datarate, cmd.RefreshRate)
	if err != nil {
		cc.error(err)
		return
	}
	rt.session.SetRadio(r)
	if cmd.NoSave == nil && rt.cfg.Catalog != nil {
		idx, err := rt.cfg.Catalog.AddRadio(r)
		if err != nil {
			cc.error(err)
			return
		}
		cc.outputf("%d\n", idx)
	}
}

func (rt *CmdRunner) requireCatalog(cc *CommandContext) *catalog.Catalog {
	if rt.cfg.Catalog == nil {
		cc.errorf("no catalog configured")
	}
	return rt.cfg.Catalog
}

func (rt *CmdRunner) executeCatalog(cc *CommandContext, cmd *CatalogCmd) {
	cat := rt.requireCatalog(cc)
	if cat == nil {
		return
	}

	kinds := []types.ComponentKind{types.SensorKind, types.MicrocontrollerKind, types.RadioKind}
	if cmd.Kind != "" {
		kind, err := catalog.ParseKind(cmd.Kind)
		if err != nil {
			cc.error(err)
			return
		}
		kinds = []types.ComponentKind{kind}
	}

	for _, kind := range kinds {
		entries, err := cat.List(kind)
		if err != nil {
			cc.error(err)
			return
		}
		if len(kinds) > 1 {
			cc.outputf("%s:\n", kind)
		}
		for _, e := range entries {
			cc.outputf("%d: %s\n", e.Index, e.Record)
		}
	}
}

func (rt *CmdRunner) executeSelect(cc *CommandContext, cmd *SelectCmd) {
	cat := rt.requireCatalog(cc)
	if cat == nil {
		return
	}

	switch {
	case cmd.Sensors != nil:
		sensors, err := cat.SelectSensors(cmd.Sensors.Indices)
		if err != nil {
			cc.error(err)
			return
		}
		cc.error(rt.session.SetSensors(sensors))
	case cmd.Mcu != nil:
		m, err := cat.Microcontroller(*cmd.Mcu)
		if err != nil {
			cc.error(err)
			return
		}
		rt.session.SetMicrocontroller(m)
	case cmd.Radio != nil:
		r, err := cat.Radio(*cmd.Radio)
		if err != nil {
			cc.error(err)
			return
		}
		rt.session.SetRadio(r)
	}
}

func (rt *CmdRunner) executeDuration(cc *CommandContext, cmd *DurationCmd) {
	if cmd.Value == nil {
		cc.outputf("%d\n", rt.session.Duration)
		return
	}
	cc.error(rt.session.SetDuration(*cmd.Value))
}

func (rt *CmdRunner) executeResolution(cc *CommandContext, cmd *ResolutionCmd) {
	if cmd.Value == nil {
		cc.outputf("%d\n", rt.session.Resolution)
		return
	}
	cc.error(rt.session.SetResolution(*cmd.Value))
}

func (rt *CmdRunner) executeTitle(cc *CommandContext, cmd *TitleCmd) {
	if cmd.Title == nil {
		cc.outputf("%s\n", rt.session.Title)
		return
	}
	rt.session.Title = unquote(*cmd.Title)
}

func (rt *CmdRunner) executeLoad(cc *CommandContext, cmd *LoadCmd) {
	sc, err := scenario.Load(unquote(cmd.Path))
	if err != nil {
		cc.error(err)
		return
	}
	cc.error(rt.session.LoadScenario(sc))
}

func (rt *CmdRunner) executeSave(cc *CommandContext, cmd *SaveCmd) {
	sc, err := rt.session.Scenario()
	if err != nil {
		cc.error(err)
		return
	}
	cc.error(sc.Save(unquote(cmd.Path)))
}

func (rt *CmdRunner) executeRun(cc *CommandContext) {
	r, err := rt.session.Run()
	if err != nil {
		cc.error(err)
		return
	}
	cc.error(r.WriteTable(cc.output))
}

func (rt *CmdRunner) lastReport(cc *CommandContext) *report.Report {
	r := rt.session.LastReport()
	if r == nil {
		cc.errorf("no results, use 'run' first")
	}
	return r
}

func (rt *CmdRunner) executeReport(cc *CommandContext, cmd *ReportCmd) {
	r := rt.lastReport(cc)
	if r == nil {
		return
	}
	format, err := report.ParseFormat(cmd.Format)
	if err != nil {
		cc.error(err)
		return
	}
	cc.error(r.Write(cc.output, format))
}

func (rt *CmdRunner) executeExport(cc *CommandContext, cmd *ExportCmd) {
	r := rt.lastReport(cc)
	if r == nil {
		return
	}
	if name := unquote(cmd.Name); name != "" {
		r.Title = filepath.Base(name)
	}
	paths, err := r.SaveToDir(rt.cfg.OutputDir)
	for _, p := range paths {
		cc.outputf("%s\n", p)
	}
	cc.error(err)
}

func (rt *CmdRunner) executePublish(cc *CommandContext) {
	if rt.cfg.Publisher == nil {
		cc.errorf("no mqtt broker configured")
		return
	}
	r := rt.lastReport(cc)
	if r == nil {
		return
	}
	topic, err := rt.cfg.Publisher.PublishReport(r)
	if err != nil {
		cc.error(err)
		return
	}
	cc.outputf("%s\n", topic)
}

func (rt *CmdRunner) executeShow(cc *CommandContext) {
	s := rt.session
	cc.outputf("title: %s\nduration: %d\nresolution: %d\n", s.Title, s.Duration, s.Resolution)
	if len(s.Sensors) > 0 {
		cc.outputf("sensors:\n")
		cc.outputItemsAsYaml(s.Sensors)
	}
	if s.Microcontroller != nil {
		cc.outputf("microcontroller:\n")
		cc.outputItemsAsYaml([]types.MicrocontrollerProfile{*s.Microcontroller})
	}
	if s.Radio != nil {
		cc.outputf("radio:\n")
		cc.outputItemsAsYaml([]types.RadioProfile{*s.Radio})
	}
}

func (rt *CmdRunner) executeLogLevel(cc *CommandContext, cmd *LogLevelCmd) {
	if cmd.Level == "" {
		cc.outputf("%v\n", logger.GetLevel())
		return
	}
	lv, err := logger.ParseLevelString(cmd.Level)
	if err != nil {
		cc.error(err)
		return
	}
	logger.SetLevel(lv)
}

func (rt *CmdRunner) executeHelp(cc *CommandContext, cmd *HelpCmd) {
	if len(cmd.HelpTopic) > 0 {
		cc.outputStr(rt.help.outputCommandHelp(cmd.HelpTopic))
	} else {
		cc.outputStr(rt.help.outputGeneralHelp())
	}
}

func (rt *CmdRunner) executeExit(cc *CommandContext) {
	rt.ctx.Cancel("exit")
}
