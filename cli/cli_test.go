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
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthread/ot-budget/catalog"
	"github.com/openthread/ot-budget/progctx"
	"github.com/openthread/ot-budget/report"
)

func TestParseBytes(t *testing.T) {
	var cmd Command
	assert.NotNil(t, parseBytes([]byte("wrongcmd"), &cmd))

	cmd = Command{}
	assert.Nil(t, parseBytes([]byte(`sensor "temperature" 3.3 20 1 1 0.1 1`), &cmd))
	require.NotNil(t, cmd.Sensor)
	assert.Equal(t, "temperature", unquote(cmd.Sensor.Name))
	assert.Equal(t, 3.3, cmd.Sensor.Voltage)
	assert.Equal(t, 0.1, cmd.Sensor.ActiveTime)
	assert.Nil(t, cmd.Sensor.NoSave)

	cmd = Command{}
	assert.Nil(t, parseBytes([]byte(`sensor "t" 3.3 20 1 1 0.1 1 nosave`), &cmd))
	assert.NotNil(t, cmd.Sensor.NoSave)
	assert.NotNil(t, parseBytes([]byte(`sensor "t" 3.3 20 1`), &Command{}))

	cmd = Command{}
	assert.Nil(t, parseBytes([]byte(`mcu "nrf52840" 3.0 6.3 1.5 0.002`), &cmd))
	assert.True(t, cmd.Mcu != nil && cmd.Mcu.DeepSleep == 0.002)

	cmd = Command{}
	assert.Nil(t, parseBytes([]byte(`radio "ble" 3 5.3 5.4 0.001 1000000 0.1`), &cmd))
	assert.True(t, cmd.Radio != nil && cmd.Radio.Datarate == 1000000)

	cmd = Command{}
	assert.Nil(t, parseBytes([]byte("select sensors 0,2, 5"), &cmd))
	require.NotNil(t, cmd.Select)
	assert.Equal(t, []int{0, 2, 5}, cmd.Select.Sensors.Indices)

	cmd = Command{}
	assert.Nil(t, parseBytes([]byte("select mcu 1"), &cmd))
	assert.Equal(t, 1, *cmd.Select.Mcu)

	cmd = Command{}
	assert.Nil(t, parseBytes([]byte("select radio 0"), &cmd))
	assert.Equal(t, 0, *cmd.Select.Radio)

	cmd = Command{}
	assert.True(t, parseBytes([]byte("duration"), &cmd) == nil && cmd.Duration != nil && cmd.Duration.Value == nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("duration 3600"), &cmd) == nil && *cmd.Duration.Value == 3600)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("resolution 10"), &cmd) == nil && *cmd.Resolution.Value == 10)

	cmd = Command{}
	assert.True(t, parseBytes([]byte("catalog"), &cmd) == nil && cmd.Catalog != nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("catalog mcus"), &cmd) == nil && cmd.Catalog.Kind == "mcus")

	cmd = Command{}
	assert.True(t, parseBytes([]byte("report"), &cmd) == nil && cmd.Report != nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("report csv"), &cmd) == nil && cmd.Report.Format == "csv")
	assert.NotNil(t, parseBytes([]byte("report pdf"), &Command{}))

	assert.Nil(t, parseBytes([]byte(`load "scenario.yaml"`), &Command{}))
	assert.Nil(t, parseBytes([]byte(`save "scenario.yaml"`), &Command{}))
	assert.Nil(t, parseBytes([]byte(`export`), &Command{}))
	assert.Nil(t, parseBytes([]byte(`export "station"`), &Command{}))
	assert.Nil(t, parseBytes([]byte(`title "station"`), &Command{}))
	assert.Nil(t, parseBytes([]byte("run"), &Command{}))
	assert.Nil(t, parseBytes([]byte("publish"), &Command{}))
	assert.Nil(t, parseBytes([]byte("show"), &Command{}))
	assert.Nil(t, parseBytes([]byte("clear"), &Command{}))
	assert.Nil(t, parseBytes([]byte("exit"), &Command{}))
	assert.Nil(t, parseBytes([]byte("help"), &Command{}))
	assert.Nil(t, parseBytes([]byte("help sensor"), &Command{}))
	assert.Nil(t, parseBytes([]byte("log"), &Command{}))
	assert.Nil(t, parseBytes([]byte("log debug"), &Command{}))
	assert.NotNil(t, parseBytes([]byte("log loud"), &Command{}))
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "abc", unquote(`"abc"`))
	assert.Equal(t, "abc", unquote("abc"))
	assert.Equal(t, `a"b`, unquote(`"a\"b"`))
	assert.Equal(t, "", unquote(""))
}

type stubPublisher struct {
	runs []string
}

func (p *stubPublisher) PublishReport(r *report.Report) (string, error) {
	p.runs = append(p.runs, r.RunID)
	return "test/" + r.RunID + "/summary", nil
}

func newTestRunner(t *testing.T, pub ReportPublisher) (*CmdRunner, string) {
	dir := t.TempDir()
	cat, err := catalog.Open(filepath.Join(dir, "catalog"))
	require.Nil(t, err)
	cfg := RunnerConfig{
		Catalog:   cat,
		Publisher: pub,
		OutputDir: filepath.Join(dir, "energy_results"),
	}
	return NewCmdRunner(progctx.New(context.Background()), cfg, nil), dir
}

func run(t *testing.T, rt *CmdRunner, cmdline string) string {
	var buf bytes.Buffer
	require.Nil(t, rt.HandleCommand(cmdline, &buf))
	return buf.String()
}

func defineExample(t *testing.T, rt *CmdRunner) {
	assert.Equal(t, "0\nDone\n", run(t, rt, `sensor "temperature" 3.3 20 1 1 0.1 1`))
	assert.Equal(t, "0\nDone\n", run(t, rt, `mcu "mcu" 3.3 80 10 1`))
	assert.Equal(t, "0\nDone\n", run(t, rt, `radio "radio" 3.3 40 30 1 10000 0.5`))
	assert.Equal(t, "Done\n", run(t, rt, "duration 10"))
}

func TestRunExample(t *testing.T) {
	pub := &stubPublisher{}
	rt, dir := newTestRunner(t, pub)
	defineExample(t, rt)

	out := run(t, rt, "run")
	assert.Contains(t, out, "Total energy consumption: 132.720000 mAs")
	assert.True(t, strings.HasSuffix(out, "Done\n"))

	out = run(t, rt, "report csv")
	assert.True(t, strings.HasPrefix(out, "timeSec,mcu,radio,temperature,total\n"), out)

	out = run(t, rt, `export "station"`)
	assert.Contains(t, out, filepath.Join(dir, "energy_results", "station.json"))
	_, err := os.Stat(filepath.Join(dir, "energy_results", "station_timeseries.csv"))
	assert.Nil(t, err)

	out = run(t, rt, "publish")
	require.Len(t, pub.runs, 1)
	assert.Equal(t, "test/"+pub.runs[0]+"/summary\nDone\n", out)
}

func TestReportBeforeRun(t *testing.T) {
	rt, _ := newTestRunner(t, nil)
	assert.Equal(t, "Error: no results, use 'run' first\n", run(t, rt, "report"))
	assert.Equal(t, "Error: no mqtt broker configured\n", run(t, rt, "publish"))
}

func TestRunRequiresRadio(t *testing.T) {
	rt, _ := newTestRunner(t, nil)
	run(t, rt, `mcu "mcu" 3.3 80 10 1 nosave`)
	out := run(t, rt, "run")
	assert.True(t, strings.HasPrefix(out, "Error: invalid input: radio not set"), out)
}

func TestInvalidInputIsReported(t *testing.T) {
	rt, _ := newTestRunner(t, nil)
	out := run(t, rt, `radio "radio" 3.3 40 30 1 10000 0`)
	assert.Contains(t, out, "Error: invalid input: radio: data_refresh_rate must be > 0")
	assert.Nil(t, rt.Session().Radio)

	out = run(t, rt, `sensor "s" 3.3 20 1 1 0.1 1 nosave`)
	assert.Equal(t, "Done\n", out)
	out = run(t, rt, `sensor "s" 3.3 20 1 1 0.1 1 nosave`)
	assert.Contains(t, out, "already used")

	out = run(t, rt, "resolution 0")
	assert.Contains(t, out, "resolution must be > 0")
}

func TestCatalogAndSelect(t *testing.T) {
	rt, _ := newTestRunner(t, nil)
	defineExample(t, rt)
	run(t, rt, `sensor "humidity" 3.3 15 0.5 0.5 0.2 2`)

	out := run(t, rt, "catalog sensors")
	assert.Contains(t, out, "0: {name: temperature,")
	assert.Contains(t, out, "1: {name: humidity,")

	run(t, rt, "clear")
	assert.Empty(t, rt.Session().Sensors)

	assert.Equal(t, "Done\n", run(t, rt, "select sensors 1, 0"))
	assert.Equal(t, "Done\n", run(t, rt, "select mcu 0"))
	assert.Equal(t, "Done\n", run(t, rt, "select radio 0"))
	require.Len(t, rt.Session().Sensors, 2)
	assert.Equal(t, "humidity", rt.Session().Sensors[0].Name)

	out = run(t, rt, "select radio 4")
	assert.Contains(t, out, "out of range")
}

func TestSaveAndLoadScenario(t *testing.T) {
	rt, dir := newTestRunner(t, nil)
	defineExample(t, rt)
	run(t, rt, `title "station"`)
	path := filepath.Join(dir, "station.yaml")
	assert.Equal(t, "Done\n", run(t, rt, fmt.Sprintf("save %q", path)))

	run(t, rt, "clear")
	assert.Nil(t, rt.Session().Microcontroller)
	assert.Equal(t, Prompt, rt.GetPrompt())

	assert.Equal(t, "Done\n", run(t, rt, fmt.Sprintf("load %q", path)))
	assert.Equal(t, "station"+Prompt, rt.GetPrompt())
	assert.Equal(t, 10, rt.Session().Duration)
	assert.Contains(t, run(t, rt, "run"), "132.720000")

	out := run(t, rt, "show")
	assert.Contains(t, out, "- {name: temperature,")
	assert.Contains(t, out, "duration: 10")
}

func TestLogLevelAndHelp(t *testing.T) {
	rt, _ := newTestRunner(t, nil)
	out := run(t, rt, "help")
	assert.Contains(t, out, "sensor")
	assert.Contains(t, out, "Define a sensor, add it to the session and to the catalog.")

	out = run(t, rt, "help select")
	assert.Contains(t, out, "select sensors index")
	assert.Contains(t, out, "Definition:")
	assert.Contains(t, out, "Example:")

	out = run(t, rt, "help nothing")
	assert.Contains(t, out, "(Non-existent command.)")

	out = run(t, rt, "log")
	assert.Contains(t, out, "info")
}

func TestExitCancelsContext(t *testing.T) {
	rt, _ := newTestRunner(t, nil)
	var buf bytes.Buffer
	err := rt.HandleCommand("exit", &buf)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NotNil(t, rt.ctx.Err())
}

type mockCliHandler struct {
	expectedCmd string
	handleError error
	handleCount int
	t           *testing.T
}

func (hnd *mockCliHandler) HandleCommand(cmd string, output io.Writer) error {
	assert.Equal(hnd.t, hnd.expectedCmd, cmd)
	hnd.handleCount += 1
	return hnd.handleError
}

func (hnd *mockCliHandler) GetPrompt() string {
	return Prompt
}

func TestCliStartStop(t *testing.T) {
	cli := NewCliInstance()
	handler := mockCliHandler{
		expectedCmd: "help",
		t:           t,
	}

	opt := DefaultCliOptions()
	r, w, _ := os.Pipe()
	opt.Stdin = r
	err := make(chan error, 1)
	go func() {
		err <- cli.Run(&handler, opt)
	}()
	<-cli.Started
	fmt.Fprint(w, "help\n")
	time.Sleep(time.Millisecond * 500)
	_ = w.Close()
	cli.Stop()

	assert.Nil(t, <-err)
	assert.Equal(t, 1, handler.handleCount)
}

func TestCliCommandNotDefined(t *testing.T) {
	cli := NewCliInstance()
	handler := mockCliHandler{
		expectedCmd: "xyz",
		handleError: fmt.Errorf("undefined command"),
		t:           t,
	}

	opt := DefaultCliOptions()
	r, w, _ := os.Pipe()
	opt.Stdin = r
	err := make(chan error, 1)
	go func() {
		err <- cli.Run(&handler, opt)
	}()
	<-cli.Started
	fmt.Fprint(w, "xyz\n")

	assert.NotNil(t, <-err)
	assert.Equal(t, 1, handler.handleCount)

	cli.Stop()
}
