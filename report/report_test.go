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

package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/openthread/ot-budget/energy"
	"github.com/openthread/ot-budget/schedule"
	"github.com/openthread/ot-budget/types"
)

func exampleDevice() Device {
	return Device{
		Sensors: []types.SensorProfile{{
			Name:                "temperature",
			OperatingVoltage:    3.3,
			ActiveConsumption:   20,
			InactiveConsumption: 1,
			SamplingRate:        1,
			ActiveTime:          0.1,
			DataVolume:          1,
		}},
		Microcontroller: types.MicrocontrollerProfile{
			Name:                 "mcu",
			OperatingVoltage:     3.3,
			ActiveConsumption:    80,
			DeepSleepConsumption: 1,
		},
		Radio: types.RadioProfile{
			Name:                "radio",
			OperatingVoltage:    3.3,
			TransmitConsumption: 40,
			InactiveConsumption: 1,
			Datarate:            10000,
			DataRefreshRate:     0.5,
		},
	}
}

func buildExample(t *testing.T) *Report {
	dev := exampleDevice()
	sc, err := energy.ComputeSystemConsumption(dev.Sensors, dev.Microcontroller, dev.Radio,
		schedule.Window{Duration: 10, Resolution: 1})
	require.Nil(t, err)
	r, err := Build("example", sc, dev)
	require.Nil(t, err)
	return r
}

func TestBuild(t *testing.T) {
	r := buildExample(t)
	assert.NotEmpty(t, r.RunID)
	assert.Equal(t, 10, r.Duration)
	require.Len(t, r.Components, 3)

	mcu := r.Components[0]
	assert.Equal(t, "mcu", mcu.Name)
	assert.Equal(t, MicrocontrollerGroup, mcu.Group)
	assert.InDelta(t, 405.0/3600, mcu.ChargeMAh, 1e-12)
	assert.Equal(t, 80.0, mcu.MaxCurrent)
	assert.InDelta(t, 40.5, mcu.AvgCurrent, 1e-12)
	assert.InDelta(t, 3.3*405.0/3600, mcu.EnergyMWh, 1e-12)
	assert.InDelta(t, 264.0, mcu.MaxPower, 1e-9)
	assert.InDelta(t, 83.2, mcu.ActiveCharge, 1e-9)
	assert.InDelta(t, 92.16/132.72, mcu.ChargeShare, 1e-9)

	radio := r.Components[1]
	assert.Equal(t, CommunicationsGroup, radio.Group)
	assert.InDelta(t, 20.5, radio.AvgCurrent, 1e-12)

	sensor := r.Components[2]
	assert.Equal(t, "temperature", sensor.Name)
	assert.Equal(t, 1.0, sensor.MaxCurrent)
	assert.Equal(t, 1.0, sensor.AvgCurrent)

	require.Len(t, r.Groups, 3)
	assert.Equal(t, SensingGroup, r.Groups[0].Group)
	assert.InDelta(t, 20.0/29.0, r.Groups[0].ActiveShare, 1e-12)
	assert.InDelta(t, 132.72, r.Totals.Charge, 1e-9)

	shares := 0.0
	for _, c := range r.Components {
		shares += c.EnergyShare
	}
	assert.InDelta(t, 1.0, shares, 1e-9)
}

func TestBuildMismatchedDevice(t *testing.T) {
	dev := exampleDevice()
	sc, err := energy.ComputeSystemConsumption(dev.Sensors, dev.Microcontroller, dev.Radio,
		schedule.Window{Duration: 10, Resolution: 1})
	require.Nil(t, err)
	dev.Sensors = nil
	_, err = Build("x", sc, dev)
	assert.NotNil(t, err)
}

func TestStackedSeries(t *testing.T) {
	r := buildExample(t)
	stacked := r.Series.Stacked()
	require.Len(t, stacked, 3)
	assert.Equal(t, 1.0, stacked[0][0])
	assert.Equal(t, 80.0, stacked[0][1])
	assert.Equal(t, 120.0, stacked[1][1])
	assert.Equal(t, 121.0, r.Series.Total()[1])
	assert.Equal(t, 3.0, r.Series.Total()[0])
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, r.Series.Time)
}

func TestZeroDurationReport(t *testing.T) {
	dev := exampleDevice()
	sc, err := energy.ComputeSystemConsumption(dev.Sensors, dev.Microcontroller, dev.Radio,
		schedule.Window{Duration: 0, Resolution: 1})
	require.Nil(t, err)
	r, err := Build("", sc, dev)
	require.Nil(t, err)
	assert.Equal(t, "energy", r.Title)
	for _, c := range r.Components {
		assert.Equal(t, 0.0, c.ChargeMAh)
		assert.Equal(t, 0.0, c.ChargeShare)
	}
	assert.Empty(t, r.Series.Total())
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.Nil(t, buildExample(t).Write(&buf, TableFormat))
	out := buf.String()
	assert.Contains(t, out, "Component\tCharge (mAh)")
	assert.Contains(t, out, "mcu\t0.112500\t80.000000\t40.500000")
	assert.Contains(t, out, "Total energy consumption: 132.720000 mAs")
}

func TestWriteCsv(t *testing.T) {
	var buf bytes.Buffer
	require.Nil(t, buildExample(t).Write(&buf, CsvFormat))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "timeSec,mcu,radio,temperature,total", lines[0])
	assert.Equal(t, "1.000000,80,40,1,121", lines[2])
}

func TestWriteJsonAndYaml(t *testing.T) {
	r := buildExample(t)

	var buf bytes.Buffer
	require.Nil(t, r.Write(&buf, JsonFormat))
	var decoded Report
	require.Nil(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r.RunID, decoded.RunID)
	assert.Len(t, decoded.Components, 3)

	buf.Reset()
	require.Nil(t, r.Write(&buf, YamlFormat))
	var node map[string]interface{}
	require.Nil(t, yaml.Unmarshal(buf.Bytes(), &node))
	assert.Equal(t, "example", node["title"])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	assert.Nil(t, err)
	assert.Equal(t, TableFormat, f)
	f, err = ParseFormat("YML")
	assert.Nil(t, err)
	assert.Equal(t, YamlFormat, f)
	_, err = ParseFormat("pdf")
	assert.NotNil(t, err)
}

func TestSaveToDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "energy_results")
	paths, err := buildExample(t).SaveToDir(dir)
	require.Nil(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "example.txt"),
		filepath.Join(dir, "example_timeseries.csv"),
		filepath.Join(dir, "example.json"),
	}, paths)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.Nil(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}
