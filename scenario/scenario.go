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

// Package scenario reads and writes complete estimation requests: a device and an observation window.
package scenario

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openthread/ot-budget/energy"
	"github.com/openthread/ot-budget/report"
	"github.com/openthread/ot-budget/schedule"
	"github.com/openthread/ot-budget/types"
)

const (
	// MaxSamples bounds the schedule slots of one request, e.g. 48 days at 1 slot/s.
	MaxSamples = 1 << 22
	// MaxEvents bounds the measurements of one sensor and the transmissions of the radio in one request.
	MaxEvents = 1 << 22
)

// Scenario is a YAML/JSON friendly estimation request. Resolution is optional.
type Scenario struct {
	Title           string                       `yaml:"title,omitempty" json:"title,omitempty"`
	Duration        int                          `yaml:"duration" json:"duration"`
	Resolution      *int                         `yaml:"resolution,omitempty" json:"resolution,omitempty"`
	Sensors         []types.SensorProfile        `yaml:"sensors" json:"sensors"`
	Microcontroller types.MicrocontrollerProfile `yaml:"microcontroller" json:"microcontroller"`
	Radio           types.RadioProfile           `yaml:"radio" json:"radio"`
}

// Window returns the observation window of the scenario.
func (sc *Scenario) Window() schedule.Window {
	res := schedule.DefaultResolution
	if sc.Resolution != nil {
		res = *sc.Resolution
	}
	return schedule.Window{Duration: sc.Duration, Resolution: res}
}

// Device returns the profiles of the scenario.
func (sc *Scenario) Device() report.Device {
	return report.Device{
		Sensors:         sc.Sensors,
		Microcontroller: sc.Microcontroller,
		Radio:           sc.Radio,
	}
}

// Validate checks the scenario as a request. Unlike the estimator itself, it also rejects sensors whose
// active time exceeds their sampling period, and windows or event counts above MaxSamples and MaxEvents.
func (sc *Scenario) Validate() error {
	w := sc.Window()
	if err := w.Validate(); err != nil {
		return err
	}
	if w.Samples() > MaxSamples {
		return types.Invalidf("", "duration", "%ds at %d slots/s gives %d slots, at most %d are supported",
			w.Duration, w.Resolution, w.Samples(), MaxSamples)
	}
	for _, s := range sc.Sensors {
		if err := s.Validate(); err != nil {
			return err
		}
		if s.SamplingRate > 0 && s.ActiveTime > 1/s.SamplingRate {
			return types.Invalidf(s.Name, "active_time", "%gs exceeds the sampling period of %gs",
				s.ActiveTime, 1/s.SamplingRate)
		}
		if err := requireEvents(s.Name, "sampling_rate", s.SamplingRate*w.Seconds()); err != nil {
			return err
		}
	}
	if err := sc.Microcontroller.Validate(); err != nil {
		return err
	}
	if err := sc.Radio.Validate(); err != nil {
		return err
	}
	return requireEvents(sc.Radio.Name, "data_refresh_rate", sc.Radio.DataRefreshRate*w.Seconds())
}

func requireEvents(component, field string, n float64) error {
	if n > MaxEvents {
		return types.Invalidf(component, field, "gives %g events in the window, at most %d are supported",
			n, MaxEvents)
	}
	return nil
}

// Compute validates the scenario and computes the consumption of its device.
func (sc *Scenario) Compute() (energy.SystemConsumption, error) {
	if err := sc.Validate(); err != nil {
		return energy.SystemConsumption{}, err
	}
	return energy.ComputeSystemConsumption(sc.Sensors, sc.Microcontroller, sc.Radio, sc.Window())
}

// Report computes the scenario and renders the result.
func (sc *Scenario) Report() (*report.Report, error) {
	consumption, err := sc.Compute()
	if err != nil {
		return nil, err
	}
	return report.Build(sc.Title, consumption, sc.Device())
}

// Parse decodes a YAML scenario. JSON documents are accepted as well.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrap(err, "parse scenario")
	}
	return &sc, nil
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read scenario %s", path)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return sc, nil
}

// Save writes the scenario as YAML.
func (sc *Scenario) Save(path string) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return errors.Wrap(err, "marshal scenario")
	}
	if err = os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "write scenario %s", path)
	}
	return nil
}
