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
	"github.com/openthread/ot-budget/report"
	"github.com/openthread/ot-budget/scenario"
	"github.com/openthread/ot-budget/schedule"
	"github.com/openthread/ot-budget/types"
)

// Session is the device and window being edited in the CLI, plus the last computed report.
type Session struct {
	Title           string
	Sensors         []types.SensorProfile
	Microcontroller *types.MicrocontrollerProfile
	Radio           *types.RadioProfile
	Duration        int
	Resolution      int
	last            *report.Report
}

func NewSession() *Session {
	return &Session{Resolution: schedule.DefaultResolution}
}

// Clear resets the session to its initial state.
func (s *Session) Clear() {
	*s = *NewSession()
}

// AddSensor appends a sensor; names must be unique within the session.
func (s *Session) AddSensor(sensor types.SensorProfile) error {
	for _, existing := range s.Sensors {
		if existing.Name == sensor.Name {
			return types.Invalidf(sensor.Name, "name", "is already used by a sensor")
		}
	}
	s.Sensors = append(s.Sensors, sensor)
	s.last = nil
	return nil
}

// SetSensors replaces all sensors.
func (s *Session) SetSensors(sensors []types.SensorProfile) error {
	prev := s.Sensors
	s.Sensors = nil
	for _, sensor := range sensors {
		if err := s.AddSensor(sensor); err != nil {
			s.Sensors = prev
			return err
		}
	}
	return nil
}

func (s *Session) SetMicrocontroller(m types.MicrocontrollerProfile) {
	s.Microcontroller = &m
	s.last = nil
}

func (s *Session) SetRadio(r types.RadioProfile) {
	s.Radio = &r
	s.last = nil
}

func (s *Session) SetDuration(d int) error {
	if d < 0 {
		return types.Invalidf("", "duration", "must be >= 0, got %d", d)
	}
	s.Duration = d
	s.last = nil
	return nil
}

func (s *Session) SetResolution(r int) error {
	if r <= 0 {
		return types.Invalidf("", "resolution", "must be > 0, got %d", r)
	}
	s.Resolution = r
	s.last = nil
	return nil
}

// Scenario returns the session as a scenario. It fails when no microcontroller or radio is set.
func (s *Session) Scenario() (*scenario.Scenario, error) {
	if s.Microcontroller == nil {
		return nil, types.Invalidf("", "microcontroller", "not set")
	}
	if s.Radio == nil {
		return nil, types.Invalidf("", "radio", "not set")
	}
	res := s.Resolution
	sensors := make([]types.SensorProfile, len(s.Sensors))
	copy(sensors, s.Sensors)
	return &scenario.Scenario{
		Title:           s.Title,
		Duration:        s.Duration,
		Resolution:      &res,
		Sensors:         sensors,
		Microcontroller: *s.Microcontroller,
		Radio:           *s.Radio,
	}, nil
}

// LoadScenario replaces the session content with sc.
func (s *Session) LoadScenario(sc *scenario.Scenario) error {
	w := sc.Window()
	if err := w.Validate(); err != nil {
		return err
	}
	next := NewSession()
	next.Title = sc.Title
	if err := next.SetSensors(sc.Sensors); err != nil {
		return err
	}
	next.SetMicrocontroller(sc.Microcontroller)
	next.SetRadio(sc.Radio)
	next.Duration = w.Duration
	next.Resolution = w.Resolution
	*s = *next
	return nil
}

// Run computes the session's device and keeps the report.
func (s *Session) Run() (*report.Report, error) {
	sc, err := s.Scenario()
	if err != nil {
		return nil, err
	}
	r, err := sc.Report()
	if err != nil {
		return nil, err
	}
	s.last = r
	return r, nil
}

// LastReport returns the report of the last successful Run, or nil.
func (s *Session) LastReport() *report.Report {
	return s.last
}
