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

package types

// ComponentKind identifies one of the three component catalogs.
type ComponentKind string

const (
	SensorKind          ComponentKind = "sensor"
	MicrocontrollerKind ComponentKind = "microcontroller"
	RadioKind           ComponentKind = "radio"
)

// SensorProfile describes a duty-cycled sensor. All currents are in mA, times in s, voltage in V.
type SensorProfile struct {
	Name                string  `yaml:"name" json:"name"`
	OperatingVoltage    float64 `yaml:"operating_voltage" json:"operating_voltage"`
	ActiveConsumption   float64 `yaml:"active_consumption" json:"active_consumption"`
	InactiveConsumption float64 `yaml:"inactive_consumption" json:"inactive_consumption"`
	SamplingRate        float64 `yaml:"sampling_rate" json:"sampling_rate"` // measurements per second
	ActiveTime          float64 `yaml:"active_time" json:"active_time"`     // seconds per measurement
	DataVolume          float64 `yaml:"data_volume" json:"data_volume"`     // bytes per measurement
}

// NewSensorProfile returns a validated SensorProfile.
func NewSensorProfile(name string, voltage, active, inactive, samplingRate, activeTime, dataVolume float64) (SensorProfile, error) {
	s := SensorProfile{
		Name:                name,
		OperatingVoltage:    voltage,
		ActiveConsumption:   active,
		InactiveConsumption: inactive,
		SamplingRate:        samplingRate,
		ActiveTime:          activeTime,
		DataVolume:          dataVolume,
	}
	return s, s.Validate()
}

// Validate checks the profile for values the accountant cannot work with.
// An ActiveTime longer than the sampling period is accepted here; overlapping measurements are clamped.
func (s SensorProfile) Validate() error {
	if s.Name == "" {
		return Invalidf(string(SensorKind), "name", "must not be empty")
	}
	return firstError(
		requireNonNegative(s.Name, "operating_voltage", s.OperatingVoltage),
		requireNonNegative(s.Name, "active_consumption", s.ActiveConsumption),
		requireNonNegative(s.Name, "inactive_consumption", s.InactiveConsumption),
		requireNonNegative(s.Name, "sampling_rate", s.SamplingRate),
		requireNonNegative(s.Name, "active_time", s.ActiveTime),
		requireNonNegative(s.Name, "data_volume", s.DataVolume),
	)
}

// MicrocontrollerProfile describes the MCU. LightSleepConsumption is carried for reporting only.
type MicrocontrollerProfile struct {
	Name                  string  `yaml:"name" json:"name"`
	OperatingVoltage      float64 `yaml:"operating_voltage" json:"operating_voltage"`
	ActiveConsumption     float64 `yaml:"active_consumption" json:"active_consumption"`
	LightSleepConsumption float64 `yaml:"light_sleep_consumption" json:"light_sleep_consumption"`
	DeepSleepConsumption  float64 `yaml:"deep_sleep_consumption" json:"deep_sleep_consumption"`
}

func NewMicrocontrollerProfile(name string, voltage, active, lightSleep, deepSleep float64) (MicrocontrollerProfile, error) {
	m := MicrocontrollerProfile{
		Name:                  name,
		OperatingVoltage:      voltage,
		ActiveConsumption:     active,
		LightSleepConsumption: lightSleep,
		DeepSleepConsumption:  deepSleep,
	}
	return m, m.Validate()
}

func (m MicrocontrollerProfile) Validate() error {
	if m.Name == "" {
		return Invalidf(string(MicrocontrollerKind), "name", "must not be empty")
	}
	return firstError(
		requireNonNegative(m.Name, "operating_voltage", m.OperatingVoltage),
		requireNonNegative(m.Name, "active_consumption", m.ActiveConsumption),
		requireNonNegative(m.Name, "light_sleep_consumption", m.LightSleepConsumption),
		requireNonNegative(m.Name, "deep_sleep_consumption", m.DeepSleepConsumption),
	)
}

// RadioProfile describes the radio interface. ReceiveConsumption is carried for reporting only.
type RadioProfile struct {
	Name                string  `yaml:"name" json:"name"`
	OperatingVoltage    float64 `yaml:"operating_voltage" json:"operating_voltage"`
	TransmitConsumption float64 `yaml:"transmit_consumption" json:"transmit_consumption"`
	ReceiveConsumption  float64 `yaml:"receive_consumption" json:"receive_consumption"`
	InactiveConsumption float64 `yaml:"inactive_consumption" json:"inactive_consumption"`
	Datarate            float64 `yaml:"datarate" json:"datarate"`                   // bits per second
	DataRefreshRate     float64 `yaml:"data_refresh_rate" json:"data_refresh_rate"` // transmissions per second
}

func NewRadioProfile(name string, voltage, transmit, receive, inactive, datarate, refreshRate float64) (RadioProfile, error) {
	r := RadioProfile{
		Name:                name,
		OperatingVoltage:    voltage,
		TransmitConsumption: transmit,
		ReceiveConsumption:  receive,
		InactiveConsumption: inactive,
		Datarate:            datarate,
		DataRefreshRate:     refreshRate,
	}
	return r, r.Validate()
}

func (r RadioProfile) Validate() error {
	if r.Name == "" {
		return Invalidf(string(RadioKind), "name", "must not be empty")
	}
	return firstError(
		requireNonNegative(r.Name, "operating_voltage", r.OperatingVoltage),
		requireNonNegative(r.Name, "transmit_consumption", r.TransmitConsumption),
		requireNonNegative(r.Name, "receive_consumption", r.ReceiveConsumption),
		requireNonNegative(r.Name, "inactive_consumption", r.InactiveConsumption),
		requirePositive(r.Name, "datarate", r.Datarate),
		requirePositive(r.Name, "data_refresh_rate", r.DataRefreshRate),
	)
}
