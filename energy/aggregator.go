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

package energy

import (
	"math"

	"github.com/openthread/ot-budget/logger"
	"github.com/openthread/ot-budget/schedule"
	"github.com/openthread/ot-budget/types"
)

// ComputeSystemConsumption computes the consumption of all sensors, the radio and the microcontroller over
// the window. Sensors are placed on the sensing bus in the given order. Any invalid input aborts the whole
// computation.
func ComputeSystemConsumption(sensors []types.SensorProfile, mcu types.MicrocontrollerProfile,
	radio types.RadioProfile, w schedule.Window) (SystemConsumption, error) {
	if err := validateInputs(sensors, mcu, radio, w); err != nil {
		return SystemConsumption{}, err
	}

	bus := schedule.NewSensingBus(w)
	sensorConsumptions := make([]ElementConsumption, 0, len(sensors))
	sensorSchedules := make([]schedule.Schedule, 0, len(sensors))
	for _, s := range sensors {
		tl := bus.Place(s)
		logger.Tracef("sensor %s: %g measures, cumulative measuring time %gs", s.Name, tl.Measures, tl.MeasuringTime)
		sensorConsumptions = append(sensorConsumptions, AccountSensor(s, tl, w))
		sensorSchedules = append(sensorSchedules, tl.Schedule)
	}

	radioTl, err := schedule.PlaceRadio(radio, bus.DataVolume(), w)
	if err != nil {
		return SystemConsumption{}, err
	}
	logger.Tracef("radio %s: %d transmissions of %gs for %g bytes", radio.Name, radioTl.Transmissions,
		radioTl.TransmissionTime, bus.DataVolume())
	radioConsumption := AccountRadio(radio, radioTl, w)

	sensing := schedule.Or(w.Samples(), sensorSchedules...)
	mcuSchedule := schedule.Or(w.Samples(), sensing, radioTl.Schedule)
	mcuConsumption := AccountMicrocontroller(mcu, bus.MeasuringTime(), radioTl.ActiveTime, mcuSchedule, w)

	sc := SystemConsumption{
		sensors:         sensorConsumptions,
		radio:           radioConsumption,
		microcontroller: mcuConsumption,
		window:          w,
	}
	if err = checkFinite(sc); err != nil {
		return SystemConsumption{}, err
	}
	logger.Debugf("system consumption over %ds: %f mAs", w.Duration, sc.TotalEnergy())
	return sc, nil
}

func validateInputs(sensors []types.SensorProfile, mcu types.MicrocontrollerProfile,
	radio types.RadioProfile, w schedule.Window) error {
	if err := w.Validate(); err != nil {
		return err
	}
	names := make(map[string]struct{}, len(sensors))
	for _, s := range sensors {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, ok := names[s.Name]; ok {
			return types.Invalidf(s.Name, "name", "is used by more than one sensor")
		}
		names[s.Name] = struct{}{}
	}
	if err := mcu.Validate(); err != nil {
		return err
	}
	if err := radio.Validate(); err != nil {
		return err
	}
	return checkWorkload(sensors, radio, w)
}

// checkWorkload rejects profiles whose measure counts, measuring time, data volume or transmission count
// cannot be represented for the window.
func checkWorkload(sensors []types.SensorProfile, radio types.RadioProfile, w schedule.Window) error {
	duration := w.Seconds()
	measuringTime, dataVolume := 0.0, 0.0
	for _, s := range sensors {
		n := s.SamplingRate * duration
		if err := requireCount(s.Name, "sampling_rate", n); err != nil {
			return err
		}
		measuringTime += s.ActiveTime * n
		dataVolume += s.DataVolume * n
		if err := types.RequireFinite(s.Name, "active_time", measuringTime); err != nil {
			return err
		}
		if err := types.RequireFinite(s.Name, "data_volume", dataVolume); err != nil {
			return err
		}
	}

	if err := requireCount(radio.Name, "data_refresh_rate", math.Ceil(duration*radio.DataRefreshRate)); err != nil {
		return err
	}
	return types.RequireFinite(radio.Name, "datarate", dataVolume*8/radio.Datarate)
}

func requireCount(component, field string, n float64) error {
	if math.IsNaN(n) || n > float64(math.MaxInt32) {
		return types.Invalidf(component, field, "gives %g events in the window, at most %d are supported",
			n, math.MaxInt32)
	}
	return nil
}

// checkFinite rejects results that overflowed, e.g. for consumptions near the float64 limit.
func checkFinite(sc SystemConsumption) error {
	elements := append(sc.Sensors(), sc.Radio(), sc.Microcontroller())
	for _, ec := range elements {
		if err := types.RequireFinite(ec.Name(), "energy", ec.TotalEnergy()); err != nil {
			return err
		}
		if err := types.RequireFinite(ec.Name(), "power", ec.TotalPower()); err != nil {
			return err
		}
	}
	if err := types.RequireFinite("", "total energy", sc.TotalEnergy()); err != nil {
		return err
	}
	return types.RequireFinite("", "total power", sc.TotalPower())
}
