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

	"github.com/openthread/ot-budget/schedule"
	"github.com/openthread/ot-budget/types"
)

// accountDutyCycle charges activeConsumption for activeTime and inactiveConsumption for the rest of the
// window. activeTime is clipped to [0, duration].
func accountDutyCycle(activeConsumption, inactiveConsumption, activeTime, duration float64) (float64, float64, float64) {
	activeTime = math.Max(0, math.Min(activeTime, duration))
	return activeConsumption * activeTime, inactiveConsumption * (duration - activeTime), activeTime
}

// AccountSensor computes the consumption of a sensor whose cumulative measuring time on the sensing bus
// is given by its timeline.
func AccountSensor(s types.SensorProfile, tl schedule.SensorTimeline, w schedule.Window) ElementConsumption {
	active, inactive, activeTime := accountDutyCycle(s.ActiveConsumption, s.InactiveConsumption,
		tl.MeasuringTime, w.Seconds())
	return newElementConsumption(s.Name, s.OperatingVoltage, active, inactive, activeTime, tl.Schedule)
}

// AccountRadio computes the consumption of the radio. Receive consumption is not charged.
func AccountRadio(r types.RadioProfile, tl schedule.RadioTimeline, w schedule.Window) ElementConsumption {
	active, inactive, activeTime := accountDutyCycle(r.TransmitConsumption, r.InactiveConsumption,
		tl.ActiveTime, w.Seconds())
	return newElementConsumption(r.Name, r.OperatingVoltage, active, inactive, activeTime, tl.Schedule)
}

// AccountMicrocontroller computes the consumption of the MCU, which is active whenever a sensor measures or
// the radio transmits and in deep sleep otherwise. Light sleep is not charged.
func AccountMicrocontroller(m types.MicrocontrollerProfile, measuringTime, radioActiveTime float64,
	sched schedule.Schedule, w schedule.Window) ElementConsumption {
	active, inactive, activeTime := accountDutyCycle(m.ActiveConsumption, m.DeepSleepConsumption,
		measuringTime+radioActiveTime, w.Seconds())
	return newElementConsumption(m.Name, m.OperatingVoltage, active, inactive, activeTime, sched)
}
