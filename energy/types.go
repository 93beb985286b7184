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
	"github.com/openthread/ot-budget/schedule"
)

// ElementConsumption is the accounted consumption of one component over the observation window.
// Charges are in mA·s; multiply by the operating voltage for energy in mW·s (mJ).
type ElementConsumption struct {
	name           string
	voltage        float64
	activeEnergy   float64
	inactiveEnergy float64
	activeTime     float64
	schedule       schedule.Schedule
}

func newElementConsumption(name string, voltage, activeEnergy, inactiveEnergy, activeTime float64,
	sched schedule.Schedule) ElementConsumption {
	return ElementConsumption{
		name:           name,
		voltage:        voltage,
		activeEnergy:   activeEnergy,
		inactiveEnergy: inactiveEnergy,
		activeTime:     activeTime,
		schedule:       sched,
	}
}

func (ec ElementConsumption) Name() string {
	return ec.name
}

func (ec ElementConsumption) OperatingVoltage() float64 {
	return ec.voltage
}

// ActiveEnergy returns the charge consumed while active (mA·s).
func (ec ElementConsumption) ActiveEnergy() float64 {
	return ec.activeEnergy
}

// InactiveEnergy returns the charge consumed while inactive (mA·s).
func (ec ElementConsumption) InactiveEnergy() float64 {
	return ec.inactiveEnergy
}

// TotalEnergy returns active plus inactive charge (mA·s).
func (ec ElementConsumption) TotalEnergy() float64 {
	return ec.activeEnergy + ec.inactiveEnergy
}

// ActiveTime returns the accounted active time in seconds, never more than the window duration.
func (ec ElementConsumption) ActiveTime() float64 {
	return ec.activeTime
}

// ActivePower returns the energy consumed while active (mW·s).
func (ec ElementConsumption) ActivePower() float64 {
	return ec.voltage * ec.activeEnergy
}

// InactivePower returns the energy consumed while inactive (mW·s).
func (ec ElementConsumption) InactivePower() float64 {
	return ec.voltage * ec.inactiveEnergy
}

func (ec ElementConsumption) TotalPower() float64 {
	return ec.voltage * ec.TotalEnergy()
}

// Schedule returns a copy of the activity schedule.
func (ec ElementConsumption) Schedule() schedule.Schedule {
	res := make(schedule.Schedule, len(ec.schedule))
	copy(res, ec.schedule)
	return res
}

// Slots returns the number of schedule slots.
func (ec ElementConsumption) Slots() int {
	return len(ec.schedule)
}

// IsActive reports whether slot i of the schedule is active.
func (ec ElementConsumption) IsActive(i int) bool {
	return ec.schedule[i]
}

// SystemConsumption is the accounted consumption of a complete device.
type SystemConsumption struct {
	sensors         []ElementConsumption
	radio           ElementConsumption
	microcontroller ElementConsumption
	window          schedule.Window
}

// Sensors returns the per-sensor consumptions in input order.
func (sc SystemConsumption) Sensors() []ElementConsumption {
	res := make([]ElementConsumption, len(sc.sensors))
	copy(res, sc.sensors)
	return res
}

func (sc SystemConsumption) Radio() ElementConsumption {
	return sc.radio
}

func (sc SystemConsumption) Microcontroller() ElementConsumption {
	return sc.microcontroller
}

func (sc SystemConsumption) Window() schedule.Window {
	return sc.window
}

// SensingEnergy returns the summed charge of all sensors (mA·s).
func (sc SystemConsumption) SensingEnergy() float64 {
	total := 0.0
	for _, s := range sc.sensors {
		total += s.TotalEnergy()
	}
	return total
}

// SensorEnergies returns the total charge of each sensor, in input order.
func (sc SystemConsumption) SensorEnergies() []float64 {
	res := make([]float64, 0, len(sc.sensors))
	for _, s := range sc.sensors {
		res = append(res, s.TotalEnergy())
	}
	return res
}

func (sc SystemConsumption) CommunicationsEnergy() float64 {
	return sc.radio.TotalEnergy()
}

func (sc SystemConsumption) MicrocontrollerEnergy() float64 {
	return sc.microcontroller.TotalEnergy()
}

// TotalEnergy returns the charge of the whole device (mA·s).
func (sc SystemConsumption) TotalEnergy() float64 {
	return sc.SensingEnergy() + sc.CommunicationsEnergy() + sc.MicrocontrollerEnergy()
}

// TotalPower returns the energy of the whole device (mW·s).
func (sc SystemConsumption) TotalPower() float64 {
	total := sc.radio.TotalPower() + sc.microcontroller.TotalPower()
	for _, s := range sc.sensors {
		total += s.TotalPower()
	}
	return total
}
