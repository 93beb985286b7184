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
	"github.com/openthread/ot-budget/energy"
)

// ComponentSeries is the instantaneous current (mA) of one component per schedule slot.
type ComponentSeries struct {
	Name    string
	Group   string
	Voltage float64
	Current []float64
}

// TimeSeries holds the current series of all components on a common time axis.
// Components are ordered microcontroller, radio, then sensors in input order.
type TimeSeries struct {
	Time       []float64
	Components []ComponentSeries
}

func currentSeries(ec energy.ElementConsumption, active, inactive float64) []float64 {
	res := make([]float64, ec.Slots())
	for i := range res {
		if ec.IsActive(i) {
			res[i] = active
		} else {
			res[i] = inactive
		}
	}
	return res
}

func buildSeries(sc energy.SystemConsumption, dev Device) *TimeSeries {
	w := sc.Window()
	ts := &TimeSeries{Time: make([]float64, w.Samples())}
	for i := range ts.Time {
		ts.Time[i] = float64(i) * w.SlotLength()
	}

	mcu := sc.Microcontroller()
	ts.Components = append(ts.Components, ComponentSeries{
		Name:    mcu.Name(),
		Group:   MicrocontrollerGroup,
		Voltage: mcu.OperatingVoltage(),
		Current: currentSeries(mcu, dev.Microcontroller.ActiveConsumption, dev.Microcontroller.DeepSleepConsumption),
	})

	radio := sc.Radio()
	ts.Components = append(ts.Components, ComponentSeries{
		Name:    radio.Name(),
		Group:   CommunicationsGroup,
		Voltage: radio.OperatingVoltage(),
		Current: currentSeries(radio, dev.Radio.TransmitConsumption, dev.Radio.InactiveConsumption),
	})

	for i, s := range sc.Sensors() {
		p := dev.Sensors[i]
		ts.Components = append(ts.Components, ComponentSeries{
			Name:    s.Name(),
			Group:   SensingGroup,
			Voltage: s.OperatingVoltage(),
			Current: currentSeries(s, p.ActiveConsumption, p.InactiveConsumption),
		})
	}
	return ts
}

// Stacked returns the cumulative current of the components, in component order: row k is the sum of
// components 0..k.
func (ts *TimeSeries) Stacked() [][]float64 {
	res := make([][]float64, len(ts.Components))
	for k, c := range ts.Components {
		row := make([]float64, len(c.Current))
		copy(row, c.Current)
		if k > 0 {
			for i := range row {
				row[i] += res[k-1][i]
			}
		}
		res[k] = row
	}
	return res
}

// Total returns the device current per slot.
func (ts *TimeSeries) Total() []float64 {
	stacked := ts.Stacked()
	if len(stacked) == 0 {
		return make([]float64, len(ts.Time))
	}
	return stacked[len(stacked)-1]
}
