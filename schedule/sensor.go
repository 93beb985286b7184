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

package schedule

import (
	"math"

	"github.com/openthread/ot-budget/types"
)

// SensorTimeline is the result of placing one sensor on the sensing bus.
type SensorTimeline struct {
	Schedule Schedule
	Measures float64 // number of measurements; may be fractional

	// MeasuringTime is the cumulative measuring time of this and all previously placed sensors.
	MeasuringTime float64
}

// SensingBus is the scheduler state shared by the sensors of one run. Sensors are serialized on the bus:
// each sensor's first measurement starts after the active time of all sensors placed before it.
type SensingBus struct {
	window        Window
	offset        float64
	measuringTime float64
	dataVolume    float64
}

func NewSensingBus(w Window) *SensingBus {
	return &SensingBus{window: w}
}

// Measures returns the number of measurements a sensor takes in the window. Fewer than one measurement
// counts as none.
func Measures(s types.SensorProfile, w Window) float64 {
	n := s.SamplingRate * w.Seconds()
	if n < 1 {
		return 0
	}
	return n
}

// Place builds the schedule of s and advances the bus state.
func (b *SensingBus) Place(s types.SensorProfile) SensorTimeline {
	w := b.window
	sched := NewSchedule(w)
	n := Measures(s, w)
	duration := w.Seconds()

	if n > 0 {
		period := duration / n
		count := int(math.Ceil(n))
		for i := 0; i < count; i++ {
			start := b.offset + float64(i)*period
			if start > duration {
				break
			}
			end := math.Min(start+s.ActiveTime, duration)
			sched.mark(w.slot(start), w.slot(end))
		}
	}

	b.offset += s.ActiveTime
	b.measuringTime += s.ActiveTime * n
	b.dataVolume += s.DataVolume * n

	return SensorTimeline{
		Schedule:      sched,
		Measures:      n,
		MeasuringTime: b.measuringTime,
	}
}

// Offset returns the start time of the next sensor's first measurement.
func (b *SensingBus) Offset() float64 {
	return b.offset
}

// MeasuringTime returns the cumulative measuring time of all placed sensors.
func (b *SensingBus) MeasuringTime() float64 {
	return b.measuringTime
}

// DataVolume returns the total payload in bytes produced by all placed sensors.
func (b *SensingBus) DataVolume() float64 {
	return b.dataVolume
}
