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

// RadioTimeline is the transmission schedule of the radio.
type RadioTimeline struct {
	Schedule         Schedule
	Transmissions    int
	TransmissionTime float64 // seconds per transmission

	// ActiveTime is the total transmitting time, clipped to the window.
	ActiveTime float64
}

// PlaceRadio builds the radio schedule for sending dataVolume bytes every transmission period.
// Each transmission ends at a multiple of the period. Its slot span includes the slot holding its end.
// Nothing is marked when there is no data to send.
func PlaceRadio(r types.RadioProfile, dataVolume float64, w Window) (RadioTimeline, error) {
	if err := r.Validate(); err != nil {
		return RadioTimeline{}, err
	}
	if dataVolume < 0 {
		return RadioTimeline{}, types.Invalidf(r.Name, "data_volume", "must be >= 0, got %g", dataVolume)
	}

	duration := w.Seconds()
	sched := NewSchedule(w)
	n := int(math.Ceil(duration * r.DataRefreshRate))
	period := 1.0 / r.DataRefreshRate
	tt := dataVolume * 8 / r.Datarate

	if tt > 0 {
		res := float64(w.Resolution)
		for k := 1; k <= n; k++ {
			end := float64(k) * period
			start := end - tt
			if start > duration {
				break
			}
			start = math.Max(start, 0)
			end = math.Min(end, duration)
			from := w.slot(start)
			count := int(math.Floor((end-start)*res+slotEpsilon)) + 1
			sched.mark(from, from+count)
		}
	}

	return RadioTimeline{
		Schedule:         sched,
		Transmissions:    n,
		TransmissionTime: tt,
		ActiveTime:       math.Min(tt*float64(n), duration),
	}, nil
}
