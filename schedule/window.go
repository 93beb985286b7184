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

const (
	// DefaultResolution is the number of schedule slots per second.
	DefaultResolution = 1

	slotEpsilon = 1e-9
)

// Window is the observation window [0, Duration) seconds, sampled at Resolution slots per second.
type Window struct {
	Duration   int `yaml:"duration" json:"duration"`
	Resolution int `yaml:"resolution" json:"resolution"`
}

// NewWindow returns a validated Window. A resolution of 0 selects DefaultResolution.
func NewWindow(duration int, resolution int) (Window, error) {
	if resolution == 0 {
		resolution = DefaultResolution
	}
	w := Window{Duration: duration, Resolution: resolution}
	return w, w.Validate()
}

func (w Window) Validate() error {
	if w.Duration < 0 {
		return types.Invalidf("", "duration", "must be >= 0, got %d", w.Duration)
	}
	if w.Resolution <= 0 {
		return types.Invalidf("", "resolution", "must be > 0, got %d", w.Resolution)
	}
	if w.Duration > math.MaxInt/w.Resolution {
		return types.Invalidf("", "duration", "%ds at %d slots/s overflows the slot count", w.Duration, w.Resolution)
	}
	return nil
}

// Samples returns the number of slots in the window.
func (w Window) Samples() int {
	return w.Duration * w.Resolution
}

// Seconds returns the window duration as float.
func (w Window) Seconds() float64 {
	return float64(w.Duration)
}

// SlotLength returns the duration of one slot in seconds.
func (w Window) SlotLength() float64 {
	return 1.0 / float64(w.Resolution)
}

// slot converts a time in seconds to the index of the slot containing it.
func (w Window) slot(t float64) int {
	return int(math.Floor(t*float64(w.Resolution) + slotEpsilon))
}

// Schedule is a discretized activity timeline; slot i covers [i/res, (i+1)/res).
type Schedule []bool

// NewSchedule returns an all-inactive schedule covering the window.
func NewSchedule(w Window) Schedule {
	return make(Schedule, w.Samples())
}

// mark sets slots [from, to) active, clipped to the schedule.
func (s Schedule) mark(from, to int) {
	if from < 0 {
		from = 0
	}
	if to > len(s) {
		to = len(s)
	}
	for i := from; i < to; i++ {
		s[i] = true
	}
}

// ActiveSlots counts the active slots.
func (s Schedule) ActiveSlots() int {
	n := 0
	for _, a := range s {
		if a {
			n++
		}
	}
	return n
}

// Or returns the slot-wise logical OR of the given schedules. All schedules must cover the same window;
// shorter inputs are treated as inactive for their missing slots.
func Or(samples int, schedules ...Schedule) Schedule {
	res := make(Schedule, samples)
	for _, s := range schedules {
		for i := 0; i < samples && i < len(s); i++ {
			res[i] = res[i] || s[i]
		}
	}
	return res
}
