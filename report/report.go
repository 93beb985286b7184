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

// Package report renders a computed SystemConsumption into summary tables, shares and current time series.
// Everything it needs is passed in explicitly.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/openthread/ot-budget/energy"
	"github.com/openthread/ot-budget/types"
)

const secondsPerHour = 3600.0

// Group names used for the active/inactive shares.
const (
	SensingGroup         = "sensing"
	CommunicationsGroup  = "communications"
	MicrocontrollerGroup = "microcontroller"
)

// Device holds the profiles a SystemConsumption was computed from.
type Device struct {
	Sensors         []types.SensorProfile        `yaml:"sensors" json:"sensors"`
	Microcontroller types.MicrocontrollerProfile `yaml:"microcontroller" json:"microcontroller"`
	Radio           types.RadioProfile           `yaml:"radio" json:"radio"`
}

// ComponentSummary is one row of the summary table.
type ComponentSummary struct {
	Name           string  `yaml:"name" json:"name"`
	Group          string  `yaml:"group" json:"group"`
	ActiveCharge   float64 `yaml:"active_charge_mas" json:"active_charge_mas"`
	InactiveCharge float64 `yaml:"inactive_charge_mas" json:"inactive_charge_mas"`
	ActiveTime     float64 `yaml:"active_time_s" json:"active_time_s"`
	ChargeMAh      float64 `yaml:"charge_mah" json:"charge_mah"`
	MaxCurrent     float64 `yaml:"max_current_ma" json:"max_current_ma"`
	AvgCurrent     float64 `yaml:"avg_current_ma" json:"avg_current_ma"`
	EnergyMWh      float64 `yaml:"energy_mwh" json:"energy_mwh"`
	MaxPower       float64 `yaml:"max_power_mw" json:"max_power_mw"`
	AvgPower       float64 `yaml:"avg_power_mw" json:"avg_power_mw"`
	ChargeShare    float64 `yaml:"charge_share" json:"charge_share"`
	EnergyShare    float64 `yaml:"energy_share" json:"energy_share"`
}

// GroupShare splits the accounted charge of a group into active and inactive parts.
type GroupShare struct {
	Group          string  `yaml:"group" json:"group"`
	ActiveCharge   float64 `yaml:"active_charge_mas" json:"active_charge_mas"`
	InactiveCharge float64 `yaml:"inactive_charge_mas" json:"inactive_charge_mas"`
	ActiveShare    float64 `yaml:"active_share" json:"active_share"`
}

// Totals are the accounted totals of the whole device.
type Totals struct {
	Charge float64 `yaml:"charge_mas" json:"charge_mas"`
	Energy float64 `yaml:"energy_mws" json:"energy_mws"`
}

// Report is the rendered result of one computation.
type Report struct {
	RunID      string             `yaml:"run_id" json:"run_id"`
	Title      string             `yaml:"title" json:"title"`
	CreatedAt  string             `yaml:"created_at" json:"created_at"`
	Duration   int                `yaml:"duration" json:"duration"`
	Resolution int                `yaml:"resolution" json:"resolution"`
	Components []ComponentSummary `yaml:"components" json:"components"`
	Groups     []GroupShare       `yaml:"groups" json:"groups"`
	Totals     Totals             `yaml:"totals" json:"totals"`
	Series     *TimeSeries        `yaml:"-" json:"-"`
}

// Build renders sc, which must have been computed from dev.
func Build(title string, sc energy.SystemConsumption, dev Device) (*Report, error) {
	if len(dev.Sensors) != len(sc.Sensors()) {
		return nil, errors.Errorf("report: %d sensor profiles for %d sensor consumptions",
			len(dev.Sensors), len(sc.Sensors()))
	}
	if title == "" {
		title = "energy"
	}

	w := sc.Window()
	series := buildSeries(sc, dev)
	r := &Report{
		RunID:      uuid.NewString(),
		Title:      title,
		CreatedAt:  time.Now().Format(time.RFC3339),
		Duration:   w.Duration,
		Resolution: w.Resolution,
		Totals: Totals{
			Charge: sc.TotalEnergy(),
			Energy: sc.TotalPower(),
		},
		Series: series,
	}

	for i, c := range series.Components {
		ec := consumptionOf(sc, i)
		r.Components = append(r.Components, summarize(c, ec, w.SlotLength(), r.Totals))
	}

	sensing := GroupShare{Group: SensingGroup}
	for _, s := range sc.Sensors() {
		sensing.ActiveCharge += s.ActiveEnergy()
		sensing.InactiveCharge += s.InactiveEnergy()
	}
	r.Groups = []GroupShare{
		finishGroup(sensing),
		finishGroup(GroupShare{Group: CommunicationsGroup, ActiveCharge: sc.Radio().ActiveEnergy(),
			InactiveCharge: sc.Radio().InactiveEnergy()}),
		finishGroup(GroupShare{Group: MicrocontrollerGroup, ActiveCharge: sc.Microcontroller().ActiveEnergy(),
			InactiveCharge: sc.Microcontroller().InactiveEnergy()}),
	}
	return r, nil
}

// consumptionOf returns the ElementConsumption in series order: microcontroller, radio, then sensors.
func consumptionOf(sc energy.SystemConsumption, i int) energy.ElementConsumption {
	switch i {
	case 0:
		return sc.Microcontroller()
	case 1:
		return sc.Radio()
	default:
		return sc.Sensors()[i-2]
	}
}

func summarize(c ComponentSeries, ec energy.ElementConsumption, slotLength float64, totals Totals) ComponentSummary {
	cs := ComponentSummary{
		Name:           c.Name,
		Group:          c.Group,
		ActiveCharge:   ec.ActiveEnergy(),
		InactiveCharge: ec.InactiveEnergy(),
		ActiveTime:     ec.ActiveTime(),
		ChargeShare:    share(ec.TotalEnergy(), totals.Charge),
		EnergyShare:    share(ec.TotalPower(), totals.Energy),
	}
	if len(c.Current) == 0 {
		return cs
	}

	sum := 0.0
	for _, v := range c.Current {
		sum += v
		if v > cs.MaxCurrent {
			cs.MaxCurrent = v
		}
	}
	cs.ChargeMAh = sum * slotLength / secondsPerHour
	cs.AvgCurrent = sum / float64(len(c.Current))
	cs.EnergyMWh = cs.ChargeMAh * c.Voltage
	cs.MaxPower = cs.MaxCurrent * c.Voltage
	cs.AvgPower = cs.AvgCurrent * c.Voltage
	return cs
}

func finishGroup(g GroupShare) GroupShare {
	g.ActiveShare = share(g.ActiveCharge, g.ActiveCharge+g.InactiveCharge)
	return g
}

func share(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total
}
