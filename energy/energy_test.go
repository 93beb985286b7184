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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthread/ot-budget/schedule"
	"github.com/openthread/ot-budget/types"
)

const delta = 1e-9

func exampleDevice() ([]types.SensorProfile, types.MicrocontrollerProfile, types.RadioProfile) {
	sensor := types.SensorProfile{
		Name:                "temperature",
		OperatingVoltage:    3.3,
		ActiveConsumption:   20,
		InactiveConsumption: 1,
		SamplingRate:        1,
		ActiveTime:          0.1,
		DataVolume:          1,
	}
	mcu := types.MicrocontrollerProfile{
		Name:                  "mcu",
		OperatingVoltage:      3.3,
		ActiveConsumption:     80,
		LightSleepConsumption: 10,
		DeepSleepConsumption:  1,
	}
	radio := types.RadioProfile{
		Name:                "radio",
		OperatingVoltage:    3.0,
		TransmitConsumption: 40,
		ReceiveConsumption:  30,
		InactiveConsumption: 1,
		Datarate:            10000,
		DataRefreshRate:     0.5,
	}
	return []types.SensorProfile{sensor}, mcu, radio
}

func TestComputeSystemConsumptionExample(t *testing.T) {
	sensors, mcu, radio := exampleDevice()
	sc, err := ComputeSystemConsumption(sensors, mcu, radio, schedule.Window{Duration: 10, Resolution: 1})
	require.Nil(t, err)

	require.Len(t, sc.Sensors(), 1)
	s := sc.Sensors()[0]
	assert.Equal(t, "temperature", s.Name())
	assert.InDelta(t, 20.0, s.ActiveEnergy(), delta)
	assert.InDelta(t, 9.0, s.InactiveEnergy(), delta)
	assert.Equal(t, 0, s.Schedule().ActiveSlots())

	r := sc.Radio()
	assert.InDelta(t, 1.6, r.ActiveEnergy(), delta)
	assert.InDelta(t, 9.96, r.InactiveEnergy(), delta)
	assert.InDelta(t, 0.04, r.ActiveTime(), delta)
	assert.Equal(t, schedule.Schedule{false, true, false, true, false, true, false, true, false, true}, r.Schedule())

	m := sc.Microcontroller()
	assert.InDelta(t, 1.04, m.ActiveTime(), delta)
	assert.InDelta(t, 83.2, m.ActiveEnergy(), delta)
	assert.InDelta(t, 8.96, m.InactiveEnergy(), delta)
	assert.Equal(t, r.Schedule(), m.Schedule())

	assert.InDelta(t, 132.72, sc.TotalEnergy(), delta)
	assert.InDelta(t, 29.0, sc.SensingEnergy(), delta)
	assert.InDelta(t, 11.56, sc.CommunicationsEnergy(), delta)
	assert.InDelta(t, 92.16, sc.MicrocontrollerEnergy(), delta)
	assert.InDelta(t, 3.3*29+3.0*11.56+3.3*92.16, sc.TotalPower(), 1e-6)
	assert.InDelta(t, 66.0, s.ActivePower(), delta)
}

func TestComputeSystemConsumptionHigherResolution(t *testing.T) {
	sensors, mcu, radio := exampleDevice()
	sc, err := ComputeSystemConsumption(sensors, mcu, radio, schedule.Window{Duration: 10, Resolution: 10})
	require.Nil(t, err)

	assert.Equal(t, 10, sc.Sensors()[0].Schedule().ActiveSlots())
	assert.Equal(t, 5, sc.Radio().Schedule().ActiveSlots())
	assert.Equal(t, 15, sc.Microcontroller().Schedule().ActiveSlots())
	// energies are closed form and do not depend on the resolution
	assert.InDelta(t, 132.72, sc.TotalEnergy(), delta)
}

func TestMicrocontrollerScheduleIsUnion(t *testing.T) {
	sensors, mcu, radio := exampleDevice()
	second := sensors[0]
	second.Name = "humidity"
	second.SamplingRate = 0.5
	second.ActiveTime = 0.4
	sensors = append(sensors, second)

	sc, err := ComputeSystemConsumption(sensors, mcu, radio, schedule.Window{Duration: 10, Resolution: 4})
	require.Nil(t, err)

	m := sc.Microcontroller()
	for i := 0; i < m.Slots(); i++ {
		expected := sc.Radio().IsActive(i)
		for _, s := range sc.Sensors() {
			expected = expected || s.IsActive(i)
		}
		assert.Equal(t, expected, m.IsActive(i), "slot %d", i)
	}
}

func TestSensorMeasuringTimeIsCumulative(t *testing.T) {
	sensors, mcu, radio := exampleDevice()
	second := sensors[0]
	second.Name = "pressure"
	second.ActiveTime = 0.2
	second.ActiveConsumption = 10
	second.InactiveConsumption = 2
	sensors = append(sensors, second)

	sc, err := ComputeSystemConsumption(sensors, mcu, radio, schedule.Window{Duration: 10, Resolution: 1})
	require.Nil(t, err)

	p := sc.Sensors()[1]
	assert.InDelta(t, 3.0, p.ActiveTime(), delta)
	assert.InDelta(t, 30.0, p.ActiveEnergy(), delta)
	assert.InDelta(t, 14.0, p.InactiveEnergy(), delta)
	assert.Equal(t, []float64{29, 44}, roundAll(sc.SensorEnergies()))
}

func roundAll(values []float64) []float64 {
	res := make([]float64, len(values))
	for i, v := range values {
		res[i] = float64(int64(v*1e6+0.5)) / 1e6
	}
	return res
}

func TestActiveTimeNeverExceedsDuration(t *testing.T) {
	sensors, mcu, radio := exampleDevice()
	sensors[0].ActiveTime = 0.9
	sensors[0].SamplingRate = 2
	radio.Datarate = 8

	sc, err := ComputeSystemConsumption(sensors, mcu, radio, schedule.Window{Duration: 5, Resolution: 2})
	require.Nil(t, err)

	for _, ec := range append(sc.Sensors(), sc.Radio(), sc.Microcontroller()) {
		assert.LessOrEqual(t, ec.ActiveTime(), 5.0, ec.Name())
		assert.GreaterOrEqual(t, ec.ActiveEnergy(), 0.0, ec.Name())
		assert.GreaterOrEqual(t, ec.InactiveEnergy(), 0.0, ec.Name())
	}
}

func TestZeroDuration(t *testing.T) {
	sensors, mcu, radio := exampleDevice()
	sc, err := ComputeSystemConsumption(sensors, mcu, radio, schedule.Window{Duration: 0, Resolution: 1})
	require.Nil(t, err)

	assert.Equal(t, 0, sc.Microcontroller().Slots())
	assert.Equal(t, 0, sc.Radio().Slots())
	assert.Equal(t, 0.0, sc.TotalEnergy())
}

func TestSparseSensorIsInactive(t *testing.T) {
	sensors, mcu, radio := exampleDevice()
	sensors[0].SamplingRate = 0.05

	sc, err := ComputeSystemConsumption(sensors, mcu, radio, schedule.Window{Duration: 10, Resolution: 1})
	require.Nil(t, err)

	s := sc.Sensors()[0]
	assert.Equal(t, 0.0, s.ActiveEnergy())
	assert.InDelta(t, 10.0, s.InactiveEnergy(), delta)
	assert.Equal(t, 0, s.Schedule().ActiveSlots())
	assert.Equal(t, 0, sc.Radio().Schedule().ActiveSlots())
}

func TestIdempotent(t *testing.T) {
	sensors, mcu, radio := exampleDevice()
	w := schedule.Window{Duration: 20, Resolution: 5}
	a, err := ComputeSystemConsumption(sensors, mcu, radio, w)
	require.Nil(t, err)
	b, err := ComputeSystemConsumption(sensors, mcu, radio, w)
	require.Nil(t, err)
	assert.Equal(t, a, b)
}

func TestInvalidInputs(t *testing.T) {
	sensors, mcu, radio := exampleDevice()
	w := schedule.Window{Duration: 10, Resolution: 1}

	_, err := ComputeSystemConsumption(sensors, mcu, radio, schedule.Window{Duration: -1, Resolution: 1})
	assert.True(t, errors.Is(err, types.ErrInvalidInput))

	_, err = ComputeSystemConsumption(sensors, mcu, radio, schedule.Window{Duration: 10, Resolution: 0})
	assert.True(t, errors.Is(err, types.ErrInvalidInput))

	badRadio := radio
	badRadio.DataRefreshRate = 0
	_, err = ComputeSystemConsumption(sensors, mcu, badRadio, w)
	assert.True(t, errors.Is(err, types.ErrInvalidInput))

	badMcu := mcu
	badMcu.ActiveConsumption = -3
	_, err = ComputeSystemConsumption(sensors, badMcu, radio, w)
	assert.True(t, errors.Is(err, types.ErrInvalidInput))

	_, err = ComputeSystemConsumption(append(sensors, sensors[0]), mcu, radio, w)
	assert.True(t, errors.Is(err, types.ErrInvalidInput))
	assert.Contains(t, err.Error(), "more than one sensor")
}

func TestNonFiniteArithmeticIsInvalidInput(t *testing.T) {
	sensors, mcu, radio := exampleDevice()
	w := schedule.Window{Duration: 10, Resolution: 1}

	fast := sensors[0]
	fast.SamplingRate = 1e308
	fast.ActiveTime = 0
	_, err := ComputeSystemConsumption([]types.SensorProfile{fast}, mcu, radio, w)
	assert.True(t, errors.Is(err, types.ErrInvalidInput))
	assert.Contains(t, err.Error(), "sampling_rate")

	nanSensor := sensors[0]
	nanSensor.ActiveConsumption = math.NaN()
	infRadio := radio
	infRadio.DataRefreshRate = math.Inf(1)
	_, err = ComputeSystemConsumption([]types.SensorProfile{nanSensor}, mcu, infRadio, w)
	assert.True(t, errors.Is(err, types.ErrInvalidInput))

	slowRadio := radio
	slowRadio.Datarate = 1e-320
	_, err = ComputeSystemConsumption(sensors, mcu, slowRadio, w)
	assert.True(t, errors.Is(err, types.ErrInvalidInput))
	assert.Contains(t, err.Error(), "datarate")

	hungryMcu := mcu
	hungryMcu.DeepSleepConsumption = 1e308
	_, err = ComputeSystemConsumption(sensors, hungryMcu, radio, w)
	assert.True(t, errors.Is(err, types.ErrInvalidInput))
	assert.Contains(t, err.Error(), "energy")

	_, err = ComputeSystemConsumption(sensors, mcu, radio, schedule.Window{Duration: 1 << 62, Resolution: 2})
	assert.True(t, errors.Is(err, types.ErrInvalidInput))
}

func TestNoSensors(t *testing.T) {
	_, mcu, radio := exampleDevice()
	sc, err := ComputeSystemConsumption(nil, mcu, radio, schedule.Window{Duration: 10, Resolution: 1})
	require.Nil(t, err)
	assert.Empty(t, sc.Sensors())
	assert.Equal(t, 0, sc.Microcontroller().Schedule().ActiveSlots())
	assert.InDelta(t, 10.0, sc.MicrocontrollerEnergy(), delta)
}
