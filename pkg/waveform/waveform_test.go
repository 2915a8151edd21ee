/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/


package waveform

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-pico/pkg/layers"
)

func capture(samples ...float32) *Capture {
	return NewCapture("3406D", false, []*Waveform{{Channel: 0, Name: "A", TimescaleFs: 1000, Samples: samples}})
}

func TestDemux(t *testing.T) {
	frame := &layers.WaveformLayer{
		FsPerSample: 800,
		Channels: []*layers.ChannelBlock{
			{Index: 0, Scale: 0.5, Offset: 1, Samples: []int16{0, 2, -2}},
			{Index: 2, Scale: 1, TriggerPhase: 120, Clipping: true, Samples: []int16{7}},
		},
	}
	ws := Demux(frame, func(i int) string { return string(rune('A' + i)) })
	require.Len(t, ws, 2)
	assert.Equal(t, "A", ws[0].Name)
	assert.Equal(t, []float32{1, 2, 0}, ws[0].Samples)
	assert.Equal(t, int64(2400), ws[0].DurationFs())
	assert.Equal(t, 2, ws[1].Channel)
	assert.Equal(t, "C", ws[1].Name)
	assert.Equal(t, int64(120), ws[1].TriggerPhaseFs)
	assert.True(t, ws[1].Clipping)
}

func TestNpyRoundTrip(t *testing.T) {
	w := &Waveform{Samples: []float32{0.5, -1.25, 3}}
	buf := &bytes.Buffer{}
	require.NoError(t, w.WriteNpy(buf))
	samples, err := ReadNpy(buf)
	require.NoError(t, err)
	assert.Equal(t, w.Samples, samples)
}

func TestBufferKeepsMostRecent(t *testing.T) {
	b := NewBuffer(2)
	_, err := b.Latest()
	assert.ErrorAs(t, err, &ErrNoCaptures{})

	c1, c2, c3 := capture(1), capture(2), capture(3, 4)
	for _, c := range []*Capture{c1, c2, c3} {
		require.NoError(t, b.Consume(c))
	}
	list, err := b.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, c2.ID, list[0].ID)
	assert.Equal(t, c3.ID, list[1].ID)
	assert.Equal(t, []string{"A"}, list[1].Channels)
	assert.Equal(t, 2, list[1].Points)
	assert.Equal(t, uint64(3), b.Total())

	latest, err := b.Latest()
	require.NoError(t, err)
	assert.Equal(t, c3.ID, latest.ID)

	got, err := b.Get(c2.ID)
	require.NoError(t, err)
	assert.Same(t, c2, got)

	_, err = b.Get(c1.ID)
	assert.ErrorAs(t, err, &ErrCaptureNotFound{})
}

func TestCaptureIDsAreOrdered(t *testing.T) {
	c1 := capture()
	c2 := capture()
	assert.Equal(t, -1, c1.ID.Compare(c2.ID))
	assert.Equal(t, ulid.Time(c1.ID.Time()), c1.Timestamp)
	_, ok := c1.Waveform(0)
	assert.True(t, ok)
	_, ok = c1.Waveform(1)
	assert.False(t, ok)
}

func TestMultiSinkCallsEverySink(t *testing.T) {
	var calls int
	failing := SinkFunc(func(*Capture) error { calls++; return errors.New("full") })
	counting := SinkFunc(func(*Capture) error { calls++; return nil })
	err := MultiSink{failing, counting}.Consume(capture())
	assert.EqualError(t, err, "full")
	assert.Equal(t, 2, calls)
}

func TestComputeStats(t *testing.T) {
	n := 1000
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(math.Sin(2*math.Pi*4*float64(i)/float64(n) + 0.1))
	}
	s := ComputeStats(&Waveform{Samples: samples})
	assert.Equal(t, n, s.Points)
	assert.InDelta(t, 0, s.Mean, 1e-3)
	assert.InDelta(t, 1, s.Max, 1e-3)
	assert.InDelta(t, -1, s.Min, 1e-3)
	assert.InDelta(t, 2, s.PeakPeak, 2e-3)
	assert.InDelta(t, 1/math.Sqrt2, s.RMS, 1e-3)
	assert.Equal(t, 8, s.Crossings)

	empty := ComputeStats(&Waveform{})
	assert.Equal(t, 0, empty.Points)
}
