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


package pico

import (
	"strconv"

	"jinr.ru/greenlab/go-pico/pkg/device"
	"jinr.ru/greenlab/go-pico/pkg/model"
)

func clone(set []uint64) []uint64 {
	return append([]uint64{}, set...)
}

// Candidate sets come from the model catalog and never change, so the
// lock is only taken where the interleave mode is read.

func (d *Device) GetSampleRatesNonInterleaved() []uint64 {
	return clone(d.model.SampleRates.NonInterleaved)
}

func (d *Device) GetSampleRatesInterleaved() []uint64 {
	return clone(d.model.SampleRates.Interleaved)
}

func (d *Device) GetSampleDepthsNonInterleaved() []uint64 {
	return clone(d.model.SampleDepths.NonInterleaved)
}

func (d *Device) GetSampleDepthsInterleaved() []uint64 {
	return clone(d.model.SampleDepths.Interleaved)
}

// GetSampleRates returns the candidates of the active interleave mode
func (d *Device) GetSampleRates() []uint64 {
	g := d.lock()
	defer g.unlock()
	return clone(d.model.SampleRates.For(d.state.timebase.Interleave))
}

// GetSampleDepths returns the candidates of the active interleave mode
func (d *Device) GetSampleDepths() []uint64 {
	g := d.lock()
	defer g.unlock()
	return clone(d.model.SampleDepths.For(d.state.timebase.Interleave))
}

func (d *Device) GetInterleaveConflicts() []model.InterleaveConflict {
	return append([]model.InterleaveConflict{}, d.model.InterleaveConflicts...)
}

func (d *Device) IsInterleaving() bool {
	g := d.lock()
	defer g.unlock()
	return d.state.timebase.Interleave
}

// SetInterleaving switches the interleave mode. Enabling fails without
// sending anything while a conflicting channel pair is enabled. After a
// switch rate and depth are re-chosen from the new candidate sets and
// sent again.
func (d *Device) SetInterleaving(on bool) (bool, error) {
	g := d.lock()
	defer g.unlock()
	if on {
		if err := g.enabledConflict(); err != nil {
			return false, err
		}
	}
	arg := "OFF"
	if on {
		arg = "ON"
	}
	if err := g.send(CmdInterleave + " " + arg); err != nil {
		return false, err
	}

	tb := &d.state.timebase
	tb.Interleave = on
	rate := rechoose(d.model.SampleRates.For(on), tb.SampleRate)
	depth := rechoose(d.model.SampleDepths.For(on), tb.SampleDepth)
	if err := g.setRate(rate); err != nil {
		return true, err
	}
	if err := g.setDepth(depth); err != nil {
		return true, err
	}
	return true, nil
}

// rechoose keeps v if it is a candidate, otherwise takes the largest
// candidate not above v, or the smallest one
func rechoose(set []uint64, v uint64) uint64 {
	if model.Contains(set, v) {
		return v
	}
	return model.Floor(set, v)
}

func (g *guard) enabledConflict() error {
	for _, c := range g.d.model.InterleaveConflicts {
		if g.d.state.channels[c.A].Enabled && g.d.state.channels[c.B].Enabled {
			return ErrInterleaveConflict{A: c.A, B: c.B}
		}
	}
	return nil
}

func (d *Device) GetSampleRate() uint64 {
	g := d.lock()
	defer g.unlock()
	return d.state.timebase.SampleRate
}

// SetSampleRate rejects rates outside the active candidate set
func (d *Device) SetSampleRate(rate uint64) error {
	g := d.lock()
	defer g.unlock()
	interleaved := d.state.timebase.Interleave
	if !model.Contains(d.model.SampleRates.For(interleaved), rate) {
		return ErrNotCandidate{What: "Sample rate", Value: rate, Interleaved: interleaved}
	}
	return g.setRate(rate)
}

func (g *guard) setRate(rate uint64) error {
	if err := g.send(CmdRate + " " + strconv.FormatUint(rate, 10)); err != nil {
		return err
	}
	g.d.state.timebase.SampleRate = rate
	return nil
}

func (d *Device) GetSampleDepth() uint64 {
	g := d.lock()
	defer g.unlock()
	return d.state.timebase.SampleDepth
}

// SetSampleDepth rejects depths outside the active candidate set
func (d *Device) SetSampleDepth(depth uint64) error {
	g := d.lock()
	defer g.unlock()
	interleaved := d.state.timebase.Interleave
	if !model.Contains(d.model.SampleDepths.For(interleaved), depth) {
		return ErrNotCandidate{What: "Sample depth", Value: depth, Interleaved: interleaved}
	}
	return g.setDepth(depth)
}

func (g *guard) setDepth(depth uint64) error {
	if err := g.send(CmdDepth + " " + strconv.FormatUint(depth, 10)); err != nil {
		return err
	}
	g.d.state.timebase.SampleDepth = depth
	return nil
}

// GetTriggerOffset returns the trigger time offset in femtoseconds
func (d *Device) GetTriggerOffset() int64 {
	g := d.lock()
	defer g.unlock()
	return d.state.timebase.TriggerOffsetFs
}

func (d *Device) SetTriggerOffset(fs int64) error {
	g := d.lock()
	defer g.unlock()
	if err := g.send(CmdTriggerDelay + " " + strconv.FormatInt(fs, 10)); err != nil {
		return err
	}
	d.state.timebase.TriggerOffsetFs = fs
	return nil
}

func (d *Device) GetTimebase() device.TimebaseConfig {
	g := d.lock()
	defer g.unlock()
	return d.state.timebase
}
