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
	"jinr.ru/greenlab/go-pico/pkg/device"
	"jinr.ru/greenlab/go-pico/pkg/layers"
	"jinr.ru/greenlab/go-pico/pkg/log"
	"jinr.ru/greenlab/go-pico/pkg/waveform"
)

// AcquireData reads one frame after PollTrigger reported Triggered and
// hands the waveforms to the sink. Continuous acquisitions stay armed,
// one-shot acquisitions disarm.
func (d *Device) AcquireData() error {
	g := d.lock()
	defer g.unlock()
	return g.acquire()
}

func (g *guard) acquire() error {
	acq := &g.d.state.acquisition
	if acq.State == device.Disarmed {
		return ErrNotArmed{}
	}
	if !g.d.data.FrameAvailable() {
		return ErrNoFrame{}
	}

	acq.State = device.Triggered
	raw, err := g.d.data.ReadFrame()
	if err != nil {
		return g.disconnect(err)
	}
	capture, err := g.demux(raw, acq.OneShot)
	if err != nil {
		log.Warning("Dropping waveform frame: %s", err)
		acq.State = device.Armed
		return ErrFrame{Err: err}
	}

	var sinkErr error
	if g.d.sink != nil {
		if err := g.d.sink.Consume(capture); err != nil {
			log.Error("Waveform consumer failed: %s", err)
			sinkErr = ErrSink{Err: err}
		}
	}
	g.complete()
	return sinkErr
}

func (g *guard) demux(raw []byte, oneShot bool) (*waveform.Capture, error) {
	frame, err := layers.DecodeWaveform(raw)
	if err != nil {
		return nil, err
	}
	for _, ch := range frame.Channels {
		if int(ch.Index) >= len(g.d.state.channels) {
			return nil, ErrUnexpectedChannel{Index: int(ch.Index)}
		}
	}
	waveforms := waveform.Demux(frame, g.d.model.ChannelName)
	log.Debug("Acquired frame: %d channels, %d fs per sample", len(waveforms), frame.FsPerSample)
	return waveform.NewCapture(g.d.model.Name, oneShot, waveforms), nil
}

func (g *guard) complete() {
	acq := &g.d.state.acquisition
	if acq.OneShot {
		*acq = device.AcquisitionState{State: device.Disarmed}
		return
	}
	acq.State = device.Armed
}
