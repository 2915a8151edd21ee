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


// Package pico drives an oscilloscope through the bridge daemon. The
// bridge gives almost no readback, so the Device keeps a shadow of
// everything it has sent and serves reads from it.
package pico

import (
	"sync"

	"jinr.ru/greenlab/go-pico/pkg/bridge/ifc"
	"jinr.ru/greenlab/go-pico/pkg/device"
	deviceifc "jinr.ru/greenlab/go-pico/pkg/device/ifc"
	"jinr.ru/greenlab/go-pico/pkg/log"
	"jinr.ru/greenlab/go-pico/pkg/model"
	"jinr.ru/greenlab/go-pico/pkg/waveform"
)

type Device struct {
	mu        sync.Mutex
	model     *model.Model
	cmd       ifc.CommandTransport
	data      ifc.DataTransport
	sink      waveform.Sink
	state     *shadow
	connected bool
	cause     error
}

var _ deviceifc.Oscilloscope = &Device{}

// NewDevice takes ownership of both transports. sink may be nil.
func NewDevice(m *model.Model, cmd ifc.CommandTransport, data ifc.DataTransport, sink waveform.Sink) *Device {
	return &Device{
		model:     m,
		cmd:       cmd,
		data:      data,
		sink:      sink,
		state:     newShadow(m),
		connected: true,
	}
}

func (d *Device) GetDriverName() string {
	return DriverName
}

func (d *Device) GetModel() *model.Model {
	return d.model
}

func (d *Device) GetInstrumentTypes() device.InstrumentType {
	return device.InstrumentOscilloscope
}

func (d *Device) GetChannelCount() int {
	return d.model.AnalogChannels
}

// GetChannelType ...
func (d *Device) GetChannelType(i int) (device.ChannelType, error) {
	if i < 0 || i >= d.model.AnalogChannels {
		return "", ErrChannelRange{Index: i, Count: d.model.AnalogChannels}
	}
	return device.ChannelTypeAnalog, nil
}

// GetExternalTrigger returns the reference of the external trigger input
func (d *Device) GetExternalTrigger() device.ChannelRef {
	return device.ExternalTrigger
}

func (d *Device) IsConnected() bool {
	g := d.lock()
	defer g.unlock()
	return d.connected
}

// FlushConfigCache re-pulls the trigger descriptor. Channel shadow values
// are not re-read since the bridge can not report them.
func (d *Device) FlushConfigCache() error {
	g := d.lock()
	defer g.unlock()
	_, err := g.pullTrigger()
	return err
}

// Close disarms a running acquisition and closes both transports
func (d *Device) Close() error {
	g := d.lock()
	defer g.unlock()
	if !d.connected {
		if _, closed := d.cause.(ErrClosed); closed {
			return nil
		}
	}
	if d.connected && d.state.acquisition.State != device.Disarmed {
		if err := g.send(CmdStop); err != nil {
			log.Warning("Can not stop acquisition on close: %s", err)
		}
	}
	d.connected = false
	d.cause = ErrClosed{}
	d.state.acquisition = device.AcquisitionState{State: device.Disarmed}

	cmdErr := d.cmd.Close()
	dataErr := d.data.Close()
	if cmdErr != nil {
		return cmdErr
	}
	return dataErr
}
