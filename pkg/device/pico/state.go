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
	"errors"
	"math"
	"strconv"

	"jinr.ru/greenlab/go-pico/pkg/bridge"
	"jinr.ru/greenlab/go-pico/pkg/device"
	"jinr.ru/greenlab/go-pico/pkg/log"
	"jinr.ru/greenlab/go-pico/pkg/model"
)

// shadow is the client-side memory of configuration the bridge can not
// report back. Values are never invalidated and never reconciled with the
// hardware: if the daemon adjusts or rejects a command the shadow silently
// diverges until the next trigger pull or reconnect.
type shadow struct {
	channels    []device.Channel
	trigger     device.TriggerDescriptor
	timebase    device.TimebaseConfig
	acquisition device.AcquisitionState
}

func newShadow(m *model.Model) *shadow {
	s := &shadow{
		channels: make([]device.Channel, m.AnalogChannels),
		trigger:  device.DefaultTrigger(),
		timebase: device.TimebaseConfig{
			SampleRate:  m.SampleRates.NonInterleaved[len(m.SampleRates.NonInterleaved)-1],
			SampleDepth: m.SampleDepths.NonInterleaved[0],
		},
	}
	for i := range s.channels {
		s.channels[i] = device.Channel{
			Index:       i,
			Name:        m.ChannelName(i),
			Enabled:     i == 0,
			Coupling:    device.CouplingDC1M,
			Range:       m.DefaultRange,
			Attenuation: DefaultAttenuation,
		}
	}
	return s
}

// guard proves that the device lock is held. Public methods take the lock
// once and pass the guard down, helpers never lock on their own, so nested
// calls made while holding the guard do not lock twice.
type guard struct {
	d *Device
}

func (d *Device) lock() *guard {
	d.mu.Lock()
	return &guard{d: d}
}

func (g *guard) unlock() {
	g.d.mu.Unlock()
}

func (g *guard) channel(i int) (*device.Channel, error) {
	if i < 0 || i >= len(g.d.state.channels) {
		return nil, ErrChannelRange{Index: i, Count: len(g.d.state.channels)}
	}
	return &g.d.state.channels[i], nil
}

// disconnect marks the session dead. The acquisition is disarmed since no
// frame can arrive any more.
func (g *guard) disconnect(err error) error {
	if g.d.connected {
		log.Error("Bridge connection lost: %s", err)
		g.d.connected = false
		g.d.cause = err
	}
	g.d.state.acquisition.State = device.Disarmed
	return ErrDisconnected{Err: g.d.cause}
}

// send is fire and forget. Any failure is fatal to the session and later
// sends fail without touching the transport.
func (g *guard) send(cmd string) error {
	if !g.d.connected {
		return ErrDisconnected{Err: g.d.cause}
	}
	log.Debug("Sending command: %s", cmd)
	if err := g.d.cmd.Send(cmd); err != nil {
		return g.disconnect(err)
	}
	return nil
}

// query blocks until the daemon answers. A malformed answer is returned as
// is and leaves the session usable.
func (g *guard) query(q string) (bridge.KeyValueResponse, error) {
	if !g.d.connected {
		return nil, ErrDisconnected{Err: g.d.cause}
	}
	log.Debug("Sending query: %s", q)
	kv, err := g.d.cmd.SendAndReceive(q)
	if err != nil {
		if errors.As(err, &bridge.ErrBadResponse{}) {
			return nil, err
		}
		return nil, g.disconnect(err)
	}
	return kv, nil
}

// setChannel sends <CH>:<attr> and updates the shadow copy whether or not
// the send succeeded
func (g *guard) setChannel(i int, attr string, apply func(ch *device.Channel)) error {
	ch, err := g.channel(i)
	if err != nil {
		return err
	}
	err = g.send(ch.Name + ":" + attr)
	apply(ch)
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// GetChannel returns a snapshot of the channel configuration
func (d *Device) GetChannel(i int) (device.Channel, error) {
	g := d.lock()
	defer g.unlock()
	ch, err := g.channel(i)
	if err != nil {
		return device.Channel{}, err
	}
	return *ch, nil
}

// EnableChannel is rejected while interleaving if the channel's conflict
// partner is enabled
func (d *Device) EnableChannel(i int) error {
	g := d.lock()
	defer g.unlock()
	if _, err := g.channel(i); err != nil {
		return err
	}
	if d.state.timebase.Interleave {
		for _, c := range d.model.InterleaveConflicts {
			p := c.Partner(i)
			if p >= 0 && d.state.channels[p].Enabled {
				return ErrInterleaveConflict{A: i, B: p}
			}
		}
	}
	return g.setChannel(i, CmdChannelOn, func(ch *device.Channel) { ch.Enabled = true })
}

func (d *Device) DisableChannel(i int) error {
	g := d.lock()
	defer g.unlock()
	return g.setChannel(i, CmdChannelOff, func(ch *device.Channel) { ch.Enabled = false })
}

func (d *Device) IsChannelEnabled(i int) (bool, error) {
	g := d.lock()
	defer g.unlock()
	ch, err := g.channel(i)
	if err != nil {
		return false, err
	}
	return ch.Enabled, nil
}

func (d *Device) GetChannelCoupling(i int) (device.Coupling, error) {
	g := d.lock()
	defer g.unlock()
	ch, err := g.channel(i)
	if err != nil {
		return "", err
	}
	return ch.Coupling, nil
}

func (d *Device) SetChannelCoupling(i int, c device.Coupling) error {
	g := d.lock()
	defer g.unlock()
	if _, err := g.channel(i); err != nil {
		return err
	}
	coupling, err := device.ParseCoupling(string(c))
	if err != nil {
		return ErrInvalidValue{What: "coupling", Value: string(c)}
	}
	return g.setChannel(i, CmdChannelCoupling+" "+string(coupling), func(ch *device.Channel) { ch.Coupling = coupling })
}

func (d *Device) GetChannelAttenuation(i int) (float64, error) {
	g := d.lock()
	defer g.unlock()
	ch, err := g.channel(i)
	if err != nil {
		return 0, err
	}
	return ch.Attenuation, nil
}

func (d *Device) SetChannelAttenuation(i int, atten float64) error {
	g := d.lock()
	defer g.unlock()
	if _, err := g.channel(i); err != nil {
		return err
	}
	if !finite(atten) || atten <= 0 {
		return ErrInvalidValue{What: "attenuation", Value: formatFloat(atten)}
	}
	return g.setChannel(i, CmdChannelAtten+" "+formatFloat(atten), func(ch *device.Channel) { ch.Attenuation = atten })
}

func (d *Device) GetChannelBandwidthLimit(i int) (uint, error) {
	g := d.lock()
	defer g.unlock()
	ch, err := g.channel(i)
	if err != nil {
		return 0, err
	}
	return ch.BandwidthLimit, nil
}

// SetChannelBandwidthLimit accepts 0 for no limit or one of the model's
// bandwidth limits
func (d *Device) SetChannelBandwidthLimit(i int, mhz uint) error {
	g := d.lock()
	defer g.unlock()
	if _, err := g.channel(i); err != nil {
		return err
	}
	if mhz != 0 && !containsUint(d.model.BandwidthLimits, mhz) {
		return ErrInvalidValue{What: "bandwidth limit", Value: strconv.FormatUint(uint64(mhz), 10)}
	}
	return g.setChannel(i, CmdChannelBwLimit+" "+strconv.FormatUint(uint64(mhz), 10), func(ch *device.Channel) { ch.BandwidthLimit = mhz })
}

func containsUint(set []uint, v uint) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (d *Device) GetChannelVoltageRange(i int) (float64, error) {
	g := d.lock()
	defer g.unlock()
	ch, err := g.channel(i)
	if err != nil {
		return 0, err
	}
	return ch.Range, nil
}

func (d *Device) SetChannelVoltageRange(i int, r float64) error {
	g := d.lock()
	defer g.unlock()
	if _, err := g.channel(i); err != nil {
		return err
	}
	if !finite(r) || r <= 0 {
		return ErrInvalidValue{What: "voltage range", Value: formatFloat(r)}
	}
	return g.setChannel(i, CmdChannelRange+" "+formatFloat(r), func(ch *device.Channel) { ch.Range = r })
}

func (d *Device) GetChannelOffset(i int) (float64, error) {
	g := d.lock()
	defer g.unlock()
	ch, err := g.channel(i)
	if err != nil {
		return 0, err
	}
	return ch.Offset, nil
}

func (d *Device) SetChannelOffset(i int, offset float64) error {
	g := d.lock()
	defer g.unlock()
	if _, err := g.channel(i); err != nil {
		return err
	}
	if !finite(offset) {
		return ErrInvalidValue{What: "offset", Value: formatFloat(offset)}
	}
	return g.setChannel(i, CmdChannelOffset+" "+formatFloat(offset), func(ch *device.Channel) { ch.Offset = offset })
}
