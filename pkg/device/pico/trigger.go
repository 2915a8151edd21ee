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

	"jinr.ru/greenlab/go-pico/pkg/bridge"
	"jinr.ru/greenlab/go-pico/pkg/device"
	"jinr.ru/greenlab/go-pico/pkg/model"
)

// Start arms the trigger in continuous mode
func (d *Device) Start() error {
	g := d.lock()
	defer g.unlock()
	return g.arm(false)
}

// StartSingleTrigger arms the trigger for one acquisition
func (d *Device) StartSingleTrigger() error {
	g := d.lock()
	defer g.unlock()
	return g.arm(true)
}

func (g *guard) arm(oneShot bool) error {
	cmd := CmdStart
	if oneShot {
		cmd = CmdSingle
	}
	if err := g.send(cmd); err != nil {
		return err
	}
	g.d.state.acquisition = device.AcquisitionState{State: device.Armed, OneShot: oneShot}
	return nil
}

// Stop disarms the trigger. Nothing is sent when already disarmed.
func (d *Device) Stop() error {
	g := d.lock()
	defer g.unlock()
	if d.state.acquisition.State == device.Disarmed {
		return nil
	}
	err := g.send(CmdStop)
	d.state.acquisition = device.AcquisitionState{State: device.Disarmed}
	return err
}

// PollTrigger never blocks and never changes state. It only checks
// whether a frame is ready.
func (d *Device) PollTrigger() device.TriggerMode {
	g := d.lock()
	defer g.unlock()
	acq := d.state.acquisition
	switch {
	case acq.State == device.Disarmed:
		return device.TriggerModeStop
	case d.data.FrameAvailable():
		return device.TriggerModeTriggered
	case acq.OneShot:
		return device.TriggerModeUntriggered
	}
	return device.TriggerModeRun
}

func (d *Device) IsTriggerArmed() bool {
	g := d.lock()
	defer g.unlock()
	return d.state.acquisition.State != device.Disarmed
}

func (d *Device) GetAcquisitionState() device.AcquisitionState {
	g := d.lock()
	defer g.unlock()
	return d.state.acquisition
}

// GetTrigger returns the cached descriptor without asking the daemon
func (d *Device) GetTrigger() device.TriggerDescriptor {
	g := d.lock()
	defer g.unlock()
	return d.state.trigger
}

// PushTrigger sends the descriptor and caches it. The daemon does not
// acknowledge, so the cache is updated even if a send fails.
func (d *Device) PushTrigger(t device.TriggerDescriptor) error {
	g := d.lock()
	defer g.unlock()
	if err := g.validateTrigger(t); err != nil {
		return err
	}
	var err error
	for _, cmd := range encodeEdgeTrigger(d.model, t) {
		if err = g.send(cmd); err != nil {
			break
		}
	}
	d.state.trigger = t
	return err
}

// PullTrigger asks the daemon for its trigger configuration and replaces
// the cached descriptor with it. A malformed answer leaves the cache as is.
func (d *Device) PullTrigger() (device.TriggerDescriptor, error) {
	g := d.lock()
	defer g.unlock()
	return g.pullTrigger()
}

func (g *guard) pullTrigger() (device.TriggerDescriptor, error) {
	kv, err := g.query(QueryTrigger)
	if err != nil {
		return device.TriggerDescriptor{}, err
	}
	t, err := parseEdgeTrigger(g.d.model, kv)
	if err != nil {
		return device.TriggerDescriptor{}, err
	}
	g.d.state.trigger = t
	return t, nil
}

func (g *guard) validateTrigger(t device.TriggerDescriptor) error {
	if t.Type != device.TriggerTypeEdge {
		return ErrUnsupportedTrigger{Type: t.Type}
	}
	if !t.Source.External {
		if _, err := g.channel(t.Source.Index); err != nil {
			return err
		}
	}
	if _, err := device.ParseEdgeDirection(string(t.Edge)); err != nil {
		return ErrInvalidValue{What: "edge direction", Value: string(t.Edge)}
	}
	if !finite(t.Level) {
		return ErrInvalidValue{What: "trigger level", Value: formatFloat(t.Level)}
	}
	return nil
}

func encodeEdgeTrigger(m *model.Model, t device.TriggerDescriptor) []string {
	return []string{
		CmdTriggerType + " " + string(device.TriggerTypeEdge),
		CmdTriggerSource + " " + t.Source.Name(m),
		CmdTriggerLevel + " " + formatFloat(t.Level),
		CmdTriggerEdge + " " + string(t.Edge),
	}
}

// parseEdgeTrigger decodes a TRIG? answer such as
// TYPE=EDGE;SOURCE=A;LEVEL=0.5;DIR=RISING. Non edge types keep their tag
// and default to a rising edge when DIR is absent.
func parseEdgeTrigger(m *model.Model, kv bridge.KeyValueResponse) (device.TriggerDescriptor, error) {
	t := device.DefaultTrigger()

	typ, ok := kv.Get(KeyTriggerType)
	if !ok || typ == "" {
		return t, bridge.ErrBadResponse{What: "trigger type missing"}
	}
	t.Type = device.TriggerType(typ)

	src, ok := kv.Get(KeyTriggerSource)
	if !ok {
		return t, bridge.ErrBadResponse{What: "trigger source missing"}
	}
	ref, err := device.ParseChannelRef(m, src)
	if err != nil {
		return t, bridge.ErrBadResponse{What: "trigger source " + src}
	}
	t.Source = ref

	lev, ok := kv.Get(KeyTriggerLevel)
	if !ok {
		return t, bridge.ErrBadResponse{What: "trigger level missing"}
	}
	if t.Level, err = strconv.ParseFloat(lev, 64); err != nil || !finite(t.Level) {
		return t, bridge.ErrBadResponse{What: "trigger level " + lev}
	}

	dir, ok := kv.Get(KeyTriggerEdge)
	if !ok {
		if t.Type == device.TriggerTypeEdge {
			return t, bridge.ErrBadResponse{What: "edge direction missing"}
		}
		return t, nil
	}
	if t.Edge, err = device.ParseEdgeDirection(dir); err != nil {
		return t, bridge.ErrBadResponse{What: "edge direction " + dir}
	}
	return t, nil
}
