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


// Package device holds the value types shared by oscilloscope drivers and
// the surfaces built on them.
package device

import (
	"fmt"
	"strings"

	"jinr.ru/greenlab/go-pico/pkg/model"
)

type InstrumentType uint

const (
	InstrumentOscilloscope InstrumentType = 1 << iota
	InstrumentMultimeter
	InstrumentFunctionGenerator
)

type ChannelType string

const (
	ChannelTypeAnalog  ChannelType = "analog"
	ChannelTypeTrigger ChannelType = "trigger"
)

type Coupling string

const (
	CouplingDC1M Coupling = "DC1M"
	CouplingAC1M Coupling = "AC1M"
	CouplingDC50 Coupling = "DC50"
	CouplingAC50 Coupling = "AC50"
	CouplingGND  Coupling = "GND"
)

var Couplings = []Coupling{CouplingDC1M, CouplingAC1M, CouplingDC50, CouplingAC50, CouplingGND}

func ParseCoupling(s string) (Coupling, error) {
	for _, c := range Couplings {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", ErrUnknownValue{What: "coupling", Value: s}
}

type EdgeDirection string

const (
	EdgeRising  EdgeDirection = "RISING"
	EdgeFalling EdgeDirection = "FALLING"
	EdgeAny     EdgeDirection = "ANY"
)

func ParseEdgeDirection(s string) (EdgeDirection, error) {
	for _, e := range []EdgeDirection{EdgeRising, EdgeFalling, EdgeAny} {
		if strings.EqualFold(s, string(e)) {
			return e, nil
		}
	}
	return "", ErrUnknownValue{What: "edge direction", Value: s}
}

// TriggerType tags the trigger variant. Only edge triggers are encoded on
// the wire, other tags are carried as received.
type TriggerType string

const (
	TriggerTypeEdge TriggerType = "EDGE"
)

// ChannelRef names a trigger source: an analog channel or the external
// trigger input
type ChannelRef struct {
	Index    int  `json:"index"`
	External bool `json:"external,omitempty"`
}

var ExternalTrigger = ChannelRef{Index: -1, External: true}

func AnalogChannel(i int) ChannelRef {
	return ChannelRef{Index: i}
}

// Name returns the bridge-side name of the channel
func (r ChannelRef) Name(m *model.Model) string {
	if r.External {
		return model.ExternalTriggerName
	}
	return m.ChannelName(r.Index)
}

// ParseChannelRef accepts an analog channel name or the external trigger name
func ParseChannelRef(m *model.Model, name string) (ChannelRef, error) {
	if strings.EqualFold(strings.TrimSpace(name), model.ExternalTriggerName) {
		return ExternalTrigger, nil
	}
	i, ok := m.ChannelIndex(name)
	if !ok {
		return ChannelRef{}, ErrUnknownValue{What: "channel", Value: name}
	}
	return AnalogChannel(i), nil
}

type TriggerDescriptor struct {
	Type   TriggerType   `json:"type"`
	Source ChannelRef    `json:"source"`
	Level  float64       `json:"level"`
	Edge   EdgeDirection `json:"edge"`
}

// DefaultTrigger is the descriptor a driver starts with
func DefaultTrigger() TriggerDescriptor {
	return TriggerDescriptor{
		Type:   TriggerTypeEdge,
		Source: AnalogChannel(0),
		Level:  0,
		Edge:   EdgeRising,
	}
}

// Channel is a snapshot of one analog channel's shadow configuration
type Channel struct {
	Index          int      `json:"index"`
	Name           string   `json:"name"`
	Enabled        bool     `json:"enabled"`
	Coupling       Coupling `json:"coupling"`
	Offset         float64  `json:"offset"`
	Range          float64  `json:"range"`
	Attenuation    float64  `json:"attenuation"`
	BandwidthLimit uint     `json:"bandwidth_limit"`
}

type TimebaseConfig struct {
	SampleRate      uint64 `json:"sample_rate"`
	SampleDepth     uint64 `json:"sample_depth"`
	Interleave      bool   `json:"interleave"`
	TriggerOffsetFs int64  `json:"trigger_offset_fs"`
}

type ArmState int

const (
	Disarmed ArmState = iota
	Armed
	Triggered
)

var armStateNames = []string{"disarmed", "armed", "triggered"}

func (s ArmState) String() string {
	if s < 0 || int(s) >= len(armStateNames) {
		return fmt.Sprintf("ArmState(%d)", int(s))
	}
	return armStateNames[s]
}

func (s ArmState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ArmState) UnmarshalText(text []byte) error {
	for i, name := range armStateNames {
		if name == string(text) {
			*s = ArmState(i)
			return nil
		}
	}
	return ErrUnknownValue{What: "arm state", Value: string(text)}
}

type AcquisitionState struct {
	State   ArmState `json:"state"`
	OneShot bool     `json:"one_shot"`
}

// TriggerMode is the result of a trigger poll
type TriggerMode int

const (
	TriggerModeRun TriggerMode = iota
	TriggerModeStop
	TriggerModeTriggered
	TriggerModeUntriggered
)

var triggerModeNames = []string{"run", "stop", "triggered", "untriggered"}

func (m TriggerMode) String() string {
	if m < 0 || int(m) >= len(triggerModeNames) {
		return fmt.Sprintf("TriggerMode(%d)", int(m))
	}
	return triggerModeNames[m]
}

func (m TriggerMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *TriggerMode) UnmarshalText(text []byte) error {
	for i, name := range triggerModeNames {
		if name == string(text) {
			*m = TriggerMode(i)
			return nil
		}
	}
	return ErrUnknownValue{What: "trigger mode", Value: string(text)}
}
