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


package srv

import (
	"jinr.ru/greenlab/go-pico/pkg/acquire"
	"jinr.ru/greenlab/go-pico/pkg/device"
	"jinr.ru/greenlab/go-pico/pkg/model"
	"jinr.ru/greenlab/go-pico/pkg/waveform"
)

type ScopeInfo struct {
	Driver          string                `json:"driver"`
	Model           string                `json:"model"`
	Series          string                `json:"series"`
	InstrumentTypes device.InstrumentType `json:"instrument_types"`
	Channels        int                   `json:"channels"`
	ExternalTrigger string                `json:"external_trigger"`
	Connected       bool                  `json:"connected"`
}

// ChannelSetup is a partial channel update. Nil fields are left as is.
type ChannelSetup struct {
	Enabled        *bool    `json:"enabled,omitempty"`
	Coupling       *string  `json:"coupling,omitempty"`
	Offset         *float64 `json:"offset,omitempty"`
	Range          *float64 `json:"range,omitempty"`
	Attenuation    *float64 `json:"attenuation,omitempty"`
	BandwidthLimit *uint    `json:"bandwidth_limit,omitempty"`
}

// TriggerSetup is a trigger descriptor with the source given by name
type TriggerSetup struct {
	Type   string  `json:"type"`
	Source string  `json:"source"`
	Level  float64 `json:"level"`
	Edge   string  `json:"edge"`
}

// TimebaseSetup is a partial timebase update. Nil fields are left as is.
type TimebaseSetup struct {
	Interleave      *bool   `json:"interleave,omitempty"`
	SampleRate      *uint64 `json:"sample_rate,omitempty"`
	SampleDepth     *uint64 `json:"sample_depth,omitempty"`
	TriggerOffsetFs *int64  `json:"trigger_offset_fs,omitempty"`
}

type Candidates struct {
	SampleRates         model.Candidates           `json:"sample_rates"`
	SampleDepths        model.Candidates           `json:"sample_depths"`
	InterleaveConflicts []model.InterleaveConflict `json:"interleave_conflicts"`
}

type AcquisitionStatus struct {
	State   device.ArmState    `json:"state"`
	OneShot bool               `json:"one_shot"`
	Trigger device.TriggerMode `json:"trigger"`
	Poller  *acquire.Stats     `json:"poller,omitempty"`
}

type CaptureResponse struct {
	*waveform.Capture
	Stats []waveform.Stats `json:"stats"`
}
