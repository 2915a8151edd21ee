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


package ifc

import (
	"jinr.ru/greenlab/go-pico/pkg/device"
	"jinr.ru/greenlab/go-pico/pkg/model"
)

type Oscilloscope interface {
	GetDriverName() string
	GetModel() *model.Model
	GetInstrumentTypes() device.InstrumentType
	IsConnected() bool
	Close() error

	GetChannelCount() int
	GetChannelType(i int) (device.ChannelType, error)
	GetChannel(i int) (device.Channel, error)
	GetExternalTrigger() device.ChannelRef

	EnableChannel(i int) error
	DisableChannel(i int) error
	IsChannelEnabled(i int) (bool, error)
	GetChannelCoupling(i int) (device.Coupling, error)
	SetChannelCoupling(i int, c device.Coupling) error
	GetChannelAttenuation(i int) (float64, error)
	SetChannelAttenuation(i int, atten float64) error
	GetChannelBandwidthLimit(i int) (uint, error)
	SetChannelBandwidthLimit(i int, mhz uint) error
	GetChannelVoltageRange(i int) (float64, error)
	SetChannelVoltageRange(i int, r float64) error
	GetChannelOffset(i int) (float64, error)
	SetChannelOffset(i int, offset float64) error

	Start() error
	StartSingleTrigger() error
	Stop() error
	PollTrigger() device.TriggerMode
	AcquireData() error
	IsTriggerArmed() bool
	GetAcquisitionState() device.AcquisitionState
	PushTrigger(d device.TriggerDescriptor) error
	PullTrigger() (device.TriggerDescriptor, error)
	GetTrigger() device.TriggerDescriptor

	GetSampleRatesNonInterleaved() []uint64
	GetSampleRatesInterleaved() []uint64
	GetSampleDepthsNonInterleaved() []uint64
	GetSampleDepthsInterleaved() []uint64
	GetSampleRates() []uint64
	GetSampleDepths() []uint64
	GetInterleaveConflicts() []model.InterleaveConflict
	IsInterleaving() bool
	SetInterleaving(on bool) (bool, error)
	GetSampleRate() uint64
	SetSampleRate(rate uint64) error
	GetSampleDepth() uint64
	SetSampleDepth(depth uint64) error
	GetTriggerOffset() int64
	SetTriggerOffset(fs int64) error
	GetTimebase() device.TimebaseConfig

	FlushConfigCache() error
}
