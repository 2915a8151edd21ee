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

const (
	DriverName = "pico"

	DefaultAttenuation = 1.0
)

// Arm commands
const (
	CmdStart  = "START"
	CmdSingle = "SINGLE"
	CmdStop   = "STOP"
)

// Timebase commands
const (
	CmdRate         = "RATE"
	CmdDepth        = "DEPTH"
	CmdInterleave   = "INTERLEAVE"
	CmdTriggerDelay = "TRIG:DELAY"
)

// Channel command suffixes, sent as <CH>:<suffix>
const (
	CmdChannelOn       = "ON"
	CmdChannelOff      = "OFF"
	CmdChannelCoupling = "COUP"
	CmdChannelOffset   = "OFFS"
	CmdChannelRange    = "RANGE"
	CmdChannelAtten    = "ATTEN"
	CmdChannelBwLimit  = "BWLIM"
)

// Trigger commands and the keys of the trigger query response
const (
	CmdTriggerType   = "TRIG:TYPE"
	CmdTriggerSource = "TRIG:SOU"
	CmdTriggerLevel  = "TRIG:LEV"
	CmdTriggerEdge   = "TRIG:EDGE:DIR"
	QueryTrigger     = "TRIG?"

	KeyTriggerType   = "TYPE"
	KeyTriggerSource = "SOURCE"
	KeyTriggerLevel  = "LEVEL"
	KeyTriggerEdge   = "DIR"
)
