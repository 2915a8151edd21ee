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
	"fmt"

	"jinr.ru/greenlab/go-pico/pkg/device"
)

// ErrDisconnected is returned once a transport has failed. The session is
// not usable any more, a new Device has to be built.
type ErrDisconnected struct {
	Err error
}

func (e ErrDisconnected) Error() string {
	return fmt.Sprintf("Driver disconnected: %s", e.Err)
}

func (e ErrDisconnected) Unwrap() error {
	return e.Err
}

type ErrClosed struct{}

func (e ErrClosed) Error() string {
	return "Device closed"
}

type ErrChannelRange struct {
	Index int
	Count int
}

func (e ErrChannelRange) Error() string {
	return fmt.Sprintf("Channel index %d out of range [0, %d)", e.Index, e.Count)
}

type ErrNotCandidate struct {
	What        string
	Value       uint64
	Interleaved bool
}

func (e ErrNotCandidate) Error() string {
	mode := "non interleaved"
	if e.Interleaved {
		mode = "interleaved"
	}
	return fmt.Sprintf("%s %d is not a candidate in %s mode", e.What, e.Value, mode)
}

type ErrInterleaveConflict struct {
	A int
	B int
}

func (e ErrInterleaveConflict) Error() string {
	return fmt.Sprintf("Channels %d and %d can not both be enabled while interleaving", e.A, e.B)
}

type ErrInvalidValue struct {
	What  string
	Value string
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("Invalid %s: %s", e.What, e.Value)
}

type ErrUnsupportedTrigger struct {
	Type device.TriggerType
}

func (e ErrUnsupportedTrigger) Error() string {
	return fmt.Sprintf("Trigger type %s can not be pushed", e.Type)
}

type ErrNotArmed struct{}

func (e ErrNotArmed) Error() string {
	return "Trigger is not armed"
}

type ErrNoFrame struct{}

func (e ErrNoFrame) Error() string {
	return "No waveform frame available"
}

// ErrFrame is a damaged waveform frame. The frame is dropped and the
// session stays usable.
type ErrFrame struct {
	Err error
}

func (e ErrFrame) Error() string {
	return fmt.Sprintf("Bad waveform frame: %s", e.Err)
}

func (e ErrFrame) Unwrap() error {
	return e.Err
}

type ErrUnexpectedChannel struct {
	Index int
}

func (e ErrUnexpectedChannel) Error() string {
	return fmt.Sprintf("Frame carries unknown channel %d", e.Index)
}

// ErrSink wraps a failure of the waveform consumer. The acquisition itself
// completed.
type ErrSink struct {
	Err error
}

func (e ErrSink) Error() string {
	return fmt.Sprintf("Waveform consumer failed: %s", e.Err)
}

func (e ErrSink) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err was a request rejected before any
// transport call
func IsValidation(err error) bool {
	return errors.As(err, &ErrChannelRange{}) ||
		errors.As(err, &ErrNotCandidate{}) ||
		errors.As(err, &ErrInterleaveConflict{}) ||
		errors.As(err, &ErrInvalidValue{}) ||
		errors.As(err, &ErrUnsupportedTrigger{})
}
