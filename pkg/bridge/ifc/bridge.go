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
	"jinr.ru/greenlab/go-pico/pkg/bridge"
)

// CommandTransport carries configuration and trigger commands to the bridge
// daemon. Send does not wait for any acknowledgement.
type CommandTransport interface {
	Send(cmd string) error
	SendAndReceive(query string) (bridge.KeyValueResponse, error)
	Close() error
}

// DataTransport delivers one waveform frame per completed acquisition.
// FrameAvailable never blocks. It is also true once the channel has failed,
// so that ReadFrame, only called after it is true, surfaces the error.
type DataTransport interface {
	FrameAvailable() bool
	ReadFrame() (bridge.RawFrame, error)
	Close() error
}
