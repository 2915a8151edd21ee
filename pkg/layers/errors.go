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

package layers

import (
	"fmt"
)

// ErrWaveformDecode returned when a waveform frame does not match the layout
type ErrWaveformDecode struct {
	What string
}

func (e ErrWaveformDecode) Error() string {
	return fmt.Sprintf("Error while decoding waveform frame: %s", e.What)
}

// ErrFrameLimit returned when a frame header announces more data than allowed
type ErrFrameLimit struct {
	What  string
	Value uint64
	Limit uint64
}

func (e ErrFrameLimit) Error() string {
	return fmt.Sprintf("Waveform frame %s %d exceeds limit %d", e.What, e.Value, e.Limit)
}
