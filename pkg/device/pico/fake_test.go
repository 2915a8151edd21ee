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
	"sync"

	"jinr.ru/greenlab/go-pico/pkg/bridge"
	"jinr.ru/greenlab/go-pico/pkg/layers"
)

// fakeCommand records every command and query it is given
type fakeCommand struct {
	mu       sync.Mutex
	sent     []string
	response bridge.KeyValueResponse
	queryErr error
	sendErr  error
	closed   bool
}

func (f *fakeCommand) Send(cmd string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, cmd)
	return f.sendErr
}

func (f *fakeCommand) SendAndReceive(query string) (bridge.KeyValueResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, query)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.response, nil
}

func (f *fakeCommand) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeCommand) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.sent...)
}

// fakeData hands out queued frames. A queued nil frame reads as an I/O
// failure.
type fakeData struct {
	mu     sync.Mutex
	frames []bridge.RawFrame
	reads  int
	closed bool
}

var errDataLost = errors.New("data channel lost")

func (f *fakeData) push(frame bridge.RawFrame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame)
}

func (f *fakeData) FrameAvailable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames) > 0
}

func (f *fakeData) ReadFrame() (bridge.RawFrame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	frame := f.frames[0]
	f.frames = f.frames[1:]
	if frame == nil {
		return nil, bridge.ErrConnection{Op: "receive", Err: errDataLost}
	}
	return frame, nil
}

func (f *fakeData) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func frameOf(channels ...*layers.ChannelBlock) bridge.RawFrame {
	data, err := layers.SerializeWaveform(&layers.WaveformLayer{FsPerSample: 2000, Channels: channels})
	if err != nil {
		panic(err)
	}
	return data
}
