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

package stream

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-pico/pkg/bridge"
	"jinr.ru/greenlab/go-pico/pkg/layers"
)

func serveFrames(t *testing.T, frames ...*layers.WaveformLayer) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			data, err := layers.SerializeWaveform(f)
			if err != nil {
				return
			}
			// split writes so the reader has to reassemble
			half := len(data) / 2
			conn.Write(data[:half])
			time.Sleep(5 * time.Millisecond)
			conn.Write(data[half:])
		}
	}()
	return l.Addr().String()
}

func frame(index uint16, samples ...int16) *layers.WaveformLayer {
	return &layers.WaveformLayer{
		FsPerSample: 1000,
		Channels:    []*layers.ChannelBlock{{Index: index, Scale: 1, Samples: samples}},
	}
}

func TestFramesArriveInOrder(t *testing.T) {
	addr := serveFrames(t, frame(0, 1, 2, 3), frame(1, 4))
	c, err := Dial(context.Background(), addr, time.Second, 2)
	require.NoError(t, err)
	defer c.Close()

	assert.Eventually(t, c.FrameAvailable, time.Second, time.Millisecond)
	raw, err := c.ReadFrame()
	require.NoError(t, err)
	wf, err := layers.DecodeWaveform(raw)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2, 3}, wf.Channels[0].Samples)

	assert.Eventually(t, c.FrameAvailable, time.Second, time.Millisecond)
	raw, err = c.ReadFrame()
	require.NoError(t, err)
	wf, err = layers.DecodeWaveform(raw)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), wf.Channels[0].Index)
}

func TestPeerCloseReportsConnectionError(t *testing.T) {
	addr := serveFrames(t, frame(0, 1))
	c, err := Dial(context.Background(), addr, time.Second, 1)
	require.NoError(t, err)
	defer c.Close()

	assert.Eventually(t, c.FrameAvailable, time.Second, time.Millisecond)
	_, err = c.ReadFrame()
	require.NoError(t, err)

	// a failed channel stays ready so the error is surfaced by ReadFrame
	assert.Eventually(t, c.FrameAvailable, time.Second, time.Millisecond)
	_, err = c.ReadFrame()
	assert.IsType(t, bridge.ErrConnection{}, err)
}

func TestNoFrameIsNotAvailable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	hold := make(chan struct{})
	defer close(hold)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		<-hold
	}()

	c, err := Dial(context.Background(), l.Addr().String(), time.Second, 1)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	assert.False(t, c.FrameAvailable())
	require.NoError(t, c.Close())
	assert.True(t, c.FrameAvailable())
	_, err = c.ReadFrame()
	assert.IsType(t, bridge.ErrConnection{}, err)
}
