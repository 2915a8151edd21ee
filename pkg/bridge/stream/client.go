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

// Package stream is the waveform data channel client. A reader goroutine
// cuts the byte stream into frames so that readiness can be checked
// without blocking.
package stream

import (
	"bufio"
	"context"
	"net"
	"sync"
	"time"

	"jinr.ru/greenlab/go-pico/pkg/bridge"
	"jinr.ru/greenlab/go-pico/pkg/bridge/ifc"
	"jinr.ru/greenlab/go-pico/pkg/layers"
	"jinr.ru/greenlab/go-pico/pkg/log"
)

const (
	DefaultQueueSize = 4
	readBufferSize   = 1 << 20
)

type Client struct {
	conn      net.Conn
	frames    chan bridge.RawFrame
	failed    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

var _ ifc.DataTransport = &Client{}

// Dial connects to the bridge waveform port
func Dial(ctx context.Context, addr string, timeout time.Duration, queueSize int) (*Client, error) {
	log.Debug("Connecting to bridge data channel: %s", addr)
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, bridge.ErrConnection{Op: "dial", Err: err}
	}
	return NewClient(conn, queueSize), nil
}

// NewClient starts reading frames from an established connection
func NewClient(conn net.Conn, queueSize int) *Client {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	c := &Client{
		conn:   conn,
		frames: make(chan bridge.RawFrame, queueSize),
		failed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Client) run() {
	reader := bufio.NewReaderSize(c.conn, readBufferSize)
	for {
		frame, err := layers.ReadFrame(reader)
		if err != nil {
			c.setErr(bridge.ErrConnection{Op: "receive", Err: err})
			return
		}
		log.Debug("Waveform frame received: %d bytes", len(frame))
		select {
		case c.frames <- frame:
		case <-c.done:
			return
		}
	}
}

func (c *Client) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		select {
		case <-c.done:
		default:
			log.Error("Bridge data channel failed: %s", err)
		}
		c.err = err
		close(c.failed)
	}
}

// Err returns the error that stopped the reader, if any
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// FrameAvailable reports whether ReadFrame would return without blocking:
// a complete frame is queued or the channel has failed.
func (c *Client) FrameAvailable() bool {
	if len(c.frames) > 0 {
		return true
	}
	select {
	case <-c.failed:
		return true
	default:
		return false
	}
}

// ReadFrame returns the next queued frame. Queued frames are still
// delivered after the connection failed.
func (c *Client) ReadFrame() (bridge.RawFrame, error) {
	select {
	case frame := <-c.frames:
		return frame, nil
	default:
	}
	select {
	case frame := <-c.frames:
		return frame, nil
	case <-c.failed:
		return nil, c.Err()
	}
}

// Close ...
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
		c.setErr(bridge.ErrConnection{Op: "close", Err: net.ErrClosed})
	})
	return err
}
