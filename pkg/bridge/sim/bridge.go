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

// Package sim is an in-process stand-in for the bridge daemon. It keeps the
// daemon-side configuration, answers trigger queries and produces synthetic
// waveform frames while armed. It can also be served over TCP.
package sim

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"jinr.ru/greenlab/go-pico/pkg/bridge"
	"jinr.ru/greenlab/go-pico/pkg/bridge/ifc"
	"jinr.ru/greenlab/go-pico/pkg/layers"
	"jinr.ru/greenlab/go-pico/pkg/log"
	"jinr.ru/greenlab/go-pico/pkg/model"
)

const (
	// MaxDepth caps generated frames regardless of the requested depth
	MaxDepth     = 8192
	queueSize    = 8
	signalCycles = 4
)

type channelState struct {
	Enabled  bool
	Coupling string
	Offset   float64
	Range    float64
	Atten    float64
	BwLimit  uint64
}

type Bridge struct {
	mu         sync.Mutex
	model      *model.Model
	channels   []*channelState
	rate       uint64
	depth      uint64
	interleave bool
	delay      int64
	trigType   string
	trigSource string
	trigLevel  string
	trigDir    string
	armed      bool
	oneShot    bool
	failed     bool
	commands   []string
	frames     chan bridge.RawFrame
}

var _ ifc.CommandTransport = &Bridge{}
var _ ifc.DataTransport = &Bridge{}

// NewBridge returns a daemon preconfigured the way a freshly started bridge is
func NewBridge(m *model.Model) *Bridge {
	b := &Bridge{
		model:      m,
		rate:       m.SampleRates.NonInterleaved[len(m.SampleRates.NonInterleaved)-1],
		depth:      m.SampleDepths.NonInterleaved[0],
		trigType:   "EDGE",
		trigSource: m.ChannelName(0),
		trigLevel:  "0",
		trigDir:    "RISING",
		frames:     make(chan bridge.RawFrame, queueSize),
	}
	for i := 0; i < m.AnalogChannels; i++ {
		b.channels = append(b.channels, &channelState{
			Enabled:  i == 0,
			Coupling: "DC1M",
			Range:    m.DefaultRange,
			Atten:    1,
		})
	}
	return b
}

// Commands returns every command line received so far
func (b *Bridge) Commands() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string{}, b.commands...)
}

// Armed ...
func (b *Bridge) Armed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.armed
}

// Fail makes every later transport call return a connection error
func (b *Bridge) Fail() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failed = true
}

// Configure applies a command as if a third party had sent it, without
// recording it. Used to preconfigure the daemon.
func (b *Bridge) Configure(cmd string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.apply(cmd)
}

// Send ...
func (b *Bridge) Send(cmd string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failed {
		return bridge.ErrConnection{Op: "send", Err: io.ErrClosedPipe}
	}
	b.commands = append(b.commands, cmd)
	b.apply(cmd)
	return nil
}

// SendAndReceive ...
func (b *Bridge) SendAndReceive(query string) (bridge.KeyValueResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failed {
		return nil, bridge.ErrConnection{Op: "send", Err: io.ErrClosedPipe}
	}
	b.commands = append(b.commands, query)
	return b.query(query)
}

func (b *Bridge) query(q string) (bridge.KeyValueResponse, error) {
	switch strings.ToUpper(strings.TrimSpace(q)) {
	case "TRIG?":
		return bridge.KeyValueResponse{
			"TYPE":   b.trigType,
			"SOURCE": b.trigSource,
			"LEVEL":  b.trigLevel,
			"DIR":    b.trigDir,
		}, nil
	}
	return bridge.KeyValueResponse{"ERROR": "UNKNOWN"}, nil
}

// apply updates daemon state. Unknown or malformed commands are ignored,
// the way the real daemon gives no feedback.
func (b *Bridge) apply(cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}
	verb := strings.ToUpper(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	switch verb {
	case "START":
		b.armed, b.oneShot = true, false
		return
	case "SINGLE":
		b.armed, b.oneShot = true, true
		return
	case "STOP":
		b.armed = false
		return
	case "RATE":
		if v, err := strconv.ParseUint(arg, 10, 64); err == nil {
			b.rate = v
		}
		return
	case "DEPTH":
		if v, err := strconv.ParseUint(arg, 10, 64); err == nil {
			b.depth = v
		}
		return
	case "INTERLEAVE":
		b.interleave = strings.EqualFold(arg, "ON")
		return
	case "TRIG:DELAY":
		if v, err := strconv.ParseInt(arg, 10, 64); err == nil {
			b.delay = v
		}
		return
	case "TRIG:TYPE":
		b.trigType = arg
		return
	case "TRIG:SOU":
		b.trigSource = arg
		return
	case "TRIG:LEV":
		b.trigLevel = arg
		return
	case "TRIG:EDGE:DIR":
		b.trigDir = arg
		return
	}

	name, attr, ok := strings.Cut(verb, ":")
	if !ok {
		log.Debug("Simulated bridge ignores command: %s", cmd)
		return
	}
	i, ok := b.model.ChannelIndex(name)
	if !ok {
		log.Debug("Simulated bridge ignores command for unknown channel: %s", cmd)
		return
	}
	ch := b.channels[i]
	switch attr {
	case "ON":
		ch.Enabled = true
	case "OFF":
		ch.Enabled = false
	case "COUP":
		ch.Coupling = arg
	case "OFFS":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			ch.Offset = v
		}
	case "RANGE":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			ch.Range = v
		}
	case "ATTEN":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			ch.Atten = v
		}
	case "BWLIM":
		if v, err := strconv.ParseUint(arg, 10, 64); err == nil {
			ch.BwLimit = v
		}
	default:
		log.Debug("Simulated bridge ignores command: %s", cmd)
	}
}

// Trigger captures one frame if armed. It returns false when disarmed or
// when the frame queue is full.
func (b *Bridge) Trigger() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.armed || b.failed {
		return false
	}
	data, err := layers.SerializeWaveform(b.capture())
	if err != nil {
		log.Error("Simulated bridge can not serialize frame: %s", err)
		return false
	}
	select {
	case b.frames <- data:
	default:
		return false
	}
	if b.oneShot {
		b.armed = false
	}
	return true
}

// Inject queues an arbitrary frame, e.g. a damaged one
func (b *Bridge) Inject(frame bridge.RawFrame) {
	b.frames <- frame
}

func (b *Bridge) capture() *layers.WaveformLayer {
	depth := b.depth
	if depth > MaxDepth {
		depth = MaxDepth
	}
	fs := int64(1e15 / float64(b.rate))
	wf := &layers.WaveformLayer{FsPerSample: fs}
	for i, ch := range b.channels {
		if !ch.Enabled {
			continue
		}
		scale := float32(ch.Range / 2 / math.MaxInt16)
		block := &layers.ChannelBlock{
			Index:   uint16(i),
			Scale:   scale,
			Offset:  float32(-ch.Offset),
			Samples: make([]int16, depth),
		}
		amplitude := 0.8 * math.MaxInt16
		phase := float64(i) * math.Pi / 4
		for j := range block.Samples {
			x := 2*math.Pi*signalCycles*float64(j)/float64(depth) + phase
			block.Samples[j] = int16(amplitude * math.Sin(x))
		}
		wf.Channels = append(wf.Channels, block)
	}
	return wf
}

// FrameAvailable ...
func (b *Bridge) FrameAvailable() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failed || len(b.frames) > 0
}

// ReadFrame ...
func (b *Bridge) ReadFrame() (bridge.RawFrame, error) {
	b.mu.Lock()
	failed := b.failed
	b.mu.Unlock()
	if failed {
		return nil, bridge.ErrConnection{Op: "receive", Err: io.ErrClosedPipe}
	}
	return <-b.frames, nil
}

// Close ...
func (b *Bridge) Close() error {
	return nil
}

// Run triggers at a fixed period until the context is done
func (b *Bridge) Run(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Trigger()
		}
	}
}

// Serve exposes the simulated daemon on a command and a data listener.
// Each listener accepts a single client, like the real bridge.
func (b *Bridge) Serve(ctx context.Context, cmdListener, dataListener net.Listener) error {
	errChan := make(chan error, 2)

	go func() {
		conn, err := cmdListener.Accept()
		if err != nil {
			errChan <- err
			return
		}
		defer conn.Close()
		errChan <- b.serveCommands(conn)
	}()

	go func() {
		conn, err := dataListener.Accept()
		if err != nil {
			errChan <- err
			return
		}
		defer conn.Close()
		errChan <- b.serveData(ctx, conn)
	}()

	select {
	case <-ctx.Done():
		cmdListener.Close()
		dataListener.Close()
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

func (b *Bridge) serveCommands(conn net.Conn) error {
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if strings.HasSuffix(line, "?") {
			kv, err := b.SendAndReceive(line)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(conn, "%s%s", kv.String(), bridge.LineTerminator); err != nil {
				return err
			}
			continue
		}
		if err := b.Send(line); err != nil {
			return err
		}
	}
}

func (b *Bridge) serveData(ctx context.Context, conn net.Conn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-b.frames:
			if _, err := conn.Write(frame); err != nil {
				return err
			}
		}
	}
}
