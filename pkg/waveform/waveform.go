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


package waveform

import (
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sbinet/npyio"

	"jinr.ru/greenlab/go-pico/pkg/layers"
)

// Waveform is one channel of one acquisition, converted to volts
type Waveform struct {
	Channel        int       `json:"channel"`
	Name           string    `json:"name"`
	TimescaleFs    int64     `json:"timescale_fs"`
	TriggerPhaseFs int64     `json:"trigger_phase_fs"`
	Clipping       bool      `json:"clipping"`
	Samples        []float32 `json:"samples,omitempty"`
}

// DurationFs is the time span covered by the samples
func (w *Waveform) DurationFs() int64 {
	return w.TimescaleFs * int64(len(w.Samples))
}

// WriteNpy writes the samples as a one dimensional float32 numpy array
func (w *Waveform) WriteNpy(out io.Writer) error {
	return npyio.Write(out, w.Samples)
}

// ReadNpy reads samples written by WriteNpy
func ReadNpy(in io.Reader) ([]float32, error) {
	var samples []float32
	if err := npyio.Read(in, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

type Capture struct {
	ID        ulid.ULID   `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Model     string      `json:"model"`
	OneShot   bool        `json:"one_shot"`
	Waveforms []*Waveform `json:"waveforms"`
}

// NewCapture stamps the waveforms with a fresh time ordered ID
func NewCapture(model string, oneShot bool, waveforms []*Waveform) *Capture {
	id := ulid.Make()
	return &Capture{
		ID:        id,
		Timestamp: ulid.Time(id.Time()),
		Model:     model,
		OneShot:   oneShot,
		Waveforms: waveforms,
	}
}

// Summary describes a capture without its samples
type Summary struct {
	ID        ulid.ULID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model"`
	OneShot   bool      `json:"one_shot"`
	Channels  []string  `json:"channels"`
	Points    int       `json:"points"`
}

func (c *Capture) Summary() Summary {
	s := Summary{
		ID:        c.ID,
		Timestamp: c.Timestamp,
		Model:     c.Model,
		OneShot:   c.OneShot,
		Channels:  []string{},
	}
	for _, w := range c.Waveforms {
		s.Channels = append(s.Channels, w.Name)
		if len(w.Samples) > s.Points {
			s.Points = len(w.Samples)
		}
	}
	return s
}

// Waveform returns the waveform of the given channel index
func (c *Capture) Waveform(channel int) (*Waveform, bool) {
	for _, w := range c.Waveforms {
		if w.Channel == channel {
			return w, true
		}
	}
	return nil, false
}

// Demux splits a decoded frame into per channel waveforms. name maps a
// channel index to its display name.
func Demux(frame *layers.WaveformLayer, name func(int) string) []*Waveform {
	result := make([]*Waveform, 0, len(frame.Channels))
	for _, ch := range frame.Channels {
		result = append(result, &Waveform{
			Channel:        int(ch.Index),
			Name:           name(int(ch.Index)),
			TimescaleFs:    frame.FsPerSample,
			TriggerPhaseFs: int64(ch.TriggerPhase),
			Clipping:       ch.Clipping,
			Samples:        ch.Volts(),
		})
	}
	return result
}

// Sink receives every successfully acquired capture
type Sink interface {
	Consume(c *Capture) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(c *Capture) error

func (f SinkFunc) Consume(c *Capture) error {
	return f(c)
}

// MultiSink fans a capture out to several sinks. Every sink is called;
// the first error is returned.
type MultiSink []Sink

func (m MultiSink) Consume(c *Capture) error {
	var first error
	for _, s := range m {
		if err := s.Consume(c); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Archive is a Sink that can be browsed afterwards
type Archive interface {
	Sink
	List() ([]Summary, error)
	Get(id ulid.ULID) (*Capture, error)
	Latest() (*Capture, error)
}

// Buffer keeps the most recent captures in memory
type Buffer struct {
	mu       sync.RWMutex
	size     int
	captures []*Capture
	total    uint64
}

var _ Archive = &Buffer{}

func NewBuffer(size int) *Buffer {
	if size < 1 {
		size = 1
	}
	return &Buffer{size: size}
}

// Consume ...
func (b *Buffer) Consume(c *Capture) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.captures) == b.size {
		copy(b.captures, b.captures[1:])
		b.captures = b.captures[:b.size-1]
	}
	b.captures = append(b.captures, c)
	b.total++
	return nil
}

// Latest ...
func (b *Buffer) Latest() (*Capture, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.captures) == 0 {
		return nil, ErrNoCaptures{}
	}
	return b.captures[len(b.captures)-1], nil
}

// List summarizes the buffered captures, oldest first
func (b *Buffer) List() ([]Summary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]Summary, 0, len(b.captures))
	for _, c := range b.captures {
		result = append(result, c.Summary())
	}
	return result, nil
}

// Get ...
func (b *Buffer) Get(id ulid.ULID) (*Capture, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.captures {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, ErrCaptureNotFound{ID: id.String()}
}

// Total is the number of captures ever consumed
func (b *Buffer) Total() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.total
}
