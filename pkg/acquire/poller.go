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


// Package acquire runs the background polling role: it polls the trigger
// at a fixed cadence and pulls a frame whenever one is ready.
package acquire

import (
	"context"
	"errors"
	"sync"
	"time"

	"jinr.ru/greenlab/go-pico/pkg/device"
	"jinr.ru/greenlab/go-pico/pkg/device/ifc"
	"jinr.ru/greenlab/go-pico/pkg/device/pico"
	"jinr.ru/greenlab/go-pico/pkg/log"
)

type Stats struct {
	Polls    uint64 `json:"polls"`
	Acquired uint64 `json:"acquired"`
	Dropped  uint64 `json:"dropped"`
}

type Poller struct {
	dev      ifc.Oscilloscope
	interval time.Duration
	mu       sync.Mutex
	stats    Stats
}

func NewPoller(dev ifc.Oscilloscope, interval time.Duration) *Poller {
	return &Poller{
		dev:      dev,
		interval: interval,
	}
}

// Stats ...
func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Run polls until the context is done or the device disconnects. Damaged
// frames and consumer failures are logged and polling continues.
func (p *Poller) Run(ctx context.Context) error {
	log.Info("Start polling trigger every %s", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("Stop polling trigger")
			return ctx.Err()
		case <-ticker.C:
			if err := p.Poll(); err != nil {
				return err
			}
		}
	}
}

// Poll runs one poll step. Only a lost connection is returned.
func (p *Poller) Poll() error {
	mode := p.dev.PollTrigger()
	p.mu.Lock()
	p.stats.Polls++
	p.mu.Unlock()
	if mode != device.TriggerModeTriggered {
		if !p.dev.IsConnected() {
			return pico.ErrDisconnected{Err: errors.New("device is not connected")}
		}
		return nil
	}

	err := p.dev.AcquireData()
	switch {
	case err == nil:
		p.count(&p.stats.Acquired)
		return nil
	case errors.As(err, &pico.ErrFrame{}):
		log.Warning("Acquisition dropped: %s", err)
		p.count(&p.stats.Dropped)
		return nil
	case errors.As(err, &pico.ErrSink{}):
		log.Warning("Acquisition not stored: %s", err)
		p.count(&p.stats.Acquired)
		return nil
	case errors.As(err, &pico.ErrDisconnected{}):
		log.Error("Acquisition stopped: %s", err)
		return err
	}
	// the trigger was stopped between poll and acquire
	log.Debug("Acquisition skipped: %s", err)
	return nil
}

func (p *Poller) count(c *uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	*c++
}
