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


package command

import (
	"context"
	"errors"
	"net"
	"time"

	"jinr.ru/greenlab/go-pico/pkg/acquire"
	"jinr.ru/greenlab/go-pico/pkg/bridge/ifc"
	"jinr.ru/greenlab/go-pico/pkg/bridge/scpi"
	"jinr.ru/greenlab/go-pico/pkg/bridge/sim"
	"jinr.ru/greenlab/go-pico/pkg/bridge/stream"
	"jinr.ru/greenlab/go-pico/pkg/config"
	"jinr.ru/greenlab/go-pico/pkg/device/pico"
	"jinr.ru/greenlab/go-pico/pkg/log"
	"jinr.ru/greenlab/go-pico/pkg/model"
	"jinr.ru/greenlab/go-pico/pkg/srv"
	"jinr.ru/greenlab/go-pico/pkg/waveform"
	"jinr.ru/greenlab/go-pico/pkg/waveform/store"
)

// SimTriggerPeriod is how often the simulated bridge fires its trigger
const SimTriggerPeriod = 100 * time.Millisecond

// Connect opens both bridge channels. In simulation mode an in-process
// bridge serves as both transports and fires until ctx is done.
func Connect(ctx context.Context, cfg *config.Config, m *model.Model) (ifc.CommandTransport, ifc.DataTransport, error) {
	if cfg.Simulate {
		log.Info("Using simulated bridge for model %s", m.Name)
		b := sim.NewBridge(m)
		go b.Run(ctx, SimTriggerPeriod)
		return b, b, nil
	}
	cmd, err := scpi.Dial(ctx, cfg.CommandAddr(), cfg.DialTimeout())
	if err != nil {
		return nil, nil, err
	}
	data, err := stream.Dial(ctx, cfg.DataAddr(), cfg.DialTimeout(), stream.DefaultQueueSize)
	if err != nil {
		cmd.Close()
		return nil, nil, err
	}
	return cmd, data, nil
}

// StartServer drives the scope described by cfg and serves the API
// until ctx is done or the bridge connection is lost.
func StartServer(ctx context.Context, cfg *config.Config) error {
	m, err := model.Lookup(cfg.Model)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd, data, err := Connect(ctx, cfg, m)
	if err != nil {
		return err
	}

	buffer := waveform.NewBuffer(cfg.Acquisition.BufferSize)
	var archive waveform.Archive = buffer
	var sink waveform.Sink = buffer
	if cfg.Acquisition.Store {
		st, err := store.NewStore(cfg.DBPath)
		if err != nil {
			cmd.Close()
			data.Close()
			return err
		}
		defer st.Close()
		archive = st
		sink = waveform.MultiSink{buffer, st}
	}

	dev := pico.NewDevice(m, cmd, data, sink)
	defer dev.Close()

	// the bridge may keep a trigger from a previous session
	if _, err := dev.PullTrigger(); err != nil {
		log.Warning("Can not read trigger from bridge: %s", err)
	}

	poller := acquire.NewPoller(dev, cfg.PollInterval())
	api, err := srv.NewApiServer(ctx, cfg, dev, archive, poller)
	if err != nil {
		return err
	}

	errChan := make(chan error, 2)
	go func() {
		errChan <- poller.Run(ctx)
	}()
	go func() {
		errChan <- api.Run()
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errChan:
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
}

// StartBridgeSim exposes a simulated bridge on the configured command
// and data addresses. It serves one client session.
func StartBridgeSim(ctx context.Context, cfg *config.Config) error {
	m, err := model.Lookup(cfg.Model)
	if err != nil {
		return err
	}
	cmdListener, err := net.Listen("tcp", cfg.CommandAddr())
	if err != nil {
		return err
	}
	dataListener, err := net.Listen("tcp", cfg.DataAddr())
	if err != nil {
		cmdListener.Close()
		return err
	}
	log.Info("Simulated %s bridge listening on %s and %s", m.Name, cfg.CommandAddr(), cfg.DataAddr())

	b := sim.NewBridge(m)
	go b.Run(ctx, SimTriggerPeriod)
	err = b.Serve(ctx, cmdListener, dataListener)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
