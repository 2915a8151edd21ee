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
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-pico/pkg/bridge/sim"
	"jinr.ru/greenlab/go-pico/pkg/config"
	"jinr.ru/greenlab/go-pico/pkg/model"
)

func listen(t *testing.T) (net.Listener, int) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return l, l.Addr().(*net.TCPAddr).Port
}

func TestConnectOverTCP(t *testing.T) {
	m, err := model.Lookup("2204A")
	require.NoError(t, err)
	cmdL, cmdPort := listen(t)
	dataL, dataPort := listen(t)
	b := sim.NewBridge(m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Serve(ctx, cmdL, dataL)

	cfg := config.NewDefaultConfig()
	cfg.Model = "2204A"
	cfg.Bridge.Address = "127.0.0.1"
	cfg.Bridge.CommandPort = cmdPort
	cfg.Bridge.DataPort = dataPort

	cmd, data, err := Connect(ctx, cfg, m)
	require.NoError(t, err)
	defer cmd.Close()
	defer data.Close()

	require.NoError(t, cmd.Send("START"))
	assert.Eventually(t, b.Armed, time.Second, 5*time.Millisecond)
	require.True(t, b.Trigger())
	assert.Eventually(t, data.FrameAvailable, time.Second, 5*time.Millisecond)
	frame, err := data.ReadFrame()
	require.NoError(t, err)
	assert.NotEmpty(t, frame)
}

func TestConnectRefused(t *testing.T) {
	l, port := listen(t)
	l.Close()
	cfg := config.NewDefaultConfig()
	cfg.Bridge.Address = "127.0.0.1"
	cfg.Bridge.CommandPort = port
	m, err := model.Lookup(cfg.Model)
	require.NoError(t, err)
	_, _, err = Connect(context.Background(), cfg, m)
	assert.Error(t, err)
}

func TestStartServerSimulated(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Simulate = true
	cfg.Api.Port = 0
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	assert.NoError(t, StartServer(ctx, cfg))
}

func TestStartServerUnknownModel(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Model = "9999Z"
	assert.Error(t, StartServer(context.Background(), cfg))
}
