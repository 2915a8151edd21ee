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
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-pico/pkg/bridge/sim"
	"jinr.ru/greenlab/go-pico/pkg/config"
	"jinr.ru/greenlab/go-pico/pkg/device"
	"jinr.ru/greenlab/go-pico/pkg/device/pico"
	"jinr.ru/greenlab/go-pico/pkg/model"
	"jinr.ru/greenlab/go-pico/pkg/srv"
	"jinr.ru/greenlab/go-pico/pkg/waveform"
)

func newTestClient(t *testing.T) (*ApiClient, *pico.Device, *sim.Bridge) {
	m, err := model.Lookup("3406D")
	require.NoError(t, err)
	b := sim.NewBridge(m)
	buf := waveform.NewBuffer(4)
	dev := pico.NewDevice(m, b, b, buf)
	cfg := config.NewDefaultConfig()
	api, err := srv.NewApiServer(context.Background(), cfg, dev, buf, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(api.Handler())
	t.Cleanup(ts.Close)

	c := NewApiClient(cfg)
	c.ApiPrefix = ts.URL + srv.ApiPrefix
	return c, dev, b
}

func TestNewApiClient(t *testing.T) {
	c := NewApiClient(config.NewDefaultConfig())
	assert.Equal(t, "http://127.0.0.1:8010/api", c.ApiPrefix)
}

func TestClientScope(t *testing.T) {
	c, _, _ := newTestClient(t)
	info, err := c.Scope()
	require.NoError(t, err)
	assert.Equal(t, "3406D", info.Model)
	assert.True(t, info.Connected)

	models, err := c.Models()
	require.NoError(t, err)
	assert.Len(t, models, len(model.All()))
}

func TestClientChannels(t *testing.T) {
	c, _, b := newTestClient(t)
	rng := 2.0
	ch, err := c.SetChannel("C", &srv.ChannelSetup{Range: &rng})
	require.NoError(t, err)
	assert.Equal(t, 2.0, ch.Range)
	assert.Equal(t, []string{"C:RANGE 2"}, b.Commands())

	ch, err = c.Channel("2")
	require.NoError(t, err)
	assert.Equal(t, "C", ch.Name)

	channels, err := c.Channels()
	require.NoError(t, err)
	assert.Len(t, channels, 4)

	_, err = c.Channel("Z")
	require.Error(t, err)
	apiErr := ErrApi{}
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Status, "400")
}

func TestClientTrigger(t *testing.T) {
	c, _, _ := newTestClient(t)
	got, err := c.PushTrigger(&srv.TriggerSetup{Source: "B", Level: -0.25, Edge: "any"})
	require.NoError(t, err)
	assert.Equal(t, "B", got.Source)
	assert.Equal(t, "ANY", got.Edge)

	pulled, err := c.PullTrigger()
	require.NoError(t, err)
	assert.Equal(t, got, pulled)

	cached, err := c.Trigger()
	require.NoError(t, err)
	assert.Equal(t, got, cached)

	flushed, err := c.Flush()
	require.NoError(t, err)
	assert.Equal(t, got, flushed)
}

func TestClientAcquisitionAndCaptures(t *testing.T) {
	c, dev, b := newTestClient(t)
	status, err := c.AcquisitionAction("single")
	require.NoError(t, err)
	assert.Equal(t, device.Armed, status.State)

	require.True(t, b.Trigger())
	require.NoError(t, dev.AcquireData())

	status, err = c.Acquisition()
	require.NoError(t, err)
	assert.Equal(t, device.Disarmed, status.State)

	list, err := c.Captures()
	require.NoError(t, err)
	require.Len(t, list, 1)

	capture, err := c.Capture("latest", false)
	require.NoError(t, err)
	assert.Equal(t, list[0].ID, capture.ID)
	require.Len(t, capture.Waveforms, 1)
	assert.Empty(t, capture.Waveforms[0].Samples)

	capture, err = c.Capture(list[0].ID.String(), true)
	require.NoError(t, err)
	require.Len(t, capture.Stats, 1)
	assert.NotEmpty(t, capture.Waveforms[0].Samples)

	data, err := c.CaptureNpy("latest", "A")
	require.NoError(t, err)
	var samples []float32
	require.NoError(t, npyio.Read(bytes.NewReader(data), &samples))
	assert.Len(t, samples, len(capture.Waveforms[0].Samples))

	_, err = c.CaptureNpy("latest", "D")
	assert.Error(t, err)
}

func TestClientTimebase(t *testing.T) {
	c, _, _ := newTestClient(t)
	depth := uint64(10000)
	tb, err := c.SetTimebase(&srv.TimebaseSetup{SampleDepth: &depth})
	require.NoError(t, err)
	assert.Equal(t, depth, tb.SampleDepth)

	tb, err = c.Timebase()
	require.NoError(t, err)
	assert.Equal(t, depth, tb.SampleDepth)

	cands, err := c.Candidates()
	require.NoError(t, err)
	assert.Contains(t, cands.SampleDepths.NonInterleaved, depth)
}
