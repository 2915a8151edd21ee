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


package srv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-pico/pkg/bridge/sim"
	"jinr.ru/greenlab/go-pico/pkg/config"
	"jinr.ru/greenlab/go-pico/pkg/device"
	"jinr.ru/greenlab/go-pico/pkg/device/pico"
	"jinr.ru/greenlab/go-pico/pkg/model"
	"jinr.ru/greenlab/go-pico/pkg/waveform"
)

type testServer struct {
	*httptest.Server
	api    *ApiServer
	dev    *pico.Device
	bridge *sim.Bridge
	buffer *waveform.Buffer
}

func newTestServer(t *testing.T) *testServer {
	m, err := model.Lookup("3406D")
	require.NoError(t, err)
	b := sim.NewBridge(m)
	buf := waveform.NewBuffer(4)
	dev := pico.NewDevice(m, b, b, buf)
	api, err := NewApiServer(context.Background(), config.NewDefaultConfig(), dev, buf, nil)
	require.NoError(t, err)
	ts := &testServer{Server: httptest.NewServer(api.Handler()), api: api, dev: dev, bridge: b, buffer: buf}
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestScope(t *testing.T) {
	ts := newTestServer(t)
	info := &ScopeInfo{}
	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/api/scope", nil, info))
	assert.Equal(t, "pico", info.Driver)
	assert.Equal(t, "3406D", info.Model)
	assert.Equal(t, 4, info.Channels)
	assert.Equal(t, "EXT", info.ExternalTrigger)
	assert.True(t, info.Connected)

	var models []*model.Model
	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/api/models", nil, &models))
	assert.Len(t, models, len(model.All()))
}

func TestChannelSetup(t *testing.T) {
	ts := newTestServer(t)
	enabled, coupling, offset := true, "ac1m", 0.5
	ch := &device.Channel{}
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/channels/B",
		&ChannelSetup{Enabled: &enabled, Coupling: &coupling, Offset: &offset}, ch))
	assert.True(t, ch.Enabled)
	assert.Equal(t, device.CouplingAC1M, ch.Coupling)
	assert.Equal(t, 0.5, ch.Offset)
	assert.Equal(t, []string{"B:ON", "B:COUP AC1M", "B:OFFS 0.5"}, ts.bridge.Commands())

	ch = &device.Channel{}
	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/api/channels/1", nil, ch))
	assert.Equal(t, "B", ch.Name)

	var channels []device.Channel
	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/api/channels", nil, &channels))
	assert.Len(t, channels, 4)

	bad := "HF"
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/api/channels/A", &ChannelSetup{Coupling: &bad}, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "GET", "/api/channels/Q", nil, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "GET", "/api/channels/7", nil, nil))
}

func TestTriggerPushPull(t *testing.T) {
	ts := newTestServer(t)
	pushed := &TriggerSetup{Source: "EXT", Level: 0.75, Edge: "falling"}
	got := &TriggerSetup{}
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/trigger", pushed, got))
	assert.Equal(t, &TriggerSetup{Type: "EDGE", Source: "EXT", Level: 0.75, Edge: "FALLING"}, got)

	pulled := &TriggerSetup{}
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/trigger/pull", nil, pulled))
	assert.Equal(t, got, pulled)

	flushed := &TriggerSetup{}
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/flush", nil, flushed))
	assert.Equal(t, got, flushed)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/api/trigger", &TriggerSetup{Source: "Z"}, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/api/trigger", &TriggerSetup{Type: "pulse"}, nil))
}

func TestAcquisitionActions(t *testing.T) {
	ts := newTestServer(t)
	status := &AcquisitionStatus{}
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/acquisition/single", nil, status))
	assert.Equal(t, device.Armed, status.State)
	assert.True(t, status.OneShot)
	assert.Equal(t, device.TriggerModeUntriggered, status.Trigger)

	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/acquisition/stop", nil, status))
	assert.Equal(t, device.Disarmed, status.State)
	assert.Equal(t, device.TriggerModeStop, status.Trigger)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/api/acquisition/pause", nil, nil))

	ts.bridge.Fail()
	assert.Equal(t, http.StatusBadGateway, ts.do(t, "POST", "/api/acquisition/start", nil, nil))
	info := &ScopeInfo{}
	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/api/scope", nil, info))
	assert.False(t, info.Connected)
}

func TestTimebase(t *testing.T) {
	ts := newTestServer(t)
	on := true
	rate := uint64(1000000000)
	tb := &device.TimebaseConfig{}
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/timebase", &TimebaseSetup{Interleave: &on, SampleRate: &rate}, tb))
	assert.True(t, tb.Interleave)
	assert.Equal(t, rate, tb.SampleRate)

	bad := uint64(12345)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/api/timebase", &TimebaseSetup{SampleDepth: &bad}, nil))

	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/api/timebase", nil, tb))
	assert.Equal(t, uint64(1000), tb.SampleDepth)

	require.NoError(t, ts.dev.DisableChannel(0))
	require.NoError(t, ts.dev.EnableChannel(2))
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/api/channels/D", &ChannelSetup{Enabled: &on}, nil))

	cands := &Candidates{}
	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/api/timebase/candidates", nil, cands))
	assert.Equal(t, ts.dev.GetSampleRatesInterleaved(), cands.SampleRates.Interleaved)
	assert.Len(t, cands.InterleaveConflicts, 2)
}

func TestCaptures(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, ts.do(t, "GET", "/api/captures/latest", nil, nil))

	require.NoError(t, ts.dev.Start())
	require.True(t, ts.bridge.Trigger())
	require.NoError(t, ts.dev.AcquireData())

	var list []waveform.Summary
	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/api/captures", nil, &list))
	require.Len(t, list, 1)
	id := list[0].ID.String()

	resp := &CaptureResponse{}
	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/api/captures/latest?samples=false", nil, resp))
	assert.Equal(t, id, resp.ID.String())
	require.Len(t, resp.Waveforms, 1)
	assert.Empty(t, resp.Waveforms[0].Samples)
	require.Len(t, resp.Stats, 1)
	assert.Equal(t, 1000, resp.Stats[0].Points)

	resp = &CaptureResponse{}
	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/api/captures/"+id, nil, resp))
	assert.Len(t, resp.Waveforms[0].Samples, 1000)

	r, err := http.Get(ts.URL + "/api/captures/" + id + "/A.npy")
	require.NoError(t, err)
	defer r.Body.Close()
	require.Equal(t, http.StatusOK, r.StatusCode)
	samples, err := waveform.ReadNpy(r.Body)
	require.NoError(t, err)
	assert.Len(t, samples, 1000)

	assert.Equal(t, http.StatusNotFound, ts.do(t, "GET", "/api/captures/"+id+"/B.npy", nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(t, "GET", "/api/captures/nope", nil, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "GET", "/api/captures/latest?samples=maybe", nil, nil))
}

func TestEveryRouteIsDocumented(t *testing.T) {
	ts := newTestServer(t)
	paths := ts.api.doc.Spec().Paths.Paths
	err := ts.api.Router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		tpl, err := route.GetPathTemplate()
		if err != nil || !strings.HasPrefix(tpl, ApiPrefix+"/") {
			return nil
		}
		path := strings.TrimPrefix(tpl, ApiPrefix)
		if _, ok := paths[path]; !ok {
			return fmt.Errorf("route %s is not in swagger.json", tpl)
		}
		return nil
	})
	assert.NoError(t, err)
}

func TestDocs(t *testing.T) {
	ts := newTestServer(t)
	r, err := http.Get(ts.URL + "/swagger.json")
	require.NoError(t, err)
	defer r.Body.Close()
	assert.Equal(t, http.StatusOK, r.StatusCode)
	doc := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
	assert.Equal(t, "2.0", doc["swagger"])

	r, err = http.Get(ts.URL + "/docs")
	require.NoError(t, err)
	defer r.Body.Close()
	assert.Equal(t, http.StatusOK, r.StatusCode)
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "redoc")
}
