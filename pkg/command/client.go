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
	"fmt"
	"net/http"
	"strings"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-pico/pkg/config"
	"jinr.ru/greenlab/go-pico/pkg/device"
	"jinr.ru/greenlab/go-pico/pkg/model"
	"jinr.ru/greenlab/go-pico/pkg/srv"
	"jinr.ru/greenlab/go-pico/pkg/waveform"
)

type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s%s", cfg.ApiAddr(), srv.ApiPrefix),
	}
}

func (c *ApiClient) url(format string, v ...interface{}) string {
	return c.ApiPrefix + fmt.Sprintf(format, v...)
}

// check turns non 200 responses into ErrApi carrying the server message
func check(r *req.Resp, err error) (*req.Resp, error) {
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != http.StatusOK {
		return nil, ErrApi{
			Status:  r.Response().Status,
			Message: strings.TrimSpace(r.String()),
		}
	}
	return r, nil
}

func (c *ApiClient) getJSON(url string, out interface{}, v ...interface{}) error {
	r, err := check(req.Get(url, v...))
	if err != nil {
		return err
	}
	return r.ToJSON(out)
}

func (c *ApiClient) postJSON(url string, body interface{}, out interface{}) error {
	var r *req.Resp
	var err error
	if body != nil {
		r, err = check(req.Post(url, req.BodyJSON(body)))
	} else {
		r, err = check(req.Post(url))
	}
	if err != nil {
		return err
	}
	return r.ToJSON(out)
}

// Scope ...
func (c *ApiClient) Scope() (*srv.ScopeInfo, error) {
	info := &srv.ScopeInfo{}
	if err := c.getJSON(c.url("/scope"), info); err != nil {
		return nil, err
	}
	return info, nil
}

// Models ...
func (c *ApiClient) Models() ([]*model.Model, error) {
	var models []*model.Model
	if err := c.getJSON(c.url("/models"), &models); err != nil {
		return nil, err
	}
	return models, nil
}

// Channels returns every analog channel
func (c *ApiClient) Channels() ([]device.Channel, error) {
	var channels []device.Channel
	if err := c.getJSON(c.url("/channels"), &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// Channel accepts a channel name or index
func (c *ApiClient) Channel(ch string) (*device.Channel, error) {
	result := &device.Channel{}
	if err := c.getJSON(c.url("/channels/%s", ch), result); err != nil {
		return nil, err
	}
	return result, nil
}

// SetChannel ...
func (c *ApiClient) SetChannel(ch string, setup *srv.ChannelSetup) (*device.Channel, error) {
	result := &device.Channel{}
	if err := c.postJSON(c.url("/channels/%s", ch), setup, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Trigger returns the cached trigger descriptor
func (c *ApiClient) Trigger() (*srv.TriggerSetup, error) {
	result := &srv.TriggerSetup{}
	if err := c.getJSON(c.url("/trigger"), result); err != nil {
		return nil, err
	}
	return result, nil
}

// PushTrigger ...
func (c *ApiClient) PushTrigger(setup *srv.TriggerSetup) (*srv.TriggerSetup, error) {
	result := &srv.TriggerSetup{}
	if err := c.postJSON(c.url("/trigger"), setup, result); err != nil {
		return nil, err
	}
	return result, nil
}

// PullTrigger ...
func (c *ApiClient) PullTrigger() (*srv.TriggerSetup, error) {
	result := &srv.TriggerSetup{}
	if err := c.postJSON(c.url("/trigger/pull"), nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Flush ...
func (c *ApiClient) Flush() (*srv.TriggerSetup, error) {
	result := &srv.TriggerSetup{}
	if err := c.postJSON(c.url("/flush"), nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Acquisition ...
func (c *ApiClient) Acquisition() (*srv.AcquisitionStatus, error) {
	result := &srv.AcquisitionStatus{}
	if err := c.getJSON(c.url("/acquisition"), result); err != nil {
		return nil, err
	}
	return result, nil
}

// AcquisitionAction sends one of start, single, stop
func (c *ApiClient) AcquisitionAction(action string) (*srv.AcquisitionStatus, error) {
	result := &srv.AcquisitionStatus{}
	if err := c.postJSON(c.url("/acquisition/%s", action), nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Timebase ...
func (c *ApiClient) Timebase() (*device.TimebaseConfig, error) {
	result := &device.TimebaseConfig{}
	if err := c.getJSON(c.url("/timebase"), result); err != nil {
		return nil, err
	}
	return result, nil
}

// SetTimebase ...
func (c *ApiClient) SetTimebase(setup *srv.TimebaseSetup) (*device.TimebaseConfig, error) {
	result := &device.TimebaseConfig{}
	if err := c.postJSON(c.url("/timebase"), setup, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Candidates ...
func (c *ApiClient) Candidates() (*srv.Candidates, error) {
	result := &srv.Candidates{}
	if err := c.getJSON(c.url("/timebase/candidates"), result); err != nil {
		return nil, err
	}
	return result, nil
}

// Captures lists capture summaries
func (c *ApiClient) Captures() ([]waveform.Summary, error) {
	var result []waveform.Summary
	if err := c.getJSON(c.url("/captures"), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Capture fetches one capture, id may be "latest"
func (c *ApiClient) Capture(id string, samples bool) (*srv.CaptureResponse, error) {
	result := &srv.CaptureResponse{}
	param := req.QueryParam{"samples": samples}
	if err := c.getJSON(c.url("/captures/%s", id), result, param); err != nil {
		return nil, err
	}
	return result, nil
}

// CaptureNpy downloads the samples of one channel as a numpy file
func (c *ApiClient) CaptureNpy(id, ch string) ([]byte, error) {
	r, err := check(req.Get(c.url("/captures/%s/%s.npy", id, ch)))
	if err != nil {
		return nil, err
	}
	return r.ToBytes()
}
