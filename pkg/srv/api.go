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


// go-pico API
//
// RESTful API exposing the oscilloscope driver: channel and timebase
// configuration, trigger control and stored captures. The swagger document
// is served at /swagger.json and rendered at /docs.
package srv

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/loads"
	"github.com/go-openapi/runtime/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/oklog/ulid/v2"

	"jinr.ru/greenlab/go-pico/pkg/acquire"
	"jinr.ru/greenlab/go-pico/pkg/bridge"
	"jinr.ru/greenlab/go-pico/pkg/config"
	"jinr.ru/greenlab/go-pico/pkg/device"
	deviceifc "jinr.ru/greenlab/go-pico/pkg/device/ifc"
	"jinr.ru/greenlab/go-pico/pkg/device/pico"
	"jinr.ru/greenlab/go-pico/pkg/log"
	"jinr.ru/greenlab/go-pico/pkg/model"
	"jinr.ru/greenlab/go-pico/pkg/srv/ifc"
	"jinr.ru/greenlab/go-pico/pkg/waveform"
)

const (
	ApiPrefix     = "/api"
	LatestCapture = "latest"
	SwaggerPath   = "/swagger.json"
	DocsPath      = "docs"
)

//go:embed swagger.json
var swaggerJSON []byte

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	dev     deviceifc.Oscilloscope
	archive waveform.Archive
	poller  *acquire.Poller
	doc     *loads.Document
}

var _ ifc.ApiServer = &ApiServer{}

// NewApiServer serves dev and archive. poller may be nil.
func NewApiServer(ctx context.Context, cfg *config.Config, dev deviceifc.Oscilloscope,
	archive waveform.Archive, poller *acquire.Poller) (*ApiServer, error) {
	log.Info("Initializing API server with address: %s", cfg.ApiAddr())
	doc, err := loads.Analyzed(swaggerJSON, "")
	if err != nil {
		return nil, err
	}
	s := &ApiServer{
		Context: ctx,
		Config:  cfg,
		dev:     dev,
		archive: archive,
		poller:  poller,
		doc:     doc,
	}
	s.configureRouter()
	return s, nil
}

// Handler wraps the router with access logging and panic recovery
func (s *ApiServer) Handler() http.Handler {
	logged := handlers.LoggingHandler(log.Writer(log.DebugLevel), s.Router)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(logged)
}

// Run serves until the context is done
func (s *ApiServer) Run() error {
	log.Info("Starting API server: %s", s.Config.ApiAddr())
	httpServer := &http.Server{
		Handler:           s.Handler(),
		Addr:              s.Config.ApiAddr(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-s.Context.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	s.Router.HandleFunc(SwaggerPath, s.handleSwagger()).Methods("GET")
	s.Router.Handle("/"+DocsPath, middleware.Redoc(middleware.RedocOpts{
		Path:    DocsPath,
		SpecURL: SwaggerPath,
		Title:   s.doc.Spec().Info.Title,
	}, http.NotFoundHandler())).Methods("GET")

	subRouter := s.Router.PathPrefix(ApiPrefix).Subrouter()
	subRouter.HandleFunc("/scope", s.handleScope()).Methods("GET")
	subRouter.HandleFunc("/models", s.handleModels()).Methods("GET")
	subRouter.HandleFunc("/channels", s.handleChannels()).Methods("GET")
	subRouter.HandleFunc("/channels/{ch}", s.handleChannelGet()).Methods("GET")
	subRouter.HandleFunc("/channels/{ch}", s.handleChannelSet()).Methods("POST")
	subRouter.HandleFunc("/trigger", s.handleTriggerGet()).Methods("GET")
	subRouter.HandleFunc("/trigger", s.handleTriggerPush()).Methods("POST")
	subRouter.HandleFunc("/trigger/pull", s.handleTriggerPull()).Methods("POST")
	subRouter.HandleFunc("/acquisition", s.handleAcquisition()).Methods("GET")
	subRouter.HandleFunc("/acquisition/{action}", s.handleAcquisitionAction()).Methods("POST")
	subRouter.HandleFunc("/timebase", s.handleTimebaseGet()).Methods("GET")
	subRouter.HandleFunc("/timebase", s.handleTimebaseSet()).Methods("POST")
	subRouter.HandleFunc("/timebase/candidates", s.handleCandidates()).Methods("GET")
	subRouter.HandleFunc("/flush", s.handleFlush()).Methods("POST")
	subRouter.HandleFunc("/captures", s.handleCaptures()).Methods("GET")
	subRouter.HandleFunc("/captures/{id}", s.handleCaptureGet()).Methods("GET")
	subRouter.HandleFunc("/captures/{id}/{ch}.npy", s.handleCaptureNpy()).Methods("GET")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Can not encode response: %s", err)
	}
}

// writeError maps driver errors to HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case pico.IsValidation(err),
		errors.As(err, &ErrBadRequest{}),
		errors.As(err, &ErrUnknownOperation{}),
		errors.As(err, &device.ErrUnknownValue{}):
		status = http.StatusBadRequest
	case errors.As(err, &pico.ErrNotArmed{}), errors.As(err, &pico.ErrNoFrame{}):
		status = http.StatusConflict
	case errors.As(err, &pico.ErrDisconnected{}), errors.As(err, &bridge.ErrBadResponse{}):
		status = http.StatusBadGateway
	case errors.As(err, &waveform.ErrCaptureNotFound{}), errors.As(err, &waveform.ErrNoCaptures{}):
		status = http.StatusNotFound
	}
	http.Error(w, err.Error(), status)
}

// channelIndex accepts a channel name or a decimal index. Range checks are
// left to the driver.
func (s *ApiServer) channelIndex(name string) (int, error) {
	if i, err := strconv.Atoi(name); err == nil {
		return i, nil
	}
	i, ok := s.dev.GetModel().ChannelIndex(name)
	if !ok {
		return -1, ErrBadRequest{What: "unknown channel " + name}
	}
	return i, nil
}

func (s *ApiServer) handleSwagger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(s.doc.Raw())
	}
}

func (s *ApiServer) handleScope() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := s.dev.GetModel()
		writeJSON(w, &ScopeInfo{
			Driver:          s.dev.GetDriverName(),
			Model:           m.Name,
			Series:          m.Series,
			InstrumentTypes: s.dev.GetInstrumentTypes(),
			Channels:        s.dev.GetChannelCount(),
			ExternalTrigger: s.dev.GetExternalTrigger().Name(m),
			Connected:       s.dev.IsConnected(),
		})
	}
}

func (s *ApiServer) handleModels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, model.All())
	}
}

func (s *ApiServer) handleChannels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channels := []device.Channel{}
		for i := 0; i < s.dev.GetChannelCount(); i++ {
			ch, err := s.dev.GetChannel(i)
			if err != nil {
				writeError(w, err)
				return
			}
			channels = append(channels, ch)
		}
		writeJSON(w, channels)
	}
}

func (s *ApiServer) handleChannelGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		i, err := s.channelIndex(vars["ch"])
		if err != nil {
			writeError(w, err)
			return
		}
		ch, err := s.dev.GetChannel(i)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, ch)
	}
}

func (s *ApiServer) handleChannelSet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		setup := &ChannelSetup{}
		if err := json.NewDecoder(r.Body).Decode(setup); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		i, err := s.channelIndex(vars["ch"])
		if err != nil {
			writeError(w, err)
			return
		}
		log.Debug("Handling channel setup request: channel: %s", vars["ch"])

		if setup.Enabled != nil {
			if *setup.Enabled {
				err = s.dev.EnableChannel(i)
			} else {
				err = s.dev.DisableChannel(i)
			}
			if err != nil {
				writeError(w, err)
				return
			}
		}
		if setup.Coupling != nil {
			if err := s.dev.SetChannelCoupling(i, device.Coupling(strings.ToUpper(*setup.Coupling))); err != nil {
				writeError(w, err)
				return
			}
		}
		if setup.Offset != nil {
			if err := s.dev.SetChannelOffset(i, *setup.Offset); err != nil {
				writeError(w, err)
				return
			}
		}
		if setup.Range != nil {
			if err := s.dev.SetChannelVoltageRange(i, *setup.Range); err != nil {
				writeError(w, err)
				return
			}
		}
		if setup.Attenuation != nil {
			if err := s.dev.SetChannelAttenuation(i, *setup.Attenuation); err != nil {
				writeError(w, err)
				return
			}
		}
		if setup.BandwidthLimit != nil {
			if err := s.dev.SetChannelBandwidthLimit(i, *setup.BandwidthLimit); err != nil {
				writeError(w, err)
				return
			}
		}

		ch, err := s.dev.GetChannel(i)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, ch)
	}
}

func (s *ApiServer) triggerSetup(d device.TriggerDescriptor) *TriggerSetup {
	return &TriggerSetup{
		Type:   string(d.Type),
		Source: d.Source.Name(s.dev.GetModel()),
		Level:  d.Level,
		Edge:   string(d.Edge),
	}
}

func (s *ApiServer) handleTriggerGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.triggerSetup(s.dev.GetTrigger()))
	}
}

func (s *ApiServer) handleTriggerPush() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup := &TriggerSetup{}
		if err := json.NewDecoder(r.Body).Decode(setup); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling trigger push request: source: %s level: %g edge: %s", setup.Source, setup.Level, setup.Edge)

		d := device.DefaultTrigger()
		if setup.Type != "" {
			d.Type = device.TriggerType(strings.ToUpper(setup.Type))
		}
		if setup.Source != "" {
			src, err := device.ParseChannelRef(s.dev.GetModel(), setup.Source)
			if err != nil {
				writeError(w, err)
				return
			}
			d.Source = src
		}
		if setup.Edge != "" {
			edge, err := device.ParseEdgeDirection(setup.Edge)
			if err != nil {
				writeError(w, err)
				return
			}
			d.Edge = edge
		}
		d.Level = setup.Level

		if err := s.dev.PushTrigger(d); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, s.triggerSetup(s.dev.GetTrigger()))
	}
}

func (s *ApiServer) handleTriggerPull() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := s.dev.PullTrigger()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, s.triggerSetup(d))
	}
}

func (s *ApiServer) acquisitionStatus() *AcquisitionStatus {
	acq := s.dev.GetAcquisitionState()
	status := &AcquisitionStatus{
		State:   acq.State,
		OneShot: acq.OneShot,
		Trigger: s.dev.PollTrigger(),
	}
	if s.poller != nil {
		stats := s.poller.Stats()
		status.Poller = &stats
	}
	return status
}

func (s *ApiServer) handleAcquisition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.acquisitionStatus())
	}
}

func (s *ApiServer) handleAcquisitionAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling acquisition action request: action: %s", vars["action"])
		var err error
		switch vars["action"] {
		case "start":
			err = s.dev.Start()
		case "single":
			err = s.dev.StartSingleTrigger()
		case "stop":
			err = s.dev.Stop()
		default:
			err = ErrUnknownOperation{
				What: "Wrong acquisition action. Must be one of start/single/stop",
			}
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, s.acquisitionStatus())
	}
}

func (s *ApiServer) handleTimebaseGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.dev.GetTimebase())
	}
}

// handleTimebaseSet applies the interleave mode first so that rate and
// depth are checked against the new candidate sets
func (s *ApiServer) handleTimebaseSet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup := &TimebaseSetup{}
		if err := json.NewDecoder(r.Body).Decode(setup); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if setup.Interleave != nil {
			if _, err := s.dev.SetInterleaving(*setup.Interleave); err != nil {
				writeError(w, err)
				return
			}
		}
		if setup.SampleRate != nil {
			if err := s.dev.SetSampleRate(*setup.SampleRate); err != nil {
				writeError(w, err)
				return
			}
		}
		if setup.SampleDepth != nil {
			if err := s.dev.SetSampleDepth(*setup.SampleDepth); err != nil {
				writeError(w, err)
				return
			}
		}
		if setup.TriggerOffsetFs != nil {
			if err := s.dev.SetTriggerOffset(*setup.TriggerOffsetFs); err != nil {
				writeError(w, err)
				return
			}
		}
		writeJSON(w, s.dev.GetTimebase())
	}
}

func (s *ApiServer) handleCandidates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, &Candidates{
			SampleRates: model.Candidates{
				NonInterleaved: s.dev.GetSampleRatesNonInterleaved(),
				Interleaved:    s.dev.GetSampleRatesInterleaved(),
			},
			SampleDepths: model.Candidates{
				NonInterleaved: s.dev.GetSampleDepthsNonInterleaved(),
				Interleaved:    s.dev.GetSampleDepthsInterleaved(),
			},
			InterleaveConflicts: s.dev.GetInterleaveConflicts(),
		})
	}
}

func (s *ApiServer) handleFlush() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.dev.FlushConfigCache(); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, s.triggerSetup(s.dev.GetTrigger()))
	}
}

func (s *ApiServer) handleCaptures() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.archive.List()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, list)
	}
}

// captureResponse adds statistics and drops the samples unless asked for
func captureResponse(c *waveform.Capture, r *http.Request) (*CaptureResponse, error) {
	withSamples := true
	if v := r.URL.Query().Get("samples"); v != "" {
		var err error
		if withSamples, err = strconv.ParseBool(v); err != nil {
			return nil, ErrBadRequest{What: "samples must be a boolean"}
		}
	}
	resp := &CaptureResponse{Capture: c, Stats: []waveform.Stats{}}
	for _, wf := range c.Waveforms {
		resp.Stats = append(resp.Stats, waveform.ComputeStats(wf))
	}
	if !withSamples {
		stripped := *c
		stripped.Waveforms = nil
		for _, wf := range c.Waveforms {
			cp := *wf
			cp.Samples = nil
			stripped.Waveforms = append(stripped.Waveforms, &cp)
		}
		resp.Capture = &stripped
	}
	return resp, nil
}

// capture resolves a capture id, "latest" is accepted too
func (s *ApiServer) capture(idStr string) (*waveform.Capture, error) {
	if idStr == LatestCapture {
		return s.archive.Latest()
	}
	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, waveform.ErrCaptureNotFound{ID: idStr}
	}
	return s.archive.Get(id)
}

func (s *ApiServer) handleCaptureGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := s.capture(mux.Vars(r)["id"])
		if err != nil {
			writeError(w, err)
			return
		}
		resp, err := captureResponse(c, r)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (s *ApiServer) handleCaptureNpy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		c, err := s.capture(vars["id"])
		if err != nil {
			writeError(w, err)
			return
		}
		i, err := s.channelIndex(vars["ch"])
		if err != nil {
			writeError(w, err)
			return
		}
		wf, ok := c.Waveform(i)
		if !ok {
			http.Error(w, fmt.Sprintf("Capture %s has no channel %s", c.ID, vars["ch"]), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_%s.npy", c.ID, wf.Name))
		if err := wf.WriteNpy(w); err != nil {
			log.Error("Can not write numpy array: %s", err)
		}
	}
}
