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


package device

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-pico/pkg/model"
)

func TestParseCoupling(t *testing.T) {
	c, err := ParseCoupling("ac50")
	require.NoError(t, err)
	assert.Equal(t, CouplingAC50, c)

	_, err = ParseCoupling("HF")
	assert.ErrorAs(t, err, &ErrUnknownValue{})
}

func TestParseEdgeDirection(t *testing.T) {
	e, err := ParseEdgeDirection("Falling")
	require.NoError(t, err)
	assert.Equal(t, EdgeFalling, e)

	_, err = ParseEdgeDirection("UP")
	assert.Error(t, err)
}

func TestChannelRef(t *testing.T) {
	m, err := model.Lookup("3406D")
	require.NoError(t, err)

	ref, err := ParseChannelRef(m, "c")
	require.NoError(t, err)
	assert.Equal(t, AnalogChannel(2), ref)
	assert.Equal(t, "C", ref.Name(m))

	ref, err = ParseChannelRef(m, "ext")
	require.NoError(t, err)
	assert.True(t, ref.External)
	assert.Equal(t, "EXT", ref.Name(m))

	_, err = ParseChannelRef(m, "E")
	assert.Error(t, err)
}

func TestDefaultTrigger(t *testing.T) {
	d := DefaultTrigger()
	assert.Equal(t, TriggerTypeEdge, d.Type)
	assert.Equal(t, AnalogChannel(0), d.Source)
	assert.Equal(t, 0.0, d.Level)
	assert.Equal(t, EdgeRising, d.Edge)
}

func TestStateNamesInJSON(t *testing.T) {
	data, err := json.Marshal(AcquisitionState{State: Armed, OneShot: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"armed","one_shot":true}`, string(data))
	assert.Equal(t, "untriggered", TriggerModeUntriggered.String())
	assert.Equal(t, "ArmState(7)", ArmState(7).String())

	state := AcquisitionState{}
	require.NoError(t, json.Unmarshal([]byte(`{"state":"triggered"}`), &state))
	assert.Equal(t, Triggered, state.State)
	var mode TriggerMode
	require.NoError(t, mode.UnmarshalText([]byte("run")))
	assert.Equal(t, TriggerModeRun, mode)
	assert.Error(t, mode.UnmarshalText([]byte("idle")))
}
