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

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetPath(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, cfg.Load())
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultCommandPort, cfg.Bridge.CommandPort)
	assert.Equal(t, "127.0.0.1:5026", cfg.DataAddr())
}

func TestPersistAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", ConfigFile)
	cfg := NewDefaultConfig()
	cfg.SetPath(path)
	cfg.Model = "6824E"
	cfg.Bridge.Address = "10.0.0.7"
	cfg.Acquisition.Store = true
	require.NoError(t, cfg.Persist(false))

	err := cfg.Persist(false)
	assert.IsType(t, ErrConfigFileExists{}, err)
	assert.NoError(t, cfg.Persist(true))

	loaded := NewDefaultConfig()
	loaded.SetPath(path)
	require.NoError(t, loaded.Load())
	assert.Equal(t, "6824E", loaded.Model)
	assert.Equal(t, "10.0.0.7", loaded.Bridge.Address)
	assert.True(t, loaded.Acquisition.Store)
	assert.Equal(t, DefaultApiPort, loaded.Api.Port)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("GOPICO_BRIDGE_ADDRESS", "192.168.5.5")
	t.Setenv("GOPICO_API_PORT", "9999")
	cfg := NewDefaultConfig()
	cfg.SetPath(filepath.Join(t.TempDir(), ConfigFile))
	require.NoError(t, cfg.Load())
	assert.Equal(t, "192.168.5.5", cfg.Bridge.Address)
	assert.Equal(t, 9999, cfg.Api.Port)
}
