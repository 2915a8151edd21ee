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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"
)

type BridgeConfig struct {
	Address       string `json:"address" mapstructure:"address"`
	CommandPort   int    `json:"command_port" mapstructure:"command_port"`
	DataPort      int    `json:"data_port" mapstructure:"data_port"`
	DialTimeoutMs int    `json:"dial_timeout_ms" mapstructure:"dial_timeout_ms"`
}

type ApiConfig struct {
	Address string `json:"address" mapstructure:"address"`
	Port    int    `json:"port" mapstructure:"port"`
}

type AcquisitionConfig struct {
	PollIntervalMs int  `json:"poll_interval_ms" mapstructure:"poll_interval_ms"`
	BufferSize     int  `json:"buffer_size" mapstructure:"buffer_size"`
	Store          bool `json:"store" mapstructure:"store"`
}

type Config struct {
	Model       string            `json:"model" mapstructure:"model"`
	Simulate    bool              `json:"simulate" mapstructure:"simulate"`
	LogLevel    string            `json:"log_level" mapstructure:"log_level"`
	LogFile     string            `json:"log_file,omitempty" mapstructure:"log_file"`
	DBPath      string            `json:"db_path" mapstructure:"db_path"`
	Bridge      BridgeConfig      `json:"bridge" mapstructure:"bridge"`
	Api         ApiConfig         `json:"api" mapstructure:"api"`
	Acquisition AcquisitionConfig `json:"acquisition" mapstructure:"acquisition"`
	filepath    string
}

// CommandAddr is the host:port of the bridge command channel
func (c *Config) CommandAddr() string {
	return fmt.Sprintf("%s:%d", c.Bridge.Address, c.Bridge.CommandPort)
}

// DataAddr is the host:port of the bridge waveform channel
func (c *Config) DataAddr() string {
	return fmt.Sprintf("%s:%d", c.Bridge.Address, c.Bridge.DataPort)
}

func (c *Config) ApiAddr() string {
	return fmt.Sprintf("%s:%d", c.Api.Address, c.Api.Port)
}

func (c *Config) DialTimeout() time.Duration {
	return time.Duration(c.Bridge.DialTimeoutMs) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Acquisition.PollIntervalMs) * time.Millisecond
}

func (c *Config) Path() string {
	return c.filepath
}

func (c *Config) SetPath(path string) {
	c.filepath = path
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return os.WriteFile(c.filepath, data, 0644)
}

// Load reads the config file on top of the current values. A missing file
// is not an error. GOPICO_* environment variables override file values,
// e.g. GOPICO_BRIDGE_ADDRESS.
func (c *Config) Load() error {
	v := viper.New()
	v.SetConfigFile(c.filepath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	c.setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return err
		}
	}
	return v.Unmarshal(c)
}

// setDefaults registers every key so AutomaticEnv can resolve it
func (c *Config) setDefaults(v *viper.Viper) {
	v.SetDefault("model", c.Model)
	v.SetDefault("simulate", c.Simulate)
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("log_file", c.LogFile)
	v.SetDefault("db_path", c.DBPath)
	v.SetDefault("bridge.address", c.Bridge.Address)
	v.SetDefault("bridge.command_port", c.Bridge.CommandPort)
	v.SetDefault("bridge.data_port", c.Bridge.DataPort)
	v.SetDefault("bridge.dial_timeout_ms", c.Bridge.DialTimeoutMs)
	v.SetDefault("api.address", c.Api.Address)
	v.SetDefault("api.port", c.Api.Port)
	v.SetDefault("acquisition.poll_interval_ms", c.Acquisition.PollIntervalMs)
	v.SetDefault("acquisition.buffer_size", c.Acquisition.BufferSize)
	v.SetDefault("acquisition.store", c.Acquisition.Store)
}

func configHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir)
}

func DefaultConfigPath() string {
	return filepath.Join(configHome(), ConfigFile)
}

func DefaultDBPath() string {
	return filepath.Join(configHome(), DBFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		Model:    DefaultModel,
		LogLevel: DefaultLogLevel,
		DBPath:   DefaultDBPath(),
		Bridge: BridgeConfig{
			Address:       DefaultBridgeAddress,
			CommandPort:   DefaultCommandPort,
			DataPort:      DefaultDataPort,
			DialTimeoutMs: DefaultDialTimeoutMs,
		},
		Api: ApiConfig{
			Address: DefaultApiAddress,
			Port:    DefaultApiPort,
		},
		Acquisition: AcquisitionConfig{
			PollIntervalMs: DefaultPollIntervalMs,
			BufferSize:     DefaultCaptureBufferSize,
			Store:          DefaultStoreCaptures,
		},
		filepath: DefaultConfigPath(),
	}
}
