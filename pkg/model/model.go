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

// Package model describes the fixed capabilities of each supported
// instrument: channel count, timebase candidate sets and the channel pairs
// that share an ADC when interleaving.
package model

import (
	_ "embed"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	ExternalTriggerName = "EXT"
)

//go:embed catalog.yaml
var catalogYAML []byte

var catalog map[string]*Model

func init() {
	models, err := ParseCatalog(catalogYAML)
	if err != nil {
		panic(err)
	}
	catalog = make(map[string]*Model)
	for _, m := range models {
		catalog[m.Name] = m
	}
}

// Candidates is a pair of candidate sets, one per interleave mode
type Candidates struct {
	NonInterleaved []uint64 `yaml:"non_interleaved" json:"non_interleaved"`
	Interleaved    []uint64 `yaml:"interleaved" json:"interleaved"`
}

// For returns the candidate set for the given interleave mode
func (c Candidates) For(interleaved bool) []uint64 {
	if interleaved {
		return c.Interleaved
	}
	return c.NonInterleaved
}

// InterleaveConflict is an unordered pair of channel indices
type InterleaveConflict struct {
	A int `yaml:"a" json:"a"`
	B int `yaml:"b" json:"b"`
}

// Has reports whether the pair names channels i and j in any order
func (c InterleaveConflict) Has(i, j int) bool {
	return (c.A == i && c.B == j) || (c.A == j && c.B == i)
}

// Partner returns the other channel of the pair, or -1 if i is not in it
func (c InterleaveConflict) Partner(i int) int {
	switch i {
	case c.A:
		return c.B
	case c.B:
		return c.A
	}
	return -1
}

type Model struct {
	Name                string               `yaml:"name" json:"name"`
	Series              string               `yaml:"series" json:"series"`
	AnalogChannels      int                  `yaml:"analog_channels" json:"analog_channels"`
	BandwidthMHz        uint                 `yaml:"bandwidth_mhz" json:"bandwidth_mhz"`
	BandwidthLimits     []uint               `yaml:"bandwidth_limits" json:"bandwidth_limits"`
	DefaultRange        float64              `yaml:"default_range" json:"default_range"`
	SampleRates         Candidates           `yaml:"sample_rates" json:"sample_rates"`
	SampleDepths        Candidates           `yaml:"sample_depths" json:"sample_depths"`
	InterleaveConflicts []InterleaveConflict `yaml:"interleave_conflicts" json:"interleave_conflicts"`
}

// ChannelName returns the bridge-side name of an analog channel: A, B, C...
func (m *Model) ChannelName(i int) string {
	return string(rune('A' + i))
}

// ChannelIndex is the inverse of ChannelName. ok is false for unknown names.
func (m *Model) ChannelIndex(name string) (int, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if len(name) != 1 {
		return -1, false
	}
	i := int(name[0]) - 'A'
	if i < 0 || i >= m.AnalogChannels {
		return -1, false
	}
	return i, true
}

func (m *Model) validate() error {
	if m.Name == "" {
		return ErrInvalidModel{Name: "?", What: "empty name"}
	}
	if m.AnalogChannels <= 0 || m.AnalogChannels > 26 {
		return ErrInvalidModel{Name: m.Name, What: "analog_channels out of range"}
	}
	for _, set := range [][]uint64{
		m.SampleRates.NonInterleaved, m.SampleRates.Interleaved,
		m.SampleDepths.NonInterleaved, m.SampleDepths.Interleaved,
	} {
		if len(set) == 0 {
			return ErrInvalidModel{Name: m.Name, What: "empty candidate set"}
		}
		if !sort.SliceIsSorted(set, func(i, j int) bool { return set[i] < set[j] }) {
			return ErrInvalidModel{Name: m.Name, What: "candidate set not ascending"}
		}
	}
	for _, c := range m.InterleaveConflicts {
		if c.A < 0 || c.B < 0 || c.A >= m.AnalogChannels || c.B >= m.AnalogChannels || c.A == c.B {
			return ErrInvalidModel{Name: m.Name, What: "bad interleave conflict pair"}
		}
	}
	if m.DefaultRange <= 0 {
		return ErrInvalidModel{Name: m.Name, What: "default_range must be positive"}
	}
	return nil
}

// ParseCatalog decodes and validates a YAML list of model descriptions
func ParseCatalog(data []byte) ([]*Model, error) {
	var models []*Model
	if err := yaml.Unmarshal(data, &models); err != nil {
		return nil, err
	}
	for _, m := range models {
		if err := m.validate(); err != nil {
			return nil, err
		}
	}
	return models, nil
}

// Lookup ...
func Lookup(name string) (*Model, error) {
	m, ok := catalog[name]
	if !ok {
		return nil, ErrUnknownModel{Name: name}
	}
	return m, nil
}

// All returns every catalog entry ordered by name
func All() []*Model {
	result := make([]*Model, 0, len(catalog))
	for _, m := range catalog {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Contains reports whether v is a member of the candidate set
func Contains(set []uint64, v uint64) bool {
	i := sort.Search(len(set), func(i int) bool { return set[i] >= v })
	return i < len(set) && set[i] == v
}

// Floor returns the largest candidate not above v, or the smallest
// candidate when every member is above v.
func Floor(set []uint64, v uint64) uint64 {
	i := sort.Search(len(set), func(i int) bool { return set[i] > v })
	if i == 0 {
		return set[0]
	}
	return set[i-1]
}
