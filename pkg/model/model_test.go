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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	m, err := Lookup("3406D")
	require.NoError(t, err)
	assert.Equal(t, 4, m.AnalogChannels)
	assert.Len(t, m.InterleaveConflicts, 2)
	assert.Greater(t, len(m.SampleRates.Interleaved), len(m.SampleRates.NonInterleaved))

	_, err = Lookup("9999X")
	assert.Equal(t, ErrUnknownModel{Name: "9999X"}, err)

	names := []string{}
	for _, m := range All() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"2204A", "3406D", "6824E"}, names)
}

func TestChannelNames(t *testing.T) {
	m, err := Lookup("3406D")
	require.NoError(t, err)
	assert.Equal(t, "A", m.ChannelName(0))
	assert.Equal(t, "D", m.ChannelName(3))

	i, ok := m.ChannelIndex("c")
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	_, ok = m.ChannelIndex("E")
	assert.False(t, ok)
	_, ok = m.ChannelIndex(ExternalTriggerName)
	assert.False(t, ok)
}

func TestContainsAndFloor(t *testing.T) {
	set := []uint64{10, 100, 1000}
	assert.True(t, Contains(set, 100))
	assert.False(t, Contains(set, 50))
	assert.False(t, Contains(set, 5000))

	var tests = []struct {
		v    uint64
		want uint64
	}{
		{5, 10},
		{10, 10},
		{99, 10},
		{100, 100},
		{999999, 1000},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, Floor(set, test.v), "Floor(%d)", test.v)
	}
}

func TestConflict(t *testing.T) {
	c := InterleaveConflict{A: 2, B: 3}
	assert.True(t, c.Has(3, 2))
	assert.False(t, c.Has(1, 2))
	assert.Equal(t, 2, c.Partner(3))
	assert.Equal(t, -1, c.Partner(0))
}

func TestParseCatalogRejectsBadEntries(t *testing.T) {
	_, err := ParseCatalog([]byte(`
- name: bad
  analog_channels: 2
  default_range: 1
  sample_rates: {non_interleaved: [10, 1], interleaved: [1]}
  sample_depths: {non_interleaved: [1], interleaved: [1]}
`))
	assert.IsType(t, ErrInvalidModel{}, err)

	_, err = ParseCatalog([]byte(`
- name: bad
  analog_channels: 2
  default_range: 1
  sample_rates: {non_interleaved: [1], interleaved: [1]}
  sample_depths: {non_interleaved: [1], interleaved: [1]}
  interleave_conflicts: [{a: 0, b: 2}]
`))
	assert.IsType(t, ErrInvalidModel{}, err)
}
