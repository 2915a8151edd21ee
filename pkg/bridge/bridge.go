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

// Package bridge holds the types shared by the bridge daemon transports.
package bridge

import (
	"sort"
	"strings"
)

const (
	// PairSeparator separates KEY=VALUE pairs in a response line
	PairSeparator = ";"
	// LineTerminator ends every command and response
	LineTerminator = "\n"
)

// RawFrame is one undecoded waveform frame from the data channel
type RawFrame []byte

// KeyValueResponse is a parsed query response. Keys are upper case.
type KeyValueResponse map[string]string

// ParseKeyValue parses a response line such as "TYPE=EDGE;SOURCE=A;LEVEL=0.5"
func ParseKeyValue(line string) (KeyValueResponse, error) {
	kv := KeyValueResponse{}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, ErrBadResponse{What: "empty response"}
	}
	for _, pair := range strings.Split(line, PairSeparator) {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key = strings.ToUpper(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, ErrBadResponse{What: "pair without key: " + pair}
		}
		kv[key] = strings.TrimSpace(value)
	}
	return kv, nil
}

// Get ...
func (kv KeyValueResponse) Get(key string) (string, bool) {
	v, ok := kv[strings.ToUpper(key)]
	return v, ok
}

// String encodes the pairs in key order, the inverse of ParseKeyValue
func (kv KeyValueResponse) String() string {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+kv[k])
	}
	return strings.Join(pairs, PairSeparator)
}
