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

package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyValue(t *testing.T) {
	kv, err := ParseKeyValue(" type=EDGE; SOURCE = A ;LEVEL=0.25;;\n")
	require.NoError(t, err)
	assert.Equal(t, KeyValueResponse{"TYPE": "EDGE", "SOURCE": "A", "LEVEL": "0.25"}, kv)

	v, ok := kv.Get("level")
	assert.True(t, ok)
	assert.Equal(t, "0.25", v)

	again, err := ParseKeyValue(kv.String())
	require.NoError(t, err)
	assert.Equal(t, kv, again)
	assert.Equal(t, "LEVEL=0.25;SOURCE=A;TYPE=EDGE", kv.String())
}

func TestParseKeyValueErrors(t *testing.T) {
	_, err := ParseKeyValue("")
	assert.IsType(t, ErrBadResponse{}, err)
	_, err = ParseKeyValue("TYPE=EDGE;garbage")
	assert.IsType(t, ErrBadResponse{}, err)
	_, err = ParseKeyValue("=x")
	assert.IsType(t, ErrBadResponse{}, err)
}
