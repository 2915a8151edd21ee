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

package log

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(buf, "warning")
	defer Init(&bytes.Buffer{}, "info")

	Debug("debug %d", 1)
	Info("info %d", 2)
	Warning("warn %d", 3)
	Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, WarningPrefix+"warn 3")
	assert.Contains(t, out, ErrorPrefix+"error 4")
	assert.Contains(t, out, LogPrefix)
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	err := SetLevel("verbose")
	assert.Error(t, err)
	_, err = ParseLevel("debug")
	assert.NoError(t, err)
}

func TestInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go-pico.log")
	closer, err := InitFile(path, "info")
	require.NoError(t, err)
	Info("written to %s", "file")
	require.NoError(t, closer.Close())
	Init(&bytes.Buffer{}, "info")
	assert.FileExists(t, path)
}

func TestWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(buf, "info")
	defer Init(&bytes.Buffer{}, "info")

	w := Writer(WarningLevel)
	n, err := w.Write([]byte("GET /api/scope 200\n"))
	require.NoError(t, err)
	assert.Equal(t, 19, n)
	assert.Contains(t, buf.String(), WarningPrefix+"GET /api/scope 200")

	buf.Reset()
	Writer(DebugLevel).Write([]byte("hidden"))
	assert.Empty(t, buf.String())
}
