/*
 *     Copyright 2024 The Dragonfly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package workpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		options func(dir string) []Option
		expect  func(t *testing.T, dir string, w Workpath, err error)
	}{
		{
			name: "new workpath failed",
			options: func(dir string) []Option {
				return []Option{WithWorkHome(dir), WithLogDir(""), WithDataDir("")}
			},
			expect: func(t *testing.T, dir string, w Workpath, err error) {
				assert.Error(t, err)
			},
		},
		{
			name: "new workpath by workHome and workHomeMode",
			options: func(dir string) []Option {
				return []Option{
					WithWorkHome(filepath.Join(dir, "home")),
					WithWorkHomeMode(os.FileMode(0755)),
					WithLogDir(filepath.Join(dir, "log")),
					WithDataDir(filepath.Join(dir, "data")),
				}
			},
			expect: func(t *testing.T, dir string, w Workpath, err error) {
				assert := assert.New(t)
				require.NoError(t, err)
				assert.Equal(filepath.Join(dir, "home"), w.WorkHome())
				assert.Equal(os.FileMode(0755), w.WorkHomeMode())
				assert.Equal(filepath.Join(dir, "log"), w.LogDir())
				assert.Equal(filepath.Join(dir, "data"), w.DataDir())
				assert.Equal(DefaultDataDirMode, w.DataDirMode())
				assert.DirExists(w.WorkHome())
				assert.DirExists(w.LogDir())
				assert.DirExists(w.DataDir())
			},
		},
		{
			name: "new workpath by dataDirMode",
			options: func(dir string) []Option {
				return []Option{
					WithWorkHome(dir),
					WithLogDir(dir),
					WithDataDir(filepath.Join(dir, "data")),
					WithDataDirMode(os.FileMode(0750)),
				}
			},
			expect: func(t *testing.T, dir string, w Workpath, err error) {
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(0750), w.DataDirMode())
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			w, err := New(tc.options(dir)...)
			tc.expect(t, dir, w, err)
		})
	}
}

func TestWorkpath_ModelPath(t *testing.T) {
	dir := t.TempDir()
	w, err := New(WithWorkHome(dir), WithLogDir(dir), WithDataDir(filepath.Join(dir, "data")))
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(filepath.Join(dir, "data", "eco_model.json"), w.ModelPath("eco_model.json"))
	assert.Equal("/tmp/eco_model.json", w.ModelPath("/tmp/eco_model.json"))
}
