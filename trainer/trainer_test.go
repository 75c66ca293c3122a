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

package trainer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbridge/ecoscore/pkg/predictor"
	"github.com/greenbridge/ecoscore/pkg/workpath"
	"github.com/greenbridge/ecoscore/trainer/config"
	"github.com/greenbridge/ecoscore/trainer/training"
	trainingmocks "github.com/greenbridge/ecoscore/trainer/training/mocks"
)

func newWorkpath(t *testing.T) workpath.Workpath {
	t.Helper()

	dir := t.TempDir()
	d, err := workpath.New(workpath.WithWorkHome(dir), workpath.WithLogDir(filepath.Join(dir, "log")), workpath.WithDataDir(filepath.Join(dir, "data")))
	require.NoError(t, err)
	return d
}

func TestTrainer_New(t *testing.T) {
	d := newWorkpath(t)

	cfg := config.New()
	cfg.Dataset = "products.csv"
	assert.Equal(t, config.DefaultOutput, New(cfg, d).Output())

	cfg.Server.DataDir = d.DataDir()
	assert.Equal(t, filepath.Join(d.DataDir(), config.DefaultOutput), New(cfg, d).Output())

	cfg.Output = "/tmp/model.json"
	assert.Equal(t, "/tmp/model.json", New(cfg, d).Output())
}

func TestTrainer_Run(t *testing.T) {
	d := newWorkpath(t)

	cfg := config.New()
	cfg.Dataset = "./storage/testdata/products.csv"
	cfg.Output = filepath.Join(d.DataDir(), "eco_model.json")
	cfg.Training.TestPercent = 0.25

	artifact, err := New(cfg, d, training.WithProgressWriter(nil)).Run(context.Background())
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(&predictor.Summary{Rows: 5, DroppedRows: 1, TrainRows: 3, TestRows: 1}, artifact.Summary)

	loaded, err := predictor.Load(cfg.Output)
	require.NoError(t, err)
	assert.Equal(artifact.Pipeline.Schema, loaded.Pipeline.Schema)
	assert.Equal([]string{"Cotton", "Polyester", "Stainless Steel", "Plastic", "Aluminum", "Rubber"}, loaded.Pipeline.Schema.Materials)
}

func TestTrainer_RunFailed(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	d := newWorkpath(t)
	cfg := config.New()
	cfg.Output = filepath.Join(d.DataDir(), "eco_model.json")

	mockTraining := trainingmocks.NewMockTraining(ctl)
	mockTraining.EXPECT().Train(gomock.Any()).Return(nil, errors.New("foo")).Times(1)

	tr := New(cfg, d)
	tr.training = mockTraining
	_, err := tr.Run(context.Background())
	assert.ErrorContains(t, err, "foo")
	assert.NoFileExists(t, cfg.Output)
}
