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

package training

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	logger "github.com/greenbridge/ecoscore/internal/ecolog"
	"github.com/greenbridge/ecoscore/pkg/feature"
	"github.com/greenbridge/ecoscore/pkg/predictor"
	"github.com/greenbridge/ecoscore/pkg/predictor/models"
	"github.com/greenbridge/ecoscore/trainer/config"
	"github.com/greenbridge/ecoscore/trainer/storage"
)

//go:generate mockgen -destination mocks/training_mock.go -source training.go -package mocks

// Training defines the interface to train the eco footprint pipeline.
type Training interface {
	// Train fits the pipeline on the dataset and evaluates it on the held out rows.
	Train(context.Context) (*predictor.Artifact, error)
}

// training implements Training interface.
type training struct {
	// Training config.
	config config.TrainingConfig

	// Storage interface.
	storage storage.Storage

	// progress receives the progress bar.
	progress io.Writer
}

// Option is a functional option for configuring the training.
type Option func(t *training)

// WithProgressWriter sets where the progress bar is drawn, nil disables it.
func WithProgressWriter(w io.Writer) Option {
	return func(t *training) {
		t.progress = w
	}
}

// New returns a new Training.
func New(cfg config.TrainingConfig, storage storage.Storage, options ...Option) Training {
	t := &training{
		config:   cfg,
		storage:  storage,
		progress: os.Stderr,
	}

	for _, opt := range options {
		opt(t)
	}

	return t
}

// Train fits the pipeline on the dataset and evaluates it on the held out rows.
func (t *training) Train(ctx context.Context) (*predictor.Artifact, error) {
	// 1. Get training data from storage.
	products, err := t.storage.ListProduct()
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	// 2. Preprocess training data.
	dataset, err := Prepare(products, t.config.TopK)
	if err != nil {
		return nil, err
	}
	logger.TrainLogger.Infof("dataset has %d rows, %d dropped, materials %v", len(products), dataset.Dropped, dataset.Schema.Materials)

	trainIdx, testIdx, err := Split(len(dataset.Records), t.config.TestPercent, t.config.Seed)
	if err != nil {
		return nil, err
	}

	trainRecords := pick(dataset.Records, trainIdx)
	preprocessor, err := predictor.FitPreprocessor(trainRecords)
	if err != nil {
		return nil, err
	}

	trainRows, err := transform(preprocessor, trainRecords)
	if err != nil {
		return nil, err
	}

	testRows, err := transform(preprocessor, pick(dataset.Records, testIdx))
	if err != nil {
		return nil, err
	}

	// 3. Fit one regressor per target.
	regressors, err := t.fit(ctx, dataset, preprocessor.FeatureNames(dataset.Schema), trainRows, trainIdx)
	if err != nil {
		return nil, err
	}

	pipeline, err := predictor.NewPipeline(dataset.Schema, preprocessor, regressors)
	if err != nil {
		return nil, err
	}

	// 4. Evaluate on the held out rows.
	outputs, err := pipeline.PredictMatrix(testRows)
	if err != nil {
		return nil, err
	}

	evaluations := make(map[string]*predictor.Evaluation, len(predictor.Targets()))
	for _, target := range predictor.Targets() {
		e, err := predictor.Evaluate(outputs[target], pick(dataset.Labels[target], testIdx))
		if err != nil {
			return nil, errors.Wrapf(err, "evaluate %s", target)
		}

		logger.WithTarget(target).Infof("MAE %.3f MSE %.3f RMSE %.3f R2 %.3f", e.MAE, e.MSE, e.RMSE, e.R2)
		evaluations[target] = e
	}

	return &predictor.Artifact{
		Version:     predictor.ArtifactVersion,
		CreatedAt:   time.Now(),
		Pipeline:    pipeline,
		Evaluations: evaluations,
		Summary: &predictor.Summary{
			Rows:        len(products),
			DroppedRows: dataset.Dropped,
			TrainRows:   len(trainIdx),
			TestRows:    len(testIdx),
		},
	}, nil
}

// fit trains the regressors of every target concurrently.
func (t *training) fit(ctx context.Context, dataset *Dataset, names []string, rows [][]float64, idx []int) ([]*predictor.Regressor, error) {
	targets := predictor.Targets()
	bar := t.progressBar(len(targets) * t.config.Epochs)
	defer bar.Finish()

	regressors := make([]*predictor.Regressor, len(targets))
	eg, ctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		i, target := i, target
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			inst, err := models.NewInstances(names, target, rows, pick(dataset.Labels[target], idx))
			if err != nil {
				return err
			}

			model := models.NewLinearRegression()
			if err := model.Fit(inst, models.FitOptions{
				LearningRate: t.config.LearningRate,
				Epochs:       t.config.Epochs,
				Seed:         t.config.Seed,
				OnEpoch: func(int) {
					bar.Add(1)
				},
			}); err != nil {
				return errors.Wrapf(err, "fit %s", target)
			}

			logger.WithTarget(target).Debugf("fitted on %d rows", len(rows))
			regressors[i] = &predictor.Regressor{Target: target, Model: model}
			return nil
		})
	}

	// Wait for all train tasks to complete.
	if err := eg.Wait(); err != nil {
		logger.Errorf("training failed: %v", err)
		return nil, err
	}

	return regressors, nil
}

func (t *training) progressBar(max int) *progressbar.ProgressBar {
	if t.progress == nil {
		return progressbar.DefaultSilent(int64(max))
	}

	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(t.progress),
		progressbar.OptionSetDescription("training"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func transform(p *predictor.Preprocessor, records []*feature.Record) ([][]float64, error) {
	rows := make([][]float64, len(records))
	for i, r := range records {
		x, err := p.Transform(r)
		if err != nil {
			return nil, err
		}
		rows[i] = x
	}
	return rows, nil
}

func pick[T any](values []T, idx []int) []T {
	picked := make([]T, len(idx))
	for i, j := range idx {
		picked[i] = values[j]
	}
	return picked
}
