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
	"errors"
	"reflect"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbridge/ecoscore/pkg/predictor"
	"github.com/greenbridge/ecoscore/trainer/config"
	storagemocks "github.com/greenbridge/ecoscore/trainer/storage/mocks"
)

func TestTraining_New(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	s := New(config.New().Training, storagemocks.NewMockStorage(ctl))
	assert.Equal(t, "training", reflect.TypeOf(s).Elem().Name())
}

func TestTraining_Train(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(m *storagemocks.MockStorageMockRecorder)
		expect func(t *testing.T, a *predictor.Artifact, err error)
	}{
		{
			name: "train and evaluate",
			mock: func(m *storagemocks.MockStorageMockRecorder) {
				products := mockProducts(40)
				products[7].Weight = "n/a"
				m.ListProduct().Return(products, nil).Times(1)
			},
			expect: func(t *testing.T, a *predictor.Artifact, err error) {
				assert := assert.New(t)
				require.NoError(t, err)
				assert.Equal(predictor.ArtifactVersion, a.Version)
				assert.NoError(a.Pipeline.Validate())
				assert.Equal(&predictor.Summary{Rows: 40, DroppedRows: 1, TrainRows: 31, TestRows: 8}, a.Summary)
				for _, target := range predictor.Targets() {
					e := a.Evaluations[target]
					require.NotNil(t, e)
					assert.Equal(8, e.Samples)
				}
			},
		},
		{
			name: "list products failed",
			mock: func(m *storagemocks.MockStorageMockRecorder) {
				m.ListProduct().Return(nil, errors.New("foo")).Times(1)
			},
			expect: func(t *testing.T, a *predictor.Artifact, err error) {
				assert.ErrorContains(t, err, "foo")
			},
		},
		{
			name: "not enough rows",
			mock: func(m *storagemocks.MockStorageMockRecorder) {
				m.ListProduct().Return(mockProducts(1), nil).Times(1)
			},
			expect: func(t *testing.T, a *predictor.Artifact, err error) {
				assert.ErrorIs(t, err, ErrNotEnoughRows)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()
			storage := storagemocks.NewMockStorage(ctl)
			tc.mock(storage.EXPECT())

			a, err := New(config.New().Training, storage, WithProgressWriter(nil)).Train(context.Background())
			tc.expect(t, a, err)
		})
	}
}

func TestTraining_TrainDeterministic(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()
	storage := storagemocks.NewMockStorage(ctl)
	storage.EXPECT().ListProduct().Return(mockProducts(30), nil).Times(2)

	tr := New(config.New().Training, storage, WithProgressWriter(nil))
	first, err := tr.Train(context.Background())
	require.NoError(t, err)
	second, err := tr.Train(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Pipeline, second.Pipeline)
	assert.Equal(t, first.Evaluations, second.Evaluations)
}

func TestTraining_TrainCanceled(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()
	storage := storagemocks.NewMockStorage(ctl)
	storage.EXPECT().ListProduct().Return(mockProducts(10), nil).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(config.New().Training, storage, WithProgressWriter(nil)).Train(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
