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

package predictor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/go-units"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	logger "github.com/greenbridge/ecoscore/internal/ecolog"
)

const (
	// ArtifactVersion is the artifact layout written by Save.
	ArtifactVersion = 1

	lockSuffix = ".lock"
)

// ErrInvalidArtifact is returned when an artifact cannot be used for serving.
var ErrInvalidArtifact = errors.New("invalid model artifact")

// Summary describes the dataset an artifact was trained on.
type Summary struct {
	Rows        int `json:"rows"`
	DroppedRows int `json:"dropped_rows"`
	TrainRows   int `json:"train_rows"`
	TestRows    int `json:"test_rows"`
}

// Artifact is the persisted pipeline with its evaluation.
type Artifact struct {
	Version     int                    `json:"version"`
	CreatedAt   time.Time              `json:"created_at"`
	Pipeline    *Pipeline              `json:"pipeline"`
	Evaluations map[string]*Evaluation `json:"evaluations,omitempty"`
	Summary     *Summary               `json:"summary,omitempty"`
}

// Save writes the artifact under an exclusive lock. The file is replaced
// atomically, readers never see a partial artifact.
func Save(path string, artifact *Artifact) error {
	if artifact == nil || artifact.Pipeline == nil {
		return errors.Wrap(ErrInvalidArtifact, "nothing to save")
	}

	if err := artifact.Pipeline.Validate(); err != nil {
		return errors.Wrap(ErrInvalidArtifact, err.Error())
	}

	if artifact.Version == 0 {
		artifact.Version = ArtifactVersion
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal artifact")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	lock := flock.New(path + lockSuffix)
	if err := lock.Lock(); err != nil {
		return errors.Wrap(err, "lock artifact")
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "replace artifact")
	}

	logger.WithModel(path).Infof("artifact saved, size %s", units.HumanSize(float64(len(data))))
	return nil
}

// Load reads and validates an artifact under a shared lock.
func Load(path string) (*Artifact, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	lock := flock.New(path + lockSuffix)
	if err := lock.RLock(); err != nil {
		return nil, errors.Wrap(err, "lock artifact")
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	artifact := &Artifact{}
	if err := json.Unmarshal(data, artifact); err != nil {
		return nil, errors.Wrapf(ErrInvalidArtifact, "decode: %v", err)
	}

	if artifact.Version != ArtifactVersion {
		return nil, errors.Wrapf(ErrInvalidArtifact, "unsupported version %d", artifact.Version)
	}

	if artifact.Pipeline == nil {
		return nil, errors.Wrap(ErrInvalidArtifact, "no pipeline")
	}

	if err := artifact.Pipeline.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidArtifact, err.Error())
	}

	logger.WithModel(path).Infof("artifact loaded, size %s, %d materials", units.HumanSize(float64(len(data))), len(artifact.Pipeline.Schema.Materials))
	return artifact, nil
}
