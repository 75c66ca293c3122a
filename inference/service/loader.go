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

package service

import (
	"sync"

	"github.com/looplab/fsm"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/greenbridge/ecoscore/inference/metrics"
	logger "github.com/greenbridge/ecoscore/internal/ecolog"
)

const (
	// Loader has been created but did not load.
	LoaderStatePending = "Pending"

	// Loader is reading the artifact.
	LoaderStateLoading = "Loading"

	// Loader has published a context.
	LoaderStateReady = "Ready"

	// Loader failed at the last load.
	LoaderStateFailed = "Failed"
)

const (
	// Loader starts loading.
	LoaderEventLoad = "Load"

	// Loader loaded successfully.
	LoaderEventLoadSucceeded = "LoadSucceeded"

	// Loader loaded failed.
	LoaderEventLoadFailed = "LoadFailed"
)

// LoadFunc builds a context from the artifact at path.
type LoadFunc func(path string) (*Context, error)

// Loader owns the published context and the lifecycle of loading it.
type Loader struct {
	// Path of the artifact.
	path string

	// load builds contexts.
	load LoadFunc

	// mu serializes loads, fsm events are not allowed while a transition runs.
	mu sync.Mutex

	// context is the published context, nil until the first successful load.
	context *atomic.Pointer[Context]

	// err is the error of the last load.
	err *atomic.Error

	// FSM is the state machine of the loader.
	FSM *fsm.FSM

	log *logger.SugaredLoggerOnWith
}

// NewLoader returns a pending loader.
func NewLoader(path string, load LoadFunc) *Loader {
	if load == nil {
		load = LoadContext
	}

	l := &Loader{
		path:    path,
		load:    load,
		context: atomic.NewPointer[Context](nil),
		err:     atomic.NewError(nil),
		log:     logger.WithModel(path),
	}

	l.FSM = fsm.NewFSM(
		LoaderStatePending,
		fsm.Events{
			{Name: LoaderEventLoad, Src: []string{LoaderStatePending, LoaderStateReady, LoaderStateFailed}, Dst: LoaderStateLoading},
			{Name: LoaderEventLoadSucceeded, Src: []string{LoaderStateLoading}, Dst: LoaderStateReady},
			{Name: LoaderEventLoadFailed, Src: []string{LoaderStateLoading}, Dst: LoaderStateFailed},
		},
		fsm.Callbacks{
			LoaderEventLoad: func(e *fsm.Event) {
				l.log.Infof("loader state is %s", e.FSM.Current())
			},
			LoaderEventLoadSucceeded: func(e *fsm.Event) {
				l.log.Infof("loader state is %s", e.FSM.Current())
			},
			LoaderEventLoadFailed: func(e *fsm.Event) {
				l.log.Warnf("loader state is %s", e.FSM.Current())
			},
		},
	)

	return l
}

// Load builds a new context and publishes it. When loading fails the previously
// published context, if any, keeps being served.
func (l *Loader) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.FSM.Event(LoaderEventLoad); err != nil {
		return errors.Wrap(err, "start loading")
	}

	metrics.ModelLoadCount.Inc()
	c, err := l.load(l.path)
	if err == nil && c == nil {
		err = errors.New("loader built no context")
	}

	if err != nil {
		metrics.ModelLoadFailureCount.Inc()
		l.err.Store(err)
		l.log.Errorf("load model failed: %s", err.Error())
		if ferr := l.FSM.Event(LoaderEventLoadFailed); ferr != nil {
			l.log.Errorf("loader event %s failed: %s", LoaderEventLoadFailed, ferr.Error())
		}

		return errors.Wrap(ErrModelUnavailable, err.Error())
	}

	l.context.Store(c)
	l.err.Store(nil)
	if err := l.FSM.Event(LoaderEventLoadSucceeded); err != nil {
		l.log.Errorf("loader event %s failed: %s", LoaderEventLoadSucceeded, err.Error())
	}

	l.log.Infof("model loaded with %d columns", len(c.Schema.Columns()))
	return nil
}

// Context returns the published context, it is read once per request.
func (l *Loader) Context() (*Context, bool) {
	c := l.context.Load()
	return c, c != nil
}

// State returns the current state of the loader.
func (l *Loader) State() string {
	return l.FSM.Current()
}

// Err returns the error of the last load, nil after a successful load.
func (l *Loader) Err() error {
	return l.err.Load()
}

// Path returns the artifact path.
func (l *Loader) Path() string {
	return l.path
}
