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

package logger

import (
	"fmt"
	"os"
	"path"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sys/unix"
)

var (
	CoreLogger  *zap.SugaredLogger
	GinLogger   *zap.SugaredLogger
	TrainLogger *zap.SugaredLogger

	coreLogLevelEnabler zapcore.LevelEnabler
	levels              []zap.AtomicLevel
)

func init() {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	log, err := config.Build(zap.AddCaller(), zap.AddStacktrace(zap.WarnLevel), zap.AddCallerSkip(1))
	if err == nil {
		sugar := log.Sugar()
		SetCoreLogger(sugar)
		SetGinLogger(sugar)
		SetTrainLogger(sugar)
	}
	levels = append(levels, config.Level)
}

// SetLevel updates all log level
func SetLevel(level zapcore.Level) {
	Infof("change log level to %s", level.String())
	for _, l := range levels {
		l.SetLevel(level)
	}
}

func SetCoreLogger(log *zap.SugaredLogger) {
	CoreLogger = log
	coreLogLevelEnabler = log.Desugar().Core()
}

func SetGinLogger(log *zap.SugaredLogger) {
	GinLogger = log
}

func SetTrainLogger(log *zap.SugaredLogger) {
	TrainLogger = log
}

// SugaredLoggerOnWith writes to CoreLogger with fixed key value pairs.
type SugaredLoggerOnWith struct {
	withArgs []any
}

func With(args ...any) *SugaredLoggerOnWith {
	return &SugaredLoggerOnWith{
		withArgs: args,
	}
}

// WithRequest tags entries with the id of an inference request.
func WithRequest(requestID string) *SugaredLoggerOnWith {
	return &SugaredLoggerOnWith{
		withArgs: []any{"requestID", requestID},
	}
}

// WithModel tags entries with the artifact path.
func WithModel(path string) *SugaredLoggerOnWith {
	return &SugaredLoggerOnWith{
		withArgs: []any{"model", path},
	}
}

// WithTarget tags entries with a regression target.
func WithTarget(target string) *SugaredLoggerOnWith {
	return &SugaredLoggerOnWith{
		withArgs: []any{"target", target},
	}
}

func (log *SugaredLoggerOnWith) With(args ...any) *SugaredLoggerOnWith {
	args = append(args, log.withArgs...)
	return &SugaredLoggerOnWith{
		withArgs: args,
	}
}

func (log *SugaredLoggerOnWith) Infof(template string, args ...any) {
	if !coreLogLevelEnabler.Enabled(zap.InfoLevel) {
		return
	}
	CoreLogger.Infow(fmt.Sprintf(template, args...), log.withArgs...)
}

func (log *SugaredLoggerOnWith) Info(args ...any) {
	if !coreLogLevelEnabler.Enabled(zap.InfoLevel) {
		return
	}
	CoreLogger.Infow(fmt.Sprint(args...), log.withArgs...)
}

func (log *SugaredLoggerOnWith) Warnf(template string, args ...any) {
	if !coreLogLevelEnabler.Enabled(zap.WarnLevel) {
		return
	}
	CoreLogger.Warnw(fmt.Sprintf(template, args...), log.withArgs...)
}

func (log *SugaredLoggerOnWith) Errorf(template string, args ...any) {
	if !coreLogLevelEnabler.Enabled(zap.ErrorLevel) {
		return
	}
	CoreLogger.Errorw(fmt.Sprintf(template, args...), log.withArgs...)
}

func (log *SugaredLoggerOnWith) Error(args ...any) {
	if !coreLogLevelEnabler.Enabled(zap.ErrorLevel) {
		return
	}
	CoreLogger.Errorw(fmt.Sprint(args...), log.withArgs...)
}

func (log *SugaredLoggerOnWith) Debugf(template string, args ...any) {
	if !coreLogLevelEnabler.Enabled(zap.DebugLevel) {
		return
	}
	CoreLogger.Debugw(fmt.Sprintf(template, args...), log.withArgs...)
}

func Infof(template string, args ...any) {
	CoreLogger.Infof(template, args...)
}

func Info(args ...any) {
	CoreLogger.Info(args...)
}

func Warnf(template string, args ...any) {
	CoreLogger.Warnf(template, args...)
}

func Errorf(template string, args ...any) {
	CoreLogger.Errorf(template, args...)
}

func Error(args ...any) {
	CoreLogger.Error(args...)
}

func Debugf(template string, args ...any) {
	CoreLogger.Debugf(template, args...)
}

func Fatalf(template string, args ...any) {
	CoreLogger.Fatalf(template, args...)
}

// Redirect stdout and stderr to file for debugging.
func RedirectStdoutAndStderr(console bool, logDir string) {
	// When console log is enabled, skip redirect.
	if console {
		return
	}

	// Redirect stdout to stdout.log file.
	stdoutPath := path.Join(logDir, "stdout.log")
	if stdout, err := os.OpenFile(stdoutPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND|os.O_SYNC, 0644); err != nil {
		Warnf("open %s error: %s", stdoutPath, err)
	} else {
		if err := unix.Dup2(int(stdout.Fd()), int(os.Stdout.Fd())); err != nil {
			Warnf("redirect stdout error: %s", err)
		} else {
			fmt.Fprintf(os.Stdout, "stdout redirect at %v\n", time.Now())
		}
	}

	// Redirect stderr to stderr.log file.
	stderrPath := path.Join(logDir, "stderr.log")
	if stderr, err := os.OpenFile(stderrPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND|os.O_SYNC, 0644); err != nil {
		Warnf("open %s error: %s", stderrPath, err)
	} else {
		if err := unix.Dup2(int(stderr.Fd()), int(os.Stderr.Fd())); err != nil {
			Warnf("redirect stderr error: %s", err)
		} else {
			fmt.Fprintf(os.Stderr, "stderr redirect at %v\n", time.Now())
		}
	}
}
