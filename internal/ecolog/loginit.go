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
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	CoreLogFileName  = "core.log"
	GinLogFileName   = "gin.log"
	TrainLogFileName = "train.log"
)

const (
	defaultRotateMaxSize    = 40
	defaultRotateMaxBackups = 20
	defaultRotateMaxAge     = 7
)

const (
	encodeTimeFormat = "2006-01-02 15:04:05.000"
)

// LogRotateConfig is the lumberjack rotation of file loggers.
type LogRotateConfig struct {
	// MaxSize is the maximum size in megabytes of the log file before it gets rotated.
	MaxSize int `yaml:"maxSize" mapstructure:"maxSize"`

	// MaxAge is the maximum number of days to retain old log files.
	MaxAge int `yaml:"maxAge" mapstructure:"maxAge"`

	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int `yaml:"maxBackups" mapstructure:"maxBackups"`
}

// DefaultLogRotateConfig returns the rotation used when none is configured.
func DefaultLogRotateConfig() LogRotateConfig {
	return LogRotateConfig{
		MaxSize:    defaultRotateMaxSize,
		MaxAge:     defaultRotateMaxAge,
		MaxBackups: defaultRotateMaxBackups,
	}
}

type logInitMeta struct {
	fileName             string
	setSugaredLoggerFunc func(*zap.SugaredLogger)
}

func InitInference(verbose, console bool, dir string, rotate LogRotateConfig) error {
	if console {
		return createConsoleLogger(verbose)
	}

	logDir := filepath.Join(dir, "inference")

	var meta = []logInitMeta{
		{
			fileName:             CoreLogFileName,
			setSugaredLoggerFunc: SetCoreLogger,
		},
		{
			fileName:             GinLogFileName,
			setSugaredLoggerFunc: SetGinLogger,
		},
	}

	return createFileLogger(verbose, meta, logDir, rotate)
}

func InitTrainer(verbose, console bool, dir string, rotate LogRotateConfig) error {
	if console {
		return createConsoleLogger(verbose)
	}

	logDir := filepath.Join(dir, "trainer")

	var meta = []logInitMeta{
		{
			fileName:             CoreLogFileName,
			setSugaredLoggerFunc: SetCoreLogger,
		},
		{
			fileName:             TrainLogFileName,
			setSugaredLoggerFunc: SetTrainLogger,
		},
	}

	return createFileLogger(verbose, meta, logDir, rotate)
}

func createConsoleLogger(verbose bool) error {
	levels = nil
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := config.Build(zap.AddCaller(), zap.AddStacktrace(zap.WarnLevel), zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	sugar := log.Sugar()
	SetCoreLogger(sugar)
	SetGinLogger(sugar)
	SetTrainLogger(sugar)
	levels = append(levels, config.Level)
	startLoggerSignalHandler()
	return nil
}

func createFileLogger(verbose bool, meta []logInitMeta, logDir string, rotate LogRotateConfig) error {
	levels = nil

	for _, m := range meta {
		log, level, err := CreateLogger(path.Join(logDir, m.fileName), false, verbose, rotate)
		if err != nil {
			return err
		}
		m.setSugaredLoggerFunc(log.Sugar())
		levels = append(levels, level)
	}
	startLoggerSignalHandler()
	return nil
}

// CreateLogger builds a JSON file logger rotated by lumberjack.
func CreateLogger(filePath string, compress bool, verbose bool, rotate LogRotateConfig) (*zap.Logger, zap.AtomicLevel, error) {
	if rotate.MaxSize <= 0 {
		rotate.MaxSize = defaultRotateMaxSize
	}
	if rotate.MaxAge <= 0 {
		rotate.MaxAge = defaultRotateMaxAge
	}
	if rotate.MaxBackups <= 0 {
		rotate.MaxBackups = defaultRotateMaxBackups
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return nil, zap.AtomicLevel{}, err
	}

	rotateConfig := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    rotate.MaxSize,
		MaxAge:     rotate.MaxAge,
		MaxBackups: rotate.MaxBackups,
		LocalTime:  true,
		Compress:   compress,
	}
	syncer := zapcore.AddSync(rotateConfig)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(encodeTimeFormat)

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		syncer,
		level,
	)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.WarnLevel), zap.AddCallerSkip(1)), level, nil
}

var signalHandlerStarted bool

// startLoggerSignalHandler toggles debug level on SIGUSR1.
func startLoggerSignalHandler() {
	if signalHandlerStarted {
		return
	}
	signalHandlerStarted = true

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGUSR1)

	go func() {
		debug := false
		for range signals {
			debug = !debug
			if debug {
				SetLevel(zapcore.DebugLevel)
			} else {
				SetLevel(zapcore.InfoLevel)
			}
		}
	}()
}
