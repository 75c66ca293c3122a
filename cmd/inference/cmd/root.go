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

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/greenbridge/ecoscore/cmd/dependency"
	"github.com/greenbridge/ecoscore/inference"
	"github.com/greenbridge/ecoscore/inference/config"
	logger "github.com/greenbridge/ecoscore/internal/ecolog"
	"github.com/greenbridge/ecoscore/pkg/workpath"
	"github.com/greenbridge/ecoscore/version"
)

var (
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "inference",
	Short: "the inference service of the eco footprint model",
	Long: `Inference is a long-running process serving carbon footprint and eco score predictions over http.
It loads the model artifact written by the trainer and answers with a heuristic estimation
when the model can not compute a record.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Convert config.
		if err := cfg.Convert(); err != nil {
			return err
		}

		// Validate config.
		if err := cfg.Validate(); err != nil {
			return err
		}

		// Initialize workpath.
		d, err := initWorkpath(&cfg.Server)
		if err != nil {
			return err
		}
		rotateConfig := logger.LogRotateConfig{
			MaxSize:    cfg.Server.LogMaxSize,
			MaxAge:     cfg.Server.LogMaxAge,
			MaxBackups: cfg.Server.LogMaxBackups}

		// Initialize logger.
		if err := logger.InitInference(cfg.Verbose, cfg.Console, d.LogDir(), rotateConfig); err != nil {
			return fmt.Errorf("init inference logger: %w", err)
		}
		logger.RedirectStdoutAndStderr(cfg.Console, path.Join(d.LogDir(), "inference"))

		return runInference()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func init() {
	// Initialize default inference config.
	cfg = config.New()

	// Initialize command and config.
	dependency.InitCommandAndConfig(rootCmd, true, cfg)

	flags := rootCmd.Flags()
	flags.String("host", cfg.Server.Host, "host the server listens on")
	flags.Int("port", cfg.Server.Port, "port the server listens on")
	flags.String("model", cfg.Model.Path, "path of the model artifact")
	flags.Bool("allow-reload", cfg.Model.AllowReload, "enable the model reload endpoint")
	flags.StringSlice("cors-allow-origins", cfg.CORS.AllowOrigins, "origins allowed to call the server")
	flags.Bool("metrics", cfg.Metrics.Enable, "enable the metrics server")
	flags.String("metrics-addr", cfg.Metrics.Addr, "address of the metrics server")
	flags.String("log-dir", cfg.Server.LogDir, "directory of log files")
	flags.String("data-dir", cfg.Server.DataDir, "directory a relative model path resolves in")
	dependency.BindFlags(rootCmd, map[string]string{
		"server.host":       "host",
		"server.port":       "port",
		"model.path":        "model",
		"model.allowReload": "allow-reload",
		"cors.allowOrigins": "cors-allow-origins",
		"metrics.enable":    "metrics",
		"metrics.addr":      "metrics-addr",
		"server.logDir":     "log-dir",
		"server.dataDir":    "data-dir",
	})
}

func initWorkpath(cfg *config.ServerConfig) (workpath.Workpath, error) {
	var options []workpath.Option
	if cfg.LogDir != "" {
		options = append(options, workpath.WithLogDir(cfg.LogDir))
	}

	if cfg.DataDir != "" {
		options = append(options, workpath.WithDataDir(cfg.DataDir))
	}

	return workpath.New(options...)
}

func runInference() error {
	logger.Infof("version:\n%s", version.Version())
	dependency.PrintConfig("inference", cfg)

	ff := dependency.InitMonitor(cfg.PProfPort)
	defer ff()

	svr, err := inference.New(cfg)
	if err != nil {
		return err
	}

	dependency.SetupQuitSignalHandler(func() { svr.Stop() })
	setupReloadSignalHandler(svr)
	return svr.Serve()
}

// setupReloadSignalHandler reloads the model on SIGHUP.
func setupReloadSignalHandler(svr *inference.Server) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP)

	go func() {
		for range signals {
			logger.Info("receive SIGHUP signal, reload model")
			if err := svr.Reload(); err != nil {
				logger.Errorf("reload model failed: %s", err.Error())
			}
		}
	}()
}
