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
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenbridge/ecoscore/cmd/dependency"
	logger "github.com/greenbridge/ecoscore/internal/ecolog"
	"github.com/greenbridge/ecoscore/pkg/workpath"
	"github.com/greenbridge/ecoscore/trainer"
	"github.com/greenbridge/ecoscore/trainer/config"
	"github.com/greenbridge/ecoscore/version"
)

var (
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "trainer",
	Short: "the trainer of the eco footprint model",
	Long: `Trainer loads the product dataset, freezes the most frequent materials into the feature schema,
fits the carbon footprint and eco score regressors, evaluates them on held out rows and writes
the model artifact served by the inference service.`,
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

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

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
		if err := logger.InitTrainer(cfg.Verbose, cfg.Console, d.LogDir(), rotateConfig); err != nil {
			return fmt.Errorf("init trainer logger: %w", err)
		}

		return runTrainer(ctx, cancel, d)
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
	// Initialize default trainer config.
	cfg = config.New()

	// Initialize command and config.
	dependency.InitCommandAndConfig(rootCmd, true, cfg)

	flags := rootCmd.Flags()
	flags.String("dataset", cfg.Dataset, "path of the product dataset csv")
	flags.String("output", cfg.Output, "path the model artifact is written to")
	flags.Int("top-k", cfg.Training.TopK, "number of most frequent materials used as features")
	flags.Float64("test-percent", cfg.Training.TestPercent, "share of rows held out for evaluation")
	flags.Int64("seed", cfg.Training.Seed, "seed of the split and the model initialization")
	flags.Float64("learning-rate", cfg.Training.LearningRate, "step size of gradient descent")
	flags.Int("epochs", cfg.Training.Epochs, "number of passes over the training rows")
	flags.String("log-dir", cfg.Server.LogDir, "directory of log files")
	flags.String("data-dir", cfg.Server.DataDir, "directory relative dataset and output paths resolve in")
	dependency.BindFlags(rootCmd, map[string]string{
		"dataset":               "dataset",
		"output":                "output",
		"training.topK":         "top-k",
		"training.testPercent":  "test-percent",
		"training.seed":         "seed",
		"training.learningRate": "learning-rate",
		"training.epochs":       "epochs",
		"server.logDir":         "log-dir",
		"server.dataDir":        "data-dir",
	})

	rootCmd.AddCommand(inspectCmd)
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

func runTrainer(ctx context.Context, cancel context.CancelFunc, d workpath.Workpath) error {
	logger.Infof("version:\n%s", version.Version())
	dependency.PrintConfig("trainer", cfg)

	ff := dependency.InitMonitor(cfg.PProfPort)
	defer ff()

	dependency.SetupQuitSignalHandler(cancel)

	t := trainer.New(cfg, d)
	artifact, err := t.Run(ctx)
	if err != nil {
		return err
	}

	return printReport(os.Stdout, t.Output(), artifact)
}
