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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/greenbridge/ecoscore/pkg/predictor"
	"github.com/greenbridge/ecoscore/trainer/config"
)

var (
	inspectModel  string
	inspectSample string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "print the expected columns and evaluation of a trained model",
	Long: `Inspect loads a model artifact, prints the columns it expects in order with
the evaluation stored at training time, and optionally runs a sample prediction.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd.Context(), os.Stdout, inspectModel, inspectSample)
	},
}

func init() {
	flags := inspectCmd.Flags()
	flags.StringVar(&inspectModel, "model", config.DefaultOutput, "path of the model artifact")
	flags.StringVar(&inspectSample, "sample", "", `json record to predict, like '{"Weight (kg)": 1.2, "Distance (km)": 300}'`)
}

func runInspect(ctx context.Context, w io.Writer, path, sample string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	artifact, err := predictor.Load(path)
	if err != nil {
		return errors.Wrapf(err, "load %s", path)
	}

	if err := printReport(w, path, artifact); err != nil {
		return err
	}

	if sample == "" {
		return nil
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(sample), &record); err != nil {
		return errors.Wrap(err, "decode sample")
	}

	rendered, err := artifact.Pipeline.Schema.Render(record)
	if err != nil {
		return err
	}

	prediction, err := artifact.Pipeline.Predict(ctx, rendered)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nsample prediction: carbon footprint %.2f kg CO2e, eco score %.2f\n", prediction.CarbonFootprint, prediction.EcoScore)
	return nil
}
