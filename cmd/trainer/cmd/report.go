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
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/greenbridge/ecoscore/pkg/feature"
	"github.com/greenbridge/ecoscore/pkg/predictor"
)

var (
	goodColor = color.New(color.FgGreen, color.Bold)
	fairColor = color.New(color.FgYellow)
	poorColor = color.New(color.FgRed, color.Bold)
)

// printReport prints the summary, columns and evaluation of an artifact.
func printReport(w io.Writer, path string, artifact *predictor.Artifact) error {
	fmt.Fprintf(w, "model: %s\n", path)
	fmt.Fprintf(w, "created: %s\n", artifact.CreatedAt.Format("2006-01-02 15:04:05"))
	if s := artifact.Summary; s != nil {
		fmt.Fprintf(w, "rows: %d, dropped: %d, train: %d, test: %d\n", s.Rows, s.DroppedRows, s.TrainRows, s.TestRows)
	}
	fmt.Fprintln(w)

	printColumns(w, artifact.Pipeline.Schema)
	fmt.Fprintln(w)

	printEvaluations(w, artifact.Evaluations)
	return nil
}

// printColumns prints the expected input columns in pipeline order.
func printColumns(w io.Writer, schema *feature.Schema) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Column", "Kind"})
	table.SetAutoWrapText(false)

	var data [][]string
	for i, column := range schema.NumericColumns {
		data = append(data, []string{strconv.Itoa(i + 1), column, "numeric"})
	}
	for i, column := range schema.CategoricalColumns {
		data = append(data, []string{strconv.Itoa(len(schema.NumericColumns) + i + 1), column, "categorical"})
	}

	table.AppendBulk(data)
	table.Render()
}

// printEvaluations prints held out metrics per target.
func printEvaluations(w io.Writer, evaluations map[string]*predictor.Evaluation) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Target", "MAE", "MSE", "RMSE", "R²", "Samples"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	var data [][]string
	for _, target := range predictor.Targets() {
		e, ok := evaluations[target]
		if !ok {
			data = append(data, []string{target, "-", "-", "-", "-", "-"})
			continue
		}

		data = append(data, []string{
			target,
			fmt.Sprintf("%.3f", e.MAE),
			fmt.Sprintf("%.3f", e.MSE),
			fmt.Sprintf("%.3f", e.RMSE),
			r2Color(e.R2).Sprintf("%.3f", e.R2),
			strconv.Itoa(e.Samples),
		})
	}

	table.AppendBulk(data)
	table.Render()
}

func r2Color(r2 float64) *color.Color {
	switch {
	case r2 >= 0.8:
		return goodColor
	case r2 >= 0.5:
		return fairColor
	default:
		return poorColor
	}
}
