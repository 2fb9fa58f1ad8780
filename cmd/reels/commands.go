// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/services"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/workflow"
	"github.com/jaycherian/gcp-go-daily-reels/internal/objectstore"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Render, publish and announce today's reel",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := ctx.config
			if err := config.Validate(); err != nil {
				return err
			}
			state, err := InitState(cmd.Context(), config)
			if err != nil {
				return err
			}
			defer state.Close()

			wf, err := state.NewWorkflow(reset || config.ResetProgress)
			if err != nil {
				return err
			}
			result, err := wf.Run(cmd.Context())
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Restart the series at day 1 before selecting")
	return cmd
}

func printResult(w io.Writer, result *workflow.Result) {
	if result.Selection != nil {
		fmt.Fprintf(w, "Day %d published, %d pairs remaining\n", result.Selection.Day, result.Selection.Remaining)
	}
	if result.Published != nil {
		fmt.Fprintf(w, "%s\n", result.Published.URL)
	}
	for name, warning := range result.Warnings {
		fmt.Fprintf(w, "warning: %s: %v\n", name, warning)
	}
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restart the series at day 1 with a new shuffle",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := InitProgressState(cmd.Context(), ctx.config)
			if err != nil {
				return err
			}
			defer state.Close()
			if err := state.seriesService.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Progress reset to day 1")
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show where the series stands",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := InitProgressState(cmd.Context(), ctx.config)
			if err != nil {
				return err
			}
			defer state.Close()
			status, err := state.seriesService.Status(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(status))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the status as JSON")
	return cmd
}

func renderStatus(status *services.Status) string {
	seed := "unassigned"
	if status.Seed != nil {
		seed = strconv.FormatInt(*status.Seed, 10)
	}
	nextDay := "-"
	if status.NextDay > 0 {
		nextDay = strconv.Itoa(status.NextDay)
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Field", "Value"})
	tw.AppendRows([]table.Row{
		{"Next day", nextDay},
		{"Used pairs", status.Index},
		{"Images", status.Images},
		{"Audio", status.Audio},
		{"Pool size", status.PoolSize},
		{"Remaining", status.Remaining},
		{"Shuffle seed", seed},
		{"Low stock", fmt.Sprintf("%t (threshold %d)", status.LowStock, status.Threshold)},
		{"Exhausted", status.Exhausted},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List published reels, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := InitState(cmd.Context(), ctx.config)
			if err != nil {
				return err
			}
			defer state.Close()
			reels, err := state.reelService.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Date", "Key", "Size"})
			for _, r := range reels {
				tw.AppendRow(table.Row{r.Date.Format(objectstore.DateLayout), r.Key, r.Size})
			}
			tw.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			return nil
		},
	}
}

func newURLCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "url DATE",
		Short: "Sign a fresh download link for the reel of DATE (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := InitState(cmd.Context(), ctx.config)
			if err != nil {
				return err
			}
			defer state.Close()
			url, err := state.reelService.GenerateSignedURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}

