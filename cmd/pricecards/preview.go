/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"pricecards/internal/cardlayout"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type categoryPreview struct {
	Category string `json:"category"`
	cardlayout.PreviewResult
}

func newPreviewCmd(a *app) *cobra.Command {
	var src sourceFlags
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Compare the quality modes for every category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			source, closeFn, err := a.open(ctx, src)
			if err != nil {
				return err
			}
			defer closeFn()

			m, err := a.fonts()
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()
			eng, err := a.engine(m)
			if err != nil {
				return err
			}
			cfg, err := a.cfg.PaginationConfig()
			if err != nil {
				return err
			}

			cats, err := source.Categories(ctx)
			if err != nil {
				return err
			}
			out := make([]categoryPreview, 0, len(cats))
			for _, c := range cats {
				res, err := eng.Preview(ctx, c.Items, cfg)
				if err != nil {
					return fmt.Errorf("preview %q: %w", c.Title, err)
				}
				out = append(out, categoryPreview{Category: c.Title, PreviewResult: res})
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			return printPreview(cmd.OutOrStdout(), out)
		},
	}
	src.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the comparison as JSON")
	return cmd
}

func printPreview(w io.Writer, rows []categoryPreview) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CATEGORY\tITEMS\tMODE\tPAGES\tITEMS/PAGE\tUTILIZATION\tNAME SIZE\t")
	for _, r := range rows {
		for _, mode := range cardlayout.Modes() {
			rep := r.Report(mode)
			mark := ""
			if mode == r.Recommendation {
				mark = " *"
			}
			if rep.Overflow {
				mark += " (overflow)"
			}
			_, _ = fmt.Fprintf(tw, "%s\t%d\t%s%s\t%d\t%.1f\t%.0f%%\t%.0f\t\n", r.Category, r.ItemCount, mode, mark,
				rep.Pages, rep.ItemsPerPage, rep.Utilization*100, rep.Fonts.ItemName)
		}
	}
	_, _ = fmt.Fprintln(tw, "* recommended mode")
	return tw.Flush()
}
