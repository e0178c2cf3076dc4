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
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pricecards/internal/cardlayout"
	"pricecards/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var src sourceFlags
	var (
		outDir, preset, mode string
		singlePage, thumbs   bool
		formats, categories  []string
		concurrency          int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Lay out and export categories as page images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			f := cmd.Flags()
			if f.Changed("out") {
				a.cfg.Export.OutDir = outDir
			}
			if f.Changed("preset") {
				a.cfg.Canvas.Preset = preset
				a.cfg.Canvas.Width, a.cfg.Canvas.Height = 0, 0
			}
			if f.Changed("mode") {
				a.cfg.Pagination.QualityMode = mode
			}
			if f.Changed("single-page") {
				a.cfg.Pagination.SinglePage = singlePage
			}
			if f.Changed("formats") {
				a.cfg.Export.Formats = formats
			}
			if f.Changed("thumbs") {
				a.cfg.Export.Thumbs = thumbs
			}
			if f.Changed("concurrency") {
				a.cfg.Export.Concurrency = concurrency
			}

			canvas, err := a.cfg.CanvasSize()
			if err != nil {
				return err
			}
			pcfg, err := a.cfg.PaginationConfig()
			if err != nil {
				return err
			}
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

			man, err := export.Batch(ctx, source, eng, a.renderer(m), export.BatchOptions{
				Canvas:      canvas,
				Pagination:  pcfg,
				Formats:     a.cfg.Export.Formats,
				Categories:  categories,
				Thumbs:      a.cfg.Export.Thumbs,
				ThumbWidth:  a.cfg.Export.ThumbWidth,
				OutDir:      a.cfg.Export.OutDir,
				Concurrency: a.cfg.Export.Concurrency,
			})
			if err != nil {
				return err
			}
			return printManifest(cmd, man, a.cfg.Export.OutDir)
		},
	}
	src.bind(cmd)
	f := cmd.Flags()
	f.StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	f.StringVar(&preset, "preset", "", "canvas preset: square, portrait, story, a4")
	f.StringVar(&mode, "mode", "", "quality mode: maxItems, readability, aesthetic")
	f.BoolVar(&singlePage, "single-page", false, "one image per category, shrinking fonts to fit")
	f.StringSliceVar(&formats, "formats", nil, "output formats: png, pdf, zip (default from preset)")
	f.StringSliceVar(&categories, "category", nil, "export only these category titles")
	f.BoolVar(&thumbs, "thumbs", false, "also write JPEG thumbnails")
	f.IntVar(&concurrency, "concurrency", 0, "categories exported in parallel")
	return cmd
}

func printManifest(cmd *cobra.Command, man export.Manifest, outDir string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CATEGORY\tITEMS\tMODE\tPAGES\tSTATUS\tFILES\t")
	for _, c := range man.Categories {
		status := string(c.Status)
		if c.Status == cardlayout.StatusDoneWithOverflow && c.ShrinkPasses > 0 {
			status = fmt.Sprintf("%s after %d shrink passes", status, c.ShrinkPasses)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\t%d\t\n", c.Title, c.Items, c.Mode, c.Pages, status, len(c.Files))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "run %s: manifest written to %s\n", man.RunID, filepath.Join(outDir, "manifest.json"))
	return err
}
