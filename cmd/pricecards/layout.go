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
	"strings"

	"github.com/spf13/cobra"

	"pricecards/internal/cardlayout"
	"pricecards/internal/catalog"
)

func newLayoutCmd(a *app) *cobra.Command {
	var src sourceFlags
	var title, mode string
	var singlePage bool
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the resolved layout of one category as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if strings.TrimSpace(title) == "" {
				return fmt.Errorf("--category is required")
			}
			source, closeFn, err := a.open(ctx, src)
			if err != nil {
				return err
			}
			defer closeFn()

			if cmd.Flags().Changed("mode") {
				a.cfg.Pagination.QualityMode = mode
			}
			if cmd.Flags().Changed("single-page") {
				a.cfg.Pagination.SinglePage = singlePage
			}
			cfg, err := a.cfg.PaginationConfig()
			if err != nil {
				return err
			}
			m, err := a.fonts()
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()
			eng, err := a.engine(m)
			if err != nil {
				return err
			}

			cats, err := source.Categories(ctx)
			if err != nil {
				return err
			}
			cat, ok := catalog.Find(cats, title)
			if !ok {
				return fmt.Errorf("category %q not found", title)
			}
			lay, err := eng.LayoutCategoryForExport(ctx, cat, cfg)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(lay)
		},
	}
	src.bind(cmd)
	cmd.Flags().StringVar(&title, "category", "", "category title")
	cmd.Flags().StringVar(&mode, "mode", string(cardlayout.ModeAesthetic), "quality mode: maxItems, readability, aesthetic")
	cmd.Flags().BoolVar(&singlePage, "single-page", false, "fit the whole category on one page")
	return cmd
}
