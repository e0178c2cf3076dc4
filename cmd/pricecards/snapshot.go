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
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"pricecards/internal/catalog"
	applog "pricecards/internal/log"
)

func newSnapshotCmd(a *app) *cobra.Command {
	var src sourceFlags
	var target string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Copy a catalog into a local SQLite snapshot for offline exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if strings.TrimSpace(target) == "" {
				return fmt.Errorf("--to is required")
			}
			source, closeFn, err := a.open(ctx, src)
			if err != nil {
				return err
			}
			defer closeFn()
			cats, err := source.Categories(ctx)
			if err != nil {
				return err
			}

			db, err := catalog.OpenSQLite(ctx, target)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			if err := catalog.WriteSnapshot(ctx, db, cats); err != nil {
				return err
			}
			applog.WithComponent("cli").Info("snapshot written", slog.String("path", target), slog.Int("categories", len(cats)))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d categories to %s\n", len(cats), target)
			return err
		},
	}
	src.bind(cmd)
	cmd.Flags().StringVar(&target, "to", "", "SQLite snapshot file to write")
	return cmd
}
