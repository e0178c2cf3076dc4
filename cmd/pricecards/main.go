/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Command pricecards lays out pricing catalogs as fixed-size card pages and exports them
// as PNG, PDF and zip bundles.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pricecards/internal/cardlayout"
	"pricecards/internal/catalog"
	"pricecards/internal/config"
	"pricecards/internal/crash"
	"pricecards/internal/export"
	applog "pricecards/internal/log"
	"pricecards/internal/textlayout"
	"pricecards/internal/version"
)

func main() {
	defer crash.Recover()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if code != 0 {
		os.Exit(code)
	}
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(&app{})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		applog.WithComponent("cli").Error("command failed", slog.Any("err", err))
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// app carries the state shared by all subcommands once the root pre-run has loaded it.
type app struct {
	cfgPath  string
	logLevel string
	cfg      config.AppConfig
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "pricecards",
		Short:         "Lay out pricing catalogs as card pages and export them as images",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "config file (default is <user config dir>/pricecards/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	root.AddCommand(
		newPreviewCmd(a),
		newLayoutCmd(a),
		newExportCmd(a),
		newSnapshotCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads .env, the config file and env overrides, then initializes logging.
func (a *app) setup(console io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(a.logLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	a.cfg = cfg

	opts := cfg.LogOptions()
	opts.Console = console
	applog.Init(opts)
	crash.SetReportDir(cfg.Export.OutDir)
	applog.WithComponent("cli").Debug("config loaded", slog.String("path", a.cfgPath),
		slog.String("preset", cfg.Canvas.Preset), slog.String("mode", cfg.Pagination.QualityMode))
	return nil
}

// fonts builds the measurer from the fonts section: configured TTF files for the family,
// with the builtin Go fonts as fallback.
func (a *app) fonts() (*textlayout.FaceMeasurer, error) {
	lib := textlayout.NewFontLibrary()
	if err := lib.RegisterBuiltins(); err != nil {
		return nil, err
	}
	fc := a.cfg.Fonts
	for _, f := range []struct {
		path   string
		weight int
		italic bool
	}{
		{fc.Regular, textlayout.WeightRegular, false},
		{fc.Bold, textlayout.WeightBold, false},
		{fc.Italic, textlayout.WeightRegular, true},
		{fc.BoldItalic, textlayout.WeightBold, true},
	} {
		if strings.TrimSpace(f.path) == "" {
			continue
		}
		if err := lib.LoadTTF(fc.Family, f.weight, f.italic, f.path); err != nil {
			return nil, err
		}
	}
	return textlayout.NewFaceMeasurer(lib), nil
}

func (a *app) engine(m textlayout.Measurer) (*cardlayout.Engine, error) {
	family := a.cfg.Fonts.Family
	if strings.TrimSpace(family) == "" {
		family = textlayout.BuiltinFamily
	}
	return cardlayout.New(m, cardlayout.WithTuning(a.cfg.Tuning()), cardlayout.WithFamily(family))
}

// sourceFlags are the catalog selectors shared by the commands that read a catalog.
type sourceFlags struct {
	file     string
	sqlite   string
	postgres string
}

func (s *sourceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.file, "catalog", "", "catalog file (YAML or JSON)")
	cmd.Flags().StringVar(&s.sqlite, "sqlite", "", "SQLite catalog snapshot")
	cmd.Flags().StringVar(&s.postgres, "postgres", "", "Postgres DSN of the catalog backend")
}

// open resolves the catalog source: flags first, then the catalog config section. The
// returned close function releases database handles.
func (a *app) open(ctx context.Context, s sourceFlags) (catalog.Source, func(), error) {
	c := a.cfg.Catalog
	if s.file != "" || s.sqlite != "" || s.postgres != "" {
		c = config.CatalogConfig{File: s.file, SQLite: s.sqlite, PostgresDSN: s.postgres}
	}
	l := applog.WithComponent("cli")
	switch {
	case strings.TrimSpace(c.File) != "":
		l.Debug("catalog source", slog.String("file", c.File))
		return catalog.FileSource{Path: c.File}, func() {}, nil
	case strings.TrimSpace(c.SQLite) != "":
		db, err := catalog.OpenSQLite(ctx, c.SQLite)
		if err != nil {
			return nil, nil, err
		}
		l.Debug("catalog source", slog.String("sqlite", c.SQLite))
		return catalog.SQLiteSource{DB: db}, func() { _ = db.Close() }, nil
	case strings.TrimSpace(c.PostgresDSN) != "":
		pool, err := catalog.ConnectPostgres(ctx, c.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		l.Debug("catalog source", slog.String("postgres", "configured"))
		return catalog.PostgresSource{Pool: pool}, pool.Close, nil
	}
	return nil, nil, errors.New("no catalog source: use --catalog, --sqlite or --postgres")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "pricecards", version.String())
			return err
		},
	}
}

// renderer draws with the faces m measured with, so rendered lines match the layout.
func (a *app) renderer(m *textlayout.FaceMeasurer) *export.Renderer {
	return export.NewRenderer(m, a.cfg.Export.Title)
}
