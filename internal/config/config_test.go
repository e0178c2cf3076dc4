/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pricecards/internal/cardlayout"
)

func TestDefaultsMatchEngine(t *testing.T) {
	cfg := Defaults()
	p, err := cfg.PaginationConfig()
	if err != nil {
		t.Fatalf("PaginationConfig: %v", err)
	}
	if diff := cmp.Diff(cardlayout.DefaultPagination(), p); diff != "" {
		t.Fatalf("default pagination differs from engine defaults (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(cardlayout.DefaultTuning(), cfg.Tuning()); diff != "" {
		t.Fatalf("default tuning differs (-want +got):\n%s", diff)
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
canvas:
  preset: story
  card_gap: 24
pagination:
  max_items_per_page: 10
  quality_mode: readability
  single_page: true
engine:
  shrink_ratio: 0.9
  hyphenate: true
export:
  formats: [png, zip]
logging:
  level: DEBUG
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvOutDir, "/tmp/out")
	t.Setenv(EnvLogFormat, "JSON")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, err := cfg.PaginationConfig()
	if err != nil {
		t.Fatalf("PaginationConfig: %v", err)
	}
	if p.PageHeight != 1920 || p.CardGap != 24 || p.MaxItemsPerPage != 10 || p.QualityMode != cardlayout.ModeReadability || !p.SinglePage {
		t.Fatalf("pagination not merged: %+v", p)
	}
	if p.HeaderReserve != 200 || p.MinItemsPerPage != 2 {
		t.Fatalf("defaults lost on merge: %+v", p)
	}
	tu := cfg.Tuning()
	if tu.ShrinkRatio != 0.9 || !tu.Hyphenate || tu.MaxShrinkPasses != 3 {
		t.Fatalf("tuning not merged: %+v", tu)
	}
	if diff := cmp.Diff([]string{"png", "zip"}, cfg.Export.Formats); diff != "" {
		t.Fatalf("formats (-want +got):\n%s", diff)
	}
	if cfg.Export.OutDir != "/tmp/out" || cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("env/logging overrides not applied: %+v %+v", cfg.Export, cfg.Logging)
	}
	if env, ok := EnvOverrideFor("export.out_dir"); !ok || env != EnvOutDir {
		t.Fatalf("EnvOverrideFor(export.out_dir) = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("catalog.file"); ok {
		t.Fatalf("catalog.file should not be overridden")
	}
	keys := OverriddenKeys()
	if !slices.Contains(keys, "export.out_dir") || !slices.Contains(keys, "logging.format") || !slices.IsSorted(keys) {
		t.Fatalf("OverriddenKeys = %v", keys)
	}
}

func TestLoadMissingAndBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Canvas.Preset != "portrait" {
		t.Fatalf("defaults expected, got %+v", cfg.Canvas)
	}
	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("canvas: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(broken); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSaveAndConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	t.Setenv(EnvConfigPath, path)
	got, err := ConfigPath()
	if err != nil || got != path {
		t.Fatalf("ConfigPath() = %q, %v", got, err)
	}
	cfg := Defaults()
	cfg.Canvas.Preset = "square"
	cfg.Canvas.Width, cfg.Canvas.Height = 1200, 1200
	if err := Save("", cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cv, err := back.CanvasSize()
	if err != nil || cv.Width != 1200 || cv.Height != 1200 || cv.Name != "square" {
		t.Fatalf("canvas = %+v, %v", cv, err)
	}
}

func TestPaginationConfigErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Canvas.Preset = "billboard"
	if _, err := cfg.PaginationConfig(); err == nil {
		t.Fatalf("expected unknown preset error")
	}
	cfg = Defaults()
	cfg.Pagination.QualityMode = "dense"
	if _, err := cfg.PaginationConfig(); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/var/log/pricecards.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/var/log/pricecards.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
	opts := dst.LogOptions()
	if opts.Level != "debug" || !opts.AddSource {
		t.Fatalf("LogOptions = %+v", opts)
	}
}
