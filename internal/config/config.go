/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: YAML file values over defaults,
// then PRICECARDS_* environment variables over both.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"pricecards/internal/cardlayout"
	"pricecards/internal/export"
	applog "pricecards/internal/log"
)

// AppConfig is the user-editable configuration persisted as YAML.
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int              `yaml:"config_version"`
	Canvas        CanvasConfig     `yaml:"canvas"`
	Pagination    PaginationConfig `yaml:"pagination"`
	Engine        EngineConfig     `yaml:"engine"`
	Fonts         FontsConfig      `yaml:"fonts"`
	Catalog       CatalogConfig    `yaml:"catalog"`
	Export        ExportConfig     `yaml:"export"`
	Logging       LoggingConfig    `yaml:"logging"`
}

type CanvasConfig struct {
	Preset string `yaml:"preset"`
	// Width and Height override the preset when both are > 0.
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	HeaderReserve float64 `yaml:"header_reserve"`
	FooterReserve float64 `yaml:"footer_reserve"`
	SideMargin    float64 `yaml:"side_margin"`
	CardGap       float64 `yaml:"card_gap"`
}

type PaginationConfig struct {
	MinItemsPerPage       int    `yaml:"min_items_per_page"`
	MaxItemsPerPage       int    `yaml:"max_items_per_page"`
	PreferredItemsPerPage int    `yaml:"preferred_items_per_page"`
	QualityMode           string `yaml:"quality_mode"`
	SinglePage            bool   `yaml:"single_page"`
}

type EngineConfig struct {
	ShrinkRatio     float64 `yaml:"shrink_ratio"`
	MaxShrinkPasses int     `yaml:"max_shrink_passes"`
	Padding         float64 `yaml:"padding"`
	PaddingStep     float64 `yaml:"padding_step"`
	MinPadding      float64 `yaml:"min_padding"`
	Leading         float64 `yaml:"leading"`
	InterBlockGap   float64 `yaml:"inter_block_gap"`
	MinCardHeight   float64 `yaml:"min_card_height"`
	Hyphenate       bool    `yaml:"hyphenate"`
	PromotionLabel  string  `yaml:"promotion_label"`
	NewLabel        string  `yaml:"new_label"`
}

// FontsConfig names the family used for layout. The TTF paths are optional; without them
// the builtin Go fonts are used.
type FontsConfig struct {
	Family     string `yaml:"family"`
	Regular    string `yaml:"regular"`
	Bold       string `yaml:"bold"`
	Italic     string `yaml:"italic"`
	BoldItalic string `yaml:"bold_italic"`
}

// CatalogConfig selects the default catalog source. The first non-empty field wins,
// in the order file, sqlite, postgres.
type CatalogConfig struct {
	File        string `yaml:"file"`
	SQLite      string `yaml:"sqlite"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

type ExportConfig struct {
	OutDir      string   `yaml:"out_dir"`
	Title       string   `yaml:"title"`
	Formats     []string `yaml:"formats"`
	Thumbs      bool     `yaml:"thumbs"`
	ThumbWidth  int      `yaml:"thumb_width"`
	Concurrency int      `yaml:"concurrency"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	p := cardlayout.DefaultPagination()
	t := cardlayout.DefaultTuning()
	return AppConfig{
		ConfigVersion: 1,
		Canvas: CanvasConfig{
			Preset:        string(export.PresetPortrait),
			HeaderReserve: p.HeaderReserve,
			FooterReserve: p.FooterReserve,
			SideMargin:    p.SideMargin,
			CardGap:       p.CardGap,
		},
		Pagination: PaginationConfig{
			MinItemsPerPage:       p.MinItemsPerPage,
			MaxItemsPerPage:       p.MaxItemsPerPage,
			PreferredItemsPerPage: p.PreferredItemsPerPage,
			QualityMode:           string(p.QualityMode),
		},
		Engine: EngineConfig{
			ShrinkRatio:     t.ShrinkRatio,
			MaxShrinkPasses: t.MaxShrinkPasses,
			Padding:         t.Padding,
			PaddingStep:     t.PaddingStep,
			MinPadding:      t.MinPadding,
			Leading:         t.Leading,
			InterBlockGap:   t.InterBlockGap,
			MinCardHeight:   t.MinCardHeight,
			PromotionLabel:  t.PromotionLabel,
			NewLabel:        t.NewLabel,
		},
		Fonts:   FontsConfig{Family: "Go"},
		Export:  ExportConfig{OutDir: "exports", ThumbWidth: export.DefaultThumbWidth, Concurrency: 4},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath  = "PRICECARDS_CONFIG"
	EnvPreset      = "PRICECARDS_PRESET"
	EnvQualityMode = "PRICECARDS_QUALITY_MODE"
	EnvSinglePage  = "PRICECARDS_SINGLE_PAGE"
	EnvFontFamily  = "PRICECARDS_FONT_FAMILY"
	EnvCatalogFile = "PRICECARDS_CATALOG_FILE"
	EnvSQLite      = "PRICECARDS_SQLITE"
	EnvPostgresDSN = "PRICECARDS_POSTGRES_DSN"
	EnvOutDir      = "PRICECARDS_OUT_DIR"
	EnvConcurrency = "PRICECARDS_CONCURRENCY"
	EnvLogLevel    = applog.EnvLevel
	EnvLogFormat   = applog.EnvFormat
	EnvLogSource   = applog.EnvSource
	EnvLogFile     = applog.EnvFile
)

// ConfigPath returns the config file path: PRICECARDS_CONFIG if set, otherwise
// pricecards/config.yaml under the user config directory.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "pricecards", "config.yaml"), nil
}

// Load reads the config file at path (ConfigPath when empty), merges it over the defaults
// and applies environment overrides. A missing file is not an error.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes cfg as YAML to path (ConfigPath when empty).
func Save(path string, cfg AppConfig) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// canvas
	setString(&dst.Canvas.Preset, src.Canvas.Preset)
	setInt(&dst.Canvas.Width, src.Canvas.Width)
	setInt(&dst.Canvas.Height, src.Canvas.Height)
	setFloat(&dst.Canvas.HeaderReserve, src.Canvas.HeaderReserve)
	setFloat(&dst.Canvas.FooterReserve, src.Canvas.FooterReserve)
	setFloat(&dst.Canvas.SideMargin, src.Canvas.SideMargin)
	setFloat(&dst.Canvas.CardGap, src.Canvas.CardGap)
	// pagination
	setInt(&dst.Pagination.MinItemsPerPage, src.Pagination.MinItemsPerPage)
	setInt(&dst.Pagination.MaxItemsPerPage, src.Pagination.MaxItemsPerPage)
	setInt(&dst.Pagination.PreferredItemsPerPage, src.Pagination.PreferredItemsPerPage)
	setString(&dst.Pagination.QualityMode, src.Pagination.QualityMode)
	// booleans: copy directly from the file so user preferences persist
	dst.Pagination.SinglePage = src.Pagination.SinglePage
	// engine
	setFloat(&dst.Engine.ShrinkRatio, src.Engine.ShrinkRatio)
	setInt(&dst.Engine.MaxShrinkPasses, src.Engine.MaxShrinkPasses)
	setFloat(&dst.Engine.Padding, src.Engine.Padding)
	setFloat(&dst.Engine.PaddingStep, src.Engine.PaddingStep)
	setFloat(&dst.Engine.MinPadding, src.Engine.MinPadding)
	setFloat(&dst.Engine.Leading, src.Engine.Leading)
	setFloat(&dst.Engine.InterBlockGap, src.Engine.InterBlockGap)
	setFloat(&dst.Engine.MinCardHeight, src.Engine.MinCardHeight)
	dst.Engine.Hyphenate = src.Engine.Hyphenate
	setString(&dst.Engine.PromotionLabel, src.Engine.PromotionLabel)
	setString(&dst.Engine.NewLabel, src.Engine.NewLabel)
	// fonts
	setString(&dst.Fonts.Family, src.Fonts.Family)
	setString(&dst.Fonts.Regular, src.Fonts.Regular)
	setString(&dst.Fonts.Bold, src.Fonts.Bold)
	setString(&dst.Fonts.Italic, src.Fonts.Italic)
	setString(&dst.Fonts.BoldItalic, src.Fonts.BoldItalic)
	// catalog
	setString(&dst.Catalog.File, src.Catalog.File)
	setString(&dst.Catalog.SQLite, src.Catalog.SQLite)
	setString(&dst.Catalog.PostgresDSN, src.Catalog.PostgresDSN)
	// export
	setString(&dst.Export.OutDir, src.Export.OutDir)
	setString(&dst.Export.Title, src.Export.Title)
	if len(src.Export.Formats) > 0 {
		dst.Export.Formats = append([]string(nil), src.Export.Formats...)
	}
	dst.Export.Thumbs = src.Export.Thumbs
	setInt(&dst.Export.ThumbWidth, src.Export.ThumbWidth)
	setInt(&dst.Export.Concurrency, src.Export.Concurrency)
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	setString(&dst.Logging.File, src.Logging.File)
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvPreset)); v != "" {
		cfg.Canvas.Preset = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvQualityMode)); v != "" {
		cfg.Pagination.QualityMode = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSinglePage)); v != "" {
		cfg.Pagination.SinglePage = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontFamily)); v != "" {
		cfg.Fonts.Family = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCatalogFile)); v != "" {
		cfg.Catalog.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSQLite)); v != "" {
		cfg.Catalog.SQLite = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPostgresDSN)); v != "" {
		cfg.Catalog.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutDir)); v != "" {
		cfg.Export.OutDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvConcurrency)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Export.Concurrency = n
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"canvas.preset":           EnvPreset,
	"pagination.quality_mode": EnvQualityMode,
	"pagination.single_page":  EnvSinglePage,
	"fonts.family":            EnvFontFamily,
	"catalog.file":            EnvCatalogFile,
	"catalog.sqlite":          EnvSQLite,
	"catalog.postgres_dsn":    EnvPostgresDSN,
	"export.out_dir":          EnvOutDir,
	"export.concurrency":      EnvConcurrency,
	"logging.level":           EnvLogLevel,
	"logging.format":          EnvLogFormat,
	"logging.source":          EnvLogSource,
	"logging.file":            EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// OverriddenKeys lists, sorted, the config keys currently overridden by environment variables.
func OverriddenKeys() []string {
	var keys []string
	for k := range envKeys {
		if _, ok := EnvOverrideFor(k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// CanvasSize resolves the preset and explicit size into a canvas.
func (c AppConfig) CanvasSize() (export.Canvas, error) {
	cv, err := export.Preset(c.Canvas.Preset)
	if err != nil {
		return export.Canvas{}, err
	}
	if c.Canvas.Width > 0 && c.Canvas.Height > 0 {
		cv.Width, cv.Height = c.Canvas.Width, c.Canvas.Height
	}
	return cv, nil
}

// PaginationConfig converts the canvas and pagination sections into an engine budget.
// Validation is left to the engine.
func (c AppConfig) PaginationConfig() (cardlayout.PaginationConfig, error) {
	cv, err := c.CanvasSize()
	if err != nil {
		return cardlayout.PaginationConfig{}, err
	}
	mode, err := cardlayout.ParseQualityMode(c.Pagination.QualityMode)
	if err != nil {
		return cardlayout.PaginationConfig{}, err
	}
	return cardlayout.PaginationConfig{
		PageWidth:             float64(cv.Width),
		PageHeight:            float64(cv.Height),
		HeaderReserve:         c.Canvas.HeaderReserve,
		FooterReserve:         c.Canvas.FooterReserve,
		SideMargin:            c.Canvas.SideMargin,
		CardGap:               c.Canvas.CardGap,
		MinItemsPerPage:       c.Pagination.MinItemsPerPage,
		MaxItemsPerPage:       c.Pagination.MaxItemsPerPage,
		PreferredItemsPerPage: c.Pagination.PreferredItemsPerPage,
		QualityMode:           mode,
		SinglePage:            c.Pagination.SinglePage,
	}, nil
}

// Tuning overlays the engine section on the default constants.
func (c AppConfig) Tuning() cardlayout.Tuning {
	t := cardlayout.DefaultTuning()
	e := c.Engine
	t.ShrinkRatio = e.ShrinkRatio
	t.MaxShrinkPasses = e.MaxShrinkPasses
	t.Padding = e.Padding
	t.PaddingStep = e.PaddingStep
	t.MinPadding = e.MinPadding
	t.Leading = e.Leading
	t.InterBlockGap = e.InterBlockGap
	t.MinCardHeight = e.MinCardHeight
	t.Hyphenate = e.Hyphenate
	t.PromotionLabel = e.PromotionLabel
	t.NewLabel = e.NewLabel
	return t
}

// LogOptions converts the logging section for log.Init.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{Level: c.Logging.Level, Format: c.Logging.Format, AddSource: c.Logging.Source, File: c.Logging.File}
}
