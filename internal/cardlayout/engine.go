/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package cardlayout decides how catalog items are wrapped, sized and split into
// fixed-size pages for image export. It does no drawing: the Layout it returns carries
// the exact lines and heights a renderer must reproduce.
package cardlayout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"pricecards/internal/catalog"
	applog "pricecards/internal/log"
	"pricecards/internal/textlayout"
)

// Status is the terminal state of a layout run.
type Status string

const (
	StatusDone             Status = "done"
	StatusDoneWithOverflow Status = "done_with_overflow"
)

// Engine lays out categories with an injected measurer. It holds no per-call state and
// is safe for concurrent use if the measurer is.
type Engine struct {
	measurer textlayout.Measurer
	family   string
	tuning   Tuning
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTuning replaces the default constants.
func WithTuning(t Tuning) Option { return func(e *Engine) { e.tuning = t } }

// WithFamily sets the font family passed to the measurer.
func WithFamily(family string) Option { return func(e *Engine) { e.family = family } }

// WithLogger sets the logger; the default is the application logger tagged component=cardlayout.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// New builds an engine. It fails on a nil measurer or invalid tuning.
func New(m textlayout.Measurer, opts ...Option) (*Engine, error) {
	if m == nil {
		return nil, errors.New("cardlayout: nil measurer")
	}
	e := &Engine{measurer: m, family: textlayout.BuiltinFamily, tuning: DefaultTuning()}
	for _, o := range opts {
		o(e)
	}
	if err := e.tuning.Validate(); err != nil {
		return nil, err
	}
	if e.logger == nil {
		e.logger = applog.WithComponent("cardlayout")
	}
	return e, nil
}

// Tuning returns the engine constants.
func (e *Engine) Tuning() Tuning { return e.tuning }

// Family returns the font family used for measurement.
func (e *Engine) Family() string { return e.family }

// Layout is the resolved layout of one category, ready for rendering.
type Layout struct {
	Category string      `json:"category"`
	Mode     QualityMode `json:"mode"`
	Family   string      `json:"family"`
	Fonts    FontConfig  `json:"fonts"`
	Padding  float64     `json:"padding"`
	Leading  float64     `json:"leading"`
	Status   Status      `json:"status"`
	// ShrinkPasses counts the shrink steps applied in single-page mode.
	ShrinkPasses int              `json:"shrinkPasses"`
	Config       PaginationConfig `json:"config"`
	Pagination
}

// LayoutCategoryForExport proposes fonts for the category's mode and breaks its items into pages.
// With cfg.SinglePage the whole category goes on one page; while that page overflows, fonts are
// shrunk and padding reduced, up to MaxShrinkPasses times. Paged layouts keep the proposed fonts
// and padding even when a page overflows, whatever the item count. A layout that still overflows
// is returned with StatusDoneWithOverflow rather than as an error.
func (e *Engine) LayoutCategoryForExport(ctx context.Context, cat catalog.Category, cfg PaginationConfig) (Layout, error) {
	if err := cfg.Validate(); err != nil {
		return Layout{}, err
	}
	l := applog.WithOperation(e.logger, "layout").With(slog.String("category", cat.Title))

	fonts := e.tuning.ProposeFontConfig(len(cat.Items), cfg.QualityMode)
	padding := e.tuning.Padding
	out := Layout{
		Category: cat.Title,
		Mode:     cfg.QualityMode,
		Family:   e.family,
		Leading:  e.tuning.Leading,
		Config:   cfg,
	}

	var pag Pagination
	var err error
	for pass := 0; ; pass++ {
		if err := ctx.Err(); err != nil {
			return Layout{}, err
		}
		if cfg.SinglePage {
			pag, err = e.singlePage(cat.Items, cfg, fonts, padding)
		} else {
			pag, err = e.BreakIntoPages(cat.Items, cfg, fonts, padding)
		}
		if err != nil {
			return Layout{}, fmt.Errorf("layout %q: %w", cat.Title, err)
		}
		out.ShrinkPasses = pass
		if !cfg.SinglePage || !pag.Overflowing() || pass >= e.tuning.MaxShrinkPasses {
			break
		}
		nf, np := e.tuning.Shrink(fonts), math.Max(e.tuning.MinPadding, padding-e.tuning.PaddingStep)
		if nf == fonts && np == padding {
			l.Debug("shrink exhausted at floors", slog.Int("pass", pass))
			break
		}
		l.Debug("page overflows, shrinking", slog.Int("pass", pass+1),
			slog.Float64("height", pag.Pages[0].EstimatedHeight), slog.Float64("available", pag.AvailableHeight),
			slog.Float64("item_name", nf.ItemName), slog.Float64("padding", np))
		fonts, padding = nf, np
	}

	out.Fonts, out.Padding, out.Pagination = fonts, padding, pag
	out.Status = StatusDone
	if pag.Overflowing() {
		out.Status = StatusDoneWithOverflow
		l.Warn("layout overflows page budget", slog.Int("pages", pag.TotalPages), slog.Int("shrink_passes", out.ShrinkPasses))
	}
	l.Debug("layout done", slog.Int("items", len(cat.Items)), slog.Int("pages", pag.TotalPages),
		slog.Float64("utilization", pag.UtilizationRate), slog.String("status", string(out.Status)))
	return out, nil
}

// singlePage places every item on one page regardless of height.
func (e *Engine) singlePage(items []catalog.Item, cfg PaginationConfig, fonts FontConfig, padding float64) (Pagination, error) {
	if err := fonts.Validate(); err != nil {
		return Pagination{}, err
	}
	cards, err := e.resolveCards(items, fonts, cfg.CardWidth(), padding)
	if err != nil {
		return Pagination{}, err
	}
	return paginate(cfg, group(cards, cfg.CardGap, len(cards), math.Inf(1))), nil
}
