/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package cardlayout

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"pricecards/internal/catalog"
)

// ModeReport summarizes one quality mode in a preview.
type ModeReport struct {
	Mode         QualityMode `json:"mode"`
	Pages        int         `json:"pages"`
	ItemsPerPage float64     `json:"itemsPerPage"`
	Utilization  float64     `json:"utilization"`
	Fonts        FontConfig  `json:"fonts"`
	Overflow     bool        `json:"overflow,omitempty"`
}

// PreviewResult compares all quality modes for one item list.
type PreviewResult struct {
	ItemCount      int         `json:"itemCount"`
	MaxItems       ModeReport  `json:"maxItems"`
	Readability    ModeReport  `json:"readability"`
	Aesthetic      ModeReport  `json:"aesthetic"`
	Recommendation QualityMode `json:"recommendation"`
}

// Report returns the report for mode.
func (r PreviewResult) Report(mode QualityMode) ModeReport {
	switch mode {
	case ModeMaxItems:
		return r.MaxItems
	case ModeReadability:
		return r.Readability
	}
	return r.Aesthetic
}

// RecommendMode is the fixed threshold rule: up to 4 items favour readability, 10 or more
// favour density, everything in between stays aesthetic.
func RecommendMode(itemCount int) QualityMode {
	switch {
	case itemCount <= 4:
		return ModeReadability
	case itemCount >= 10:
		return ModeMaxItems
	default:
		return ModeAesthetic
	}
}

// Preview runs the page breaker once per quality mode with the base padding. cfg.QualityMode
// and cfg.SinglePage are ignored. The three runs share nothing but the measurer and run concurrently.
func (e *Engine) Preview(ctx context.Context, items []catalog.Item, cfg PaginationConfig) (PreviewResult, error) {
	res := PreviewResult{ItemCount: len(items), Recommendation: RecommendMode(len(items))}
	cfg.SinglePage = false
	if cfg.QualityMode == "" {
		cfg.QualityMode = ModeAesthetic
	}
	if err := cfg.Validate(); err != nil {
		return res, err
	}
	l := e.logger.With(slog.String("op", "preview"))

	slots := map[QualityMode]*ModeReport{
		ModeMaxItems:    &res.MaxItems,
		ModeReadability: &res.Readability,
		ModeAesthetic:   &res.Aesthetic,
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, mode := range Modes() {
		mode := mode
		out := slots[mode]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mc := cfg
			mc.QualityMode = mode
			fonts := e.tuning.ProposeFontConfig(len(items), mode)
			p, err := e.BreakIntoPages(items, mc, fonts, e.tuning.Padding)
			if err != nil {
				return err
			}
			*out = ModeReport{
				Mode:         mode,
				Pages:        p.TotalPages,
				ItemsPerPage: p.AverageItemsPerPage,
				Utilization:  p.UtilizationRate,
				Fonts:        fonts,
				Overflow:     p.Overflowing(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	l.Debug("preview ready", slog.Int("items", len(items)), slog.String("recommendation", string(res.Recommendation)))
	return res, nil
}
