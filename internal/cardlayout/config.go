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
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidConfig marks a rejected PaginationConfig, Tuning or FontConfig.
	ErrInvalidConfig = errors.New("invalid layout configuration")
	// ErrMeasure wraps a failure of the text measurer. Layout cannot continue without widths.
	ErrMeasure = errors.New("text measurement failed")
)

// QualityMode trades item density against font size.
type QualityMode string

const (
	ModeMaxItems    QualityMode = "maxItems"
	ModeReadability QualityMode = "readability"
	ModeAesthetic   QualityMode = "aesthetic"
)

// Modes lists the quality modes in report order.
func Modes() []QualityMode { return []QualityMode{ModeMaxItems, ModeReadability, ModeAesthetic} }

// ParseQualityMode accepts the canonical names case-insensitively plus a few spellings
// used on the command line (max-items, max_items).
func ParseQualityMode(s string) (QualityMode, error) {
	switch strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(strings.TrimSpace(s))) {
	case "maxitems":
		return ModeMaxItems, nil
	case "readability":
		return ModeReadability, nil
	case "aesthetic", "":
		return ModeAesthetic, nil
	}
	return "", fmt.Errorf("%w: unknown quality mode %q", ErrInvalidConfig, s)
}

func (m QualityMode) valid() bool {
	return m == ModeMaxItems || m == ModeReadability || m == ModeAesthetic
}

// PaginationConfig is the page budget for one export. All lengths are in canvas pixels.
type PaginationConfig struct {
	PageWidth     float64 `json:"pageWidth" yaml:"page_width"`
	PageHeight    float64 `json:"pageHeight" yaml:"page_height"`
	HeaderReserve float64 `json:"headerReserve" yaml:"header_reserve"`
	FooterReserve float64 `json:"footerReserve" yaml:"footer_reserve"`
	SideMargin    float64 `json:"sideMargin" yaml:"side_margin"`
	CardGap       float64 `json:"cardGap" yaml:"card_gap"`

	MinItemsPerPage       int `json:"minItemsPerPage" yaml:"min_items_per_page"`
	MaxItemsPerPage       int `json:"maxItemsPerPage" yaml:"max_items_per_page"`
	PreferredItemsPerPage int `json:"preferredItemsPerPage" yaml:"preferred_items_per_page"`

	QualityMode QualityMode `json:"qualityMode" yaml:"quality_mode"`
	// SinglePage forces the whole category onto one page, shrinking fonts and padding to fit.
	SinglePage bool `json:"singlePage" yaml:"single_page"`
}

// DefaultPagination returns the budget for a 1080x1350 portrait post.
func DefaultPagination() PaginationConfig {
	return PaginationConfig{
		PageWidth:             1080,
		PageHeight:            1350,
		HeaderReserve:         200,
		FooterReserve:         80,
		SideMargin:            48,
		CardGap:               16,
		MinItemsPerPage:       2,
		MaxItemsPerPage:       8,
		PreferredItemsPerPage: 6,
		QualityMode:           ModeAesthetic,
	}
}

// AvailableHeight is the vertical space left for cards.
func (c PaginationConfig) AvailableHeight() float64 {
	return c.PageHeight - c.HeaderReserve - c.FooterReserve
}

// CardWidth is the page width minus both side margins.
func (c PaginationConfig) CardWidth() float64 { return c.PageWidth - 2*c.SideMargin }

// Validate rejects inconsistent budgets. Values are never clamped.
func (c PaginationConfig) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
		pos  bool
	}{
		{"pageWidth", c.PageWidth, true},
		{"pageHeight", c.PageHeight, true},
		{"headerReserve", c.HeaderReserve, false},
		{"footerReserve", c.FooterReserve, false},
		{"sideMargin", c.SideMargin, false},
		{"cardGap", c.CardGap, false},
	} {
		if err := checkLength(f.name, f.v, f.pos); err != nil {
			return err
		}
	}
	if c.AvailableHeight() <= 0 {
		return fmt.Errorf("%w: availableHeight %.2f must be > 0 (pageHeight %.2f - headerReserve %.2f - footerReserve %.2f)",
			ErrInvalidConfig, c.AvailableHeight(), c.PageHeight, c.HeaderReserve, c.FooterReserve)
	}
	if c.CardWidth() <= 0 {
		return fmt.Errorf("%w: cardWidth %.2f must be > 0 (pageWidth %.2f - 2*sideMargin %.2f)",
			ErrInvalidConfig, c.CardWidth(), c.PageWidth, c.SideMargin)
	}
	if c.MinItemsPerPage < 0 {
		return fmt.Errorf("%w: minItemsPerPage %d must be >= 0", ErrInvalidConfig, c.MinItemsPerPage)
	}
	if c.MaxItemsPerPage < 1 {
		return fmt.Errorf("%w: maxItemsPerPage %d must be >= 1", ErrInvalidConfig, c.MaxItemsPerPage)
	}
	if c.MinItemsPerPage > c.MaxItemsPerPage {
		return fmt.Errorf("%w: minItemsPerPage %d > maxItemsPerPage %d", ErrInvalidConfig, c.MinItemsPerPage, c.MaxItemsPerPage)
	}
	if c.PreferredItemsPerPage < c.MinItemsPerPage || c.PreferredItemsPerPage > c.MaxItemsPerPage {
		return fmt.Errorf("%w: preferredItemsPerPage %d outside [%d, %d]",
			ErrInvalidConfig, c.PreferredItemsPerPage, c.MinItemsPerPage, c.MaxItemsPerPage)
	}
	if !c.QualityMode.valid() {
		return fmt.Errorf("%w: unknown quality mode %q", ErrInvalidConfig, c.QualityMode)
	}
	return nil
}

func checkLength(name string, v float64, positive bool) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not finite", ErrInvalidConfig, name)
	}
	if positive && v <= 0 {
		return fmt.Errorf("%w: %s %.2f must be > 0", ErrInvalidConfig, name, v)
	}
	if !positive && v < 0 {
		return fmt.Errorf("%w: %s %.2f must be >= 0", ErrInvalidConfig, name, v)
	}
	return nil
}

// Tuning holds the empirically chosen constants of the estimator and the shrink loop.
type Tuning struct {
	// ShrinkRatio multiplies every font size on each shrink pass.
	ShrinkRatio float64 `json:"shrinkRatio" yaml:"shrink_ratio"`
	// MaxShrinkPasses bounds the single-page shrink loop.
	MaxShrinkPasses int `json:"maxShrinkPasses" yaml:"max_shrink_passes"`

	Padding     float64 `json:"padding" yaml:"padding"`
	PaddingStep float64 `json:"paddingStep" yaml:"padding_step"`
	MinPadding  float64 `json:"minPadding" yaml:"min_padding"`

	// Leading is the line height multiplier shared by estimation and rendering.
	Leading       float64 `json:"leading" yaml:"leading"`
	InterBlockGap float64 `json:"interBlockGap" yaml:"inter_block_gap"`
	MinCardHeight float64 `json:"minCardHeight" yaml:"min_card_height"`
	// PriceGap separates the name column from the price column.
	PriceGap float64 `json:"priceGap" yaml:"price_gap"`
	// BadgeGap separates the first name line from the badge.
	BadgeGap float64 `json:"badgeGap" yaml:"badge_gap"`
	// BadgeScale sizes badge text relative to the description size.
	BadgeScale float64 `json:"badgeScale" yaml:"badge_scale"`
	Hyphenate  bool    `json:"hyphenate" yaml:"hyphenate"`

	PromotionLabel string `json:"promotionLabel" yaml:"promotion_label"`
	NewLabel       string `json:"newLabel" yaml:"new_label"`

	BaseFonts         FontConfig `json:"baseFonts" yaml:"base_fonts"`
	FontFloor         FontConfig `json:"fontFloor" yaml:"font_floor"`
	ReadabilityOffset float64    `json:"readabilityOffset" yaml:"readability_offset"`
	// DensityStep is the fraction maxItems mode takes off the base sizes per item above DensityFrom.
	DensityStep float64 `json:"densityStep" yaml:"density_step"`
	DensityFrom int     `json:"densityFrom" yaml:"density_from"`
	// DensityMinScale bounds the maxItems reduction.
	DensityMinScale float64 `json:"densityMinScale" yaml:"density_min_scale"`
}

// DefaultTuning returns the stock constants.
func DefaultTuning() Tuning {
	return Tuning{
		ShrinkRatio:       0.85,
		MaxShrinkPasses:   3,
		Padding:           20,
		PaddingStep:       4,
		MinPadding:        8,
		Leading:           1.3,
		InterBlockGap:     8,
		MinCardHeight:     64,
		PriceGap:          16,
		BadgeGap:          10,
		BadgeScale:        0.75,
		PromotionLabel:    "PROMO",
		NewLabel:          "NEW",
		BaseFonts:         FontConfig{ItemName: 32, ItemDescription: 24, Price: 32, CategoryHeader: 44, PageHeader: 52},
		FontFloor:         FontConfig{ItemName: 18, ItemDescription: 14, Price: 18, CategoryHeader: 24, PageHeader: 28},
		ReadabilityOffset: 4,
		DensityStep:       0.04,
		DensityFrom:       6,
		DensityMinScale:   0.6,
	}
}

// Validate rejects tuning values the loop or estimator cannot work with.
func (t Tuning) Validate() error {
	if !(t.ShrinkRatio > 0 && t.ShrinkRatio < 1) {
		return fmt.Errorf("%w: shrinkRatio %.3f must be in (0, 1)", ErrInvalidConfig, t.ShrinkRatio)
	}
	if t.MaxShrinkPasses < 0 {
		return fmt.Errorf("%w: maxShrinkPasses %d must be >= 0", ErrInvalidConfig, t.MaxShrinkPasses)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"padding", t.Padding},
		{"paddingStep", t.PaddingStep},
		{"minPadding", t.MinPadding},
		{"interBlockGap", t.InterBlockGap},
		{"minCardHeight", t.MinCardHeight},
		{"priceGap", t.PriceGap},
		{"badgeGap", t.BadgeGap},
		{"readabilityOffset", t.ReadabilityOffset},
		{"densityStep", t.DensityStep},
	} {
		if err := checkLength(f.name, f.v, false); err != nil {
			return err
		}
	}
	if t.MinPadding > t.Padding {
		return fmt.Errorf("%w: minPadding %.2f > padding %.2f", ErrInvalidConfig, t.MinPadding, t.Padding)
	}
	if !(t.Leading >= 1) || math.IsInf(t.Leading, 0) {
		return fmt.Errorf("%w: leading %.3f must be >= 1", ErrInvalidConfig, t.Leading)
	}
	if !(t.BadgeScale > 0 && t.BadgeScale <= 1) {
		return fmt.Errorf("%w: badgeScale %.3f must be in (0, 1]", ErrInvalidConfig, t.BadgeScale)
	}
	if !(t.DensityMinScale > 0 && t.DensityMinScale <= 1) {
		return fmt.Errorf("%w: densityMinScale %.3f must be in (0, 1]", ErrInvalidConfig, t.DensityMinScale)
	}
	if t.DensityFrom < 0 {
		return fmt.Errorf("%w: densityFrom %d must be >= 0", ErrInvalidConfig, t.DensityFrom)
	}
	if err := t.FontFloor.Validate(); err != nil {
		return fmt.Errorf("fontFloor: %w", err)
	}
	if err := t.BaseFonts.Validate(); err != nil {
		return fmt.Errorf("baseFonts: %w", err)
	}
	return nil
}
