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
	"fmt"
	"math"

	"pricecards/internal/catalog"
	"pricecards/internal/textlayout"
)

// Card is the resolved layout of one item: the exact lines and geometry a renderer must draw.
// Offsets are relative to the card's top-left corner.
type Card struct {
	Item             catalog.Item `json:"item"`
	NameLines        []string     `json:"nameLines"`
	DescriptionLines []string     `json:"descriptionLines,omitempty"`

	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding float64 `json:"padding"`

	// NameWidth is the wrap width of the name column; an inline price sits to its right.
	NameWidth      float64 `json:"nameWidth"`
	NameLineHeight float64 `json:"nameLineHeight"`
	// PriceWidth is the widest price line.
	PriceWidth float64 `json:"priceWidth"`
	// PriceStacked puts the price on its own lines at PriceTop, left-aligned below the name.
	// Otherwise PriceLines holds the single right-aligned price on the first name line.
	PriceStacked    bool     `json:"priceStacked,omitempty"`
	PriceLines      []string `json:"priceLines,omitempty"`
	PriceTop        float64  `json:"priceTop,omitempty"`
	PriceLineHeight float64  `json:"priceLineHeight"`
	// HeadHeight covers the name block and the price lines.
	HeadHeight            float64 `json:"headHeight"`
	DescriptionTop        float64 `json:"descriptionTop,omitempty"`
	DescriptionLineHeight float64 `json:"descriptionLineHeight,omitempty"`

	BadgeLabel   string  `json:"badgeLabel,omitempty"`
	BadgeVisible bool    `json:"badgeVisible"`
	BadgeX       float64 `json:"badgeX,omitempty"`
	BadgeWidth   float64 `json:"badgeWidth,omitempty"`
	BadgeSize    float64 `json:"badgeSize,omitempty"`
}

// PriceLineOrigin is the top-left of price line i relative to the card.
func (c Card) PriceLineOrigin(i int) (x, y float64) {
	if c.PriceStacked {
		return c.Padding, c.Padding + c.PriceTop + float64(i)*c.PriceLineHeight
	}
	return c.Width - c.Padding - c.PriceWidth, c.Padding
}

// LineHeight is size times the leading multiplier.
func (t Tuning) LineHeight(size float64) float64 { return size * t.Leading }

// BadgeLabel returns the label drawn for b, or "" for no badge.
func (t Tuning) BadgeLabel(b catalog.Badge) string {
	switch b {
	case catalog.BadgePromotion:
		return t.PromotionLabel
	case catalog.BadgeNew:
		return t.NewLabel
	}
	return ""
}

// ResolveCard wraps and measures one item for a card of the given width and padding.
func (e *Engine) ResolveCard(item catalog.Item, fonts FontConfig, cardWidth, padding float64) (Card, error) {
	t := e.tuning
	inner := cardWidth - 2*padding
	if !(inner > 0) {
		return Card{}, fmt.Errorf("%w: card inner width %.2f must be > 0 (cardWidth %.2f, padding %.2f)",
			ErrInvalidConfig, inner, cardWidth, padding)
	}
	c := Card{Item: item, Width: cardWidth, Padding: padding}

	nameSpec := e.spec(textlayout.RoleItemName, fonts.ItemName)
	priceSpec := e.spec(textlayout.RolePrice, fonts.Price)
	descSpec := e.spec(textlayout.RoleDescription, fonts.ItemDescription)

	c.NameWidth = inner
	if item.Price != "" {
		pw, err := e.measure(item, item.Price, priceSpec)
		if err != nil {
			return Card{}, err
		}
		c.PriceWidth = pw
		c.PriceLines = []string{item.Price}
		if pw+t.PriceGap <= inner/2 {
			c.NameWidth = inner - pw - t.PriceGap
		} else {
			c.PriceStacked = true
		}
	}

	var err error
	if c.NameLines, err = e.wrap(item, item.Name, c.NameWidth, nameSpec); err != nil {
		return Card{}, err
	}
	if err := e.placeBadge(&c, fonts); err != nil {
		return Card{}, err
	}

	c.NameLineHeight = t.LineHeight(fonts.ItemName)
	c.PriceLineHeight = t.LineHeight(fonts.Price)
	nameBlock := float64(len(c.NameLines)) * c.NameLineHeight
	c.HeadHeight = math.Max(nameBlock, c.PriceLineHeight)
	if c.PriceStacked {
		if err := e.stackPrice(&c, priceSpec, inner); err != nil {
			return Card{}, err
		}
		c.PriceTop = nameBlock
		c.HeadHeight = nameBlock + float64(len(c.PriceLines))*c.PriceLineHeight
	}
	h := padding + c.HeadHeight
	if item.HasDescription() {
		if c.DescriptionLines, err = e.wrap(item, item.Description, inner, descSpec); err != nil {
			return Card{}, err
		}
		c.DescriptionLineHeight = t.LineHeight(fonts.ItemDescription)
		c.DescriptionTop = h + t.InterBlockGap
		h = c.DescriptionTop + float64(len(c.DescriptionLines))*c.DescriptionLineHeight
	}
	c.Height = math.Max(h+padding, t.MinCardHeight)
	return c, nil
}

// EstimateHeight is the height of the resolved card.
func (e *Engine) EstimateHeight(item catalog.Item, fonts FontConfig, cardWidth, padding float64) (float64, error) {
	c, err := e.ResolveCard(item, fonts, cardWidth, padding)
	if err != nil {
		return 0, err
	}
	return c.Height, nil
}

// stackPrice wraps a price too wide for the name line within the full inner width.
func (e *Engine) stackPrice(c *Card, spec textlayout.FontSpec, inner float64) error {
	lines, err := e.wrap(c.Item, c.Item.Price, inner, spec)
	if err != nil {
		return err
	}
	c.PriceLines = lines
	c.PriceWidth = 0
	for _, l := range lines {
		w, err := e.measure(c.Item, l, spec)
		if err != nil {
			return err
		}
		c.PriceWidth = math.Max(c.PriceWidth, w)
	}
	return nil
}

// placeBadge puts the badge after the first name line when it fits in the name column.
// A badge that does not fit is left out.
func (e *Engine) placeBadge(c *Card, fonts FontConfig) error {
	label := e.tuning.BadgeLabel(c.Item.Badge)
	if label == "" {
		return nil
	}
	c.BadgeLabel = label
	c.BadgeSize = fonts.ItemDescription * e.tuning.BadgeScale
	lw, err := e.measure(c.Item, label, e.spec(textlayout.RoleBadge, c.BadgeSize))
	if err != nil {
		return err
	}
	// half the badge size of horizontal padding on each side
	c.BadgeWidth = lw + c.BadgeSize
	first, err := e.measure(c.Item, c.NameLines[0], e.spec(textlayout.RoleItemName, fonts.ItemName))
	if err != nil {
		return err
	}
	if first+e.tuning.BadgeGap+c.BadgeWidth <= c.NameWidth {
		c.BadgeVisible = true
		c.BadgeX = first + e.tuning.BadgeGap
	}
	return nil
}

func (e *Engine) spec(role textlayout.Role, size float64) textlayout.FontSpec {
	return textlayout.SpecFor(role, e.family, size)
}

func (e *Engine) measure(item catalog.Item, text string, spec textlayout.FontSpec) (float64, error) {
	w, err := e.measurer.Measure(text, spec)
	if err != nil {
		return 0, fmt.Errorf("%w: item %q: %w", ErrMeasure, item.Name, err)
	}
	return w, nil
}

func (e *Engine) wrap(item catalog.Item, text string, width float64, spec textlayout.FontSpec) ([]string, error) {
	lines, err := textlayout.Wrap(e.measurer, text, width, spec, textlayout.WrapOptions{Hyphenate: e.tuning.Hyphenate})
	if err != nil {
		return nil, fmt.Errorf("%w: item %q: %w", ErrMeasure, item.Name, err)
	}
	return lines, nil
}
