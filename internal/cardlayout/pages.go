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
	"math"

	"pricecards/internal/catalog"
)

// Page is one exported image worth of cards, in catalog order.
type Page struct {
	Number int            `json:"number"`
	Items  []catalog.Item `json:"-"`
	Cards  []Card         `json:"cards"`
	// EstimatedHeight sums card heights plus one CardGap per card.
	EstimatedHeight float64 `json:"estimatedHeight"`
	ItemCount       int     `json:"itemCount"`
	// Overflow marks a page whose content exceeds the available height.
	Overflow bool `json:"overflow,omitempty"`
}

// Pagination is the result of BreakIntoPages.
type Pagination struct {
	Pages               []Page  `json:"pages"`
	TotalPages          int     `json:"totalPages"`
	AverageItemsPerPage float64 `json:"averageItemsPerPage"`
	// UtilizationRate is the used fraction of available height over all pages, in [0, 1].
	UtilizationRate float64 `json:"utilizationRate"`
	AvailableHeight float64 `json:"availableHeight"`
	CardWidth       float64 `json:"cardWidth"`
}

// BreakIntoPages packs items into pages first-fit in catalog order. A page is closed when the
// next card would exceed the available height or the page already holds MaxItemsPerPage items.
// An item too tall for any page gets a page of its own flagged Overflow. Categories with at most
// MinItemsPerPage items always produce a single page. No items produce no pages.
func (e *Engine) BreakIntoPages(items []catalog.Item, cfg PaginationConfig, fonts FontConfig, padding float64) (Pagination, error) {
	if err := cfg.Validate(); err != nil {
		return Pagination{}, err
	}
	if err := fonts.Validate(); err != nil {
		return Pagination{}, err
	}
	cards, err := e.resolveCards(items, fonts, cfg.CardWidth(), padding)
	if err != nil {
		return Pagination{}, err
	}
	if len(items) <= cfg.MinItemsPerPage {
		return paginate(cfg, group(cards, cfg.CardGap, len(cards), math.Inf(1))), nil
	}
	return paginate(cfg, group(cards, cfg.CardGap, cfg.MaxItemsPerPage, cfg.AvailableHeight())), nil
}

func (e *Engine) resolveCards(items []catalog.Item, fonts FontConfig, cardWidth, padding float64) ([]Card, error) {
	cards := make([]Card, 0, len(items))
	for _, it := range items {
		c, err := e.ResolveCard(it, fonts, cardWidth, padding)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// group runs the greedy packing over resolved cards.
func group(cards []Card, gap float64, maxItems int, budget float64) []Page {
	var pages []Page
	var cur Page
	closePage := func() {
		if len(cur.Cards) == 0 {
			return
		}
		cur.ItemCount = len(cur.Cards)
		pages = append(pages, cur)
		cur = Page{}
	}
	for _, c := range cards {
		h := c.Height + gap
		if len(cur.Cards) > 0 && (cur.EstimatedHeight+h > budget || len(cur.Cards) >= maxItems) {
			closePage()
		}
		cur.Cards = append(cur.Cards, c)
		cur.Items = append(cur.Items, c.Item)
		cur.EstimatedHeight += h
	}
	closePage()
	return pages
}

// paginate numbers pages, flags overflow and computes the summary figures.
func paginate(cfg PaginationConfig, pages []Page) Pagination {
	avail := cfg.AvailableHeight()
	p := Pagination{Pages: pages, TotalPages: len(pages), AvailableHeight: avail, CardWidth: cfg.CardWidth()}
	if len(pages) == 0 {
		p.Pages = []Page{}
		return p
	}
	var used float64
	items := 0
	for i := range pages {
		pages[i].Number = i + 1
		pages[i].Overflow = pages[i].EstimatedHeight > avail
		used += math.Min(pages[i].EstimatedHeight, avail)
		items += pages[i].ItemCount
	}
	p.AverageItemsPerPage = float64(items) / float64(len(pages))
	p.UtilizationRate = used / (float64(len(pages)) * avail)
	return p
}

// Overflowing reports whether any page exceeds the available height.
func (p Pagination) Overflowing() bool {
	for _, pg := range p.Pages {
		if pg.Overflow {
			return true
		}
	}
	return false
}

// Items flattens the pages back into one ordered slice.
func (p Pagination) Items() []catalog.Item {
	var out []catalog.Item
	for _, pg := range p.Pages {
		out = append(out, pg.Items...)
	}
	return out
}
