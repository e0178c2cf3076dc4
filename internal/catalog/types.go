/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package catalog holds the pricing catalog model consumed by the card layout engine
// and the sources that supply it (catalog files, SQLite snapshots, the hosted Postgres backend).
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidCatalog is returned when a catalog document or record breaks the model rules.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Badge is the optional inline tag rendered next to an item name.
type Badge string

const (
	BadgeNone      Badge = ""
	BadgePromotion Badge = "promotion"
	BadgeNew       Badge = "new"
)

// ParseBadge accepts the canonical names plus the aliases used by the admin UI.
func ParseBadge(s string) (Badge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return BadgeNone, nil
	case "promotion", "promo", "sale":
		return BadgePromotion, nil
	case "new":
		return BadgeNew, nil
	default:
		return BadgeNone, fmt.Errorf("%w: unknown badge %q", ErrInvalidCatalog, s)
	}
}

// Item is one sellable line entry. Price is display-ready and never parsed.
type Item struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Price       string `json:"price" yaml:"price"`
	Badge       Badge  `json:"badge,omitempty" yaml:"badge,omitempty"`
}

// HasDescription reports whether the item carries a description block.
func (it Item) HasDescription() bool { return strings.TrimSpace(it.Description) != "" }

// Category is an ordered group of items. Item order is display order.
type Category struct {
	Title string `json:"title" yaml:"title"`
	Items []Item `json:"items" yaml:"items"`
}

// Validate checks the per-record rules: non-empty names and known badges.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: category title is required", ErrInvalidCatalog)
	}
	for i, it := range c.Items {
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("%w: %s: item %d has an empty name", ErrInvalidCatalog, c.Title, i+1)
		}
		if _, err := ParseBadge(string(it.Badge)); err != nil {
			return fmt.Errorf("%s: item %q: %w", c.Title, it.Name, err)
		}
	}
	return nil
}

// Source supplies a read-only snapshot of the catalog per export call.
type Source interface {
	Categories(ctx context.Context) ([]Category, error)
}

// Find returns the category with the given title (case-insensitive).
func Find(categories []Category, title string) (Category, bool) {
	for _, c := range categories {
		if strings.EqualFold(strings.TrimSpace(c.Title), strings.TrimSpace(title)) {
			return c, true
		}
	}
	return Category{}, false
}

// Slug turns a category title into a file-system friendly name. Only letters and digits
// survive; every other run of runes becomes a single dash.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "category"
	}
	return s
}

// StaticSource serves categories already in memory.
type StaticSource []Category

func (s StaticSource) Categories(_ context.Context) ([]Category, error) { return s, nil }
