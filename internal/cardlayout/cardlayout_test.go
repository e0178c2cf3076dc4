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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pricecards/internal/catalog"
	"pricecards/internal/textlayout"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	e, err := New(textlayout.FixedAdvance{}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// thirtyChar returns a 30 rune item name.
func thirtyChar(i int) string { return fmt.Sprintf("Treatment %02d professional care", i) }

func items(n int, desc string) []catalog.Item {
	out := make([]catalog.Item, n)
	for i := range out {
		out[i] = catalog.Item{Name: thirtyChar(i), Description: desc, Price: "45.00"}
	}
	return out
}

func TestResolveCardHeight(t *testing.T) {
	e := newTestEngine(t)
	fonts := DefaultTuning().BaseFonts
	c, err := e.ResolveCard(catalog.Item{Name: thirtyChar(1), Price: "45.00"}, fonts, 984, 20)
	if err != nil {
		t.Fatalf("ResolveCard: %v", err)
	}
	// price 5 bold runes at 32 => 88, name column 944-88-16
	if !approx(c.PriceWidth, 88) || !approx(c.NameWidth, 840) {
		t.Fatalf("price/name widths = %v/%v, want 88/840", c.PriceWidth, c.NameWidth)
	}
	if len(c.NameLines) != 1 || len(c.DescriptionLines) != 0 {
		t.Fatalf("lines = %q / %q", c.NameLines, c.DescriptionLines)
	}
	if !approx(c.Height, 20+32*1.3+20) {
		t.Fatalf("height = %v, want %v", c.Height, 20+32*1.3+20)
	}

	withDesc := catalog.Item{Name: "Scaling", Description: "Gentle ultrasonic scaling", Price: "45.00"}
	c, err = e.ResolveCard(withDesc, fonts, 984, 20)
	if err != nil {
		t.Fatalf("ResolveCard: %v", err)
	}
	want := 20 + 32*1.3 + 8 + 24*1.3 + 20
	if !approx(c.Height, want) || !approx(c.DescriptionTop, 20+32*1.3+8) {
		t.Fatalf("height/descTop = %v/%v, want %v", c.Height, c.DescriptionTop, want)
	}

	h, err := e.EstimateHeight(catalog.Item{Name: "X"}, FontConfig{ItemName: 10, ItemDescription: 10, Price: 10, CategoryHeader: 10, PageHeader: 10}, 984, 4)
	if err != nil || h != DefaultTuning().MinCardHeight {
		t.Fatalf("short card height = %v, %v; want the minimum %v", h, err, DefaultTuning().MinCardHeight)
	}
}

func TestResolveCardPriceColumn(t *testing.T) {
	e := newTestEngine(t)
	fonts := DefaultTuning().BaseFonts

	// 88 wide price plus the 16 gap fits in half of the 260 inner width
	c, err := e.ResolveCard(catalog.Item{Name: "Consultation", Price: "45.00"}, fonts, 300, 20)
	if err != nil {
		t.Fatalf("ResolveCard: %v", err)
	}
	if c.PriceStacked || !approx(c.NameWidth, 156) {
		t.Fatalf("stacked/name column = %v/%v, want inline with 156", c.PriceStacked, c.NameWidth)
	}
	if diff := cmp.Diff([]string{"45.00"}, c.PriceLines); diff != "" {
		t.Fatalf("price lines mismatch (-want +got):\n%s", diff)
	}
	if px, py := c.PriceLineOrigin(0); !approx(px, 300-20-88) || !approx(py, 20) {
		t.Fatalf("inline price origin = %v,%v", px, py)
	}

	// 598.4 wide price cannot share the line with the name
	long := catalog.Item{Name: "Consultation", Price: "od 1200 do 3500 zł za zabieg pełny"}
	c, err = e.ResolveCard(long, fonts, 300, 20)
	if err != nil {
		t.Fatalf("ResolveCard: %v", err)
	}
	if !c.PriceStacked || !approx(c.NameWidth, 260) {
		t.Fatalf("stacked/name column = %v/%v, want stacked with the full 260", c.PriceStacked, c.NameWidth)
	}
	if diff := cmp.Diff([]string{"od 1200 do", "3500 zł za", "zabieg pełny"}, c.PriceLines); diff != "" {
		t.Fatalf("price lines mismatch (-want +got):\n%s", diff)
	}
	if c.PriceWidth > 260 {
		t.Fatalf("price width %v exceeds the inner width", c.PriceWidth)
	}
	lh := 32 * 1.3
	nameBottom := c.Padding + float64(len(c.NameLines))*c.NameLineHeight
	if _, py := c.PriceLineOrigin(0); py < nameBottom-1e-9 {
		t.Fatalf("price top %v overlaps the name block ending at %v", py, nameBottom)
	}
	if want := 20 + lh + 3*lh + 20; !approx(c.Height, want) {
		t.Fatalf("height = %v, want %v with the price lines counted", c.Height, want)
	}

	if _, err := e.ResolveCard(catalog.Item{Name: "x"}, fonts, 40, 20); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for zero inner width, got %v", err)
	}
}

func TestResolveCardTrailingNewline(t *testing.T) {
	e := newTestEngine(t)
	fonts := DefaultTuning().BaseFonts
	plain, err := e.ResolveCard(catalog.Item{Name: "Scaling", Description: "short text", Price: "45.00"}, fonts, 984, 20)
	if err != nil {
		t.Fatalf("ResolveCard: %v", err)
	}
	trailing, err := e.ResolveCard(catalog.Item{Name: "Scaling", Description: "short text\n", Price: "45.00"}, fonts, 984, 20)
	if err != nil {
		t.Fatalf("ResolveCard: %v", err)
	}
	if !approx(plain.Height, trailing.Height) || len(trailing.DescriptionLines) != 1 {
		t.Fatalf("trailing newline changed the card: %v vs %v, lines %q", plain.Height, trailing.Height, trailing.DescriptionLines)
	}
}

func TestBadgePlacement(t *testing.T) {
	e := newTestEngine(t)
	fonts := DefaultTuning().BaseFonts

	c, err := e.ResolveCard(catalog.Item{Name: "Whitening", Price: "45.00", Badge: catalog.BadgeNew}, fonts, 984, 20)
	if err != nil {
		t.Fatalf("ResolveCard: %v", err)
	}
	if !c.BadgeVisible || c.BadgeLabel != "NEW" {
		t.Fatalf("badge = %+v, want visible NEW", c)
	}
	if !approx(c.BadgeX, 9*0.55*32+10) {
		t.Fatalf("badgeX = %v", c.BadgeX)
	}

	full := catalog.Item{Name: strings.Repeat("x", 47), Price: "45.00", Badge: catalog.BadgePromotion}
	c, err = e.ResolveCard(full, fonts, 984, 20)
	if err != nil {
		t.Fatalf("ResolveCard: %v", err)
	}
	if c.BadgeVisible || c.BadgeLabel != "PROMO" {
		t.Fatalf("badge should be omitted when the first line leaves no room: %+v", c)
	}
	if len(c.NameLines) != 1 {
		t.Fatalf("omitting the badge must not rewrap the name: %q", c.NameLines)
	}
}

func TestProposeFontConfig(t *testing.T) {
	tu := DefaultTuning()
	if got := tu.ProposeFontConfig(5, ModeAesthetic); got != tu.BaseFonts {
		t.Fatalf("aesthetic = %+v, want base", got)
	}
	if got := tu.ProposeFontConfig(5, ModeReadability); got != tu.BaseFonts.Offset(4) {
		t.Fatalf("readability = %+v, want base+4", got)
	}
	if got := tu.ProposeFontConfig(6, ModeMaxItems); got != tu.BaseFonts {
		t.Fatalf("maxItems at 6 items = %+v, want base", got)
	}
	f12 := tu.ProposeFontConfig(12, ModeMaxItems)
	if !approx(f12.ItemName, 32*0.76) {
		t.Fatalf("maxItems at 12 items name = %v, want %v", f12.ItemName, 32*0.76)
	}
	f40 := tu.ProposeFontConfig(40, ModeMaxItems)
	if f40.ItemName >= f12.ItemName {
		t.Fatalf("more items should give smaller fonts: %v >= %v", f40.ItemName, f12.ItemName)
	}
	if f40.AtLeast(tu.FontFloor) != f40 {
		t.Fatalf("floor violated: %+v", f40)
	}

	f := tu.BaseFonts
	for i := 0; i < 20; i++ {
		f = tu.Shrink(f)
	}
	if f != tu.FontFloor {
		t.Fatalf("repeated shrink = %+v, want floors %+v", f, tu.FontFloor)
	}
	if ProposeFontConfig(3, ModeAesthetic) != tu.BaseFonts {
		t.Fatalf("package ProposeFontConfig should use default tuning")
	}
}

func TestBreakIntoPagesTwelveItems(t *testing.T) {
	e := newTestEngine(t)
	fonts := e.Tuning().BaseFonts
	cfg := DefaultPagination()
	list := items(12, "")
	h, err := e.EstimateHeight(list[0], fonts, cfg.CardWidth(), 20)
	if err != nil {
		t.Fatal(err)
	}
	cfg.MaxItemsPerPage = 6
	cfg.PreferredItemsPerPage = 6
	cfg.PageHeight = cfg.HeaderReserve + cfg.FooterReserve + 6*(h+cfg.CardGap) + 10

	p, err := e.BreakIntoPages(list, cfg, fonts, 20)
	if err != nil {
		t.Fatalf("BreakIntoPages: %v", err)
	}
	if p.TotalPages != 2 || p.Pages[0].ItemCount != 6 || p.Pages[1].ItemCount != 6 {
		t.Fatalf("pages = %d (%v), want 2x6", p.TotalPages, counts(p))
	}
	if p.AverageItemsPerPage != 6 {
		t.Fatalf("average = %v", p.AverageItemsPerPage)
	}
	if p.UtilizationRate < 0.95 || p.UtilizationRate > 1 {
		t.Fatalf("utilization = %v, want close to 1", p.UtilizationRate)
	}
	if diff := cmp.Diff(list, p.Items()); diff != "" {
		t.Fatalf("items lost or reordered (-want +got):\n%s", diff)
	}
}

func TestBreakIntoPagesMaxItemsCap(t *testing.T) {
	e := newTestEngine(t)
	cfg := DefaultPagination()
	cfg.PageHeight = 10000
	cfg.MinItemsPerPage, cfg.PreferredItemsPerPage, cfg.MaxItemsPerPage = 1, 3, 4
	p, err := e.BreakIntoPages(items(10, ""), cfg, e.Tuning().BaseFonts, 20)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{4, 4, 2}, counts(p)); diff != "" {
		t.Fatalf("page sizes (-want +got):\n%s", diff)
	}
}

func TestBreakIntoPagesProperties(t *testing.T) {
	e := newTestEngine(t)
	fonts := e.Tuning().BaseFonts
	descs := []string{"", "Short note", strings.Repeat("long description words ", 12), strings.Repeat("enormous ", 400)}
	var list []catalog.Item
	for i := 0; i < 23; i++ {
		list = append(list, catalog.Item{Name: thirtyChar(i), Description: descs[i%len(descs)], Price: "12.50"})
	}
	for _, pageHeight := range []float64{700, 1080, 1350, 1920} {
		cfg := DefaultPagination()
		cfg.PageHeight = pageHeight
		p, err := e.BreakIntoPages(list, cfg, fonts, 20)
		if err != nil {
			t.Fatalf("height %v: %v", pageHeight, err)
		}
		if diff := cmp.Diff(list, p.Items()); diff != "" {
			t.Fatalf("height %v: items lost or reordered:\n%s", pageHeight, diff)
		}
		if p.UtilizationRate < 0 || p.UtilizationRate > 1 {
			t.Fatalf("height %v: utilization %v out of range", pageHeight, p.UtilizationRate)
		}
		for _, pg := range p.Pages {
			if pg.EstimatedHeight > cfg.AvailableHeight() && pg.ItemCount != 1 {
				t.Fatalf("height %v: page %d with %d items exceeds budget", pageHeight, pg.Number, pg.ItemCount)
			}
			if pg.Overflow != (pg.EstimatedHeight > cfg.AvailableHeight()) {
				t.Fatalf("height %v: page %d overflow flag wrong", pageHeight, pg.Number)
			}
			if len(pg.Cards) != pg.ItemCount || len(pg.Items) != pg.ItemCount {
				t.Fatalf("page %d: cards/items/count disagree", pg.Number)
			}
		}
	}
}

func TestBreakIntoPagesEdgeCases(t *testing.T) {
	e := newTestEngine(t)
	fonts := e.Tuning().BaseFonts
	cfg := DefaultPagination()

	p, err := e.BreakIntoPages(nil, cfg, fonts, 20)
	if err != nil || p.TotalPages != 0 || len(p.Pages) != 0 {
		t.Fatalf("empty input = %+v, %v; want zero pages", p, err)
	}

	// two huge items in a category at the small-category threshold stay together
	cfg.MinItemsPerPage = 2
	huge := items(2, strings.Repeat("enormous ", 400))
	p, err = e.BreakIntoPages(huge, cfg, fonts, 20)
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalPages != 1 || p.Pages[0].ItemCount != 2 || !p.Pages[0].Overflow {
		t.Fatalf("small category = %v pages %v, want one overflowing page of 2", p.TotalPages, counts(p))
	}

	// above the threshold an oversize item gets its own page
	mixed := append(items(1, ""), huge[0], items(1, "")[0])
	p, err = e.BreakIntoPages(mixed, cfg, fonts, 20)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 1, 1}, counts(p)); diff != "" {
		t.Fatalf("oversize item pages (-want +got):\n%s", diff)
	}
	if !p.Pages[1].Overflow || p.Pages[0].Overflow || p.Pages[2].Overflow {
		t.Fatalf("only the oversize page should overflow: %+v", p.Pages)
	}
}

func TestInvalidConfig(t *testing.T) {
	cases := map[string]func(*PaginationConfig){
		"min above max":       func(c *PaginationConfig) { c.MinItemsPerPage, c.MaxItemsPerPage = 9, 8 },
		"preferred above max": func(c *PaginationConfig) { c.PreferredItemsPerPage = 9 },
		"preferred below min": func(c *PaginationConfig) { c.PreferredItemsPerPage = 1 },
		"no available height": func(c *PaginationConfig) { c.HeaderReserve = 1300 },
		"zero page width":     func(c *PaginationConfig) { c.PageWidth = 0 },
		"negative gap":        func(c *PaginationConfig) { c.CardGap = -1 },
		"margins eat width":   func(c *PaginationConfig) { c.SideMargin = 540 },
		"zero max":            func(c *PaginationConfig) { c.MinItemsPerPage, c.PreferredItemsPerPage, c.MaxItemsPerPage = 0, 0, 0 },
		"unknown mode":        func(c *PaginationConfig) { c.QualityMode = "dense" },
		"nan height":          func(c *PaginationConfig) { c.PageHeight = math.NaN() },
	}
	e := newTestEngine(t)
	for name, mutate := range cases {
		cfg := DefaultPagination()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: Validate() = %v, want ErrInvalidConfig", name, err)
		}
		if _, err := e.LayoutCategoryForExport(context.Background(), catalog.Category{Title: "x"}, cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: layout error = %v, want ErrInvalidConfig", name, err)
		}
	}
	if err := DefaultPagination().Validate(); err != nil {
		t.Fatalf("default pagination invalid: %v", err)
	}

	bad := DefaultTuning()
	bad.ShrinkRatio = 1
	if _, err := New(textlayout.FixedAdvance{}, WithTuning(bad)); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected tuning rejection, got %v", err)
	}
	bad = DefaultTuning()
	bad.MinPadding = 30
	if err := bad.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("minPadding above padding accepted: %v", err)
	}
	if _, err := New(nil); err == nil {
		t.Fatalf("nil measurer accepted")
	}
}

func TestParseQualityMode(t *testing.T) {
	for in, want := range map[string]QualityMode{"maxItems": ModeMaxItems, "max-items": ModeMaxItems, "READABILITY": ModeReadability, "": ModeAesthetic} {
		got, err := ParseQualityMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseQualityMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseQualityMode("dense"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestMeasureFailurePropagates(t *testing.T) {
	boom := errors.New("no glyphs")
	m := textlayout.MeasurerFunc(func(string, textlayout.FontSpec) (float64, error) { return 0, boom })
	e, err := New(m, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatal(err)
	}
	cat := catalog.Category{Title: "Hygiene", Items: items(3, "desc")}
	_, err = e.LayoutCategoryForExport(context.Background(), cat, DefaultPagination())
	if !errors.Is(err, ErrMeasure) || !errors.Is(err, boom) {
		t.Fatalf("error = %v, want ErrMeasure wrapping the measurer error", err)
	}
}

func counts(p Pagination) []int {
	out := make([]int, 0, len(p.Pages))
	for _, pg := range p.Pages {
		out = append(out, pg.ItemCount)
	}
	return out
}
