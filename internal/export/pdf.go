/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"pricecards/internal/cardlayout"
	"pricecards/internal/catalog"
)

// PDFOptions controls PDF export. Page size in points equals the canvas size in pixels.
type PDFOptions struct {
	Theme  Theme
	Title  string
	Author string
	Pages  []int // zero-based indexes; empty means all
}

// WritePDF writes the layout as a multi-page PDF using the Helvetica core font. Lines are
// taken from the layout as-is; Helvetica metrics differ from the measured faces, so
// horizontal extents are approximate while line positions match the raster pages.
func WritePDF(lay cardlayout.Layout, outPath string, opt PDFOptions) error {
	th := opt.Theme.orDefault()
	cfg := lay.Config
	size := gofpdf.SizeType{Wd: cfg.PageWidth, Ht: cfg.PageHeight}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	title := lay.Category
	if opt.Title != "" {
		title = opt.Title + " - " + lay.Category
	}
	pdf.SetTitle(title, true)
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	text := func(style string, fontSize float64, s string, x, top, lineHeight float64, c color.RGBA) {
		if s == "" {
			return
		}
		pdf.SetFont("Helvetica", style, fontSize)
		setTextColor(pdf, c)
		// Helvetica ascent is about 0.72em, descent 0.21em
		baseline := top + (lineHeight-0.93*fontSize)/2 + 0.72*fontSize
		pdf.Text(x, baseline, tr(s))
	}

	for _, idx := range pageIndexes(len(lay.Pages), opt.Pages) {
		if idx < 0 || idx >= len(lay.Pages) {
			continue
		}
		pdf.AddPageFormat("P", size)
		setFillColor(pdf, th.Background)
		pdf.Rect(0, 0, cfg.PageWidth, cfg.PageHeight, "F")

		top := cfg.SideMargin / 2
		if opt.Title != "" {
			lh := lay.Fonts.PageHeader * lay.Leading
			text("B", lay.Fonts.PageHeader, opt.Title, cfg.SideMargin, top, lh, th.Text)
			top += lh
		}
		text("B", lay.Fonts.CategoryHeader, lay.Category, cfg.SideMargin, top, lay.Fonts.CategoryHeader*lay.Leading, th.Text)

		y := cfg.HeaderReserve
		for _, c := range lay.Pages[idx].Cards {
			x := cfg.SideMargin
			setFillColor(pdf, th.Card)
			setDrawColor(pdf, th.CardBorder)
			pdf.SetLineWidth(1)
			pdf.Rect(x, y, c.Width, c.Height, "FD")

			left := x + c.Padding
			for i, line := range c.NameLines {
				text("B", lay.Fonts.ItemName, line, left, y+c.Padding+float64(i)*c.NameLineHeight, c.NameLineHeight, th.Text)
			}
			for i, line := range c.PriceLines {
				dx, dy := c.PriceLineOrigin(i)
				text("B", lay.Fonts.Price, line, x+dx, y+dy, c.PriceLineHeight, th.Price)
			}
			if c.BadgeVisible {
				bh := c.BadgeSize * lay.Leading
				bx := left + c.BadgeX
				by := y + c.Padding + (c.NameLineHeight-bh)/2
				bg := th.BadgeNew
				if c.Item.Badge == catalog.BadgePromotion {
					bg = th.BadgePromotion
				}
				setFillColor(pdf, bg)
				pdf.Rect(bx, by, c.BadgeWidth, bh, "F")
				text("B", c.BadgeSize, c.BadgeLabel, bx+c.BadgeSize/2, by, bh, th.BadgeText)
			}
			for i, line := range c.DescriptionLines {
				text("", lay.Fonts.ItemDescription, line, left, y+c.DescriptionTop+float64(i)*c.DescriptionLineHeight, c.DescriptionLineHeight, th.Muted)
			}
			y += c.Height + cfg.CardGap
		}

		if lay.TotalPages > 1 {
			label := fmt.Sprintf("%d / %d", idx+1, lay.TotalPages)
			fs := lay.Fonts.ItemDescription
			pdf.SetFont("Helvetica", "I", fs)
			w := pdf.GetStringWidth(label)
			lh := fs * lay.Leading
			text("I", fs, label, cfg.PageWidth-cfg.SideMargin-w, cfg.PageHeight-cfg.FooterReserve+(cfg.FooterReserve-lh)/2, lh, th.Muted)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) { pdf.SetDrawColor(int(c.R), int(c.G), int(c.B)) }

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) { pdf.SetFillColor(int(c.R), int(c.G), int(c.B)) }

func setTextColor(pdf *gofpdf.Fpdf, c color.RGBA) { pdf.SetTextColor(int(c.R), int(c.G), int(c.B)) }
