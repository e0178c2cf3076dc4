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
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"pricecards/internal/cardlayout"
	"pricecards/internal/catalog"
	"pricecards/internal/textlayout"
)

// FaceSource hands out font faces under its own synchronization.
// textlayout.FaceMeasurer implements it, so pages are drawn with the faces they were measured with.
type FaceSource interface {
	WithFace(spec textlayout.FontSpec, fn func(font.Face) error) error
}

// Renderer paints resolved layouts. It never re-wraps text: every line and offset comes
// from the cardlayout.Layout it is given.
type Renderer struct {
	Faces FaceSource
	Theme Theme
	// Title is drawn as the page header above the category title; empty skips it.
	Title string
}

// NewRenderer returns a renderer with the default theme.
func NewRenderer(faces FaceSource, title string) *Renderer {
	return &Renderer{Faces: faces, Theme: DefaultTheme(), Title: title}
}

// PNGOptions selects the pages written by ExportPNGPages.
type PNGOptions struct {
	Pages []int // zero-based indexes; empty means all
}

// RenderPage paints page idx of lay.
func (r *Renderer) RenderPage(lay cardlayout.Layout, idx int) (*image.RGBA, error) {
	if r.Faces == nil {
		return nil, errors.New("renderer has no face source")
	}
	if idx < 0 || idx >= len(lay.Pages) {
		return nil, fmt.Errorf("page index %d out of range (%d pages)", idx, len(lay.Pages))
	}
	th := r.Theme.orDefault()
	cfg := lay.Config
	pixW := int(math.Round(cfg.PageWidth))
	pixH := int(math.Round(cfg.PageHeight))
	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: th.Background}, image.Point{}, draw.Src)

	p := painter{img: img, faces: r.Faces, family: lay.Family, leading: lay.Leading}

	// header
	top := cfg.SideMargin / 2
	if r.Title != "" {
		lh := lay.Fonts.PageHeader * lay.Leading
		if err := p.text(textlayout.RolePageHeader, lay.Fonts.PageHeader, r.Title, cfg.SideMargin, top, lh, th.Text); err != nil {
			return nil, err
		}
		top += lh
	}
	if err := p.text(textlayout.RoleCategoryHeader, lay.Fonts.CategoryHeader, lay.Category, cfg.SideMargin, top,
		lay.Fonts.CategoryHeader*lay.Leading, th.Text); err != nil {
		return nil, err
	}

	// cards
	y := cfg.HeaderReserve
	for _, c := range lay.Pages[idx].Cards {
		if err := p.card(c, lay.Fonts, cfg.SideMargin, y, th); err != nil {
			return nil, err
		}
		y += c.Height + cfg.CardGap
	}

	// footer counter
	if lay.TotalPages > 1 {
		label := fmt.Sprintf("%d / %d", idx+1, lay.TotalPages)
		size := lay.Fonts.ItemDescription
		lh := size * lay.Leading
		w, err := p.width(textlayout.RoleFooter, size, label)
		if err != nil {
			return nil, err
		}
		footTop := cfg.PageHeight - cfg.FooterReserve + (cfg.FooterReserve-lh)/2
		if err := p.text(textlayout.RoleFooter, size, label, cfg.PageWidth-cfg.SideMargin-w, footTop, lh, th.Muted); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// WritePNG encodes page idx of lay to w.
func (r *Renderer) WritePNG(w io.Writer, lay cardlayout.Layout, idx int) error {
	img, err := r.RenderPage(lay, idx)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ExportPNGPages writes page-<n>.png files into outDir and returns their paths.
func (r *Renderer) ExportPNGPages(lay cardlayout.Layout, outDir string, opt PNGOptions) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	var out []string
	for _, idx := range pageIndexes(len(lay.Pages), opt.Pages) {
		if idx < 0 || idx >= len(lay.Pages) {
			continue
		}
		name := filepath.Join(outDir, pageFileName(idx))
		f, err := os.Create(name)
		if err != nil {
			return out, fmt.Errorf("create png: %w", err)
		}
		if err := r.WritePNG(f, lay, idx); err != nil {
			_ = f.Close()
			return out, err
		}
		if err := f.Close(); err != nil {
			return out, fmt.Errorf("close png: %w", err)
		}
		out = append(out, name)
	}
	return out, nil
}

func pageFileName(idx int) string { return fmt.Sprintf("page-%d.png", idx+1) }

func pageIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return specific
}

type painter struct {
	img     *image.RGBA
	faces   FaceSource
	family  string
	leading float64
}

func (p painter) card(c cardlayout.Card, fonts cardlayout.FontConfig, x, y float64, th Theme) error {
	x0, y0 := int(math.Round(x)), int(math.Round(y))
	x1, y1 := int(math.Round(x+c.Width))-1, int(math.Round(y+c.Height))-1
	fillRect(p.img, x0, y0, x1, y1, th.Card)
	strokeRect(p.img, x0, y0, x1, y1, th.CardBorder)

	left := x + c.Padding
	for i, line := range c.NameLines {
		if err := p.text(textlayout.RoleItemName, fonts.ItemName, line, left, y+c.Padding+float64(i)*c.NameLineHeight, c.NameLineHeight, th.Text); err != nil {
			return err
		}
	}
	for i, line := range c.PriceLines {
		dx, dy := c.PriceLineOrigin(i)
		if err := p.text(textlayout.RolePrice, fonts.Price, line, x+dx, y+dy, c.PriceLineHeight, th.Price); err != nil {
			return err
		}
	}
	if c.BadgeVisible {
		bh := c.BadgeSize * p.leading
		bx := left + c.BadgeX
		by := y + c.Padding + (c.NameLineHeight-bh)/2
		bg := th.BadgeNew
		if c.Item.Badge == catalog.BadgePromotion {
			bg = th.BadgePromotion
		}
		fillRect(p.img, int(math.Round(bx)), int(math.Round(by)), int(math.Round(bx+c.BadgeWidth))-1, int(math.Round(by+bh))-1, bg)
		if err := p.text(textlayout.RoleBadge, c.BadgeSize, c.BadgeLabel, bx+c.BadgeSize/2, by, bh, th.BadgeText); err != nil {
			return err
		}
	}
	for i, line := range c.DescriptionLines {
		if err := p.text(textlayout.RoleDescription, fonts.ItemDescription, line, left, y+c.DescriptionTop+float64(i)*c.DescriptionLineHeight, c.DescriptionLineHeight, th.Muted); err != nil {
			return err
		}
	}
	return nil
}

// text draws s with its baseline centred in the line box starting at top.
func (p painter) text(role textlayout.Role, size float64, s string, x, top, lineHeight float64, col color.RGBA) error {
	if s == "" {
		return nil
	}
	return p.faces.WithFace(textlayout.SpecFor(role, p.family, size), func(face font.Face) error {
		m := face.Metrics()
		asc, desc := float64(m.Ascent)/64, float64(m.Descent)/64
		baseline := top + (lineHeight-(asc+desc))/2 + asc
		d := font.Drawer{
			Dst:  p.img,
			Src:  image.NewUniform(col),
			Face: face,
			Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(baseline)},
		}
		d.DrawString(s)
		return nil
	})
}

func (p painter) width(role textlayout.Role, size float64, s string) (float64, error) {
	var w float64
	err := p.faces.WithFace(textlayout.SpecFor(role, p.family, size), func(face font.Face) error {
		w = float64(font.MeasureString(face, s)) / 64
		return nil
	})
	return w, err
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	draw.Draw(img, image.Rect(x0, y0, x1+1, y1+1), &image.Uniform{C: col}, image.Point{}, draw.Src)
}
