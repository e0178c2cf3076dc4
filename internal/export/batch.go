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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pricecards/internal/cardlayout"
	"pricecards/internal/catalog"
	applog "pricecards/internal/log"
)

// Output formats understood by Batch.
const (
	FormatPNG = "png"
	FormatPDF = "pdf"
	FormatZip = "zip"
)

// BatchOptions controls a batch export over every category of a source.
//
// Layout per category, under OutDir/<category-slug>/:
//   - page-<n>.png for the png format
//   - <slug>.pdf and <slug>.zip for the pdf and zip formats
//   - thumbs/page-<n>.jpg when Thumbs is set
//
// A manifest.json describing the run is written to OutDir.
type BatchOptions struct {
	Canvas     Canvas
	Pagination cardlayout.PaginationConfig // PageWidth/PageHeight are taken from Canvas when set
	Formats    []string                    // empty means the canvas preset defaults
	Categories []string                    // titles to export; empty means all
	Thumbs     bool
	ThumbWidth int
	OutDir     string
	// Concurrency bounds the categories laid out and rendered at once; <= 0 means 4.
	Concurrency int
}

// Manifest is the batch report written to manifest.json.
type Manifest struct {
	RunID      string           `json:"runId"`
	CreatedAt  time.Time        `json:"createdAt"`
	Canvas     Canvas           `json:"canvas"`
	Formats    []string         `json:"formats"`
	Categories []CategoryReport `json:"categories"`
}

// CategoryReport is the outcome for one category.
type CategoryReport struct {
	Title        string                 `json:"title"`
	Slug         string                 `json:"slug"`
	Items        int                    `json:"items"`
	Mode         cardlayout.QualityMode `json:"mode"`
	Status       cardlayout.Status      `json:"status"`
	Pages        int                    `json:"pages"`
	Utilization  float64                `json:"utilization"`
	ShrinkPasses int                    `json:"shrinkPasses"`
	Fonts        cardlayout.FontConfig  `json:"fonts"`
	Files        []string               `json:"files"`
}

// Overflowing reports whether any category finished with overflow.
func (m Manifest) Overflowing() bool {
	for _, c := range m.Categories {
		if c.Status == cardlayout.StatusDoneWithOverflow {
			return true
		}
	}
	return false
}

// Batch lays out and exports categories from src concurrently. The first failure cancels
// the remaining work. Manifest entries keep the source order.
func Batch(ctx context.Context, src catalog.Source, eng *cardlayout.Engine, r *Renderer, opt BatchOptions) (Manifest, error) {
	if src == nil || eng == nil || r == nil {
		return Manifest{}, errors.New("batch: source, engine and renderer are required")
	}
	if strings.TrimSpace(opt.OutDir) == "" {
		return Manifest{}, errors.New("batch: output directory is required")
	}
	formats, err := normalizeFormats(opt.Formats, opt.Canvas)
	if err != nil {
		return Manifest{}, err
	}
	cfg := opt.Pagination
	if opt.Canvas.Width > 0 && opt.Canvas.Height > 0 {
		cfg.PageWidth, cfg.PageHeight = float64(opt.Canvas.Width), float64(opt.Canvas.Height)
	}
	if err := cfg.Validate(); err != nil {
		return Manifest{}, err
	}

	cats, err := src.Categories(ctx)
	if err != nil {
		return Manifest{}, fmt.Errorf("load categories: %w", err)
	}
	cats, err = selectCategories(cats, opt.Categories)
	if err != nil {
		return Manifest{}, err
	}

	runID := uuid.NewString()
	l := applog.WithOperation(applog.WithComponent("export"), "batch").With(slog.String("run", runID))
	l.Info("batch export started", slog.Int("categories", len(cats)), slog.String("out", opt.OutDir),
		slog.String("formats", strings.Join(formats, ",")))

	man := Manifest{
		RunID:      runID,
		CreatedAt:  time.Now().UTC(),
		Canvas:     opt.Canvas,
		Formats:    formats,
		Categories: make([]CategoryReport, len(cats)),
	}
	slugs := uniqueSlugs(cats)

	limit := opt.Concurrency
	if limit <= 0 {
		limit = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, cat := range cats {
		i, cat := i, cat
		g.Go(func() error {
			rep, err := exportCategory(ctx, eng, r, cat, cfg, slugs[i], formats, opt)
			if err != nil {
				return fmt.Errorf("category %q: %w", cat.Title, err)
			}
			man.Categories[i] = rep
			l.Debug("category exported", slog.String("category", cat.Title), slog.Int("pages", rep.Pages),
				slog.String("status", string(rep.Status)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return man, err
	}

	if err := writeManifest(filepath.Join(opt.OutDir, "manifest.json"), man); err != nil {
		return man, err
	}
	if man.Overflowing() {
		l.Warn("some categories overflow their pages")
	}
	l.Info("batch export finished", slog.Int("categories", len(cats)))
	return man, nil
}

func exportCategory(ctx context.Context, eng *cardlayout.Engine, r *Renderer, cat catalog.Category, cfg cardlayout.PaginationConfig,
	slug string, formats []string, opt BatchOptions) (CategoryReport, error) {
	lay, err := eng.LayoutCategoryForExport(ctx, cat, cfg)
	if err != nil {
		return CategoryReport{}, err
	}
	rep := CategoryReport{
		Title:        cat.Title,
		Slug:         slug,
		Items:        len(cat.Items),
		Mode:         lay.Mode,
		Status:       lay.Status,
		Pages:        lay.TotalPages,
		Utilization:  lay.UtilizationRate,
		ShrinkPasses: lay.ShrinkPasses,
		Fonts:        lay.Fonts,
	}
	dir := filepath.Join(opt.OutDir, slug)
	for _, f := range formats {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		switch f {
		case FormatPNG:
			files, err := r.ExportPNGPages(lay, dir, PNGOptions{})
			if err != nil {
				return rep, fmt.Errorf("png: %w", err)
			}
			rep.Files = append(rep.Files, files...)
		case FormatPDF:
			out := filepath.Join(dir, slug+".pdf")
			if err := WritePDF(lay, out, PDFOptions{Theme: r.Theme, Title: r.Title}); err != nil {
				return rep, fmt.Errorf("pdf: %w", err)
			}
			rep.Files = append(rep.Files, out)
		case FormatZip:
			out, err := r.WriteBundle(lay, filepath.Join(dir, slug+".zip"))
			if err != nil {
				return rep, fmt.Errorf("zip: %w", err)
			}
			rep.Files = append(rep.Files, out)
		}
	}
	if opt.Thumbs {
		for i := range lay.Pages {
			img, err := r.RenderPage(lay, i)
			if err != nil {
				return rep, err
			}
			out := filepath.Join(dir, "thumbs", fmt.Sprintf("page-%d.jpg", i+1))
			if err := SaveThumbnail(img, opt.ThumbWidth, out); err != nil {
				return rep, err
			}
			rep.Files = append(rep.Files, out)
		}
	}
	return rep, nil
}

func normalizeFormats(in []string, c Canvas) ([]string, error) {
	if len(in) == 0 {
		return presetDefaultFormats(c), nil
	}
	seen := map[string]bool{}
	var out []string
	for _, f := range in {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case FormatPNG, FormatPDF, FormatZip:
		case "":
			continue
		default:
			return nil, fmt.Errorf("unknown format: %s", f)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

func selectCategories(all []catalog.Category, titles []string) ([]catalog.Category, error) {
	if len(titles) == 0 {
		return all, nil
	}
	out := make([]catalog.Category, 0, len(titles))
	for _, t := range titles {
		c, ok := catalog.Find(all, t)
		if !ok {
			return nil, fmt.Errorf("category %q not found", t)
		}
		out = append(out, c)
	}
	return out, nil
}

// uniqueSlugs suffixes repeated slugs with -2, -3, ... skipping any suffix already taken,
// so no two categories share an output directory.
func uniqueSlugs(cats []catalog.Category) []string {
	out := make([]string, len(cats))
	used := make(map[string]bool, len(cats))
	for i, c := range cats {
		base := catalog.Slug(c.Title)
		s := base
		for n := 2; used[s]; n++ {
			s = fmt.Sprintf("%s-%d", base, n)
		}
		used[s] = true
		out[i] = s
	}
	return out
}

func writeManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by Batch.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}
