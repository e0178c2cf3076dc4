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
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"pricecards/internal/cardlayout"
	"pricecards/internal/catalog"
)

func TestBatchExport(t *testing.T) {
	eng, r := newFixture(t)
	canvas, _ := Preset("square")
	src := catalog.StaticSource{
		sampleCategory(3),
		{Title: "Implants", Items: []catalog.Item{{Name: "Single implant", Price: "1800 EUR", Badge: catalog.BadgeNew}}},
		{Title: "implants", Items: []catalog.Item{{Name: "Bone graft", Price: "450 EUR"}}},
	}
	out := t.TempDir()
	man, err := Batch(context.Background(), src, eng, r, BatchOptions{
		Canvas:      canvas,
		Pagination:  cardlayout.DefaultPagination(),
		Formats:     []string{"png", "PDF", "zip", "png"},
		Thumbs:      true,
		OutDir:      out,
		Concurrency: 2,
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if _, err := uuid.Parse(man.RunID); err != nil {
		t.Fatalf("run id %q: %v", man.RunID, err)
	}
	if len(man.Formats) != 3 {
		t.Fatalf("formats not normalized: %v", man.Formats)
	}
	if len(man.Categories) != 3 {
		t.Fatalf("categories = %d", len(man.Categories))
	}
	wantSlugs := []string{"hygiene-prevention", "implants", "implants-2"}
	for i, rep := range man.Categories {
		if rep.Slug != wantSlugs[i] {
			t.Fatalf("slug %d = %q, want %q", i, rep.Slug, wantSlugs[i])
		}
		if rep.Status != cardlayout.StatusDone || rep.Pages != 1 {
			t.Fatalf("%s: status %s pages %d", rep.Title, rep.Status, rep.Pages)
		}
		for _, f := range rep.Files {
			if st, err := os.Stat(f); err != nil || st.Size() == 0 {
				t.Fatalf("missing output %s: %v", f, err)
			}
		}
	}
	w, h, err := decodePNGSize(filepath.Join(out, "implants", "page-1.png"))
	if err != nil || w != 1080 || h != 1080 {
		t.Fatalf("page size %dx%d, %v", w, h, err)
	}
	for _, p := range []string{
		filepath.Join(out, "implants", "implants.pdf"),
		filepath.Join(out, "implants", "implants.zip"),
		filepath.Join(out, "implants", "thumbs", "page-1.jpg"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
	}

	read, err := ReadManifest(filepath.Join(out, "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if read.RunID != man.RunID || len(read.Categories) != 3 {
		t.Fatalf("manifest round trip = %+v", read)
	}
}

func TestBatchSelectionAndErrors(t *testing.T) {
	eng, r := newFixture(t)
	src := catalog.StaticSource{sampleCategory(2), {Title: "Whitening", Items: []catalog.Item{{Name: "In-office", Price: "300"}}}}
	canvas, _ := Preset("portrait")
	opt := BatchOptions{Canvas: canvas, Pagination: cardlayout.DefaultPagination(), OutDir: t.TempDir(), Categories: []string{"whitening"}}

	man, err := Batch(context.Background(), src, eng, r, opt)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(man.Categories) != 1 || man.Categories[0].Title != "Whitening" {
		t.Fatalf("selection = %+v", man.Categories)
	}
	if len(man.Formats) != 1 || man.Formats[0] != FormatPNG {
		t.Fatalf("portrait default formats = %v", man.Formats)
	}

	opt.Categories = []string{"Orthodontics"}
	if _, err := Batch(context.Background(), src, eng, r, opt); err == nil {
		t.Fatalf("expected missing category error")
	}
	opt.Categories = nil
	opt.Formats = []string{"gif"}
	if _, err := Batch(context.Background(), src, eng, r, opt); err == nil {
		t.Fatalf("expected unknown format error")
	}
	opt.Formats = nil
	opt.OutDir = ""
	if _, err := Batch(context.Background(), src, eng, r, opt); err == nil {
		t.Fatalf("expected missing out dir error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opt.OutDir = t.TempDir()
	if _, err := Batch(ctx, src, eng, r, opt); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func decodePNGSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = f.Close() }()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func TestUniqueSlugs(t *testing.T) {
	cases := []struct {
		name   string
		titles []string
		want   []string
	}{
		{"repeat then literal suffix", []string{"Laser", "Laser", "Laser 2"}, []string{"laser", "laser-2", "laser-2-2"}},
		{"literal suffix then repeat", []string{"Laser", "Laser 2", "Laser"}, []string{"laser", "laser-2", "laser-3"}},
		{"distinct", []string{"Hygiene", "Implants"}, []string{"hygiene", "implants"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cats := make([]catalog.Category, len(tc.titles))
			for i, title := range tc.titles {
				cats[i] = catalog.Category{Title: title}
			}
			got := uniqueSlugs(cats)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("slugs mismatch (-want +got):\n%s", diff)
			}
			seen := map[string]bool{}
			for _, s := range got {
				if seen[s] {
					t.Fatalf("duplicate slug %q in %v", s, got)
				}
				seen[s] = true
			}
		})
	}
}
