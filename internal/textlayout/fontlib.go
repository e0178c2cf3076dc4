/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// BuiltinFamily is the family name under which RegisterBuiltins installs the Go fonts.
const BuiltinFamily = "Go"

// FontLibrary stores parsed OpenType fonts keyed by family, weight and italic.
// It is loaded once and then shared by measurers and renderers.
type FontLibrary struct {
	mu       sync.RWMutex
	fonts    map[fontKey]*opentype.Font
	fallback string
}

type fontKey struct {
	family string
	weight int
	italic bool
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[fontKey]*opentype.Font)} }

// LoadTTF loads a font file into the library under the given family/weight/italic.
func (fl *FontLibrary) LoadTTF(family string, weight int, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	if err := fl.LoadBytes(family, weight, italic, data); err != nil {
		return fmt.Errorf("font %s: %w", path, err)
	}
	return nil
}

// LoadBytes parses TTF/OTF data and registers it.
func (fl *FontLibrary) LoadBytes(family string, weight int, italic bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %q: %w", family, err)
	}
	if weight == 0 {
		weight = WeightRegular
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
	}
	fl.fonts[fontKey{family: family, weight: weight, italic: italic}] = f
	return nil
}

// RegisterBuiltins installs the Go font family (regular, bold and their italics) and makes
// it the fallback unless another fallback was already set.
func (fl *FontLibrary) RegisterBuiltins() error {
	for _, b := range []struct {
		weight int
		italic bool
		data   []byte
	}{
		{WeightRegular, false, goregular.TTF},
		{WeightBold, false, gobold.TTF},
		{WeightRegular, true, goitalic.TTF},
		{WeightBold, true, gobolditalic.TTF},
	} {
		if err := fl.LoadBytes(BuiltinFamily, b.weight, b.italic, b.data); err != nil {
			return err
		}
	}
	fl.mu.Lock()
	if fl.fallback == "" {
		fl.fallback = BuiltinFamily
	}
	fl.mu.Unlock()
	return nil
}

// SetFallback names the family used when a requested family is not loaded.
func (fl *FontLibrary) SetFallback(family string) {
	fl.mu.Lock()
	fl.fallback = family
	fl.mu.Unlock()
}

// Families lists loaded family names in sorted order.
func (fl *FontLibrary) Families() []string {
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for k := range fl.fonts {
		if !seen[k.family] {
			seen[k.family] = true
			out = append(out, k.family)
		}
	}
	sort.Strings(out)
	return out
}

// Resolve finds the best loaded font for spec: exact match, then the nearest weight with
// the same slant, then any style of the family, then the fallback family.
func (fl *FontLibrary) Resolve(spec FontSpec) (*opentype.Font, error) {
	if fl == nil {
		return nil, fmt.Errorf("%w: %q (no library)", ErrUnknownFont, spec.Family)
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	if f := fl.findLocked(spec); f != nil {
		return f, nil
	}
	if fl.fallback != "" && fl.fallback != spec.Family {
		fb := spec
		fb.Family = fl.fallback
		if f := fl.findLocked(fb); f != nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFont, spec.Family)
}

func (fl *FontLibrary) findLocked(spec FontSpec) *opentype.Font {
	weight := spec.Weight
	if weight == 0 {
		weight = WeightRegular
	}
	if f, ok := fl.fonts[fontKey{family: spec.Family, weight: weight, italic: spec.Italic}]; ok {
		return f
	}
	var best *opentype.Font
	bestScore, bestWeight := -1, 0
	for k, f := range fl.fonts {
		if k.family != spec.Family {
			continue
		}
		score := abs(k.weight - weight)
		if k.italic != spec.Italic {
			score += 1000
		}
		// ties go to the lighter weight so the pick does not depend on map order
		if best == nil || score < bestScore || (score == bestScore && k.weight < bestWeight) {
			best, bestScore, bestWeight = f, score, k.weight
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
