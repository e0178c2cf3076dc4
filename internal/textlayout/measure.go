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
	"math"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FaceMeasurer measures text with OpenType faces from a FontLibrary. Faces are created
// lazily per (font, size) and cached. x/image faces are not safe for concurrent use, so
// every access goes through the measurer's lock; renderers use WithFace for the same reason.
type FaceMeasurer struct {
	lib *FontLibrary
	dpi float64

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	font *opentype.Font
	size fixed.Int26_6
}

// NewFaceMeasurer returns a measurer over lib at 72 DPI, so sizes map 1:1 to pixels.
func NewFaceMeasurer(lib *FontLibrary) *FaceMeasurer {
	return &FaceMeasurer{lib: lib, dpi: 72, faces: make(map[faceKey]font.Face)}
}

// Library returns the font library backing the measurer.
func (m *FaceMeasurer) Library() *FontLibrary { return m.lib }

// Measure implements Measurer.
func (m *FaceMeasurer) Measure(text string, spec FontSpec) (float64, error) {
	var w float64
	err := m.WithFace(spec, func(face font.Face) error {
		w = fixedToFloat(font.MeasureString(face, text))
		return nil
	})
	return w, err
}

// WithFace runs fn with the resolved face while holding the measurer lock.
func (m *FaceMeasurer) WithFace(spec FontSpec, fn func(font.Face) error) error {
	if err := checkSize(spec); err != nil {
		return err
	}
	f, err := m.lib.Resolve(spec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := faceKey{font: f, size: floatToFixed(spec.Size)}
	face, ok := m.faces[key]
	if !ok {
		face, err = opentype.NewFace(f, &opentype.FaceOptions{Size: spec.Size, DPI: m.dpi, Hinting: font.HintingNone})
		if err != nil {
			return fmt.Errorf("face %s: %w", spec, err)
		}
		m.faces[key] = face
	}
	return fn(face)
}

// Close releases cached faces.
func (m *FaceMeasurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for k, f := range m.faces {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.faces, k)
	}
	return firstErr
}

// FixedAdvance is a deterministic measurer: every rune advances Factor*Size, bold text
// BoldFactor*Size. Zero factors default to 0.5 and 0.55.
type FixedAdvance struct {
	Factor     float64
	BoldFactor float64
}

func (a FixedAdvance) Measure(text string, spec FontSpec) (float64, error) {
	if err := checkSize(spec); err != nil {
		return 0, err
	}
	f := a.Factor
	if f <= 0 {
		f = 0.5
	}
	if spec.Bold() {
		f = a.BoldFactor
		if f <= 0 {
			f = 0.55
		}
	}
	return float64(utf8.RuneCountInString(text)) * spec.Size * f, nil
}

// BasicMeasurer scales the advances of the 7x13 basicfont face to the requested size.
// It needs no font files and is handy when no TTF is configured.
type BasicMeasurer struct{}

func (BasicMeasurer) Measure(text string, spec FontSpec) (float64, error) {
	if err := checkSize(spec); err != nil {
		return 0, err
	}
	face := basicfont.Face7x13
	adv := fixedToFloat(font.MeasureString(face, text))
	return adv * spec.Size / float64(face.Height), nil
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }
