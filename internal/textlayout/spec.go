/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package textlayout measures and wraps text for card layout. Measurement is behind
// the Measurer interface so layout code can run against real font faces or a
// deterministic advance model in tests.
package textlayout

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownFont is returned when a family cannot be resolved and no fallback is set.
	ErrUnknownFont = errors.New("unknown font")
	// ErrInvalidFontSize is returned for non-positive or non-finite sizes.
	ErrInvalidFontSize = errors.New("invalid font size")
)

// Common weights.
const (
	WeightRegular = 400
	WeightBold    = 700
)

// FontSpec describes a requested font. Size is in layout units (pixels of the output canvas).
type FontSpec struct {
	Family string
	Size   float64
	Weight int // 100..900, zero means regular
	Italic bool
}

// Bold reports whether the weight falls in the bold range.
func (s FontSpec) Bold() bool { return s.Weight >= 600 }

func (s FontSpec) String() string {
	st := "regular"
	if s.Bold() {
		st = "bold"
	}
	if s.Italic {
		st += "-italic"
	}
	return fmt.Sprintf("%s %s %.2f", s.Family, st, s.Size)
}

func checkSize(s FontSpec) error {
	if s.Size <= 0 || math.IsNaN(s.Size) || math.IsInf(s.Size, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidFontSize, s.Size)
	}
	return nil
}

// Measurer returns the rendered width of text in layout units.
// Implementations must be deterministic for identical inputs and safe for concurrent use.
type Measurer interface {
	Measure(text string, font FontSpec) (float64, error)
}

// MeasurerFunc adapts a function to the Measurer interface.
type MeasurerFunc func(text string, font FontSpec) (float64, error)

func (f MeasurerFunc) Measure(text string, font FontSpec) (float64, error) { return f(text, font) }
