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
	"fmt"
	"math"
)

// FontConfig holds the font size of each text role, in canvas pixels.
type FontConfig struct {
	ItemName        float64 `json:"itemName" yaml:"item_name"`
	ItemDescription float64 `json:"itemDescription" yaml:"item_description"`
	Price           float64 `json:"price" yaml:"price"`
	CategoryHeader  float64 `json:"categoryHeader" yaml:"category_header"`
	PageHeader      float64 `json:"pageHeader" yaml:"page_header"`
}

// Validate requires every size to be positive and finite.
func (f FontConfig) Validate() error {
	for _, s := range f.sizes() {
		if !(s.v > 0) || math.IsInf(s.v, 0) {
			return fmt.Errorf("%w: font size %s %.2f must be > 0", ErrInvalidConfig, s.name, s.v)
		}
	}
	return nil
}

type namedSize struct {
	name string
	v    float64
}

func (f FontConfig) sizes() []namedSize {
	return []namedSize{
		{"itemName", f.ItemName},
		{"itemDescription", f.ItemDescription},
		{"price", f.Price},
		{"categoryHeader", f.CategoryHeader},
		{"pageHeader", f.PageHeader},
	}
}

// Scale multiplies every size by k.
func (f FontConfig) Scale(k float64) FontConfig {
	return FontConfig{
		ItemName:        f.ItemName * k,
		ItemDescription: f.ItemDescription * k,
		Price:           f.Price * k,
		CategoryHeader:  f.CategoryHeader * k,
		PageHeader:      f.PageHeader * k,
	}
}

// Offset adds d to every size.
func (f FontConfig) Offset(d float64) FontConfig {
	return FontConfig{
		ItemName:        f.ItemName + d,
		ItemDescription: f.ItemDescription + d,
		Price:           f.Price + d,
		CategoryHeader:  f.CategoryHeader + d,
		PageHeader:      f.PageHeader + d,
	}
}

// AtLeast raises each size to the matching floor.
func (f FontConfig) AtLeast(floor FontConfig) FontConfig {
	return FontConfig{
		ItemName:        math.Max(f.ItemName, floor.ItemName),
		ItemDescription: math.Max(f.ItemDescription, floor.ItemDescription),
		Price:           math.Max(f.Price, floor.Price),
		CategoryHeader:  math.Max(f.CategoryHeader, floor.CategoryHeader),
		PageHeader:      math.Max(f.PageHeader, floor.PageHeader),
	}
}

// ProposeFontConfig picks the starting sizes for itemCount items in the given mode.
// aesthetic uses the base sizes, readability adds ReadabilityOffset, and maxItems
// takes DensityStep off the base for every item above DensityFrom, down to
// DensityMinScale. The floor is always applied.
func (t Tuning) ProposeFontConfig(itemCount int, mode QualityMode) FontConfig {
	base := t.BaseFonts
	switch mode {
	case ModeReadability:
		base = base.Offset(t.ReadabilityOffset)
	case ModeMaxItems:
		base = base.Scale(t.densityScale(itemCount))
	}
	return base.AtLeast(t.FontFloor)
}

func (t Tuning) densityScale(itemCount int) float64 {
	extra := itemCount - t.DensityFrom
	if extra <= 0 {
		return 1
	}
	return math.Max(t.DensityMinScale, 1-t.DensityStep*float64(extra))
}

// Shrink applies ShrinkRatio once, never going below the floor.
func (t Tuning) Shrink(f FontConfig) FontConfig {
	return f.Scale(t.ShrinkRatio).AtLeast(t.FontFloor)
}

// ProposeFontConfig is DefaultTuning().ProposeFontConfig.
func ProposeFontConfig(itemCount int, mode QualityMode) FontConfig {
	return DefaultTuning().ProposeFontConfig(itemCount, mode)
}
