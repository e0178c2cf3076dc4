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

import "image/color"

// Theme holds the colors a renderer paints with.
type Theme struct {
	Background     color.RGBA
	Card           color.RGBA
	CardBorder     color.RGBA
	Text           color.RGBA
	Muted          color.RGBA
	Price          color.RGBA
	BadgePromotion color.RGBA
	BadgeNew       color.RGBA
	BadgeText      color.RGBA
}

// DefaultTheme is a neutral light palette.
func DefaultTheme() Theme {
	return Theme{
		Background:     color.RGBA{R: 246, G: 244, B: 240, A: 255},
		Card:           color.RGBA{R: 255, G: 255, B: 255, A: 255},
		CardBorder:     color.RGBA{R: 220, G: 216, B: 208, A: 255},
		Text:           color.RGBA{R: 33, G: 33, B: 33, A: 255},
		Muted:          color.RGBA{R: 110, G: 110, B: 110, A: 255},
		Price:          color.RGBA{R: 20, G: 90, B: 140, A: 255},
		BadgePromotion: color.RGBA{R: 200, G: 40, B: 60, A: 255},
		BadgeNew:       color.RGBA{R: 30, G: 140, B: 80, A: 255},
		BadgeText:      color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

func (t Theme) orDefault() Theme {
	if t == (Theme{}) {
		return DefaultTheme()
	}
	return t
}
