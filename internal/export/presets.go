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
	"strings"
)

// PresetName names a canvas size.
type PresetName string

const (
	PresetSquare   PresetName = "square"
	PresetPortrait PresetName = "portrait"
	PresetStory    PresetName = "story"
	PresetA4       PresetName = "a4"
)

// Canvas is the pixel size of one exported page.
type Canvas struct {
	Name   PresetName `json:"name"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
}

var presets = map[PresetName]Canvas{
	PresetSquare:   {Name: PresetSquare, Width: 1080, Height: 1080},
	PresetPortrait: {Name: PresetPortrait, Width: 1080, Height: 1350},
	PresetStory:    {Name: PresetStory, Width: 1080, Height: 1920},
	PresetA4:       {Name: PresetA4, Width: 1240, Height: 1754},
}

// Preset looks up a canvas preset by name, case-insensitively. Empty means portrait.
func Preset(name string) (Canvas, error) {
	n := PresetName(strings.ToLower(strings.TrimSpace(name)))
	if n == "" {
		n = PresetPortrait
	}
	c, ok := presets[n]
	if !ok {
		return Canvas{}, fmt.Errorf("unknown canvas preset %q", name)
	}
	return c, nil
}

// Presets lists the presets from smallest to largest height.
func Presets() []Canvas {
	return []Canvas{presets[PresetSquare], presets[PresetPortrait], presets[PresetA4], presets[PresetStory]}
}

func presetDefaultFormats(c Canvas) []string {
	switch c.Name {
	case PresetA4:
		return []string{FormatPDF, FormatPNG}
	default:
		return []string{FormatPNG}
	}
}
