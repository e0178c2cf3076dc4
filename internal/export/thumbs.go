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
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DefaultThumbWidth is used when a thumbnail width is not set.
const DefaultThumbWidth = 270

// Thumbnail scales img to width pixels, keeping the aspect ratio.
func Thumbnail(img image.Image, width int) *image.NRGBA {
	if width <= 0 {
		width = DefaultThumbWidth
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}

// SaveThumbnail writes a JPEG or PNG thumbnail, chosen by the extension of path.
func SaveThumbnail(img image.Image, width int, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure thumb dir: %w", err)
	}
	if err := imaging.Save(Thumbnail(img, width), path, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("save thumbnail: %w", err)
	}
	return nil
}
