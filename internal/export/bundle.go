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
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"pricecards/internal/cardlayout"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BundleManifest is the manifest.json stored next to the pages of a bundle.
type BundleManifest struct {
	Category     string                 `json:"category"`
	Status       cardlayout.Status      `json:"status"`
	Mode         cardlayout.QualityMode `json:"mode"`
	Fonts        cardlayout.FontConfig  `json:"fonts"`
	Padding      float64                `json:"padding"`
	ShrinkPasses int                    `json:"shrinkPasses"`
	Width        float64                `json:"width"`
	Height       float64                `json:"height"`
	Pages        []BundlePage           `json:"pages"`
}

// BundlePage describes one image in a bundle.
type BundlePage struct {
	File     string   `json:"file"`
	Items    []string `json:"items"`
	Overflow bool     `json:"overflow,omitempty"`
}

// WriteBundle renders every page of lay as PNG into a zip archive at outPath, together with
// a manifest.json. A .zip extension is added when missing.
func (r *Renderer) WriteBundle(lay cardlayout.Layout, outPath string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(outPath), ".zip") {
		outPath += ".zip"
	}
	zw, f, err := createZip(outPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	pad := len(fmt.Sprint(len(lay.Pages)))
	man := BundleManifest{
		Category:     lay.Category,
		Status:       lay.Status,
		Mode:         lay.Mode,
		Fonts:        lay.Fonts,
		Padding:      lay.Padding,
		ShrinkPasses: lay.ShrinkPasses,
		Width:        lay.Config.PageWidth,
		Height:       lay.Config.PageHeight,
	}
	buf := &bytes.Buffer{}
	for i, pg := range lay.Pages {
		buf.Reset()
		if err := r.WritePNG(buf, lay, i); err != nil {
			return "", err
		}
		name := fmt.Sprintf("%0*d.png", pad, i+1)
		if err := addZipFile(zw, name, buf.Bytes()); err != nil {
			return "", fmt.Errorf("zip add image: %w", err)
		}
		bp := BundlePage{File: name, Overflow: pg.Overflow}
		for _, it := range pg.Items {
			bp.Items = append(bp.Items, it.Name)
		}
		man.Pages = append(man.Pages, bp)
	}

	data, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	if err := addZipFile(zw, "manifest.json", data); err != nil {
		return "", fmt.Errorf("zip add manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("close zip: %w", err)
	}
	return outPath, nil
}

func createZip(outPath string) (*zip.Writer, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create zip: %w", err)
	}
	return zip.NewWriter(f), f, nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
