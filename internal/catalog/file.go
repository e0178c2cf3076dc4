/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.schema.json
var schemaJSON []byte

// Document is the root of a catalog file. YAML and JSON share the same shape.
type Document struct {
	Title      string     `json:"title,omitempty" yaml:"title,omitempty"`
	Categories []Category `json:"categories" yaml:"categories"`
}

// ParseDocument decodes a YAML or JSON catalog, validates it against the embedded
// schema and normalizes badge aliases.
func ParseDocument(data []byte) (Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: decode: %v", ErrInvalidCatalog, err)
	}
	if raw == nil {
		return Document{}, fmt.Errorf("%w: empty document", ErrInvalidCatalog)
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewGoLoader(raw))
	if err != nil {
		return Document{}, fmt.Errorf("schema validate: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Document{}, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(msgs, "; "))
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: decode: %v", ErrInvalidCatalog, err)
	}
	for ci := range doc.Categories {
		if err := normalize(&doc.Categories[ci]); err != nil {
			return Document{}, err
		}
	}
	return doc, nil
}

// LoadFile reads and parses a catalog file.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// FileSource serves categories from a catalog file, re-reading it on every call so
// each export works on a fresh snapshot.
type FileSource struct{ Path string }

func (s FileSource) Categories(_ context.Context) ([]Category, error) {
	doc, err := LoadFile(s.Path)
	if err != nil {
		return nil, err
	}
	return doc.Categories, nil
}

func normalize(c *Category) error {
	c.Title = strings.TrimSpace(c.Title)
	for i := range c.Items {
		it := &c.Items[i]
		it.Name = strings.TrimSpace(it.Name)
		it.Price = strings.TrimSpace(it.Price)
		it.Description = strings.TrimSpace(it.Description)
		b, err := ParseBadge(string(it.Badge))
		if err != nil {
			return fmt.Errorf("%s: item %q: %w", c.Title, it.Name, err)
		}
		it.Badge = b
	}
	return c.Validate()
}
